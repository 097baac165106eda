package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EconomyServiceImpl implements ports.EconomyService on top of the
// configured storage backend.
type EconomyServiceImpl struct {
	store    ports.Store
	registry ports.CurrencyRegistry
	accounts *cache.Accounts
	sessions ports.SessionDirectory
	notifier ports.Notifier
	workers  *worker.Pool
	notify   bool
	log      zerolog.Logger
}

func NewEconomyService(
	store ports.Store,
	registry ports.CurrencyRegistry,
	accounts *cache.Accounts,
	sessions ports.SessionDirectory,
	notifier ports.Notifier,
	workers *worker.Pool,
	notify bool,
	log zerolog.Logger,
) *EconomyServiceImpl {
	return &EconomyServiceImpl{
		store:    store,
		registry: registry,
		accounts: accounts,
		sessions: sessions,
		notifier: notifier,
		workers:  workers,
		notify:   notify,
		log:      log,
	}
}

func (s *EconomyServiceImpl) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	acc, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, apperror.ErrUnknownAccount(id.String())
	}
	return acc, nil
}

func (s *EconomyServiceImpl) GetAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	acc, err := s.store.GetAccountByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, apperror.ErrUnknownAccount(name)
	}
	return acc, nil
}

func (s *EconomyServiceImpl) Deposit(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (bool, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return false, apperror.ErrInvalidAmount()
	}
	currency, err := s.registry.Resolve(token)
	if err != nil {
		return false, err
	}

	ok, err := s.store.AddBalance(ctx, id, currency, amount)
	if err != nil || !ok {
		return false, err
	}
	s.tell(id, fmt.Sprintf("%s has been added to your account", currency.FormatAmount(amount)))
	return true, nil
}

func (s *EconomyServiceImpl) Withdraw(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (bool, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return false, apperror.ErrInvalidAmount()
	}
	currency, err := s.registry.Resolve(token)
	if err != nil {
		return false, err
	}

	ok, err := s.store.RemoveBalance(ctx, id, currency, amount)
	if err != nil || !ok {
		return false, err
	}
	s.tell(id, fmt.Sprintf("%s has been removed from your account", currency.FormatAmount(amount)))
	return true, nil
}

func (s *EconomyServiceImpl) SetBalance(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	currency, err := s.registry.Resolve(token)
	if err != nil {
		return decimal.Zero, err
	}

	newBal, err := s.store.SetBalance(ctx, id, currency, amount)
	if err != nil {
		return decimal.Zero, err
	}
	s.tell(id, fmt.Sprintf("Your balance was set to %s", currency.FormatAmount(newBal)))
	return newBal, nil
}

func (s *EconomyServiceImpl) GetBalance(ctx context.Context, id uuid.UUID, token string) (decimal.Decimal, error) {
	currency, err := s.registry.Resolve(token)
	if err != nil {
		return decimal.Zero, err
	}
	return s.store.GetBalance(ctx, id, currency)
}

func (s *EconomyServiceImpl) HasEnoughBalance(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (bool, error) {
	currency, err := s.registry.Resolve(token)
	if err != nil {
		return false, err
	}
	return s.store.HasEnoughBalance(ctx, id, currency, amount)
}

// Transfer moves amount between two accounts. The withdraw and deposit
// are separate mutations; a failed deposit is compensated by paying the
// amount back to the source before the error is surfaced.
func (s *EconomyServiceImpl) Transfer(ctx context.Context, from, to uuid.UUID, token string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperror.ErrInvalidAmount()
	}
	currency, err := s.registry.Resolve(token)
	if err != nil {
		return err
	}
	if !currency.Transferable {
		return apperror.ErrNotTransferable(currency.ID)
	}
	if from == to {
		return apperror.ErrSelfTransfer()
	}

	sender, err := s.GetAccount(ctx, from)
	if err != nil {
		return err
	}
	receiver, err := s.GetAccount(ctx, to)
	if err != nil {
		return err
	}

	ok, err := s.store.RemoveBalance(ctx, from, currency, amount)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrInsufficientBalance()
	}

	ok, err = s.store.AddBalance(ctx, to, currency, amount)
	if err != nil || !ok {
		// Pay the amount back; the sender must never lose money to a
		// failed deposit.
		if _, backErr := s.store.AddBalance(ctx, from, currency, amount); backErr != nil {
			s.log.Error().
				Err(backErr).
				Str("from", from.String()).
				Str("to", to.String()).
				Str("currency", currency.ID).
				Str("amount", amount.String()).
				Msg("Compensating deposit failed, sender balance lost")
			return apperror.InternalError(fmt.Errorf("compensating deposit: %w", backErr))
		}
		if err != nil {
			return err
		}
		return apperror.InternalError(errors.New("deposit to receiver refused"))
	}

	formatted := currency.FormatAmount(amount)
	s.tell(from, fmt.Sprintf("You paid %s to %s", formatted, receiver.Name()))
	s.tell(to, fmt.Sprintf("You received %s from %s", formatted, sender.Name()))

	s.log.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("currency", currency.ID).
		Str("amount", amount.String()).
		Msg("Transfer completed")
	return nil
}

// DepositAsync runs Deposit on the worker pool and returns a handle the
// caller can wait on. Command handlers use this to stay off the hot path.
func (s *EconomyServiceImpl) DepositAsync(id uuid.UUID, token string, amount decimal.Decimal) (*worker.Handle, error) {
	return s.workers.Submit(func(ctx context.Context) error {
		_, err := s.Deposit(ctx, id, token, amount)
		return err
	})
}

func (s *EconomyServiceImpl) WithdrawAsync(id uuid.UUID, token string, amount decimal.Decimal) (*worker.Handle, error) {
	return s.workers.Submit(func(ctx context.Context) error {
		_, err := s.Withdraw(ctx, id, token, amount)
		return err
	})
}

func (s *EconomyServiceImpl) TransferAsync(from, to uuid.UUID, token string, amount decimal.Decimal) (*worker.Handle, error) {
	return s.workers.Submit(func(ctx context.Context) error {
		return s.Transfer(ctx, from, to, token, amount)
	})
}

func (s *EconomyServiceImpl) SaveAccount(account *domain.Account) {
	s.store.SaveAccount(account)
}

// FlushAll synchronously persists every cache-resident account. It keeps
// going after individual failures and reports them joined.
func (s *EconomyServiceImpl) FlushAll(ctx context.Context) error {
	var errs []error
	snapshot := s.accounts.Snapshot()
	for _, acc := range snapshot {
		if err := s.store.SaveAccountSync(ctx, acc); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", acc.ID(), err))
		}
	}
	if len(snapshot) > 0 {
		s.log.Debug().Int("accounts", len(snapshot)).Int("failed", len(errs)).Msg("Cache flushed")
	}
	return errors.Join(errs...)
}

// HandleDisconnect persists and drops the account when its session ends.
func (s *EconomyServiceImpl) HandleDisconnect(ctx context.Context, id uuid.UUID) error {
	acc := s.accounts.Get(id)
	if acc == nil {
		return nil
	}
	if err := s.store.SaveAccountSync(ctx, acc); err != nil {
		return fmt.Errorf("save on disconnect: %w", err)
	}
	s.accounts.Invalidate(id)
	return nil
}

// RunPeriodicFlush flushes the cache on the given interval until ctx is
// cancelled. A zero interval disables it.
func (s *EconomyServiceImpl) RunPeriodicFlush(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.FlushAll(ctx); err != nil {
				s.log.Warn().Err(err).Msg("Periodic flush had failures")
			}
		}
	}
}

// tell sends a notification when notifications are enabled and the
// target has a live session.
func (s *EconomyServiceImpl) tell(id uuid.UUID, message string) {
	if !s.notify || s.notifier == nil {
		return
	}
	if _, online := s.sessions.NameByID(id); !online {
		return
	}
	s.notifier.Notify(id, message)
}
