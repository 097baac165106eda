// Package flatfile stores one JSON document per account under a data
// directory. It is the zero-infrastructure backend: no ledger, no
// leaderboard, no backups.
package flatfile

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
)

// Store implements ports.Store on a directory of <uuid>.json files.
// Every mutation loads the account into the cache first, so flat-file
// mutations always apply in-memory and there are no pending entries.
type Store struct {
	fs        afero.Fs
	dir       string
	cache     *cache.Accounts
	sessions  ports.SessionDirectory
	registry  ports.CurrencyRegistry
	pool      *worker.Pool
	log       zerolog.Logger
	connected atomic.Bool
}

func New(fs afero.Fs, dir string, accounts *cache.Accounts, sessions ports.SessionDirectory, registry ports.CurrencyRegistry, pool *worker.Pool, log zerolog.Logger) *Store {
	return &Store{
		fs:       fs,
		dir:      dir,
		cache:    accounts,
		sessions: sessions,
		registry: registry,
		pool:     pool,
		log:      log.With().Str("component", "flatfile_store").Logger(),
	}
}

func (s *Store) Connect(ctx context.Context) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return apperror.ErrStorageConnection("flatfile", err)
	}
	s.connected.Store(true)
	s.log.Info().Str("dir", s.dir).Msg("Flat-file storage ready")
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	s.connected.Store(false)
	return nil
}

func (s *Store) IsConnected(ctx context.Context) bool {
	return s.connected.Load()
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

// GetAccount returns the cached account, or loads it from disk, or creates
// it for a live session. It returns nil without error when the identity is
// unknown everywhere.
func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if acc := s.cache.Get(id); acc != nil {
		return acc, nil
	}

	acc, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		name, ok := s.sessions.NameByID(id)
		if !ok {
			return nil, nil
		}
		acc = domain.NewAccount(id, name, s.registry.All())
		if err := s.SaveAccountSync(ctx, acc); err != nil {
			return nil, err
		}
		s.log.Info().Str("account_id", id.String()).Str("name", name).Msg("Created account")
	}

	acc.Fix(s.registry.All())
	s.cache.Put(id, acc)
	return acc, nil
}

func (s *Store) GetAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	for _, acc := range s.cache.Snapshot() {
		if strings.EqualFold(acc.Name(), name) {
			return acc, nil
		}
	}
	if id, ok := s.sessions.IDByName(name); ok {
		return s.GetAccount(ctx, id)
	}

	// Last resort: scan the data directory.
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("read account dir: %w", err)
	}
	for _, info := range infos {
		id, ok := accountIDFromFile(info.Name())
		if !ok {
			continue
		}
		acc, err := s.load(id)
		if err != nil || acc == nil {
			continue
		}
		if strings.EqualFold(acc.Name(), name) {
			acc.Fix(s.registry.All())
			s.cache.Put(id, acc)
			return acc, nil
		}
	}
	return nil, nil
}

// SaveAccount persists on the worker pool without blocking. When the
// queue is saturated or closing it saves inline instead: a blocking
// submit from a pool-resident task (reconciler, eviction) could leave
// no worker free to receive it.
func (s *Store) SaveAccount(account *domain.Account) {
	if account == nil {
		return
	}
	if _, ok := s.pool.TrySubmit(func(ctx context.Context) error {
		return s.SaveAccountSync(ctx, account)
	}); !ok {
		if err := s.SaveAccountSync(context.Background(), account); err != nil {
			s.log.Error().Err(err).Str("account_id", account.ID().String()).Msg("Inline save failed")
		}
	}
}

func (s *Store) SaveAccountSync(ctx context.Context, account *domain.Account) error {
	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path(account.ID()), data, 0o644); err != nil {
		return fmt.Errorf("write account file: %w", err)
	}
	return nil
}

func (s *Store) AddBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return false, err
	}
	if acc == nil {
		return false, apperror.ErrUnknownAccount(id.String())
	}
	if !acc.Deposit(currency.ID, amount) {
		return false, nil
	}
	s.SaveAccount(acc)
	return true, nil
}

func (s *Store) RemoveBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return false, err
	}
	if acc == nil {
		return false, apperror.ErrUnknownAccount(id.String())
	}
	if !acc.Withdraw(currency.ID, amount) {
		return false, nil
	}
	s.SaveAccount(acc)
	return true, nil
}

func (s *Store) SetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if acc == nil {
		return decimal.Zero, apperror.ErrUnknownAccount(id.String())
	}
	acc.SetBalance(currency.ID, amount)
	s.SaveAccount(acc)
	return amount, nil
}

func (s *Store) GetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency) (decimal.Decimal, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if acc == nil {
		return decimal.Zero, apperror.ErrUnknownAccount(id.String())
	}
	v, _ := acc.Balance(currency.ID)
	return v, nil
}

func (s *Store) HasEnoughBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil || acc == nil {
		return false, err
	}
	return acc.HasEnough(currency.ID, amount), nil
}

func (s *Store) TopBalances(ctx context.Context, currency domain.Currency, page, pageSize int) ([]*domain.Account, error) {
	return nil, apperror.ErrUnsupported("top balances", "flatfile")
}

func (s *Store) ExistsAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.cache.Get(id) != nil {
		return true, nil
	}
	return afero.Exists(s.fs, s.path(id))
}

func (s *Store) ExistsAccountName(ctx context.Context, name string) (bool, error) {
	acc, err := s.GetAccountByName(ctx, name)
	if err != nil {
		return false, err
	}
	return acc != nil, nil
}

func (s *Store) ListAccounts(ctx context.Context, page, pageSize int) ([]*domain.Account, error) {
	return nil, apperror.ErrUnsupported("list accounts", "flatfile")
}

// ListLedgerEntries always returns empty: flat-file mutations apply
// directly, nothing is ever queued.
func (s *Store) ListLedgerEntries(ctx context.Context, id uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	return []domain.LedgerEntry{}, nil
}

func (s *Store) ClaimNextEntry(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	return nil, nil
}

func (s *Store) ReleaseEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	return nil
}

func (s *Store) CreateBackup(ctx context.Context) (uuid.UUID, error) {
	return uuid.Nil, apperror.ErrUnsupported("backup", "flatfile")
}

func (s *Store) RestoreBackup(ctx context.Context, backupID uuid.UUID) error {
	return apperror.ErrUnsupported("backup restore", "flatfile")
}

func (s *Store) PruneBackups(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, apperror.ErrUnsupported("backup pruning", "flatfile")
}

// load reads an account file. A missing file is (nil, nil).
func (s *Store) load(id uuid.UUID) (*domain.Account, error) {
	data, err := afero.ReadFile(s.fs, s.path(id))
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path(id)); !exists {
			return nil, nil
		}
		return nil, fmt.Errorf("read account file: %w", err)
	}
	var acc domain.Account
	if err := json.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", id, err)
	}
	return &acc, nil
}

func accountIDFromFile(name string) (uuid.UUID, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(base)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
