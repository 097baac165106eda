package service

import (
	"context"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"

	"github.com/rs/zerolog"
)

// Reconciler converges deferred ledger entries onto cache-resident
// accounts. Every tick it claims at most one unprocessed entry per
// resident account and applies it; an account with several pending
// entries drains across consecutive ticks, oldest first.
type Reconciler struct {
	store    ports.Store
	registry ports.CurrencyRegistry
	accounts *cache.Accounts
	workers  *worker.Pool
	interval time.Duration
	log      zerolog.Logger
}

func NewReconciler(store ports.Store, registry ports.CurrencyRegistry, accounts *cache.Accounts, workers *worker.Pool, interval time.Duration, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		registry: registry,
		accounts: accounts,
		workers:  workers,
		interval: interval,
		log:      log.With().Str("component", "reconciler").Logger(),
	}
}

// Run ticks until ctx is cancelled. Each tick is submitted to the worker
// pool so the timer goroutine never blocks on storage I/O; a tick that
// finds the pool saturated is skipped, the next one picks the work up.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Msg("Reconciliation loop started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Reconciliation loop stopped")
			return
		case <-ticker.C:
			if _, ok := r.workers.TrySubmit(func(taskCtx context.Context) error {
				r.Tick(taskCtx)
				return nil
			}); !ok {
				r.log.Warn().Msg("Worker pool saturated, skipping reconciliation tick")
			}
		}
	}
}

// Tick processes at most one pending entry for every resident account.
func (r *Reconciler) Tick(ctx context.Context) int {
	applied := 0
	for _, id := range r.accounts.Keys() {
		entry, err := r.store.ClaimNextEntry(ctx, id)
		if err != nil {
			r.log.Warn().Err(err).Str("account_id", id.String()).Msg("Claim failed")
			continue
		}
		if entry == nil {
			continue
		}
		if r.apply(ctx, entry) {
			applied++
		}
	}
	return applied
}

// apply replays one claimed entry onto its resident account. The entry
// was already flipped to processed by the claim; only a vanished account
// rolls it back, a poisoned entry stays retired.
func (r *Reconciler) apply(ctx context.Context, entry *domain.LedgerEntry) bool {
	acc := r.accounts.Get(entry.AccountID)
	if acc == nil {
		// Evicted between claim and apply: put the entry back for the
		// next time the account is resident.
		if err := r.store.ReleaseEntry(ctx, entry); err != nil {
			r.log.Error().Err(err).Int64("entry_id", entry.ID).Str("ref", entry.Ref).Msg("Release failed, entry stays processed")
		}
		return false
	}

	currency, err := r.registry.Resolve(entry.CurrencyID)
	if err != nil {
		r.poison(entry, "unknown currency")
		return false
	}
	if _, err := domain.ParseEntryKind(string(entry.Kind)); err != nil {
		r.poison(entry, "unknown kind")
		return false
	}
	if entry.Kind != domain.EntrySet && entry.Amount.IsNegative() {
		r.poison(entry, "negative amount")
		return false
	}

	switch entry.Kind {
	case domain.EntryDeposit:
		acc.Deposit(currency.ID, entry.Amount)
	case domain.EntryWithdraw:
		if !acc.Withdraw(currency.ID, entry.Amount) {
			// Deferred withdraw that no longer fits: terminal, the
			// balance is never driven negative.
			r.log.Warn().
				Str("account_id", entry.AccountID.String()).
				Str("currency", currency.ID).
				Str("amount", entry.Amount.String()).
				Msg("Deferred withdraw exceeds balance, dropped")
			return false
		}
	case domain.EntrySet:
		acc.SetBalance(currency.ID, entry.Amount)
	}

	r.store.SaveAccount(acc)
	r.accounts.Put(entry.AccountID, acc)

	r.log.Debug().
		Str("account_id", entry.AccountID.String()).
		Str("currency", currency.ID).
		Str("kind", string(entry.Kind)).
		Str("amount", entry.Amount.String()).
		Msg("Deferred entry applied")
	return true
}

func (r *Reconciler) poison(entry *domain.LedgerEntry, reason string) {
	r.log.Error().
		Int64("entry_id", entry.ID).
		Str("ref", entry.Ref).
		Str("account_id", entry.AccountID.String()).
		Str("currency", entry.CurrencyID).
		Str("kind", string(entry.Kind)).
		Str("reason", reason).
		Msg("Poisoned ledger entry retired")
}
