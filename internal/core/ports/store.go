package ports

import (
	"context"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the storage-backend contract. Every implementation honors the
// same semantics:
//
//   - Account reads are cache-first; a durable-store miss falls back to the
//     live session directory, creating and persisting a fresh account.
//   - A balance mutation against a cache-resident account applies in-memory
//     and records a processed ledger entry. Against a non-resident account it
//     records a single unprocessed entry and touches no in-memory state; the
//     reconciliation loop converges it later.
type Store interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected(ctx context.Context) bool

	// GetAccount returns the account for id, loading or creating it as
	// needed. It returns nil (no error) when neither the durable store nor
	// the live session directory can identify the player.
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountByName(ctx context.Context, name string) (*domain.Account, error)

	// SaveAccount persists asynchronously (fire-and-forget). SaveAccountSync
	// completes before returning and is the shutdown/eviction path.
	SaveAccount(account *domain.Account)
	SaveAccountSync(ctx context.Context, account *domain.Account) error

	// AddBalance / RemoveBalance return true when the mutation was applied
	// or accepted as a pending ledger entry.
	AddBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error)
	RemoveBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error)
	SetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (decimal.Decimal, error)
	GetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency) (decimal.Decimal, error)
	HasEnoughBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error)

	// TopBalances returns up to pageSize+1 accounts in descending balance
	// order; the extra row lets callers detect a next page. Pages are
	// 1-indexed.
	TopBalances(ctx context.Context, currency domain.Currency, page, pageSize int) ([]*domain.Account, error)

	ExistsAccount(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsAccountName(ctx context.Context, name string) (bool, error)

	// Read surface for dashboards.
	ListAccounts(ctx context.Context, page, pageSize int) ([]*domain.Account, error)
	ListLedgerEntries(ctx context.Context, id uuid.UUID, limit int) ([]domain.LedgerEntry, error)

	// ClaimNextEntry atomically flips the oldest unprocessed entry for the
	// account to processed and returns it, or nil when none is pending. Two
	// concurrent reconciliation passes can never claim the same entry.
	ClaimNextEntry(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	// ReleaseEntry rolls a claimed entry back to unprocessed, e.g. when the
	// account vanished from cache between claim and apply.
	ReleaseEntry(ctx context.Context, entry *domain.LedgerEntry) error

	// Backups. Unsupported backends return a typed Unsupported error rather
	// than silently succeeding.
	CreateBackup(ctx context.Context) (uuid.UUID, error)
	RestoreBackup(ctx context.Context, backupID uuid.UUID) error
	PruneBackups(ctx context.Context, retention time.Duration) (int64, error)
}
