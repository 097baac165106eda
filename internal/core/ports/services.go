package ports

import (
	"context"

	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// CurrencyRegistry resolves currency tokens (id or alias) to definitions.
type CurrencyRegistry interface {
	// Resolve returns the currency for a token. When the fallback policy is
	// disabled a miss is a typed UnknownCurrency error, never a silent nil.
	Resolve(token string) (domain.Currency, error)
	Primary() domain.Currency
	All() []domain.Currency
}

// SessionDirectory is the live-player-session collaborator: identity to
// display name mapping and online state.
type SessionDirectory interface {
	// NameByID returns the display name for an identity; ok is false when
	// the identity has no live session.
	NameByID(id uuid.UUID) (name string, ok bool)
	// IDByName resolves a display name to an identity, live or remembered.
	IDByName(name string) (id uuid.UUID, ok bool)
	// Online returns the identities with a live session.
	Online() []uuid.UUID
}

// Notifier is the user-facing message sink for mutation outcomes.
type Notifier interface {
	Notify(id uuid.UUID, message string)
}

// EconomyService is the balance API exposed to command/UI collaborators.
// All operations are keyed by account identity and a currency token.
type EconomyService interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountByName(ctx context.Context, name string) (*domain.Account, error)

	Deposit(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (bool, error)
	Withdraw(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (bool, error)
	SetBalance(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (decimal.Decimal, error)
	GetBalance(ctx context.Context, id uuid.UUID, token string) (decimal.Decimal, error)
	HasEnoughBalance(ctx context.Context, id uuid.UUID, token string, amount decimal.Decimal) (bool, error)
	Transfer(ctx context.Context, from, to uuid.UUID, token string, amount decimal.Decimal) error

	SaveAccount(account *domain.Account)
	// FlushAll synchronously persists every cache-resident account.
	FlushAll(ctx context.Context) error
	// HandleDisconnect saves and invalidates the account when a session ends.
	HandleDisconnect(ctx context.Context, id uuid.UUID) error
}
