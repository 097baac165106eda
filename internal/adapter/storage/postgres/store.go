package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store implements ports.Store on PostgreSQL. Balances live in a
// (account, currency) table; deferred mutations are unprocessed rows in
// ledger_entries that the reconciliation loop claims with SKIP LOCKED.
type Store struct {
	pool      Pool
	cache     *cache.Accounts
	sessions  ports.SessionDirectory
	registry  ports.CurrencyRegistry
	workers   *worker.Pool
	log       zerolog.Logger
	connected atomic.Bool
}

func NewStore(pool Pool, accounts *cache.Accounts, sessions ports.SessionDirectory, registry ports.CurrencyRegistry, workers *worker.Pool, log zerolog.Logger) *Store {
	return &Store{
		pool:     pool,
		cache:    accounts,
		sessions: sessions,
		registry: registry,
		workers:  workers,
		log:      log.With().Str("component", "postgres_store").Logger(),
	}
}

func (s *Store) Connect(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperror.ErrStorageConnection("postgres", err)
	}
	if err := Migrate(ctx, s.pool); err != nil {
		return apperror.ErrStorageConnection("postgres", err)
	}
	s.connected.Store(true)
	s.log.Info().Msg("PostgreSQL storage ready")
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	s.connected.Store(false)
	s.pool.Close()
	return nil
}

func (s *Store) IsConnected(ctx context.Context) bool {
	if !s.connected.Load() {
		return false
	}
	return s.pool.Ping(ctx) == nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if acc := s.cache.Get(id); acc != nil {
		return acc, nil
	}

	acc, err := s.fetchAccount(ctx, id)
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

	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM accounts WHERE lower(name) = lower($1)`, name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if sid, ok := s.sessions.IDByName(name); ok {
				return s.GetAccount(ctx, sid)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("get account by name: %w", err)
	}
	return s.GetAccount(ctx, id)
}

// SaveAccount persists on the worker pool without blocking. When the
// queue is saturated or closing it saves inline instead: a blocking
// submit from a pool-resident task (reconciler, eviction) could leave
// no worker free to receive it.
func (s *Store) SaveAccount(account *domain.Account) {
	if account == nil {
		return
	}
	if _, ok := s.workers.TrySubmit(func(ctx context.Context) error {
		return s.SaveAccountSync(ctx, account)
	}); !ok {
		if err := s.SaveAccountSync(context.Background(), account); err != nil {
			s.log.Error().Err(err).Str("account_id", account.ID().String()).Msg("Inline save failed")
		}
	}
}

// SaveAccountSync upserts the account row and every balance in one
// transaction.
func (s *Store) SaveAccountSync(ctx context.Context, account *domain.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save account: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO accounts (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		account.ID(), account.Name(),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	for currencyID, amount := range account.Balances() {
		_, err = tx.Exec(ctx,
			`INSERT INTO balances (account_uuid, currency_id, amount) VALUES ($1, $2, $3)
			 ON CONFLICT (account_uuid, currency_id) DO UPDATE SET amount = EXCLUDED.amount`,
			account.ID(), currencyID, amount.String(),
		)
		if err != nil {
			return fmt.Errorf("upsert balance %s: %w", currencyID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save account: %w", err)
	}
	return nil
}

// AddBalance applies the deposit in-memory when the account is cache
// resident, recording a processed ledger entry. Otherwise it records a
// single unprocessed entry for the reconciliation loop and reports the
// mutation as accepted.
func (s *Store) AddBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	if acc := s.cache.Get(id); acc != nil {
		if !acc.Deposit(currency.ID, amount) {
			return false, nil
		}
		// The in-memory balance is authoritative once applied; a failed
		// trail insert is a fire-and-forget persistence failure, never a
		// failed mutation.
		s.recordProcessed(ctx, domain.NewLedgerEntry(id, currency.ID, amount, domain.EntryDeposit, true))
		s.SaveAccount(acc)
		return true, nil
	}
	if err := s.insertEntry(ctx, domain.NewLedgerEntry(id, currency.ID, amount, domain.EntryDeposit, false)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) RemoveBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	if acc := s.cache.Get(id); acc != nil {
		if !acc.Withdraw(currency.ID, amount) {
			return false, nil
		}
		s.recordProcessed(ctx, domain.NewLedgerEntry(id, currency.ID, amount, domain.EntryWithdraw, true))
		s.SaveAccount(acc)
		return true, nil
	}
	if err := s.insertEntry(ctx, domain.NewLedgerEntry(id, currency.ID, amount, domain.EntryWithdraw, false)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) SetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	if acc := s.cache.Get(id); acc != nil {
		acc.SetBalance(currency.ID, amount)
		s.recordProcessed(ctx, domain.NewLedgerEntry(id, currency.ID, amount, domain.EntrySet, true))
		s.SaveAccount(acc)
		return amount, nil
	}
	if err := s.insertEntry(ctx, domain.NewLedgerEntry(id, currency.ID, amount, domain.EntrySet, false)); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func (s *Store) GetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency) (decimal.Decimal, error) {
	if acc := s.cache.Get(id); acc != nil {
		v, _ := acc.Balance(currency.ID)
		return v, nil
	}

	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT amount::text FROM balances WHERE account_uuid = $1 AND currency_id = $2`,
		id, currency.ID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			exists, err := s.ExistsAccount(ctx, id)
			if err != nil {
				return decimal.Zero, err
			}
			if !exists {
				return decimal.Zero, apperror.ErrUnknownAccount(id.String())
			}
			return currency.DefaultBalance, nil
		}
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored balance: %w", err)
	}
	return v, nil
}

func (s *Store) HasEnoughBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	v, err := s.GetBalance(ctx, id, currency)
	if err != nil {
		return false, err
	}
	return v.GreaterThanOrEqual(amount), nil
}

// TopBalances returns one page of the leaderboard in descending balance
// order. It fetches pageSize+1 rows so callers can detect a next page.
// Ranks are absolute positions, 1-indexed across pages.
func (s *Store) TopBalances(ctx context.Context, currency domain.Currency, page, pageSize int) ([]*domain.Account, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.name, b.amount::text
		 FROM balances b
		 JOIN accounts a ON a.id = b.account_uuid
		 WHERE b.currency_id = $1
		 ORDER BY b.amount DESC, a.name ASC
		 LIMIT $2 OFFSET $3`,
		currency.ID, pageSize+1, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("top balances: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	rank := int64(offset)
	for rows.Next() {
		var (
			id   uuid.UUID
			name string
			raw  string
		)
		if err := rows.Scan(&id, &name, &raw); err != nil {
			return nil, fmt.Errorf("scan top balance: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse top balance: %w", err)
		}
		rank++
		acc := domain.RestoreAccount(id, name, map[string]decimal.Decimal{currency.ID: amount})
		acc.SetRank(rank)
		out = append(out, acc)
	}
	return out, rows.Err()
}

func (s *Store) ExistsAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.cache.Get(id) != nil {
		return true, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists account: %w", err)
	}
	return exists, nil
}

func (s *Store) ExistsAccountName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(name) = lower($1))`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists account name: %w", err)
	}
	return exists, nil
}

func (s *Store) ListAccounts(ctx context.Context, page, pageSize int) ([]*domain.Account, error) {
	if page < 1 {
		page = 1
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM accounts ORDER BY name ASC LIMIT $1 OFFSET $2`,
		pageSize+1, (page-1)*pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		var (
			id   uuid.UUID
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if acc := s.cache.Get(id); acc != nil {
			out = append(out, acc)
			continue
		}
		acc, err := s.fetchAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		if acc != nil {
			out = append(out, acc)
		}
	}
	return out, rows.Err()
}

func (s *Store) ListLedgerEntries(ctx context.Context, id uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_uuid, currency_id, amount::text, kind, processed, created_at
		 FROM ledger_entries WHERE account_uuid = $1 ORDER BY id DESC LIMIT $2`,
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// ClaimNextEntry flips the oldest unprocessed entry for the account to
// processed and returns it. SKIP LOCKED keeps two concurrent
// reconciliation passes from claiming the same row.
func (s *Store) ClaimNextEntry(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE ledger_entries SET processed = TRUE
		 WHERE id = (
			SELECT id FROM ledger_entries
			WHERE account_uuid = $1 AND processed = FALSE
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, account_uuid, currency_id, amount::text, kind, processed, created_at`,
		id,
	)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim ledger entry: %w", err)
	}
	return entry, nil
}

func (s *Store) ReleaseEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE ledger_entries SET processed = FALSE WHERE id = $1`, entry.ID,
	)
	if err != nil {
		return fmt.Errorf("release ledger entry: %w", err)
	}
	return nil
}

func (s *Store) CreateBackup(ctx context.Context) (uuid.UUID, error) {
	return uuid.Nil, apperror.ErrUnsupported("backup", "postgres")
}

func (s *Store) RestoreBackup(ctx context.Context, backupID uuid.UUID) error {
	return apperror.ErrUnsupported("backup restore", "postgres")
}

func (s *Store) PruneBackups(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, apperror.ErrUnsupported("backup pruning", "postgres")
}

// fetchAccount loads an account row and its balances without touching the
// cache. A missing account is (nil, nil).
func (s *Store) fetchAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT name FROM accounts WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT currency_id, amount::text FROM balances WHERE account_uuid = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			currencyID string
			raw        string
		)
		if err := rows.Scan(&currencyID, &raw); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse balance %s: %w", currencyID, err)
		}
		balances[currencyID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.RestoreAccount(id, name, balances), nil
}

// recordProcessed writes the trail entry for a mutation already applied
// in-memory. Failure is logged, never surfaced: rolling back or reporting
// an error here would contradict a mutation the caller already observed.
func (s *Store) recordProcessed(ctx context.Context, entry domain.LedgerEntry) {
	if err := s.insertEntry(ctx, entry); err != nil {
		s.log.Error().
			Err(err).
			Str("account_id", entry.AccountID.String()).
			Str("currency", entry.CurrencyID).
			Str("kind", string(entry.Kind)).
			Msg("Processed ledger entry lost")
	}
}

func (s *Store) insertEntry(ctx context.Context, entry domain.LedgerEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ledger_entries (account_uuid, currency_id, amount, kind, processed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.AccountID, entry.CurrencyID, entry.Amount.String(), string(entry.Kind), entry.Processed, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var (
		entry domain.LedgerEntry
		raw   string
		kind  string
	)
	err := row.Scan(&entry.ID, &entry.AccountID, &entry.CurrencyID, &raw, &kind, &entry.Processed, &entry.Timestamp)
	if err != nil {
		return nil, err
	}
	entry.Amount, err = decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse entry amount: %w", err)
	}
	entry.Kind = domain.EntryKind(kind)
	return &entry, nil
}
