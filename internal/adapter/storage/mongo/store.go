// Package mongo stores accounts as documents with an embedded balances
// sub-document and keeps the deferred-mutation ledger in its own
// collection. It is the only backend with backup support.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sharkz-dev/UltraEconomy/config"
	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	colAccounts = "accounts"
	colLedger   = "ledger_entries"
	colBackups  = "backups"

	colRestoreStaging = "accounts_restore_staging"
)

// Store implements ports.Store on MongoDB.
type Store struct {
	cfg       config.MongoConfig
	client    *mongo.Client
	db        *mongo.Database
	cache     *cache.Accounts
	sessions  ports.SessionDirectory
	registry  ports.CurrencyRegistry
	workers   *worker.Pool
	log       zerolog.Logger
	connected atomic.Bool
}

func NewStore(cfg config.MongoConfig, accounts *cache.Accounts, sessions ports.SessionDirectory, registry ports.CurrencyRegistry, workers *worker.Pool, log zerolog.Logger) *Store {
	return &Store{
		cfg:      cfg,
		cache:    accounts,
		sessions: sessions,
		registry: registry,
		workers:  workers,
		log:      log.With().Str("component", "mongo_store").Logger(),
	}
}

func (s *Store) Connect(ctx context.Context) error {
	client, err := mongo.Connect(options.Client().ApplyURI(s.cfg.URI))
	if err != nil {
		return apperror.ErrStorageConnection("mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return apperror.ErrStorageConnection("mongo", err)
	}

	s.client = client
	s.db = client.Database(s.cfg.Database)

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return apperror.ErrStorageConnection("mongo", err)
	}

	s.connected.Store(true)
	s.log.Info().Str("database", s.cfg.Database).Msg("MongoDB storage ready")
	return nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	ledgerIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_uuid", Value: 1}, {Key: "processed", Value: 1}}},
	}
	if _, err := s.db.Collection(colLedger).Indexes().CreateMany(ctx, ledgerIdx); err != nil {
		return fmt.Errorf("create ledger indexes: %w", err)
	}

	accountIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name_lower", Value: 1}}},
	}
	if _, err := s.db.Collection(colAccounts).Indexes().CreateMany(ctx, accountIdx); err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	s.connected.Store(false)
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) IsConnected(ctx context.Context) bool {
	if !s.connected.Load() || s.client == nil {
		return false
	}
	return s.client.Ping(ctx, nil) == nil
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

	var doc accountDoc
	err := s.db.Collection(colAccounts).
		FindOne(ctx, bson.M{"name_lower": strings.ToLower(name)}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if sid, ok := s.sessions.IDByName(name); ok {
				return s.GetAccount(ctx, sid)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("get account by name: %w", err)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed account id %q: %w", doc.ID, err)
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

func (s *Store) SaveAccountSync(ctx context.Context, account *domain.Account) error {
	doc, err := toAccountDoc(account)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(colAccounts).ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (s *Store) AddBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	if acc := s.cache.Get(id); acc != nil {
		if !acc.Deposit(currency.ID, amount) {
			return false, nil
		}
		// The in-memory balance is authoritative once applied; a failed
		// trail insert is a persistence gap, never a failed mutation.
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

	acc, err := s.fetchAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if acc == nil {
		return decimal.Zero, apperror.ErrUnknownAccount(id.String())
	}
	v, ok := acc.Balance(currency.ID)
	if !ok {
		return currency.DefaultBalance, nil
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

func (s *Store) TopBalances(ctx context.Context, currency domain.Currency, page, pageSize int) ([]*domain.Account, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	field := "balances." + currency.ID
	cur, err := s.db.Collection(colAccounts).Find(ctx,
		bson.M{field: bson.M{"$exists": true}},
		options.Find().
			SetSort(bson.D{{Key: field, Value: -1}, {Key: "name_lower", Value: 1}}).
			SetSkip(int64(offset)).
			SetLimit(int64(pageSize+1)),
	)
	if err != nil {
		return nil, fmt.Errorf("top balances: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Account
	rank := int64(offset)
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		acc, err := fromAccountDoc(&doc)
		if err != nil {
			return nil, err
		}
		rank++
		acc.SetRank(rank)
		out = append(out, acc)
	}
	return out, cur.Err()
}

func (s *Store) ExistsAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.cache.Get(id) != nil {
		return true, nil
	}
	n, err := s.db.Collection(colAccounts).CountDocuments(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return false, fmt.Errorf("exists account: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ExistsAccountName(ctx context.Context, name string) (bool, error) {
	n, err := s.db.Collection(colAccounts).CountDocuments(ctx, bson.M{"name_lower": strings.ToLower(name)})
	if err != nil {
		return false, fmt.Errorf("exists account name: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListAccounts(ctx context.Context, page, pageSize int) ([]*domain.Account, error) {
	if page < 1 {
		page = 1
	}
	cur, err := s.db.Collection(colAccounts).Find(ctx,
		bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "name_lower", Value: 1}}).
			SetSkip(int64((page-1)*pageSize)).
			SetLimit(int64(pageSize+1)),
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Account
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		acc, err := fromAccountDoc(&doc)
		if err != nil {
			return nil, err
		}
		if cached := s.cache.Get(acc.ID()); cached != nil {
			acc = cached
		}
		out = append(out, acc)
	}
	return out, cur.Err()
}

func (s *Store) ListLedgerEntries(ctx context.Context, id uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	cur, err := s.db.Collection(colLedger).Find(ctx,
		bson.M{"account_uuid": id.String()},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer cur.Close(ctx)

	entries := []domain.LedgerEntry{}
	for cur.Next(ctx) {
		var doc entryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode ledger entry: %w", err)
		}
		entry, err := fromEntryDoc(&doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, cur.Err()
}

// ClaimNextEntry atomically flips the oldest unprocessed entry to
// processed. FindOneAndUpdate is a single document-level CAS, so two
// concurrent passes always claim distinct entries.
func (s *Store) ClaimNextEntry(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	var doc entryDoc
	err := s.db.Collection(colLedger).FindOneAndUpdate(ctx,
		bson.M{"account_uuid": id.String(), "processed": false},
		bson.M{"$set": bson.M{"processed": true}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim ledger entry: %w", err)
	}
	return fromEntryDoc(&doc)
}

func (s *Store) ReleaseEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	oid, err := bson.ObjectIDFromHex(entry.Ref)
	if err != nil {
		return fmt.Errorf("malformed entry ref %q: %w", entry.Ref, err)
	}
	_, err = s.db.Collection(colLedger).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"processed": false}},
	)
	if err != nil {
		return fmt.Errorf("release ledger entry: %w", err)
	}
	return nil
}

// CreateBackup copies the full accounts collection into one timestamped
// backup document.
func (s *Store) CreateBackup(ctx context.Context) (uuid.UUID, error) {
	cur, err := s.db.Collection(colAccounts).Find(ctx, bson.M{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("read accounts for backup: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []accountDoc
	if err := cur.All(ctx, &accounts); err != nil {
		return uuid.Nil, fmt.Errorf("collect accounts for backup: %w", err)
	}

	backupID := uuid.New()
	doc := backupDoc{
		ID:        backupID.String(),
		CreatedAt: time.Now().UTC(),
		Accounts:  accounts,
	}
	if _, err := s.db.Collection(colBackups).InsertOne(ctx, doc); err != nil {
		return uuid.Nil, fmt.Errorf("insert backup: %w", err)
	}

	s.log.Info().
		Str("backup_id", backupID.String()).
		Int("accounts", len(accounts)).
		Msg("Backup created")
	return backupID, nil
}

// RestoreBackup rebuilds the accounts collection from a backup. The
// documents go into a staging collection first and replace the live one
// with a server-side rename, so a failed restore never leaves the live
// collection half-written.
func (s *Store) RestoreBackup(ctx context.Context, backupID uuid.UUID) error {
	var doc backupDoc
	err := s.db.Collection(colBackups).
		FindOne(ctx, bson.M{"_id": backupID.String()}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperror.ErrUnknownBackup(backupID.String())
		}
		return fmt.Errorf("read backup: %w", err)
	}

	staging := s.db.Collection(colRestoreStaging)
	if err := staging.Drop(ctx); err != nil {
		return fmt.Errorf("clear staging collection: %w", err)
	}
	if len(doc.Accounts) > 0 {
		docs := make([]any, len(doc.Accounts))
		for i := range doc.Accounts {
			docs[i] = doc.Accounts[i]
		}
		if _, err := staging.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("stage backup accounts: %w", err)
		}
	}

	rename := bson.D{
		{Key: "renameCollection", Value: s.cfg.Database + "." + colRestoreStaging},
		{Key: "to", Value: s.cfg.Database + "." + colAccounts},
		{Key: "dropTarget", Value: true},
	}
	if err := s.client.Database("admin").RunCommand(ctx, rename).Err(); err != nil {
		return fmt.Errorf("swap restored collection: %w", err)
	}

	s.cache.InvalidateAll()
	s.log.Info().
		Str("backup_id", backupID.String()).
		Int("accounts", len(doc.Accounts)).
		Msg("Backup restored")
	return nil
}

func (s *Store) PruneBackups(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.db.Collection(colBackups).DeleteMany(ctx,
		bson.M{"created_at": bson.M{"$lt": cutoff}},
	)
	if err != nil {
		return 0, fmt.Errorf("prune backups: %w", err)
	}
	if res.DeletedCount > 0 {
		s.log.Info().Int64("deleted", res.DeletedCount).Msg("Pruned old backups")
	}
	return res.DeletedCount, nil
}

func (s *Store) fetchAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var doc accountDoc
	err := s.db.Collection(colAccounts).FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return fromAccountDoc(&doc)
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
	doc, err := toEntryDoc(&entry)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(colLedger).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
