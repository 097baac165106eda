package service

// In-memory ports.Store fake with the same cache interplay as the real
// backends: resident accounts mutate in-memory with a processed ledger
// entry, absent accounts get a single unprocessed entry.

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memSessions struct {
	mu    sync.Mutex
	names map[uuid.UUID]string
}

func newMemSessions() *memSessions {
	return &memSessions{names: map[uuid.UUID]string{}}
}

func (m *memSessions) add(id uuid.UUID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[id] = name
}

func (m *memSessions) remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.names, id)
}

func (m *memSessions) NameByID(id uuid.UUID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.names[id]
	return n, ok
}

func (m *memSessions) IDByName(name string) (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.names {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (m *memSessions) Online() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.names))
	for id := range m.names {
		ids = append(ids, id)
	}
	return ids
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[uuid.UUID][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{messages: map[uuid.UUID][]string{}}
}

func (n *recordingNotifier) Notify(id uuid.UUID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[id] = append(n.messages[id], message)
}

func (n *recordingNotifier) sent(id uuid.UUID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages[id]...)
}

type memStore struct {
	mu       sync.Mutex
	cache    *cache.Accounts
	sessions ports.SessionDirectory
	registry ports.CurrencyRegistry
	durable  map[uuid.UUID]*domain.Account
	entries  []*domain.LedgerEntry
	nextID   int64

	// failure injection
	refuseDeposit map[uuid.UUID]bool
	saveErr       error
}

func newMemStore(c *cache.Accounts, sessions ports.SessionDirectory, registry ports.CurrencyRegistry) *memStore {
	return &memStore{
		cache:         c,
		sessions:      sessions,
		registry:      registry,
		durable:       map[uuid.UUID]*domain.Account{},
		refuseDeposit: map[uuid.UUID]bool{},
	}
}

func (s *memStore) Connect(ctx context.Context) error    { return nil }
func (s *memStore) Disconnect(ctx context.Context) error { return nil }
func (s *memStore) IsConnected(ctx context.Context) bool { return true }

func (s *memStore) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if acc := s.cache.Get(id); acc != nil {
		return acc, nil
	}

	s.mu.Lock()
	stored, ok := s.durable[id]
	s.mu.Unlock()

	var acc *domain.Account
	if ok {
		acc = domain.RestoreAccount(stored.ID(), stored.Name(), stored.Balances())
	} else {
		name, online := s.sessions.NameByID(id)
		if !online {
			return nil, nil
		}
		acc = domain.NewAccount(id, name, s.registry.All())
		if err := s.SaveAccountSync(ctx, acc); err != nil {
			return nil, err
		}
	}

	acc.Fix(s.registry.All())
	s.cache.Put(id, acc)
	return acc, nil
}

func (s *memStore) GetAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	for _, acc := range s.cache.Snapshot() {
		if strings.EqualFold(acc.Name(), name) {
			return acc, nil
		}
	}
	s.mu.Lock()
	var found uuid.UUID
	ok := false
	for id, acc := range s.durable {
		if strings.EqualFold(acc.Name(), name) {
			found, ok = id, true
			break
		}
	}
	s.mu.Unlock()
	if ok {
		return s.GetAccount(ctx, found)
	}
	if id, online := s.sessions.IDByName(name); online {
		return s.GetAccount(ctx, id)
	}
	return nil, nil
}

func (s *memStore) SaveAccount(account *domain.Account) {
	_ = s.SaveAccountSync(context.Background(), account)
}

func (s *memStore) SaveAccountSync(ctx context.Context, account *domain.Account) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durable[account.ID()] = domain.RestoreAccount(account.ID(), account.Name(), account.Balances())
	return nil
}

func (s *memStore) AddBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	refused := s.refuseDeposit[id]
	s.mu.Unlock()
	if refused {
		return false, nil
	}

	if acc := s.cache.Get(id); acc != nil {
		if !acc.Deposit(currency.ID, amount) {
			return false, nil
		}
		s.appendEntry(id, currency.ID, amount, domain.EntryDeposit, true)
		s.SaveAccount(acc)
		return true, nil
	}
	s.appendEntry(id, currency.ID, amount, domain.EntryDeposit, false)
	return true, nil
}

func (s *memStore) RemoveBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	if acc := s.cache.Get(id); acc != nil {
		if !acc.Withdraw(currency.ID, amount) {
			return false, nil
		}
		s.appendEntry(id, currency.ID, amount, domain.EntryWithdraw, true)
		s.SaveAccount(acc)
		return true, nil
	}
	s.appendEntry(id, currency.ID, amount, domain.EntryWithdraw, false)
	return true, nil
}

func (s *memStore) SetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	if acc := s.cache.Get(id); acc != nil {
		acc.SetBalance(currency.ID, amount)
		s.appendEntry(id, currency.ID, amount, domain.EntrySet, true)
		s.SaveAccount(acc)
		return amount, nil
	}
	s.appendEntry(id, currency.ID, amount, domain.EntrySet, false)
	return amount, nil
}

func (s *memStore) GetBalance(ctx context.Context, id uuid.UUID, currency domain.Currency) (decimal.Decimal, error) {
	if acc := s.cache.Get(id); acc != nil {
		v, _ := acc.Balance(currency.ID)
		return v, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.durable[id]
	if !ok {
		return decimal.Zero, apperror.ErrUnknownAccount(id.String())
	}
	v, ok := acc.Balance(currency.ID)
	if !ok {
		return currency.DefaultBalance, nil
	}
	return v, nil
}

func (s *memStore) HasEnoughBalance(ctx context.Context, id uuid.UUID, currency domain.Currency, amount decimal.Decimal) (bool, error) {
	v, err := s.GetBalance(ctx, id, currency)
	if err != nil {
		return false, err
	}
	return v.GreaterThanOrEqual(amount), nil
}

func (s *memStore) TopBalances(ctx context.Context, currency domain.Currency, page, pageSize int) ([]*domain.Account, error) {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	all := make([]*domain.Account, 0, len(s.durable))
	for id, acc := range s.durable {
		if cached := s.cache.Get(id); cached != nil {
			acc = cached
		}
		all = append(all, acc)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		bi, _ := all[i].Balance(currency.ID)
		bj, _ := all[j].Balance(currency.ID)
		if !bi.Equal(bj) {
			return bi.GreaterThan(bj)
		}
		return all[i].Name() < all[j].Name()
	})

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + pageSize + 1
	if end > len(all) {
		end = len(all)
	}
	out := all[offset:end]
	for i, acc := range out {
		acc.SetRank(int64(offset + i + 1))
	}
	return out, nil
}

func (s *memStore) ExistsAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.cache.Get(id) != nil {
		return true, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.durable[id]
	return ok, nil
}

func (s *memStore) ExistsAccountName(ctx context.Context, name string) (bool, error) {
	acc, err := s.GetAccountByName(ctx, name)
	if err != nil {
		return false, err
	}
	return acc != nil, nil
}

func (s *memStore) ListAccounts(ctx context.Context, page, pageSize int) ([]*domain.Account, error) {
	s.mu.Lock()
	all := make([]*domain.Account, 0, len(s.durable))
	for _, acc := range s.durable {
		all = append(all, acc)
	}
	s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + pageSize + 1
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memStore) ListLedgerEntries(ctx context.Context, id uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.LedgerEntry{}
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].AccountID == id {
			out = append(out, *s.entries[i])
		}
	}
	return out, nil
}

func (s *memStore) ClaimNextEntry(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.AccountID == id && !e.Processed {
			e.Processed = true
			claimed := *e
			return &claimed, nil
		}
	}
	return nil, nil
}

func (s *memStore) ReleaseEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == entry.ID {
			e.Processed = false
			return nil
		}
	}
	return nil
}

func (s *memStore) CreateBackup(ctx context.Context) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s *memStore) RestoreBackup(ctx context.Context, backupID uuid.UUID) error {
	return nil
}

func (s *memStore) PruneBackups(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

func (s *memStore) appendEntry(id uuid.UUID, currencyID string, amount decimal.Decimal, kind domain.EntryKind, processed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry := domain.NewLedgerEntry(id, currencyID, amount, kind, processed)
	entry.ID = s.nextID
	s.entries = append(s.entries, &entry)
}

// pendingFor counts unprocessed entries for an account.
func (s *memStore) pendingFor(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.AccountID == id && !e.Processed {
			n++
		}
	}
	return n
}

var _ ports.Store = (*memStore)(nil)
