package domain

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is one player's balance record across all currencies. All balance
// mutations on an Account are serialized by its internal lock; the cache hands
// out the same *Account to every caller so per-account read-modify-write is
// atomic regardless of which request source issued the mutation.
type Account struct {
	id   uuid.UUID
	name string
	rank int64 // transient, only meaningful after a leaderboard query

	mu       sync.RWMutex
	balances map[string]decimal.Decimal
}

// NewAccount creates a fresh account with every currency seeded at its
// default balance.
func NewAccount(id uuid.UUID, name string, currencies []Currency) *Account {
	a := &Account{
		id:       id,
		name:     name,
		balances: make(map[string]decimal.Decimal, len(currencies)),
	}
	for _, c := range currencies {
		a.balances[c.ID] = c.DefaultBalance
	}
	return a
}

// RestoreAccount rebuilds an account from persisted state. Callers should
// Fix it against the registry so currencies added since the save get their
// defaults.
func RestoreAccount(id uuid.UUID, name string, balances map[string]decimal.Decimal) *Account {
	a := &Account{
		id:       id,
		name:     name,
		balances: make(map[string]decimal.Decimal, len(balances)),
	}
	for k, v := range balances {
		a.balances[k] = v
	}
	return a
}

func (a *Account) ID() uuid.UUID { return a.id }

func (a *Account) Name() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.name
}

// SetName updates the display name, e.g. when a player reconnects after a
// rename.
func (a *Account) SetName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.name = name
}

func (a *Account) Rank() int64        { return a.rank }
func (a *Account) SetRank(rank int64) { a.rank = rank }

// Balance returns the balance for a currency id. The second return is false
// when the currency has never been seeded on this account.
func (a *Account) Balance(currencyID string) (decimal.Decimal, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.balances[currencyID]
	return v, ok
}

// Deposit adds amount to the currency balance.
func (a *Account) Deposit(currencyID string, amount decimal.Decimal) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balances[currencyID] = a.balances[currencyID].Add(amount)
	return true
}

// Withdraw subtracts amount from the currency balance. It fails without
// mutating when funds are insufficient; a balance never goes negative.
func (a *Account) Withdraw(currencyID string, amount decimal.Decimal) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	current := a.balances[currencyID]
	if current.LessThan(amount) {
		return false
	}
	a.balances[currencyID] = current.Sub(amount)
	return true
}

// SetBalance overwrites the currency balance and returns the new value.
func (a *Account) SetBalance(currencyID string, amount decimal.Decimal) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balances[currencyID] = amount
	return amount
}

// HasEnough reports whether the balance covers amount.
func (a *Account) HasEnough(currencyID string, amount decimal.Decimal) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balances[currencyID].GreaterThanOrEqual(amount)
}

// Fix seeds the default balance for every registry currency missing from the
// account. It never drops or overwrites existing balances, so repeated calls
// are idempotent.
func (a *Account) Fix(currencies []Currency) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range currencies {
		if _, ok := a.balances[c.ID]; !ok {
			a.balances[c.ID] = c.DefaultBalance
		}
	}
}

// Balances returns a snapshot copy of the balance map.
func (a *Account) Balances() map[string]decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(a.balances))
	for k, v := range a.balances {
		out[k] = v
	}
	return out
}

// accountJSON is the persisted flat-file layout: identity, display name and
// a currency-id -> amount map.
type accountJSON struct {
	UUID     string                     `json:"uuid"`
	Name     string                     `json:"player_name"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{
		UUID:     a.id.String(),
		Name:     a.Name(),
		Balances: a.Balances(),
	})
}

func (a *Account) UnmarshalJSON(data []byte) error {
	var doc accountJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	id, err := uuid.Parse(doc.UUID)
	if err != nil {
		return err
	}
	a.id = id
	a.name = doc.Name
	a.balances = make(map[string]decimal.Decimal, len(doc.Balances))
	for k, v := range doc.Balances {
		a.balances[k] = v
	}
	return nil
}
