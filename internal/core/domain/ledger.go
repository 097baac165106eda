package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind is the kind of balance mutation a ledger entry records.
type EntryKind string

const (
	EntryDeposit  EntryKind = "DEPOSIT"
	EntryWithdraw EntryKind = "WITHDRAW"
	EntrySet      EntryKind = "SET"
)

// ParseEntryKind validates a stored kind token. Unknown kinds poison the
// entry rather than being coerced.
func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(s) {
	case EntryDeposit, EntryWithdraw, EntrySet:
		return EntryKind(s), nil
	}
	return "", fmt.Errorf("unknown ledger entry kind %q", s)
}

// LedgerEntry is one recorded balance mutation. Processed entries document a
// mutation already applied in-memory; unprocessed entries are deferred
// mutations awaiting reconciliation once their account becomes cache-resident.
type LedgerEntry struct {
	ID         int64           `json:"id,omitempty"`  // relational surrogate key
	Ref        string          `json:"ref,omitempty"` // document-store object id
	AccountID  uuid.UUID       `json:"account_uuid"`
	CurrencyID string          `json:"currency_id"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       EntryKind       `json:"kind"`
	Processed  bool            `json:"processed"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewLedgerEntry stamps a ledger entry with the current time.
func NewLedgerEntry(accountID uuid.UUID, currencyID string, amount decimal.Decimal, kind EntryKind, processed bool) LedgerEntry {
	return LedgerEntry{
		AccountID:  accountID,
		CurrencyID: currencyID,
		Amount:     amount,
		Kind:       kind,
		Processed:  processed,
		Timestamp:  time.Now().UTC(),
	}
}
