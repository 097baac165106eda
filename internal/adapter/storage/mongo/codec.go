package mongo

import (
	"fmt"
	"strings"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// accountDoc is the persisted account shape. Balances are stored as
// Decimal128 so range queries and sorts stay numeric, not lexical.
type accountDoc struct {
	ID        string                     `bson:"_id"`
	Name      string                     `bson:"name"`
	NameLower string                     `bson:"name_lower"`
	Balances  map[string]bson.Decimal128 `bson:"balances"`
}

type entryDoc struct {
	ID         bson.ObjectID   `bson:"_id,omitempty"`
	AccountID  string          `bson:"account_uuid"`
	CurrencyID string          `bson:"currency_id"`
	Amount     bson.Decimal128 `bson:"amount"`
	Kind       string          `bson:"kind"`
	Processed  bool            `bson:"processed"`
	CreatedAt  time.Time       `bson:"created_at"`
}

type backupDoc struct {
	ID        string       `bson:"_id"`
	CreatedAt time.Time    `bson:"created_at"`
	Accounts  []accountDoc `bson:"accounts"`
}

func toAccountDoc(account *domain.Account) (*accountDoc, error) {
	balances := account.Balances()
	doc := &accountDoc{
		ID:        account.ID().String(),
		Name:      account.Name(),
		NameLower: strings.ToLower(account.Name()),
		Balances:  make(map[string]bson.Decimal128, len(balances)),
	}
	for currencyID, amount := range balances {
		d128, err := bson.ParseDecimal128(amount.String())
		if err != nil {
			return nil, fmt.Errorf("encode balance %s: %w", currencyID, err)
		}
		doc.Balances[currencyID] = d128
	}
	return doc, nil
}

func fromAccountDoc(doc *accountDoc) (*domain.Account, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed account id %q: %w", doc.ID, err)
	}
	balances := make(map[string]decimal.Decimal, len(doc.Balances))
	for currencyID, d128 := range doc.Balances {
		amount, err := decimal.NewFromString(d128.String())
		if err != nil {
			return nil, fmt.Errorf("decode balance %s: %w", currencyID, err)
		}
		balances[currencyID] = amount
	}
	return domain.RestoreAccount(id, doc.Name, balances), nil
}

func toEntryDoc(entry *domain.LedgerEntry) (*entryDoc, error) {
	amount, err := bson.ParseDecimal128(entry.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("encode entry amount: %w", err)
	}
	return &entryDoc{
		ID:         bson.NewObjectID(),
		AccountID:  entry.AccountID.String(),
		CurrencyID: entry.CurrencyID,
		Amount:     amount,
		Kind:       string(entry.Kind),
		Processed:  entry.Processed,
		CreatedAt:  entry.Timestamp,
	}, nil
}

func fromEntryDoc(doc *entryDoc) (*domain.LedgerEntry, error) {
	accountID, err := uuid.Parse(doc.AccountID)
	if err != nil {
		return nil, fmt.Errorf("malformed entry account id %q: %w", doc.AccountID, err)
	}
	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("decode entry amount: %w", err)
	}
	return &domain.LedgerEntry{
		Ref:        doc.ID.Hex(),
		AccountID:  accountID,
		CurrencyID: doc.CurrencyID,
		Amount:     amount,
		Kind:       domain.EntryKind(doc.Kind),
		Processed:  doc.Processed,
		Timestamp:  doc.CreatedAt,
	}, nil
}
