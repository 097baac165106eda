// Package dto holds the wire shapes of the read API.
package dto

import (
	"strconv"
	"time"

	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// AccountResponse is the wire shape of one account. Balances are decimal
// strings keyed by currency id.
type AccountResponse struct {
	ID       string            `json:"uuid"`
	Name     string            `json:"name"`
	Rank     int64             `json:"rank,omitempty"`
	Balances map[string]string `json:"balances"`
}

func FromAccount(acc *domain.Account) AccountResponse {
	balances := acc.Balances()
	out := AccountResponse{
		ID:       acc.ID().String(),
		Name:     acc.Name(),
		Rank:     acc.Rank(),
		Balances: make(map[string]string, len(balances)),
	}
	for currencyID, amount := range balances {
		out.Balances[currencyID] = amount.String()
	}
	return out
}

func FromAccounts(accounts []*domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, FromAccount(acc))
	}
	return out
}

// LedgerEntryResponse is the wire shape of one ledger entry.
type LedgerEntryResponse struct {
	ID         int64  `json:"id,omitempty"`
	Ref        string `json:"ref,omitempty"`
	CurrencyID string `json:"currency_id"`
	Amount     string `json:"amount"`
	Kind       string `json:"kind"`
	Processed  bool   `json:"processed"`
	Timestamp  string `json:"timestamp"`
}

func FromLedgerEntries(entries []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			ID:         e.ID,
			Ref:        e.Ref,
			CurrencyID: e.CurrencyID,
			Amount:     e.Amount.String(),
			Kind:       string(e.Kind),
			Processed:  e.Processed,
			Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// Page is a paginated list envelope. HasNext is derived from the
// backends fetching one row past the page size.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

// NewPage trims the look-ahead row and builds the envelope.
func NewPage[T any](items []T, page, pageSize int) Page[T] {
	hasNext := len(items) > pageSize
	if hasNext {
		items = items[:pageSize]
	}
	return Page[T]{Items: items, Page: page, PageSize: pageSize, HasNext: hasNext}
}

// ParsePage reads page/page_size query params with clamped defaults.
func ParsePage(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
