package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSuffixes are the magnitude suffixes used by short-amount formatting.
var DefaultSuffixes = []string{"", "K", "M", "B", "T"}

// Currency is a named unit of value with its own precision, symbol and
// transferability flag. The ID is the immutable key; aliases are alternative
// tokens accepted by the registry.
type Currency struct {
	ID             string          `json:"id"`
	Aliases        []string        `json:"aliases,omitempty"`
	Decimals       uint8           `json:"decimals"`
	Symbol         string          `json:"symbol"`
	Primary        bool            `json:"primary"`
	Transferable   bool            `json:"transferable"`
	DefaultBalance decimal.Decimal `json:"default_balance"`
	Format         string          `json:"format,omitempty"`   // template: <symbol><amount> <name>
	Singular       string          `json:"singular,omitempty"` // unit name for amount == 1
	Plural         string          `json:"plural,omitempty"`
	Suffixes       []string        `json:"-"`
}

// NewCurrency builds a currency with the template defaults filled in.
func NewCurrency(id string, primary bool, decimals uint8, symbol string) Currency {
	return Currency{
		ID:             id,
		Primary:        primary,
		Transferable:   true,
		Decimals:       decimals,
		Symbol:         symbol,
		DefaultBalance: decimal.Zero,
		Format:         "<symbol><amount> <name>",
		Singular:       "Dollar",
		Plural:         "Dollars",
		Suffixes:       DefaultSuffixes,
	}
}

// FormatAmount renders an amount through the currency's format template.
// Supported placeholders: <symbol>, <amount>, <short_amount>, <name>.
func (c Currency) FormatAmount(v decimal.Decimal) string {
	tpl := c.Format
	if tpl == "" {
		tpl = "<symbol><amount>"
	}
	name := c.Plural
	if v.Equal(decimal.New(1, 0)) {
		name = c.Singular
	}
	r := strings.NewReplacer(
		"<symbol>", c.Symbol,
		"<amount>", c.formatPlain(v),
		"<short_amount>", c.FormatShort(v),
		"<name>", name,
	)
	return strings.TrimSpace(r.Replace(tpl))
}

// FormatShort shortens an amount with K/M/B/T suffixes: 1530000 -> "1.53M".
func (c Currency) FormatShort(v decimal.Decimal) string {
	suffixes := c.Suffixes
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	thousand := decimal.New(1000, 0)
	idx := 0
	for v.Abs().GreaterThanOrEqual(thousand) && idx < len(suffixes)-1 {
		v = v.Div(thousand).Truncate(2)
		idx++
	}
	return trimTrailingZeros(v.StringFixed(2)) + suffixes[idx]
}

// formatPlain renders the amount rounded to the currency's precision with
// thousands grouping on the integer part.
func (c Currency) formatPlain(v decimal.Decimal) string {
	s := trimTrailingZeros(v.StringFixed(int32(c.Decimals)))

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
