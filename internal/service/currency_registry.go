package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/sharkz-dev/UltraEconomy/config"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/rs/zerolog"
)

// CurrencyRegistry resolves currency tokens to definitions. The token map
// holds every currency id and declared alias; tokens that resolve through
// the alias scan are memoized into the map so repeat lookups stay O(1).
type CurrencyRegistry struct {
	mu         sync.RWMutex
	tokens     map[string]domain.Currency
	currencies []domain.Currency
	primary    domain.Currency
	fallback   bool
	log        zerolog.Logger
}

func NewCurrencyRegistry(fallbackToPrimary bool, log zerolog.Logger) *CurrencyRegistry {
	return &CurrencyRegistry{
		tokens:   make(map[string]domain.Currency),
		fallback: fallbackToPrimary,
		log:      log.With().Str("component", "currency_registry").Logger(),
	}
}

// Load replaces the registry contents from configuration. An empty
// definition list seeds the two built-in defaults. Alias collisions and
// a missing or duplicated primary flag are load-time errors.
func (r *CurrencyRegistry) Load(defs []config.CurrencyConfig) error {
	if len(defs) == 0 {
		defs = defaultCurrencyDefs()
	}

	tokens := make(map[string]domain.Currency, len(defs)*2)
	currencies := make([]domain.Currency, 0, len(defs))
	var primary domain.Currency
	primarySeen := false

	for _, def := range defs {
		cur := currencyFromConfig(def)
		id := strings.ToLower(cur.ID)
		if id == "" {
			return apperror.Validation("currency id must not be empty")
		}
		if _, exists := tokens[id]; exists {
			return apperror.ErrAliasCollision(id, id)
		}
		tokens[id] = cur

		if cur.Primary {
			if primarySeen {
				return apperror.Validation("more than one currency is flagged primary")
			}
			primary = cur
			primarySeen = true
		}
		currencies = append(currencies, cur)
	}

	// Aliases registered in a second pass so a collision names the id
	// that owns the token regardless of definition order.
	for _, cur := range currencies {
		for _, alias := range cur.Aliases {
			token := strings.ToLower(alias)
			if token == "" {
				continue
			}
			if owner, exists := tokens[token]; exists && owner.ID != cur.ID {
				return apperror.ErrAliasCollision(token, owner.ID)
			}
			tokens[token] = cur
		}
	}

	if !primarySeen {
		return apperror.ErrNoPrimaryCurrency()
	}

	sort.Slice(currencies, func(i, j int) bool { return currencies[i].ID < currencies[j].ID })

	r.mu.Lock()
	r.tokens = tokens
	r.currencies = currencies
	r.primary = primary
	r.mu.Unlock()

	r.log.Info().
		Int("currencies", len(currencies)).
		Str("primary", primary.ID).
		Msg("Currency registry loaded")
	return nil
}

// Resolve maps a token (currency id or alias, case-insensitive) to its
// definition. A miss falls back to the primary currency when the fallback
// policy is enabled, otherwise it is an UnknownCurrency error.
func (r *CurrencyRegistry) Resolve(token string) (domain.Currency, error) {
	key := strings.ToLower(strings.TrimSpace(token))

	r.mu.RLock()
	cur, ok := r.tokens[key]
	r.mu.RUnlock()
	if ok {
		return cur, nil
	}

	// Alias scan covers tokens added by currencies whose alias list uses
	// mixed case or padding in config files.
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok = r.tokens[key]; ok {
		return cur, nil
	}
	for _, c := range r.currencies {
		for _, alias := range c.Aliases {
			if strings.EqualFold(alias, key) {
				r.tokens[key] = c
				return c, nil
			}
		}
	}

	if r.fallback {
		return r.primary, nil
	}
	return domain.Currency{}, apperror.ErrUnknownCurrency(token)
}

func (r *CurrencyRegistry) Primary() domain.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primary
}

// All returns the loaded currencies ordered by id.
func (r *CurrencyRegistry) All() []domain.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Currency, len(r.currencies))
	copy(out, r.currencies)
	return out
}

func currencyFromConfig(def config.CurrencyConfig) domain.Currency {
	cur := domain.NewCurrency(strings.ToLower(def.ID), def.Primary, def.Decimals, def.Symbol)
	cur.Aliases = def.Aliases
	cur.Transferable = def.Transferable
	cur.DefaultBalance = def.DefaultBalanceDecimal()
	if def.Format != "" {
		cur.Format = def.Format
	}
	if def.Singular != "" {
		cur.Singular = def.Singular
	}
	if def.Plural != "" {
		cur.Plural = def.Plural
	}
	return cur
}

func defaultCurrencyDefs() []config.CurrencyConfig {
	return []config.CurrencyConfig{
		{ID: "dollar", Symbol: "$", Primary: true, Transferable: true, Decimals: 2},
		{ID: "euro", Symbol: "€", Transferable: true, Decimals: 2},
	}
}
