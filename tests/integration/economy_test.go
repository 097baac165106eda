package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sharkz-dev/UltraEconomy/config"
	httpHandler "github.com/sharkz-dev/UltraEconomy/internal/adapter/http/handler"
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/session"
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/storage/flatfile"
	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/domain"
	"github.com/sharkz-dev/UltraEconomy/internal/service"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStack wires the full application against a flatfile backend on an
// in-memory filesystem. Everything between the service API and the bytes
// on disk is real.
type testStack struct {
	fs       afero.Fs
	sessions *session.Directory
	accounts *cache.Accounts
	workers  *worker.Pool
	store    *flatfile.Store
	economy  *service.EconomyServiceImpl
	registry *service.CurrencyRegistry
}

func testCurrencies() []config.CurrencyConfig {
	return []config.CurrencyConfig{
		{
			ID: "gold", Aliases: []string{"coins"}, Decimals: 2, Symbol: "$",
			Primary: true, Transferable: true, DefaultBalance: "100",
			Singular: "Coin", Plural: "Coins",
		},
		{
			ID: "gems", Decimals: 0, Symbol: "◆",
			Transferable: false, DefaultBalance: "0",
			Singular: "Gem", Plural: "Gems",
		},
	}
}

func newTestStack(t *testing.T, fs afero.Fs) *testStack {
	t.Helper()
	log := zerolog.Nop()

	registry := service.NewCurrencyRegistry(false, log)
	require.NoError(t, registry.Load(testCurrencies()))

	sessions := session.NewDirectory(log)
	workers := worker.NewPool(2, 64, log)
	accounts := cache.New(64, time.Minute, time.Hour, log)

	store := flatfile.New(fs, "data/accounts", accounts, sessions, registry, workers, log)
	require.NoError(t, store.Connect(context.Background()))
	accounts.SetWriteBack(func(acc *domain.Account) {
		_ = store.SaveAccountSync(context.Background(), acc)
	})

	economy := service.NewEconomyService(
		store, registry, accounts, sessions, session.NewLogNotifier(log), workers, false, log,
	)

	t.Cleanup(func() { _ = workers.Shutdown(5 * time.Second) })

	return &testStack{
		fs: fs, sessions: sessions, accounts: accounts, workers: workers,
		store: store, economy: economy, registry: registry,
	}
}

func TestEconomy_EndToEnd(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	stack := newTestStack(t, fs)

	alice, bob := uuid.New(), uuid.New()
	stack.sessions.Connect(alice, "Alice")
	stack.sessions.Connect(bob, "Bob")

	// First touch creates the accounts with default balances.
	accA, err := stack.economy.GetAccount(ctx, alice)
	require.NoError(t, err)
	balance, _ := accA.Balance("gold")
	assert.True(t, balance.Equal(decimal.RequireFromString("100")))

	_, err = stack.economy.GetAccount(ctx, bob)
	require.NoError(t, err)

	// Alice pays Bob 40 gold.
	require.NoError(t, stack.economy.Transfer(ctx, alice, bob, "gold", decimal.RequireFromString("40")))

	got, err := stack.economy.GetBalance(ctx, alice, "gold")
	require.NoError(t, err)
	assert.Equal(t, "60", got.String())

	got, err = stack.economy.GetBalance(ctx, bob, "coins") // alias resolves too
	require.NoError(t, err)
	assert.Equal(t, "140", got.String())

	// An oversized withdraw is refused without touching the balance.
	ok, err := stack.economy.Withdraw(ctx, alice, "gold", decimal.RequireFromString("1000"))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = stack.economy.GetBalance(ctx, alice, "gold")
	require.NoError(t, err)
	assert.Equal(t, "60", got.String())

	// Set overwrites with decimal precision intact.
	newBal, err := stack.economy.SetBalance(ctx, alice, "gold", decimal.RequireFromString("5.50"))
	require.NoError(t, err)
	assert.Equal(t, "5.5", newBal.String())

	// Flush and reopen the same filesystem with a cold stack: balances
	// must survive the round trip through disk.
	require.NoError(t, stack.economy.FlushAll(ctx))
	require.NoError(t, stack.workers.Shutdown(5*time.Second))

	reopened := newTestStack(t, fs)
	reopened.sessions.Connect(alice, "Alice")

	got, err = reopened.economy.GetBalance(ctx, alice, "gold")
	require.NoError(t, err)
	assert.Equal(t, "5.5", got.String())

	got, err = reopened.economy.GetBalance(ctx, bob, "gold")
	require.NoError(t, err)
	assert.Equal(t, "140", got.String())
}

func TestEconomy_DisconnectEvictsAndReloads(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t, afero.NewMemMapFs())

	steve := uuid.New()
	stack.sessions.Connect(steve, "Steve")

	_, err := stack.economy.GetAccount(ctx, steve)
	require.NoError(t, err)

	_, err = stack.economy.Deposit(ctx, steve, "gold", decimal.RequireFromString("25"))
	require.NoError(t, err)

	require.NoError(t, stack.economy.HandleDisconnect(ctx, steve))
	stack.sessions.Disconnect(steve)
	assert.Nil(t, stack.accounts.Get(steve))

	// The account reloads from disk with the deposited balance.
	got, err := stack.economy.GetBalance(ctx, steve, "gold")
	require.NoError(t, err)
	assert.Equal(t, "125", got.String())
}

func TestEconomy_NonTransferableCurrency(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t, afero.NewMemMapFs())

	alice, bob := uuid.New(), uuid.New()
	stack.sessions.Connect(alice, "Alice")
	stack.sessions.Connect(bob, "Bob")

	_, err := stack.economy.Deposit(ctx, alice, "gems", decimal.RequireFromString("5"))
	require.NoError(t, err)

	err = stack.economy.Transfer(ctx, alice, bob, "gems", decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, apperror.ErrNotTransferable(""))
}

func TestEconomy_ReadAPI(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t, afero.NewMemMapFs())

	steve := uuid.New()
	stack.sessions.Connect(steve, "Steve")
	_, err := stack.economy.GetAccount(ctx, steve)
	require.NoError(t, err)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		EconomySvc: stack.economy,
		Reader:     stack.store,
		Registry:   stack.registry,
		Logger:     zerolog.Nop(),
	})

	// Lookup by display name through the real storage path.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/Steve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			UUID     string            `json:"uuid"`
			Balances map[string]string `json:"balances"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, steve.String(), body.Data.UUID)
	assert.Equal(t, "100", body.Data.Balances["gold"])

	// The flatfile backend has no leaderboard.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/top/gold", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
