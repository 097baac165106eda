package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)

	assert.Equal(t, "flatfile", cfg.Storage.Kind)
	assert.Equal(t, "data/accounts", cfg.Storage.FlatFile.Dir)
	assert.Equal(t, "localhost", cfg.Storage.Postgres.Host)
	assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
	assert.Equal(t, "ultraeconomy", cfg.Storage.Postgres.DBName)
	assert.Equal(t, int32(20), cfg.Storage.Postgres.MaxConns)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Storage.Mongo.URI)

	assert.Equal(t, 1000, cfg.Cache.MaxSize)
	assert.Equal(t, time.Minute, cfg.Cache.IdleTTL)
	assert.Equal(t, 10*time.Second, cfg.Cache.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.Cache.FlushInterval)

	assert.Equal(t, 2*time.Second, cfg.Reconcile.Interval)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 7*24*time.Hour, cfg.Backup.Retention)

	assert.Equal(t, 4, cfg.Workers.Size)
	assert.Equal(t, 256, cfg.Workers.Queue)

	assert.False(t, cfg.Economy.FallbackToPrimary)
	assert.True(t, cfg.Economy.Notifications)
	assert.Empty(t, cfg.Economy.Currencies)

	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  mode: "release"
storage:
  kind: "postgres"
  postgres:
    host: "db.example.com"
    port: 5433
    user: "ledger"
    password: "secret123"
    dbname: "economy"
cache:
  max_size: 250
  idle_ttl: "30s"
reconcile:
  interval: "5s"
economy:
  fallback_to_primary: true
  currencies:
    - id: "gold"
      aliases: ["g", "coins"]
      decimals: 2
      symbol: "⛁"
      primary: true
      transferable: true
      default_balance: "100.00"
    - id: "gems"
      decimals: 0
      symbol: "◆"
      transferable: false
      default_balance: "0"
`)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Kind)
	assert.Equal(t, "db.example.com", cfg.Storage.Postgres.Host)
	assert.Equal(t, 250, cfg.Cache.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.Cache.IdleTTL)
	assert.Equal(t, 5*time.Second, cfg.Reconcile.Interval)
	assert.True(t, cfg.Economy.FallbackToPrimary)

	require.Len(t, cfg.Economy.Currencies, 2)
	gold := cfg.Economy.Currencies[0]
	assert.Equal(t, "gold", gold.ID)
	assert.Equal(t, []string{"g", "coins"}, gold.Aliases)
	assert.True(t, gold.Primary)
	assert.True(t, gold.Transferable)
	assert.True(t, gold.DefaultBalanceDecimal().Equal(decimal.RequireFromString("100.00")))

	gems := cfg.Economy.Currencies[1]
	assert.False(t, gems.Transferable)
	assert.True(t, gems.DefaultBalanceDecimal().IsZero())

	// Defaults still apply for untouched sections.
	assert.Equal(t, 4, cfg.Workers.Size)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("UE_STORAGE_KIND", "mongo")
	t.Setenv("UE_CACHE_MAX_SIZE", "42")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Storage.Kind)
	assert.Equal(t, 42, cfg.Cache.MaxSize)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "localhost", Port: 5432,
		User: "ledger", Password: "pw",
		DBName: "economy", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://ledger:pw@localhost:5432/economy?sslmode=disable", cfg.DSN())
}

func TestCurrencyConfig_DefaultBalanceDecimal(t *testing.T) {
	assert.True(t, CurrencyConfig{DefaultBalance: "12.50"}.DefaultBalanceDecimal().Equal(decimal.RequireFromString("12.5")))
	assert.True(t, CurrencyConfig{DefaultBalance: "garbage"}.DefaultBalanceDecimal().IsZero())
	assert.True(t, CurrencyConfig{}.DefaultBalanceDecimal().IsZero())
}
