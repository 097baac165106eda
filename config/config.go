package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Backup    BackupConfig    `mapstructure:"backup"`
	Workers   WorkerConfig    `mapstructure:"workers"`
	Economy   EconomyConfig   `mapstructure:"economy"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Kind     string         `mapstructure:"kind"` // flatfile, postgres, mongo
	FlatFile FlatFileConfig `mapstructure:"flatfile"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
}

type FlatFileConfig struct {
	Dir string `mapstructure:"dir"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// CacheConfig tunes the in-memory account cache.
type CacheConfig struct {
	MaxSize       int           `mapstructure:"max_size"`
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	FlushInterval time.Duration `mapstructure:"flush_interval"` // periodic full-cache flush; 0 disables
}

type ReconcileConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type BackupConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Retention time.Duration `mapstructure:"retention"`
}

type WorkerConfig struct {
	Size  int `mapstructure:"size"`
	Queue int `mapstructure:"queue"`
}

// EconomyConfig holds currency definitions and mutation policy.
type EconomyConfig struct {
	FallbackToPrimary bool             `mapstructure:"fallback_to_primary"`
	Notifications     bool             `mapstructure:"notifications"`
	Currencies        []CurrencyConfig `mapstructure:"currencies"`
}

// CurrencyConfig is one currency definition. An empty Currencies list makes
// the registry seed its two built-in defaults.
type CurrencyConfig struct {
	ID             string   `mapstructure:"id"`
	Aliases        []string `mapstructure:"aliases"`
	Decimals       uint8    `mapstructure:"decimals"`
	Symbol         string   `mapstructure:"symbol"`
	Primary        bool     `mapstructure:"primary"`
	Transferable   bool     `mapstructure:"transferable"`
	DefaultBalance string   `mapstructure:"default_balance"`
	Format         string   `mapstructure:"format"`
	Singular       string   `mapstructure:"singular"`
	Plural         string   `mapstructure:"plural"`
}

// DefaultBalanceDecimal parses the configured default balance, falling back to zero.
func (c CurrencyConfig) DefaultBalanceDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.DefaultBalance)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: UE_ (UltraEconomy).
// Nested keys use underscore: UE_STORAGE_KIND, UE_CACHE_MAX_SIZE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.kind", "flatfile")
	v.SetDefault("storage.flatfile.dir", "data/accounts")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "postgres")
	v.SetDefault("storage.postgres.password", "postgres")
	v.SetDefault("storage.postgres.dbname", "ultraeconomy")
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.max_conns", 20)
	v.SetDefault("storage.postgres.min_conns", 5)
	v.SetDefault("storage.postgres.conn_max_lifetime", "30m")
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "ultraeconomy")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.idle_ttl", "1m")
	v.SetDefault("cache.sweep_interval", "10s")
	v.SetDefault("cache.flush_interval", "5m")
	v.SetDefault("reconcile.interval", "2s")
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", "6h")
	v.SetDefault("backup.retention", "168h")
	v.SetDefault("workers.size", 4)
	v.SetDefault("workers.queue", 256)
	v.SetDefault("economy.fallback_to_primary", false)
	v.SetDefault("economy.notifications", true)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: UE_STORAGE_KIND -> storage.kind
	v.SetEnvPrefix("UE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
