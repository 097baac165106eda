// Package storage selects and connects the configured persistence
// backend.
package storage

import (
	"context"
	"fmt"

	"github.com/sharkz-dev/UltraEconomy/config"
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/storage/flatfile"
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/storage/mongo"
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/storage/postgres"
	"github.com/sharkz-dev/UltraEconomy/internal/cache"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"
	"github.com/sharkz-dev/UltraEconomy/internal/worker"
	"github.com/sharkz-dev/UltraEconomy/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	KindFlatFile = "flatfile"
	KindPostgres = "postgres"
	KindMongo    = "mongo"
)

// New builds the backend named by cfg.Kind and connects it. A backend
// that cannot connect is a hard startup error, there is no fallback to
// another kind.
func New(ctx context.Context, cfg config.StorageConfig, accounts *cache.Accounts, sessions ports.SessionDirectory, registry ports.CurrencyRegistry, workers *worker.Pool, log zerolog.Logger) (ports.Store, error) {
	var store ports.Store

	switch cfg.Kind {
	case KindFlatFile:
		store = flatfile.New(afero.NewOsFs(), cfg.FlatFile.Dir, accounts, sessions, registry, workers, log)
	case KindPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, apperror.ErrStorageConnection(KindPostgres, err)
		}
		store = postgres.NewStore(pool, accounts, sessions, registry, workers, log)
	case KindMongo:
		store = mongo.NewStore(cfg.Mongo, accounts, sessions, registry, workers, log)
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown storage kind %q", cfg.Kind))
	}

	if err := store.Connect(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
