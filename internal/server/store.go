package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/moneyon/moneyon_server/internal/config"
	"github.com/moneyon/moneyon_server/internal/identity"
	"github.com/moneyon/moneyon_server/internal/infra"
)

// CloseFunc releases a store connection.
type CloseFunc func(ctx context.Context) error

// OpenUserStore connects the user store selected by cfg.StoreDriver and
// makes sure its unique indexes exist.
func OpenUserStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (identity.Repository, CloseFunc, error) {
	var (
		repo    identity.Repository
		closeFn CloseFunc
	)
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := infra.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		repo = identity.NewMongoRepository(client, cfg.MongoDatabase)
		closeFn = client.Disconnect
	case config.StorePostgres:
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo = identity.NewPostgresRepository(pool)
		closeFn = func(context.Context) error {
			pool.Close()
			return nil
		}
	case config.StoreMemory:
		logger.Warn("using in-memory user store, data is lost on restart")
		repo = identity.NewMemoryRepository()
		closeFn = func(context.Context) error { return nil }
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = closeFn(context.Background())
		return nil, nil, err
	}
	logger.Info("user store ready", slog.String("driver", cfg.StoreDriver))
	return repo, closeFn, nil
}
