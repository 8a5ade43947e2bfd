package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/persistence/file"
	"github.com/dukex/resumeflow/pkg/persistence/memory"
	"github.com/dukex/resumeflow/pkg/persistence/postgresql"
	"github.com/dukex/resumeflow/pkg/persistence/redis"
)

var ErrUnsupportedStorage = errors.New("unsupported storage provider")

var supportedPersistenceProviders = []string{"memory", "file", "redis", "rediss", "postgres", "postgresql"}

// NewRunStore opens the run store selected by the scheme of storageURL.
// A URL without a scheme is treated as a directory for the file store.
func NewRunStore(ctx context.Context, logger *slog.Logger, storageURL string) (persistence.RunStore, error) {
	provider := parsePersistenceProvider(storageURL)

	logger.InfoContext(ctx, "Opening run store", "provider", provider)

	switch provider {
	case "memory":
		return memory.NewStore(), nil
	case "file":
		return file.NewStore(storageURL), nil
	case "redis", "rediss":
		store, err := redis.NewStore(ctx, logger, storageURL, redis.DefaultTTL)
		if err != nil {
			return nil, err
		}

		return store, nil
	case "postgres", "postgresql":
		store, err := postgresql.NewStore(ctx, logger, storageURL)
		if err != nil {
			return nil, err
		}

		return store, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedStorage, provider, strings.Join(supportedPersistenceProviders, ", "))
	}
}

func parsePersistenceProvider(storageURL string) string {
	provider, _, found := strings.Cut(storageURL, "://")
	if !found {
		return "file"
	}

	return provider
}
