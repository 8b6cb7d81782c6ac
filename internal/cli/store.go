package cli

import (
	"context"
	"fmt"

	"github.com/voltlab/gridclosure/pkg/store"
	"github.com/voltlab/gridclosure/pkg/store/memory"
	"github.com/voltlab/gridclosure/pkg/store/mongodb"
	"github.com/voltlab/gridclosure/pkg/store/postgres"
)

// openStore connects the configured persistence backend.
func openStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return memory.New(), nil
	case BackendPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	case BackendMongoDB:
		return mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store backend %q (must be one of: postgres, mongodb, memory)", cfg.Backend)
	}
}
