// Package backend opens the ledger implementation selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/repository"
	"github.com/mamadbah2/stocktake/internal/repository/memory"
	"github.com/mamadbah2/stocktake/internal/repository/mongodb"
	"github.com/mamadbah2/stocktake/internal/repository/postgrest"
	"github.com/mamadbah2/stocktake/internal/repository/sqlstore"
)

// Open connects to the configured ledger backend.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (repository.Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory ledger, counts are lost on restart")
		return memory.NewLedger(), nil
	case config.DriverSQLite:
		ledger, err := sqlstore.OpenSQLite(cfg.SQLite.Path, logger.Named("repo.sqlite"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		return ledger, nil
	case config.DriverMySQL:
		ledger, err := sqlstore.OpenMySQL(cfg.MySQL.DSN, logger.Named("repo.mysql"))
		if err != nil {
			return nil, fmt.Errorf("open mysql ledger: %w", err)
		}
		return ledger, nil
	case config.DriverMongoDB:
		ledger, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("repo.mongodb"))
		if err != nil {
			return nil, fmt.Errorf("open mongodb ledger: %w", err)
		}
		return ledger, nil
	case config.DriverSupabase:
		ledger, err := postgrest.NewLedger(ctx, cfg.Supabase, logger.Named("repo.supabase"))
		if err != nil {
			return nil, fmt.Errorf("open supabase ledger: %w", err)
		}
		return ledger, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
