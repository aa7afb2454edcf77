package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/arena-leaderboard/internal/config"
	"github.com/AdamBeresnev/arena-leaderboard/internal/db"
	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
)

// Open connects the backend named by cfg.Persistence and prepares its schema.
// With persistence turned off it returns a nil store. The returned close
// function is always safe to call.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (snapshot.Store, func(), error) {
	switch cfg.Persistence {
	case config.PersistenceSQLite:
		database, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, func() {}, err
		}
		if err := db.RunMigrations(database.DB); err != nil {
			database.Close()
			return nil, func() {}, fmt.Errorf("run migrations: %w", err)
		}
		return NewSnapshotStore(database), func() { database.Close() }, nil

	case config.PersistencePostgres:
		pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL, int32(cfg.DBPoolMaxConns))
		if err != nil {
			return nil, func() {}, err
		}
		pg := NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		logger.Info("postgres connected", "max_conns", cfg.DBPoolMaxConns)
		return pg, pool.Close, nil
	}

	logger.Warn("persistence not configured, snapshots will not be saved")
	return nil, func() {}, nil
}
