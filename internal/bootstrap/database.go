package bootstrap

import (
	"context"
	"fmt"

	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/store"
)

// initializeDatabase opens the configured database under DBInitTimeout.
// Schema migration runs inside store.New; the bootstrap admin seed runs
// later, once the service layer is up.
func initializeDatabase(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	db, err := store.New(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
