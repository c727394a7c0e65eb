package database

import (
	"context"
	"database/sql"

	"github.com/jask/jaskcalc/internal/database/repository"
	"github.com/jask/jaskcalc/internal/solver"
	"github.com/jask/jaskcalc/internal/storage"
)

// SeedDefaults stores the default measurement system and speed mode when a
// database has none. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewKVRepo(db)
	defaults := map[string]string{
		storage.KeyUnits:     string(solver.Metric),
		storage.KeySpeedMode: string(solver.SpeedNormal),
	}
	for k, v := range defaults {
		if err := repo.Insert(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
