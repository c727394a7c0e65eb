package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jask/jaskcalc/internal/config"
	"github.com/jask/jaskcalc/internal/database"
	"github.com/jask/jaskcalc/internal/database/repository"
	"github.com/jask/jaskcalc/internal/storage"
	"github.com/jask/jaskcalc/internal/storage/badgerstore"
)

// openStore opens the configured backend and returns it with its closer.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		m := storage.NewMemory()
		return m, m.Close, nil
	case config.BackendBadger:
		bc := badgerstore.DefaultConfig(cfg.BadgerPath)
		bc.Logger = logger
		s, err := badgerstore.Open(bc)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		if err := database.RunMigrations(cfg.SQLitePath); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		if err := database.SeedDefaults(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("seed defaults: %w", err)
		}
		return repository.NewKVRepo(db), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
