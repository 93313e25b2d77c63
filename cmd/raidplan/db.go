package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phanxgames/raidplan/internal/config"
	"github.com/phanxgames/raidplan/internal/logger"
	"github.com/phanxgames/raidplan/internal/store"
	"github.com/phanxgames/raidplan/internal/store/postgres"
	"github.com/phanxgames/raidplan/internal/store/sqlite"
)

// loadEnv loads the project config, tolerating a missing file, and builds
// the logger it describes.
func loadEnv() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath, true)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, error) {
	dsn := cfg.Store.DSN
	var (
		st  store.Store
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		st, err = sqlite.New(ctx, dsn, log)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		st, err = postgres.New(ctx, dsn, log)
	default:
		return nil, fmt.Errorf("unsupported store dsn: %s", dsn)
	}
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close(ctx)
		return nil, err
	}
	return st, nil
}
