package main

import (
	"context"

	"xiuh/internal/adapters/storage/postgres"
	"xiuh/internal/adapters/storage/sqlite"
	"xiuh/internal/platform/config"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema del backend SQL configurado",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			newLogger(cfg).Info("schema applied", map[string]any{"backend": string(cfg.Backend)})
			return nil
		},
	}
}

func migrate(ctx context.Context, cfg config.Config) error {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return postgres.Migrate(ctx, db)
	case config.BackendSQLite:
		// Open ya migra.
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		return db.Close()
	default:
		return errors.Errorf("migrate: backend %q has no schema", cfg.Backend)
	}
}
