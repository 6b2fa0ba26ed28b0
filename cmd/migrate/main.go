package main

import (
	"errors"
	"os"

	"phonecase/internal/audit"
	"phonecase/internal/config"
	"phonecase/pkg/logger"

	"github.com/spf13/cobra"
)

// migrate applies or rolls back the reconcile audit schema.
func main() {
	log := logger.New(os.Getenv("APP_ENV"))

	root := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Run audit store migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.AuditStoreEnabled() {
				return errors.New("DB_HOST is not set")
			}
			if err := audit.Migrate(cfg.PostgresURL(), args[0]); err != nil {
				return err
			}
			log.Info("migration applied", "direction", args[0])
			return nil
		},
	}

	if err := root.Execute(); err != nil {
		log.Error("migrate command failed", "err", err)
		os.Exit(1)
	}
}
