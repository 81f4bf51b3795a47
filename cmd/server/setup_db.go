package main

import (
	"fmt"

	"notes-server/internal/config"
	"notes-server/internal/logger"
	"notes-server/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var setupDBCmd = &cobra.Command{
	Use:   "setup-db",
	Short: "Create the CouchDB database, indexes and views",
	Long:  `Create the database, the owner/created_at Mango index and the per-owner count view. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Server.Env)
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.Database.Driver != config.DriverCouchDB {
			log.Info("nothing to set up", zap.String("driver", cfg.Database.Driver))
			return nil
		}

		store, err := repository.OpenCouch(cmd.Context(), cfg.Database.URL(), cfg.Database.Name)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Setup(cmd.Context()); err != nil {
			return err
		}

		log.Info("database ready", zap.String("database", store.Name()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupDBCmd)
}
