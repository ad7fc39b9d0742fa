package cli

import (
	"fmt"

	"github.com/VitaminP8/forum/internal/config"
	"github.com/VitaminP8/forum/internal/logging"
	"github.com/VitaminP8/forum/internal/storage/database"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var storage string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts, logging.New(cmd.ErrOrStderr(), "text", "info"))
			if err != nil {
				return err
			}
			if storage != "" {
				cfg.Storage = storage
			}
			if cfg.Storage != config.StoragePostgres && cfg.Storage != config.StorageSQLite {
				return fmt.Errorf("migrate needs a database storage, got %q", cfg.Storage)
			}
			log := newLogger(cmd, cfg)

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info(cmd.Context(), "schema migrated", "storage", cfg.Storage)
			return nil
		},
	}

	cmd.Flags().StringVar(&storage, "storage", "", "database backend: postgres or sqlite")
	return cmd
}
