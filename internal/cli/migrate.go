package cli

import (
	"github.com/spf13/cobra"

	"tenant-portal/internal/db"
)

// MigrateCmd applies the database schema and exits.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			database, err := db.Connect(cfg.DSN)
			if err != nil {
				return err
			}
			defer database.Close()

			return db.Migrate(database, logger)
		},
	}
}
