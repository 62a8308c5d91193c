package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/xavierca1/buyer-leads/internal/config"
	"github.com/xavierca1/buyer-leads/internal/infra/database"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.StorePostgres {
				return errors.New("migrate requires STORE_DRIVER=postgres")
			}

			db, err := database.NewDBConnection(cmd.Context(), cfg.DatabaseURL, database.DefaultPool)
			if err != nil {
				return err
			}
			defer db.Close()

			if status {
				return database.MigrationStatus(cmd.Context(), db)
			}
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Print migration status instead of applying")
	return cmd
}
