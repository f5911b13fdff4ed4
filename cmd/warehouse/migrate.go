package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openPostgres(opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			opts.log.Info("schema applied", zap.String("db_name", opts.cfg.Postgres.DBName))
			return nil
		},
	}
}
