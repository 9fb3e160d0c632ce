package main

import (
	"github.com/spf13/cobra"
	"github.com/wichananm65/carehub-backend/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := database.Migrate(cmd.Context(), e.db); err != nil {
				return err
			}
			e.log.Info("schema is up to date")
			return nil
		},
	}
}
