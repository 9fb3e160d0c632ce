package main

import (
	"github.com/spf13/cobra"
	"github.com/wichananm65/carehub-backend/internal/database"
	"github.com/wichananm65/carehub-backend/internal/seed"
	"github.com/wichananm65/carehub-backend/internal/server"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo locations and accounts from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if file == "" {
				file = e.cfg.SeedFile
			}
			fixture, err := seed.Load(file)
			if err != nil {
				return err
			}
			if err := database.Migrate(ctx, e.db); err != nil {
				return err
			}

			svc := server.NewServices(e.db, e.cache(ctx), nil, e.log)
			_, err = seed.NewSeeder(svc.Locations, svc.Users, svc.Assistants, e.log).Apply(ctx, fixture)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture path (defaults to SEED_FILE)")
	return cmd
}
