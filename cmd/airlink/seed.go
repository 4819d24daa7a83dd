package main

import (
	"github.com/spf13/cobra"

	"github.com/AirLinkPros/airlink-backend/internal/auth"
	"github.com/AirLinkPros/airlink-backend/internal/config"
	"github.com/AirLinkPros/airlink-backend/internal/db"
	"github.com/AirLinkPros/airlink-backend/internal/seeds"
)

func newSeedCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the demo accounts in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := db.Connect(cfg.DatabaseURL); err != nil {
				return err
			}
			defer db.Close()

			auth.Init()
			return seeds.SeedAll(cmd.Context(), auth.NewGormStore(db.DB), password)
		},
	}
	cmd.Flags().StringVar(&password, "password", seeds.DefaultPassword, "password for every demo account")
	return cmd
}
