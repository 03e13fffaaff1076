package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/store/postgres"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply database schema migrations",
		Long:  "Apply the embedded schema migrations to the PostgreSQL database. Defaults to up.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			dir, err := postgres.ParseDirection(arg)
			if err != nil {
				return err
			}

			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL not set (set DATABASE_URL environment variable or use --database-url flag)")
			}

			if err := postgres.Migrate(cfg.DatabaseURL, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", dir)
			return nil
		},
	}
}
