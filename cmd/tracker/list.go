package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/observability"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			m, err := env.loadManager(cmd.Context())
			if err != nil {
				return err
			}

			observability.NewPrinter(cmd.OutOrStdout()).PrintApplications(m.Filter(search), search)
			if skipped := m.Skipped(); skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: skipped %d malformed record(s)\n", skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show applications whose company or position contains this text")
	return cmd
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show application counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			m, err := env.loadManager(cmd.Context())
			if err != nil {
				return err
			}

			observability.NewPrinter(cmd.OutOrStdout()).PrintStatistics(m.Statistics())
			return nil
		},
	}
}
