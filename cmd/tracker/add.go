package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/tracker"
	"github.com/jonathan/job-tracker/internal/types"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	var (
		draft  types.Draft
		status string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft.Status = types.ApplicationStatus(status)
			if date != "" {
				t, err := time.Parse(tracker.DateLayout, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				draft.DateApplied = &t
			}

			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			m, err := env.loadManager(cmd.Context())
			if err != nil {
				return err
			}

			app, err := m.Add(cmd.Context(), env.identity.OwnerID, draft)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added application %s\n", app.ID)
			observability.NewPrinter(cmd.OutOrStdout()).PrintApplications([]types.Application{app}, "")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&draft.Company, "company", "", "Company name (required)")
	flags.StringVar(&draft.Position, "position", "", "Position title (required)")
	flags.StringVar(&status, "status", "", "Status: applied, interview, offer or rejected (default applied)")
	flags.StringVar(&date, "date", "", "Date applied as YYYY-MM-DD (default today)")
	flags.StringVar(&draft.Location, "location", "", "Location")
	flags.StringVar(&draft.Notes, "notes", "", "Notes")

	for _, name := range []string{"company", "position"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}

func newRemoveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete an application",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			m, err := env.loadManager(cmd.Context())
			if err != nil {
				return err
			}

			if err := m.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed application %s\n", args[0])
			return nil
		},
	}
}
