package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/accounts"
	"github.com/jonathan/job-tracker/internal/clock"
	"github.com/jonathan/job-tracker/internal/observability"
	"github.com/jonathan/job-tracker/internal/types"
)

func newProfileCmd(opts *globalOptions) *cobra.Command {
	var (
		fullName       string
		university     string
		graduationYear int
		major          string
		phone          string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the owner's profile",
		Long:  "Without flags, print the profile. With any of the field flags, update those fields and print the result.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			userID, err := uuid.Parse(env.identity.OwnerID)
			if err != nil {
				return fmt.Errorf("--owner must be a user ID: %w", err)
			}

			profiles := accounts.NewProfiles(env.store, clock.Real())
			profile, err := profiles.Get(cmd.Context(), userID)
			if err != nil {
				return err
			}
			printer := observability.NewPrinter(cmd.OutOrStdout())

			flags := cmd.Flags()
			changed := false
			for _, name := range []string{"full-name", "university", "graduation-year", "major", "phone"} {
				changed = changed || flags.Changed(name)
			}
			if !changed {
				printer.PrintProfile(profile)
				return nil
			}
			if profile == nil {
				return fmt.Errorf("no profile for %s", userID)
			}

			req := types.UpdateProfileRequest{
				FullName:       profile.FullName,
				University:     profile.University,
				GraduationYear: profile.GraduationYear,
				Major:          profile.Major,
				Phone:          profile.Phone,
			}
			if flags.Changed("full-name") {
				req.FullName = fullName
			}
			if flags.Changed("university") {
				req.University = university
			}
			if flags.Changed("graduation-year") {
				req.GraduationYear = &graduationYear
				if graduationYear == 0 {
					req.GraduationYear = nil
				}
			}
			if flags.Changed("major") {
				req.Major = major
			}
			if flags.Changed("phone") {
				req.Phone = phone
			}

			updated, err := profiles.Update(cmd.Context(), userID, req)
			if err != nil {
				return err
			}
			printer.PrintProfile(updated)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fullName, "full-name", "", "Full name")
	flags.StringVar(&university, "university", "", "University (empty clears it)")
	flags.IntVar(&graduationYear, "graduation-year", 0, "Graduation year, 2000-2050 (0 clears it)")
	flags.StringVar(&major, "major", "", "Major (empty clears it)")
	flags.StringVar(&phone, "phone", "", "Phone (empty clears it)")
	return cmd
}
