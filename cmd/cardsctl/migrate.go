package main

import (
	"fmt"

	"github.com/BogdanBedrinec/cards/internal/platform/migrations"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withRunner := func(run func(cmd *cobra.Command, runner *migrations.Runner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			runner, err := migrations.NewRunner(e.db, e.cfg.Database.Driver, e.logger)
			if err != nil {
				return err
			}
			return run(cmd, runner)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withRunner(func(cmd *cobra.Command, runner *migrations.Runner) error {
				if err := runner.Up(cmd.Context()); err != nil {
					return err
				}
				return printVersion(cmd, runner)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withRunner(func(cmd *cobra.Command, runner *migrations.Runner) error {
				if err := runner.Down(cmd.Context()); err != nil {
					return err
				}
				return printVersion(cmd, runner)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: withRunner(func(cmd *cobra.Command, runner *migrations.Runner) error {
				statuses, err := runner.Status(cmd.Context())
				if err != nil {
					return err
				}

				applied := color.New(color.FgGreen).SprintFunc()
				pending := color.New(color.FgYellow).SprintFunc()
				out := cmd.OutOrStdout()
				for _, s := range statuses {
					state := pending("pending")
					if s.Applied {
						state = applied("applied")
					}
					fmt.Fprintf(out, "%05d  %-8s  %s\n", s.Version, state, s.Path)
				}
				return nil
			}),
		},
	)

	return cmd
}

func printVersion(cmd *cobra.Command, runner *migrations.Runner) error {
	version, err := runner.Version(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %s\n", color.New(color.Bold).Sprint(version))
	return nil
}
