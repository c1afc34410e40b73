package main

import (
	"fmt"
	"time"

	"github.com/BogdanBedrinec/cards/internal/fixtures"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSeedDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Reset the demo account's starter deck",
		Long: `seed-demo deletes the demo account's "Demo" deck and inserts the starter
cards again, due immediately. Other decks of the demo account are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context(), cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			ownerID := fixtures.DemoOwnerID()
			n, err := fixtures.NewSeeder(e.db, e.cards, e.logger).ReseedDemo(cmd.Context(), ownerID, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "seeded %d demo cards\n", n)
			fmt.Fprintf(out, "owner %s (%s)\n", ownerID, fixtures.DemoEmail)
			return nil
		},
	}
}
