package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/transfer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var owner, format string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import cards from a json or csv file (- reads stdin)",
		Long: `Import adds the cards of FILE to the owner's library. Cards whose word,
translation and deck already exist are skipped, so importing the same file
twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseOwner(owner)
			if err != nil {
				return err
			}
			f, err := transfer.ParseFormat(format)
			if err != nil {
				return err
			}

			payload, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			e, err := opts.open(cmd.Context(), cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			svc, err := service.NewTransferService(e.cards, e.logger,
				service.WithLocation(e.cfg.Server.Location()))
			if err != nil {
				return err
			}

			report, err := svc.Import(cmd.Context(), ownerID, f, payload)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen, color.Bold).Fprintln(out, "import finished")
			fmt.Fprintf(out, "  received:   %d\n", report.Received)
			fmt.Fprintf(out, "  unique:     %d\n", report.UniqueInFile)
			fmt.Fprintf(out, "  inserted:   %s\n", color.GreenString("%d", report.Inserted))
			fmt.Fprintf(out, "  duplicates: %s\n", color.YellowString("%d", report.SkippedAsDuplicates))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner UUID the cards belong to")
	cmd.Flags().StringVar(&format, "format", "json", "input format: json or csv")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var owner, format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an owner's cards as json or csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ownerID, err := parseOwner(owner)
			if err != nil {
				return err
			}
			f, err := transfer.ParseFormat(format)
			if err != nil {
				return err
			}

			e, err := opts.open(cmd.Context(), cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			svc, err := service.NewTransferService(e.cards, e.logger)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}

			if err := svc.Export(cmd.Context(), ownerID, f, w); err != nil {
				return err
			}
			if output != "" && output != "-" {
				color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "exported to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner UUID whose cards are exported")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
