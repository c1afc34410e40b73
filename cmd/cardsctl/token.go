package main

import (
	"fmt"

	"github.com/BogdanBedrinec/cards/internal/fixtures"
	"github.com/BogdanBedrinec/cards/internal/service/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var owner string
	var demo bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local use",
		Long: `token signs an access token with the configured JWT secret. Pass the
output as "Authorization: Bearer <token>" to the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ownerID := fixtures.DemoOwnerID()
			if !demo {
				var err error
				if ownerID, err = parseOwner(owner); err != nil {
					return err
				}
			}

			cfg, _, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}

			token, err := jwtService.GenerateToken(cmd.Context(), ownerID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner UUID the token authenticates")
	cmd.Flags().BoolVar(&demo, "demo", false, "issue the token for the demo account")
	cmd.MarkFlagsMutuallyExclusive("owner", "demo")
	return cmd
}
