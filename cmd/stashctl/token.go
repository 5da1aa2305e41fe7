package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	token := &cobra.Command{
		Use:   "token",
		Short: "Access token helpers",
	}

	var userFlag string
	mint := &cobra.Command{
		Use:   "mint",
		Short: "Mint a bearer token for a user (dev environments only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.App.IsProd() {
				return fmt.Errorf("token mint is disabled in prod")
			}
			userID := uuid.New()
			if userFlag != "" {
				parsed, err := uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				userID = parsed
			}
			signed, err := auth.MintAccessToken(a.cfg.JWT, time.Now(), auth.AccessTokenPayload{UserID: userID})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	mint.Flags().StringVar(&userFlag, "user", "", "user id to embed (random when empty)")

	token.AddCommand(mint)
	return token
}
