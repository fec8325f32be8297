package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"veridex/internal/jwtauth"
	"veridex/internal/platform/config"
	"veridex/pkg/secrets"
)

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTokenIssueCommand())
	cmd.AddCommand(newTokenKeyCommand())

	return cmd
}

func newTokenIssueCommand() *cobra.Command {
	var clientID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access token signed with the configured key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			svc := jwtauth.NewService(cfg.JWTSigningKey, "veridex", "veridex-api")
			token, err := svc.GenerateAccessToken(uuid.New(), clientID, ttl)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "cli", "Client identifier embedded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}

func newTokenKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new-key",
		Short: "Generate a fresh signing key for VERIDEX_JWT_SIGNING_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secrets.Generate()
			if err != nil {
				return err
			}
			cmd.Println(key)
			return nil
		},
	}
}
