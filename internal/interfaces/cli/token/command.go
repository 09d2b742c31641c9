package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"singmerge/internal/infrastructure/auth"
	"singmerge/internal/interfaces/cli/bootstrap"
)

type options struct {
	bootstrap.Flags
	subject string
	scopes  []string
	ttl     time.Duration
}

func NewCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for the publish endpoint",
		Long:  `Sign an HS256 bearer token with auth.jwt_secret. Pass it as "Authorization: Bearer <token>".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o)
		},
	}

	o.Bind(cmd)
	cmd.Flags().StringVarP(&o.subject, "subject", "s", "cli", "Token subject, shown in request logs")
	cmd.Flags().StringSliceVar(&o.scopes, "scope", []string{auth.ScopePublish}, "Scopes granted by the token")
	cmd.Flags().DurationVar(&o.ttl, "ttl", 30*24*time.Hour, "Token lifetime, 0 for no expiry")

	return cmd
}

func run(cmd *cobra.Command, o *options) error {
	cfg, _, err := o.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}

	token, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Generate(o.subject, o.scopes, o.ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
