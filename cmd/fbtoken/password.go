package main

import (
	"github.com/klipach/fbtoken/config"
	"github.com/klipach/fbtoken/identity"
	"github.com/spf13/cobra"
)

func (a *app) signInWithPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-in-with-password",
		Short: "Get a refresh token for an email/password account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Require(config.EmailKey, config.PasswordKey, config.APIKeyKey); err != nil {
				return err
			}
			res, err := identity.NewClient(a.cfg.APIKey, a.identityOptions()...).
				SignInWithPassword(cmd.Context(), a.cfg.Email, a.cfg.Password)
			if err != nil {
				a.printRejection(err)
				return err
			}
			return a.printResult(res)
		},
	}
	cmd.Flags().String(config.EmailKey, "", "account email")
	cmd.Flags().String(config.PasswordKey, "", "account password, prefer FBTOKEN_PASSWORD")
	addIdentityFlags(cmd)
	return cmd
}
