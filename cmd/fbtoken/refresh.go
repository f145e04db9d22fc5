package main

import (
	"github.com/klipach/fbtoken"
	"github.com/klipach/fbtoken/config"
	"github.com/spf13/cobra"
)

func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(config.PrivateKeyJSONKey, "j", "", "path to the service account private key JSON file")
	cmd.Flags().StringP(config.DeviceIDKey, "d", "", "subject of the custom token, usually a unique id of the device, user or service")
	cmd.Flags().String(config.ClaimsKey, "", "optional developer claims as a JSON object")
}

func addIdentityFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(config.APIKeyKey, "k", "", "Firebase web API key of the project")
	cmd.Flags().String(config.IdentityURLKey, "", "Identity Toolkit base URL (default https://identitytoolkit.googleapis.com)")
}

func (a *app) getRefreshTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-refresh-token",
		Short: "Exchange a service account key for a Firebase refresh token",
		Long: `Signs a Firebase custom token for --device-id with the service account key,
exchanges it at the Identity Toolkit and prints the refresh token.

If the exchange is rejected the raw response is printed instead and the
command exits with status 2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Require(config.PrivateKeyJSONKey, config.DeviceIDKey, config.APIKeyKey); err != nil {
				return err
			}
			claims, err := a.cfg.DeveloperClaims()
			if err != nil {
				return err
			}

			res, err := fbtoken.GetRefreshToken(cmd.Context(), fbtoken.Request{
				CredentialPath:  a.cfg.PrivateKeyJSON,
				Subject:         a.cfg.DeviceID,
				APIKey:          a.cfg.APIKey,
				DeveloperClaims: claims,
			}, a.identityOptions()...)
			if err != nil {
				a.printRejection(err)
				return err
			}
			return a.printResult(res)
		},
	}
	addCredentialFlags(cmd)
	addIdentityFlags(cmd)
	return cmd
}
