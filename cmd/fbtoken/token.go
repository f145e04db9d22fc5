package main

import (
	"fmt"

	"github.com/klipach/fbtoken/auth"
	"github.com/klipach/fbtoken/config"
	"github.com/klipach/fbtoken/credential"
	"github.com/spf13/cobra"
)

type assertionOutput struct {
	Token string `json:"token"`
	auth.Assertion
}

func (a *app) printAssertion(as auth.Assertion) error {
	if a.cfg.Output == config.OutputJSON {
		return a.printJSON(assertionOutput{Token: as.Token, Assertion: as})
	}
	_, err := fmt.Fprintln(a.stdout, as.Token)
	return err
}

func (a *app) customTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom-token",
		Short: "Sign a Firebase custom token without exchanging it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Require(config.PrivateKeyJSONKey, config.DeviceIDKey); err != nil {
				return err
			}
			claims, err := a.cfg.DeveloperClaims()
			if err != nil {
				return err
			}
			cred, err := credential.Load(a.cfg.PrivateKeyJSON)
			if err != nil {
				return err
			}

			var opts []auth.Option
			if len(claims) > 0 {
				opts = append(opts, auth.WithDeveloperClaims(claims))
			}
			as, err := auth.Mint(cmd.Context(), cred, a.cfg.DeviceID, opts...)
			if err != nil {
				return err
			}
			return a.printAssertion(as)
		},
	}
	addCredentialFlags(cmd)
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <custom-token>",
		Short: "Print the claims of a custom token without verifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			as, err := auth.DecodeAssertion(args[0])
			if err != nil {
				return err
			}
			return a.printJSON(as)
		},
	}
}

func (a *app) privateKeyIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "private-key-id",
		Short: "Print the private_key_id of a service account key file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.cfg.Require(config.PrivateKeyJSONKey); err != nil {
				return err
			}
			cred, err := credential.Load(a.cfg.PrivateKeyJSON)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, cred.KeyID())
			return err
		},
	}
	cmd.Flags().StringP(config.PrivateKeyJSONKey, "j", "", "path to the service account private key JSON file")
	return cmd
}
