// Package fbtoken exchanges a Google service account key for a Firebase refresh token.
//
// The exchange is two sequential steps: a Firebase custom token is signed
// locally with the service account key (package auth), then traded for a
// refresh token at the Identity Toolkit signInWithCustomToken endpoint
// (package identity). One token is minted and one request is made per call,
// nothing is cached or retried.
package fbtoken

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/klipach/fbtoken/auth"
	"github.com/klipach/fbtoken/credential"
	"github.com/klipach/fbtoken/identity"
	"github.com/klipach/fbtoken/log"
)

type Request struct {
	// CredentialPath is the service account JSON key file.
	CredentialPath string
	// Subject is the device or user id the token is minted for.
	Subject string
	// APIKey is the Firebase web API key of the project.
	APIKey string
	// DeveloperClaims are optional extra claims for the signed-in user.
	DeveloperClaims map[string]any
}

// GetRefreshToken loads the key file, mints a custom token for req.Subject
// and exchanges it. A response without a refresh token is reported as
// *identity.RejectedError (errors.Is(err, identity.ErrExchangeRejected)).
func GetRefreshToken(ctx context.Context, req Request, opts ...identity.Option) (*identity.Result, error) {
	cred, err := credential.Load(req.CredentialPath)
	if err != nil {
		return nil, err
	}
	return Exchange(ctx, cred, req.Subject, req.APIKey, req.DeveloperClaims, opts...)
}

// Exchange is GetRefreshToken for an already loaded credential.
func Exchange(ctx context.Context, cred *credential.Credential, subject, apiKey string, claims map[string]any, opts ...identity.Option) (*identity.Result, error) {
	if cred == nil {
		return nil, fmt.Errorf("%w: nil credential", credential.ErrCredential)
	}
	logger := log.LoggerFromContext(ctx).With(
		slog.String(auth.SubjectLogField, subject),
		slog.String(auth.KeyIDLogField, cred.KeyID()),
	)
	ctx = log.WithLogger(ctx, logger)

	var mintOpts []auth.Option
	if len(claims) > 0 {
		mintOpts = append(mintOpts, auth.WithDeveloperClaims(claims))
	}
	assertion, err := auth.Mint(ctx, cred, subject, mintOpts...)
	if err != nil {
		return nil, err
	}

	result, err := identity.NewClient(apiKey, opts...).SignInWithCustomToken(ctx, assertion.Token)
	if err != nil {
		return nil, err
	}
	logger.Info("refresh token obtained", slog.Int("expiresIn", result.ExpiresIn))
	return result, nil
}
