package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/klipach/fbtoken/credential"
	"github.com/klipach/fbtoken/log"
	"google.golang.org/api/option"
)

var ErrSigning = errors.New("custom token creation failed")

// Minter signs Firebase custom tokens with a single service account.
// Every Minter owns its own Firebase app, nothing is registered process-wide.
type Minter struct {
	cred   *credential.Credential
	client *fbauth.Client
	claims map[string]any
}

type Option func(*Minter)

// WithDeveloperClaims adds claims that end up in the auth token of the signed-in user.
func WithDeveloperClaims(claims map[string]any) Option {
	return func(m *Minter) {
		m.claims = claims
	}
}

func NewMinter(ctx context.Context, cred *credential.Credential, opts ...Option) (*Minter, error) {
	if cred == nil {
		return nil, fmt.Errorf("%w: nil credential", credential.ErrCredential)
	}
	app, err := firebase.NewApp(
		ctx,
		&firebase.Config{ProjectID: cred.ProjectID},
		option.WithCredentialsJSON(cred.JSON()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: initializing firebase app: %w", credential.ErrCredential, err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: initializing auth client: %w", credential.ErrCredential, err)
	}

	m := &Minter{cred: cred, client: client}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Mint signs a custom token for subject, valid for one hour.
func (m *Minter) Mint(ctx context.Context, subject string) (Assertion, error) {
	logger := log.LoggerFromContext(ctx).With(
		slog.String(SubjectLogField, subject),
		slog.String(KeyIDLogField, m.cred.KeyID()),
	)
	if subject == "" {
		return Assertion{}, fmt.Errorf("%w: empty subject", ErrSigning)
	}

	var (
		token string
		err   error
	)
	if len(m.claims) > 0 {
		token, err = m.client.CustomTokenWithClaims(ctx, subject, m.claims)
	} else {
		token, err = m.client.CustomToken(ctx, subject)
	}
	if err != nil {
		return Assertion{}, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	if token == "" {
		return Assertion{}, fmt.Errorf("%w: empty token", ErrSigning)
	}

	a, err := DecodeAssertion(token)
	if err != nil {
		return Assertion{}, fmt.Errorf("%w: %w", ErrSigning, err)
	}
	logger.Debug("custom token minted",
		slog.String("issuer", a.Issuer),
		slog.Time("expiresAt", a.ExpiresAt),
	)
	return a, nil
}

// Mint creates a Minter for cred and signs exactly one token.
func Mint(ctx context.Context, cred *credential.Credential, subject string, opts ...Option) (Assertion, error) {
	m, err := NewMinter(ctx, cred, opts...)
	if err != nil {
		return Assertion{}, err
	}
	return m.Mint(ctx, subject)
}
