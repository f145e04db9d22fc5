package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/klipach/fbtoken/credential"
	"github.com/klipach/fbtoken/internal/testkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMinter(t *testing.T, opts ...Option) (*Minter, *testkey.ServiceAccount) {
	t.Helper()
	t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", "")

	sa := testkey.New(t)
	cred, err := credential.Parse(sa.JSON)
	require.NoError(t, err)

	m, err := NewMinter(context.Background(), cred, opts...)
	require.NoError(t, err)
	return m, sa
}

func TestMint(t *testing.T) {
	m, sa := newMinter(t)

	a, err := m.Mint(context.Background(), "device-1")
	require.NoError(t, err)

	assert.Equal(t, testkey.ClientEmail, a.Issuer)
	assert.Equal(t, "device-1", a.Subject)
	assert.Equal(t, Audience, a.Audience)
	assert.Equal(t, "RS256", a.Algorithm)
	assert.Equal(t, time.Hour, a.ExpiresAt.Sub(a.IssuedAt))
	assert.WithinDuration(t, time.Now(), a.IssuedAt, time.Minute)

	// the token must verify against the service account's public key
	var claims customTokenClaims
	_, err = jwt.ParseWithClaims(a.Token, &claims, func(*jwt.Token) (any, error) {
		return &sa.Key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	assert.Equal(t, "device-1", claims.UID)
	assert.Equal(t, testkey.ClientEmail, claims.Subject)
}

func TestMintTwice(t *testing.T) {
	m, _ := newMinter(t)
	ctx := context.Background()

	first, err := m.Mint(ctx, "device-1")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	second, err := m.Mint(ctx, "device-1")
	require.NoError(t, err)

	assert.Equal(t, first.Issuer, second.Issuer)
	assert.Equal(t, first.Subject, second.Subject)
	assert.True(t, second.IssuedAt.After(first.IssuedAt))
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
	assert.NotEqual(t, first.Token, second.Token)
}

func TestMintDeveloperClaims(t *testing.T) {
	m, _ := newMinter(t, WithDeveloperClaims(map[string]any{"premium": true}))

	a, err := m.Mint(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"premium": true}, a.Claims)
}

func TestMintEmptySubject(t *testing.T) {
	m, _ := newMinter(t)

	_, err := m.Mint(context.Background(), "")
	assert.ErrorIs(t, err, ErrSigning)
}

func TestMintersAreIndependent(t *testing.T) {
	first, _ := newMinter(t)
	second, _ := newMinter(t)
	ctx := context.Background()

	a, err := first.Mint(ctx, "device-1")
	require.NoError(t, err)
	b, err := second.Mint(ctx, "device-2")
	require.NoError(t, err)

	assert.Equal(t, "device-1", a.Subject)
	assert.Equal(t, "device-2", b.Subject)
}

func TestNewMinterNilCredential(t *testing.T) {
	_, err := NewMinter(context.Background(), nil)
	assert.ErrorIs(t, err, credential.ErrCredential)
}

func TestDecodeAssertion(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    Assertion
		wantErr bool
	}{
		{
			name: "emulator token",
			// {"alg":"none","typ":"JWT"}.{"iss":"svc@proj.iam.gserviceaccount.com","aud":"aud","uid":"device-1","iat":1,"exp":3601}
			token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
				"eyJpc3MiOiJzdmNAcHJvai5pYW0uZ3NlcnZpY2VhY2NvdW50LmNvbSIsImF1ZCI6ImF1ZCIsInVpZCI6ImRldmljZS0xIiwiaWF0IjoxLCJleHAiOjM2MDF9.",
			want: Assertion{
				Issuer:    "svc@proj.iam.gserviceaccount.com",
				Subject:   "device-1",
				Audience:  "aud",
				Algorithm: "none",
				IssuedAt:  time.Unix(1, 0),
				ExpiresAt: time.Unix(3601, 0),
			},
		},
		{
			name:    "not a jwt",
			token:   "RT123",
			wantErr: true,
		},
		{
			name:    "empty",
			token:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := DecodeAssertion(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, a.Token)
			assert.Equal(t, tt.want.Issuer, a.Issuer)
			assert.Equal(t, tt.want.Subject, a.Subject)
			assert.Equal(t, tt.want.Audience, a.Audience)
			assert.Equal(t, tt.want.Algorithm, a.Algorithm)
			assert.True(t, tt.want.IssuedAt.Equal(a.IssuedAt))
			assert.True(t, tt.want.ExpiresAt.Equal(a.ExpiresAt))
		})
	}
}
