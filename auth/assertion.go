package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Audience of every Firebase custom token.
	Audience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

	SubjectLogField = "subject"
	KeyIDLogField   = "keyID"
)

// Assertion is a signed custom token and its decoded payload.
// Subject is the identifier the token was minted for (the "uid" claim); Firebase
// sets the registered "sub" claim to the service account email, same as Issuer.
type Assertion struct {
	Token     string         `json:"-"`
	Issuer    string         `json:"iss"`
	Subject   string         `json:"uid"`
	Audience  string         `json:"aud"`
	Algorithm string         `json:"alg"`
	IssuedAt  time.Time      `json:"iat"`
	ExpiresAt time.Time      `json:"exp"`
	Claims    map[string]any `json:"claims,omitempty"`
}

func (a Assertion) String() string {
	return a.Token
}

type customTokenClaims struct {
	UID    string         `json:"uid"`
	Claims map[string]any `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// DecodeAssertion decodes a custom token without verifying its signature.
func DecodeAssertion(token string) (Assertion, error) {
	var claims customTokenClaims
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return Assertion{}, fmt.Errorf("decoding custom token: %w", err)
	}

	a := Assertion{
		Token:     token,
		Issuer:    claims.Issuer,
		Subject:   claims.UID,
		Algorithm: parsed.Method.Alg(),
		Claims:    claims.Claims,
	}
	if len(claims.Audience) > 0 {
		a.Audience = claims.Audience[0]
	}
	if claims.IssuedAt != nil {
		a.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		a.ExpiresAt = claims.ExpiresAt.Time
	}
	return a, nil
}
