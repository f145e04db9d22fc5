package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/klipach/fbtoken/contract"
	"github.com/klipach/fbtoken/log"
)

const (
	DefaultBaseURL  = "https://identitytoolkit.googleapis.com"
	EmulatorHostEnv = "FIREBASE_AUTH_EMULATOR_HOST"

	signInWithCustomTokenPath = "/v1/accounts:signInWithCustomToken"
	signInWithPasswordPath    = "/v1/accounts:signInWithPassword"

	contentTypeHeader = "Content-Type"
	apiKeyParam       = "key"
)

var (
	ErrNetwork          = errors.New("identity toolkit request failed")
	ErrExchangeRejected = errors.New("exchange rejected")
)

// Result is a successful sign-in. RefreshToken is always set.
type Result struct {
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	ExpiresIn    int    `json:"expiresIn"`
	LocalID      string `json:"localId,omitempty"`
	Email        string `json:"email,omitempty"`
}

// Client talks to the Identity Toolkit REST API.
// It never retries: each call is exactly one HTTP request.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another Identity Toolkit host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client authenticated with a Firebase web API key.
// If FIREBASE_AUTH_EMULATOR_HOST is set, requests go to the emulator.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Transport: &loggingRoundTripper{rt: http.DefaultTransport},
		},
	}
	if host := os.Getenv(EmulatorHostEnv); host != "" {
		c.baseURL = "http://" + host + "/identitytoolkit.googleapis.com"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignInWithCustomToken exchanges a custom token for a refresh token.
func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (*Result, error) {
	return c.post(ctx, signInWithCustomTokenPath, contract.SignInWithCustomTokenRequest{
		Token:             token,
		ReturnSecureToken: true,
	})
}

// SignInWithPassword signs in an email/password account.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Result, error) {
	return c.post(ctx, signInWithPasswordPath, contract.SignInWithPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path + "?" + url.Values{apiKeyParam: {c.apiKey}}.Encode()
}

func (c *Client) post(ctx context.Context, path string, payload any) (*Result, error) {
	logger := log.LoggerFromContext(ctx)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint(path),
		bytes.NewReader(payloadBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, redactURLError(err))
	}
	req.Header.Set(contentTypeHeader, "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, redactURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	result, err := parseSignInResponse(resp.StatusCode, body)
	if err != nil {
		logger.Warn("sign-in rejected",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String(ErrorMsgLogField, err.Error()),
		)
		return nil, err
	}
	return result, nil
}

func parseSignInResponse(status int, body []byte) (*Result, error) {
	if status < 200 || status > 299 {
		return nil, newRejectedError(status, body)
	}
	var resp contract.SignInResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newRejectedError(status, body)
	}
	var refreshToken string
	if err := json.Unmarshal(resp.RefreshToken, &refreshToken); err != nil || refreshToken == "" {
		return nil, newRejectedError(status, body)
	}
	return &Result{
		RefreshToken: refreshToken,
		IDToken:      lenientString(resp.IDToken),
		ExpiresIn:    lenientInt(resp.ExpiresIn),
		LocalID:      lenientString(resp.LocalID),
		Email:        lenientString(resp.Email),
	}, nil
}

// lenientString returns a JSON string as is and any other scalar as its JSON text.
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// lenientInt accepts a number or a numeric string, anything else is 0.
func lenientInt(raw json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.Atoi(n.String()); err == nil {
			return i
		}
	}
	i, _ := strconv.Atoi(lenientString(raw))
	return i
}
