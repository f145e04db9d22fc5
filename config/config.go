// Package config resolves command settings from flags and the environment.
//
// Every flag can be set through an environment variable named after it with
// the FBTOKEN_ prefix, e.g. --api-key becomes FBTOKEN_API_KEY. Flags given on
// the command line win over the environment. --private-key-json also falls
// back to GOOGLE_APPLICATION_CREDENTIALS.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FBTOKEN"

	PrivateKeyJSONKey = "private-key-json"
	DeviceIDKey       = "device-id"
	APIKeyKey         = "api-key"
	EmailKey          = "email"
	PasswordKey       = "password"
	ClaimsKey         = "claims"
	OutputKey         = "output"
	LogLevelKey       = "log-level"
	CloudLoggingKey   = "cloud-logging"
	IdentityURLKey    = "identity-url"
	TraceKey          = "trace"

	OutputText = "text"
	OutputJSON = "json"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	PrivateKeyJSON string `mapstructure:"private-key-json"`
	DeviceID       string `mapstructure:"device-id"`
	APIKey         string `mapstructure:"api-key"`
	Email          string `mapstructure:"email"`
	Password       string `mapstructure:"password"`
	Claims         string `mapstructure:"claims"`
	Output         string `mapstructure:"output"`
	LogLevel       string `mapstructure:"log-level"`
	CloudLogging   bool   `mapstructure:"cloud-logging"`
	IdentityURL    string `mapstructure:"identity-url"`
	Trace          string `mapstructure:"trace"`
}

// New returns a viper instance bound to flags and the FBTOKEN_ environment.
func New(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(OutputKey, OutputText)
	v.SetDefault(LogLevelKey, "info")

	if err := v.BindEnv(PrivateKeyJSONKey, EnvPrefix+"_PRIVATE_KEY_JSON", "GOOGLE_APPLICATION_CREDENTIALS"); err != nil {
		return nil, err
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}
	return v, nil
}

// Load resolves the configuration for the command that owns flags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v, err := New(flags)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if cfg.Output != OutputText && cfg.Output != OutputJSON {
		return nil, fmt.Errorf("%w: --%s must be %q or %q, got %q", ErrInvalid, OutputKey, OutputText, OutputJSON, cfg.Output)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Require fails listing every key that has no value.
func (c *Config) Require(keys ...string) error {
	values := map[string]string{
		PrivateKeyJSONKey: c.PrivateKeyJSON,
		DeviceIDKey:       c.DeviceID,
		APIKeyKey:         c.APIKey,
		EmailKey:          c.Email,
		PasswordKey:       c.Password,
	}
	var missing []string
	for _, k := range keys {
		if values[k] == "" {
			missing = append(missing, "--"+k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("%w: --%s: %w", ErrInvalid, LogLevelKey, err)
	}
	return l, nil
}

// DeveloperClaims decodes --claims, a JSON object. No claims yields nil.
func (c *Config) DeveloperClaims() (map[string]any, error) {
	if c.Claims == "" {
		return nil, nil
	}
	var claims map[string]any
	if err := json.Unmarshal([]byte(c.Claims), &claims); err != nil {
		return nil, fmt.Errorf("%w: --%s must be a JSON object: %w", ErrInvalid, ClaimsKey, err)
	}
	return claims, nil
}
