package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP(PrivateKeyJSONKey, "j", "", "")
	fs.StringP(DeviceIDKey, "d", "", "")
	fs.StringP(APIKeyKey, "k", "", "")
	fs.String(ClaimsKey, "", "")
	fs.StringP(OutputKey, "o", OutputText, "")
	fs.String(LogLevelKey, "info", "")
	fs.Bool(CloudLoggingKey, false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"FBTOKEN_PRIVATE_KEY_JSON",
		"FBTOKEN_DEVICE_ID",
		"FBTOKEN_API_KEY",
		"FBTOKEN_OUTPUT",
		"FBTOKEN_LOG_LEVEL",
		"FBTOKEN_CLOUD_LOGGING",
		"GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadFlags(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(newFlags(t, "-j", "sa.json", "--device-id", "device-1", "-k", "AIza", "--cloud-logging", "--log-level", "debug"))
	require.NoError(t, err)

	assert.Equal(t, "sa.json", cfg.PrivateKeyJSON)
	assert.Equal(t, "device-1", cfg.DeviceID)
	assert.Equal(t, "AIza", cfg.APIKey)
	assert.Equal(t, OutputText, cfg.Output)
	assert.True(t, cfg.CloudLogging)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FBTOKEN_API_KEY", "AIzaFromEnv")
	t.Setenv("FBTOKEN_DEVICE_ID", "device-env")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/sa.json")
	t.Setenv("FBTOKEN_CLOUD_LOGGING", "true")

	cfg, err := Load(newFlags(t, "--device-id", "device-flag"))
	require.NoError(t, err)

	assert.Equal(t, "AIzaFromEnv", cfg.APIKey)
	assert.Equal(t, "device-flag", cfg.DeviceID, "flag wins over environment")
	assert.Equal(t, "/etc/sa.json", cfg.PrivateKeyJSON)
	assert.True(t, cfg.CloudLogging)
}

func TestLoadPrivateKeyEnvPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/adc.json")
	t.Setenv("FBTOKEN_PRIVATE_KEY_JSON", "/etc/sa.json")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "/etc/sa.json", cfg.PrivateKeyJSON)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "output", args: []string{"-o", "yaml"}},
		{name: "log level", args: []string{"--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(newFlags(t, tt.args...))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestRequire(t *testing.T) {
	cfg := &Config{DeviceID: "device-1"}

	err := cfg.Require(PrivateKeyJSONKey, DeviceIDKey, APIKeyKey)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "--private-key-json, --api-key")
	assert.NotContains(t, err.Error(), "--device-id")

	assert.NoError(t, cfg.Require(DeviceIDKey))
}

func TestDeveloperClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  string
		want    map[string]any
		wantErr bool
	}{
		{name: "none"},
		{name: "object", claims: `{"premium":true,"tier":"gold"}`, want: map[string]any{"premium": true, "tier": "gold"}},
		{name: "not an object", claims: `[1,2]`, wantErr: true},
		{name: "garbage", claims: `premium`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Claims: tt.claims}
			got, err := cfg.DeveloperClaims()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
