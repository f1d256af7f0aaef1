package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, backend.DefaultBaseURL, cfg.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.RecorderWorkers)
	assert.Equal(t, TwitterModeBackend, cfg.TwitterMode)
	assert.Empty(t, cfg.UserID)
	assert.Equal(t, "session.json", filepath.Base(cfg.SessionFile))

	opts := cfg.BackendOptions()
	assert.Equal(t, cfg.BackendURL, opts.BaseURL)
	assert.Equal(t, cfg.HTTPTimeout, opts.Timeout)
	assert.Nil(t, opts.Jar)
}

func TestFromMapOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"FURSA_BACKEND_URL":      " http://localhost:5000/ ",
		"FURSA_HTTP_TIMEOUT":     "5s",
		"FURSA_SESSION_FILE":     "/tmp/fursa-session.json",
		"FURSA_USER_ID":          " 42 ",
		"FURSA_RECORDER_WORKERS": "8",
		"FURSA_TWITTER_MODE":     "BACKEND",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/fursa-session.json", cfg.SessionFile)
	assert.Equal(t, "42", cfg.UserID)
	assert.Equal(t, 8, cfg.RecorderWorkers)
	assert.Equal(t, TwitterModeBackend, cfg.TwitterMode)
}

func TestFromMapInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{name: "bad url", vars: map[string]string{"FURSA_BACKEND_URL": "not a url"}, want: "BackendURL"},
		{name: "zero timeout", vars: map[string]string{"FURSA_HTTP_TIMEOUT": "0s"}, want: "HTTPTimeout"},
		{name: "too many workers", vars: map[string]string{"FURSA_RECORDER_WORKERS": "500"}, want: "RecorderWorkers"},
		{name: "unknown mode", vars: map[string]string{"FURSA_TWITTER_MODE": "scrape"}, want: "TwitterMode"},
		{name: "unparseable timeout", vars: map[string]string{"FURSA_HTTP_TIMEOUT": "soon"}, want: "parse environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDirectModeRequiresCredentials(t *testing.T) {
	_, err := FromMap(map[string]string{
		"FURSA_TWITTER_MODE":         "direct",
		"FURSA_TWITTER_CONSUMER_KEY": "key",
	})

	var missing fursa.MissingEnvError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "twitter", missing.Provider)
	assert.Equal(t, []string{
		"FURSA_TWITTER_CONSUMER_SECRET",
		"FURSA_TWITTER_ACCESS_TOKEN",
		"FURSA_TWITTER_ACCESS_TOKEN_SECRET",
	}, missing.Variables)

	cfg, err := FromMap(map[string]string{
		"FURSA_TWITTER_MODE":                "direct",
		"FURSA_TWITTER_CONSUMER_KEY":        "key",
		"FURSA_TWITTER_CONSUMER_SECRET":     "secret",
		"FURSA_TWITTER_ACCESS_TOKEN":        "token",
		"FURSA_TWITTER_ACCESS_TOKEN_SECRET": "token-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "token-secret", cfg.Twitter.AccessSecret)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fursa.env")
	require.NoError(t, os.WriteFile(path, []byte("FURSA_USER_ID=99\nFURSA_RECORDER_WORKERS=2\n"), 0o600))

	t.Setenv("FURSA_ENV_FILE", path)
	// godotenv never overrides variables that are already set.
	t.Setenv("FURSA_USER_ID", "7")
	t.Setenv("FURSA_RECORDER_WORKERS", "")
	require.NoError(t, os.Unsetenv("FURSA_RECORDER_WORKERS"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.UserID)
	assert.Equal(t, 2, cfg.RecorderWorkers)
}

func TestLoadMissingEnvFile(t *testing.T) {
	t.Setenv("FURSA_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := Load()
	assert.NoError(t, err)
}
