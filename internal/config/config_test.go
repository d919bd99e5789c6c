package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/legalmail-mcp/internal/config"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "LEGALMAIL_SIGNATURE", "LEGALMAIL_LOG_LEVEL", "OAUTH_GOOGLE_CLIENT_ID", "OAUTH_GOOGLE_CLIENT_SECRET")

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	assert.Equal(t, "Legal Team", cfg.Signature)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "localhost:0", cfg.HTTPAddr)
	assert.Equal(t, "./data/legalmail-token.json", cfg.OAuthTokenFile)
	assert.Empty(t, cfg.RulesFile)
	assert.Empty(t, cfg.OAuthClientID)
}

func TestLoadPrecedence(t *testing.T) {
	unsetEnv(t, "LEGALMAIL_SIGNATURE", "LEGALMAIL_HTTP_ADDR")
	t.Setenv("LEGALMAIL_LOG_LEVEL", "warn")
	t.Setenv("LEGALMAIL_LOG_FORMAT", "console")

	file := writeFile(t, "legalmail.yaml", `
signature: File Desk
log_level: debug
http_addr: localhost:9090
rules_file: /etc/legalmail/rules.yaml
`)

	flags := pflag.NewFlagSet("legalmail", pflag.ContinueOnError)
	flags.String("signature", "Legal Team", "")
	flags.String("log-level", "info", "")
	flags.String("http-addr", "localhost:0", "")
	require.NoError(t, flags.Parse([]string{"--signature=Flag Desk"}))

	cfg, err := config.Load(config.Options{ConfigFile: file, Flags: flags})
	require.NoError(t, err)

	cases := []struct {
		name string
		got  string
		want string
	}{
		{name: "flag over file", got: cfg.Signature, want: "Flag Desk"},
		{name: "env over file", got: cfg.LogLevel, want: "warn"},
		{name: "env over default", got: cfg.LogFormat, want: "console"},
		{name: "file over unset flag", got: cfg.HTTPAddr, want: "localhost:9090"},
		{name: "file over default", got: cfg.RulesFile, want: "/etc/legalmail/rules.yaml"},
		{name: "default", got: cfg.OAuthTokenFile, want: "./data/legalmail-token.json"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	unsetEnv(t, "OAUTH_GOOGLE_CLIENT_ID", "OAUTH_GOOGLE_CLIENT_SECRET", "LEGALMAIL_OAUTH_GOOGLE_CLIENT_ID", "LEGALMAIL_OAUTH_GOOGLE_CLIENT_SECRET")
	t.Cleanup(func() {
		_ = os.Unsetenv("OAUTH_GOOGLE_CLIENT_ID")
		_ = os.Unsetenv("OAUTH_GOOGLE_CLIENT_SECRET")
	})

	envFile := writeFile(t, ".env", "OAUTH_GOOGLE_CLIENT_ID=client-id\nOAUTH_GOOGLE_CLIENT_SECRET=client-secret\n")

	cfg, err := config.Load(config.Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "client-id", cfg.OAuthClientID)
	assert.Equal(t, "client-secret", cfg.OAuthClientSecret)
}

func TestLoadErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	cases := []struct {
		name string
		opts config.Options
	}{
		{name: "missing config file", opts: config.Options{ConfigFile: missing + ".yaml"}},
		{name: "missing env file", opts: config.Options{EnvFile: missing + ".env"}},
		{name: "malformed config file", opts: config.Options{ConfigFile: writeFile(t, "bad.yaml", "signature: [")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(tc.opts)
			require.Error(t, err)
		})
	}
}

func TestGmailOAuth(t *testing.T) {
	cfg := &config.Config{OAuthClientID: "id", OAuthClientSecret: "secret"}

	oc, err := cfg.GmailOAuth("127.0.0.1:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/oauth", oc.RedirectURL)
	assert.Equal(t, []string{gmail.GmailReadonlyScope}, oc.Scopes)
	assert.Equal(t, "id", oc.ClientID)

	cfg.OAuthURL = "https://legal.example.com/oauth"
	oc, err = cfg.GmailOAuth("127.0.0.1:8080")
	require.NoError(t, err)
	assert.Equal(t, "https://legal.example.com/oauth", oc.RedirectURL)

	_, err = (&config.Config{OAuthClientID: "id"}).GmailOAuth("127.0.0.1:8080")
	assert.True(t, errors.Is(err, config.ErrMissingOAuthCredentials))
}
