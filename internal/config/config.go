// Package config loads legalmail settings from defaults, an optional config
// file, the environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LEGALMAIL"

// ErrMissingOAuthCredentials is returned when the Google OAuth client is not
// configured.
var ErrMissingOAuthCredentials = errors.New("OAUTH_GOOGLE_CLIENT_ID and OAUTH_GOOGLE_CLIENT_SECRET must be set")

// Config holds the resolved settings.
type Config struct {
	Signature         string `mapstructure:"signature"`
	RulesFile         string `mapstructure:"rules_file"`
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"`
	LogFile           string `mapstructure:"log_file"`
	HTTPAddr          string `mapstructure:"http_addr"`
	OAuthURL          string `mapstructure:"oauth_url"`
	OAuthTokenFile    string `mapstructure:"oauth_token_file"`
	OAuthClientID     string `mapstructure:"oauth_google_client_id"`
	OAuthClientSecret string `mapstructure:"oauth_google_client_secret"`
}

// Options tells Load where to look besides the environment.
type Options struct {
	// ConfigFile is a yaml, json or toml file; empty skips it.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the process environment.
	// Variables already set win.
	EnvFile string
	// Flags are bound by key with underscores written as dashes, so
	// log_level is read from --log-level. Only flags set on the command line
	// take effect.
	Flags *pflag.FlagSet
}

var defaults = map[string]any{
	"signature":                  "Legal Team",
	"rules_file":                 "",
	"log_level":                  "info",
	"log_format":                 "json",
	"log_file":                   "",
	"http_addr":                  "localhost:0",
	"oauth_url":                  "",
	"oauth_token_file":           "./data/legalmail-token.json",
	"oauth_google_client_id":     "",
	"oauth_google_client_secret": "",
}

// Load resolves the configuration. Precedence is flag, env, file, default.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"oauth_google_client_id", "oauth_google_client_secret"} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("v.BindEnv failed: %w", err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig failed: %w", err)
		}
	}

	if opts.Flags != nil {
		for key := range defaults {
			flag := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("v.BindPFlag failed: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal failed: %w", err)
	}

	return &cfg, nil
}

// GmailOAuth builds the read-only Gmail OAuth client config. The redirect URL
// is oauth_url when set, otherwise the /oauth path on lnAddr.
func (c *Config) GmailOAuth(lnAddr string) (*oauth2.Config, error) {
	if c.OAuthClientID == "" || c.OAuthClientSecret == "" {
		return nil, ErrMissingOAuthCredentials
	}

	redirect := c.OAuthURL
	if redirect == "" {
		redirect = fmt.Sprintf("http://%s/oauth", lnAddr)
	}

	return &oauth2.Config{
		ClientID:     c.OAuthClientID,
		ClientSecret: c.OAuthClientSecret,
		RedirectURL:  redirect,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}, nil
}
