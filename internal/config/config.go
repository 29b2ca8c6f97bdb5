// Package config loads application configuration from environment variables.
//
// Configuration is read exactly once at startup and treated as immutable
// afterwards. The most important decision it encodes is strategy selection:
// if both AUTH_PROVIDER_DOMAIN and AUTH_PROVIDER_CLIENT_ID are set, the
// delegated (OIDC redirect) auth strategy is active for the lifetime of the
// process; otherwise the local strategy is. There is no runtime switching.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-supplied setting.
type Config struct {
	Port    int    `env:"PORT"     envDefault:"8080"`
	DBPath  string `env:"DB_PATH"  envDefault:"data/connecther.db"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// JWTSecret signs the session cookie. Generate with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	JWTSecret string `env:"JWT_SECRET"`

	// Delegated identity provider. Leaving domain or client id empty
	// forces the local strategy.
	ProviderDomain       string `env:"AUTH_PROVIDER_DOMAIN"`
	ProviderClientID     string `env:"AUTH_PROVIDER_CLIENT_ID"`
	ProviderClientSecret string `env:"AUTH_PROVIDER_CLIENT_SECRET"`
	ProviderCallbackURL  string `env:"AUTH_PROVIDER_CALLBACK_URL"`
}

// Load parses the environment into a Config and fills derived defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.ProviderCallbackURL == "" {
		cfg.ProviderCallbackURL = cfg.BaseURL + "/auth/callback"
	}

	return cfg, nil
}

// Delegated reports whether the delegated auth strategy is active.
// Both provider values must be present; absence of either forces the
// local strategy.
func (c *Config) Delegated() bool {
	return c.ProviderDomain != "" && c.ProviderClientID != ""
}
