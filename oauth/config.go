package oauth

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/authd/entity"
)

// Default lifetimes in milliseconds.
const (
	DefaultAccessTokenTTL  int64 = 3_600_000
	DefaultRefreshTokenTTL int64 = 1_296_000_000
)

// Config holds token and grant-code policy.
type Config struct {
	// AccessTokenTTL in milliseconds (default: 1 hour).
	AccessTokenTTL int64 `mapstructure:"access_token_ttl"`

	// RefreshTokenTTL in milliseconds (default: 15 days).
	RefreshTokenTTL int64 `mapstructure:"refresh_token_ttl"`

	// GrantCodeTTL in milliseconds. Required.
	GrantCodeTTL int64 `mapstructure:"grant_code_ttl"`

	// ConsumeGrantCodes deletes a code when it is redeemed (default: true).
	// When false a code can be redeemed until it expires.
	ConsumeGrantCodes *bool `mapstructure:"consume_grant_codes"`

	// RotateRefreshTokens expires a refresh token when it is used and
	// returns a new one with the new access token.
	RotateRefreshTokens bool `mapstructure:"rotate_refresh_tokens"`

	// LoginURL is where /authorize sends the browser. Empty sends it
	// straight back to the redirect uri.
	LoginURL string `mapstructure:"login_url"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if c.ConsumeGrantCodes == nil {
		consume := true
		c.ConsumeGrantCodes = &consume
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("oauth.access_token_ttl must be > 0 (got: %d)", c.AccessTokenTTL)
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("oauth.refresh_token_ttl must be > 0 (got: %d)", c.RefreshTokenTTL)
	}
	if c.GrantCodeTTL <= 0 {
		return fmt.Errorf("oauth.grant_code_ttl is required and must be > 0 (got: %d)", c.GrantCodeTTL)
	}
	if c.LoginURL != "" {
		u, err := url.Parse(c.LoginURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("oauth.login_url must be an absolute http(s) url (got: %q)", c.LoginURL)
		}
	}
	return nil
}

// ConsumesCodes reports whether redemption deletes the grant code.
func (c *Config) ConsumesCodes() bool {
	return c.ConsumeGrantCodes == nil || *c.ConsumeGrantCodes
}

// TTL returns the configured lifetime for a token type in milliseconds.
func (c *Config) TTL(tokenType string) int64 {
	if tokenType == entity.TokenTypeRefresh {
		return c.RefreshTokenTTL
	}
	return c.AccessTokenTTL
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
