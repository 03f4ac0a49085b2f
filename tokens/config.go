package tokens

import (
	"time"

	"github.com/kbukum/oidcauth/errors"
)

// Config configures local token signing.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string `json:"secret" yaml:"secret" mapstructure:"secret"`

	// Issuer is the "iss" claim stamped on issued tokens (optional).
	Issuer string `json:"issuer" yaml:"issuer" mapstructure:"issuer"`

	// AccessTokenTTL bounds access tokens when the provider session
	// carries no expiry of its own (default: 1h).
	AccessTokenTTL time.Duration `json:"access_token_ttl" yaml:"access_token_ttl" mapstructure:"access_token_ttl"`

	// RefreshTokenTTL is the lifetime of refresh tokens (default: 30d).
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl" yaml:"refresh_token_ttl" mapstructure:"refresh_token_ttl"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = time.Hour
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 30 * 24 * time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() *errors.AppError {
	if c.Secret == "" {
		return errors.InvalidConfiguration("tokens: signing secret is required")
	}
	return nil
}
