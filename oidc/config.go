package oidc

import (
	"time"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/validation"
)

// Config configures ID token verification.
type Config struct {
	// JWKSURL is where the provider publishes its signing keys.
	JWKSURL string `json:"jwks_url" yaml:"jwks_url" mapstructure:"jwks_url"`

	// Issuer, when set, must match the token's iss claim exactly.
	Issuer string `json:"issuer" yaml:"issuer" mapstructure:"issuer"`

	// Audience, when set, must be present in the token's aud claim.
	// Usually the OAuth2 client ID.
	Audience string `json:"audience" yaml:"audience" mapstructure:"audience"`

	// Leeway is the clock skew tolerated when checking time claims.
	Leeway time.Duration `json:"leeway" yaml:"leeway" mapstructure:"leeway"`

	// FetchTimeout bounds a single JWKS fetch.
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Leeway == 0 {
		c.Leeway = 30 * time.Second
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 10 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() *errors.AppError {
	v := validation.New()
	v.AbsoluteURL("jwks_url", c.JWKSURL)
	return v.Validate()
}
