package session

import (
	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/validation"
)

// Config configures the OAuth2 client for one provider.
type Config struct {
	// ClientID is the OAuth2 client identifier.
	ClientID string `json:"client_id" yaml:"client_id" mapstructure:"client_id"`

	// ClientSecret is the OAuth2 client secret.
	ClientSecret string `json:"client_secret" yaml:"client_secret" mapstructure:"client_secret"`

	// AuthorizationURL is the provider's authorization endpoint.
	AuthorizationURL string `json:"authorization_url" yaml:"authorization_url" mapstructure:"authorization_url"`

	// TokenURL is the provider's token endpoint.
	TokenURL string `json:"token_url" yaml:"token_url" mapstructure:"token_url"`

	// EnableRefreshToken adds the offline_access scope so the provider
	// issues a refresh token alongside the access token.
	EnableRefreshToken bool `json:"enable_refresh_token" yaml:"enable_refresh_token" mapstructure:"enable_refresh_token"`
}

// Validate checks the configuration.
func (c *Config) Validate() *errors.AppError {
	v := validation.New()
	v.Required("client_id", c.ClientID)
	v.Required("client_secret", c.ClientSecret)
	v.AbsoluteURL("authorization_url", c.AuthorizationURL)
	v.AbsoluteURL("token_url", c.TokenURL)
	return v.Validate()
}

// Scopes returns the OAuth2 scopes requested during authorization.
func (c *Config) Scopes() []string {
	scopes := []string{"openid", "profile", "email"}
	if c.EnableRefreshToken {
		scopes = append(scopes, "offline_access")
	}
	return scopes
}
