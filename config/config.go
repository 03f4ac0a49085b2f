package config

import (
	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/validation"
)

// Configuration holds the persisted OpenID Connect plugin settings.
// It is loaded once per flow invocation from a Store and is immutable
// within a flow run.
type Configuration struct {
	// Active controls whether the plugin participates in authentication.
	// Inactive plugins pass previous chain values through untouched.
	Active bool `json:"active" yaml:"active" mapstructure:"active"`

	// ClientID is the OAuth2 client identifier registered with the provider.
	ClientID string `json:"client_id" yaml:"client_id" mapstructure:"client_id"`

	// ClientSecret is the OAuth2 client secret.
	ClientSecret string `json:"client_secret" yaml:"client_secret" mapstructure:"client_secret"`

	// EnableRefreshToken widens the requested scope with offline_access and
	// enables the refresh operation.
	EnableRefreshToken bool `json:"enable_refresh_token" yaml:"enable_refresh_token" mapstructure:"enable_refresh_token"`

	// OAuthAuthorizationURL is the provider's authorization endpoint.
	OAuthAuthorizationURL string `json:"oauth_authorization_url" yaml:"oauth_authorization_url" mapstructure:"oauth_authorization_url"`

	// OAuthTokenURL is the provider's token endpoint.
	OAuthTokenURL string `json:"oauth_token_url" yaml:"oauth_token_url" mapstructure:"oauth_token_url"`

	// OAuthLogoutURL is the provider's logout endpoint (optional).
	OAuthLogoutURL string `json:"oauth_logout_url" yaml:"oauth_logout_url" mapstructure:"oauth_logout_url"`

	// JSONWebKeySetURL is where the provider publishes its signing keys.
	JSONWebKeySetURL string `json:"json_web_key_set_url" yaml:"json_web_key_set_url" mapstructure:"json_web_key_set_url"`

	// ActivateNewUsers controls whether accounts provisioned from identity
	// claims start active. Policy decision; FileStore defaults it to true.
	ActivateNewUsers bool `json:"activate_new_users" yaml:"activate_new_users" mapstructure:"activate_new_users"`
}

// Validate checks the configuration when the plugin is active. Every
// invalid field is reported in a single aggregated error so the host UI
// can surface all problems at once.
func (c *Configuration) Validate() *errors.AppError {
	if !c.Active {
		return nil
	}

	v := validation.New()
	v.Required("client_id", c.ClientID)
	v.Required("client_secret", c.ClientSecret)
	v.AbsoluteURL("oauth_authorization_url", c.OAuthAuthorizationURL)
	v.AbsoluteURL("oauth_token_url", c.OAuthTokenURL)
	v.AbsoluteURL("json_web_key_set_url", c.JSONWebKeySetURL)
	if c.OAuthLogoutURL != "" && !validation.IsAbsoluteURL(c.OAuthLogoutURL) {
		v.AddError("oauth_logout_url", "must be an absolute URL with a scheme and host")
	}

	if err := v.Validate(); err != nil {
		err.Code = errors.ErrCodeInvalidConfiguration
		return err
	}
	return nil
}
