package config

import (
	"strings"

	"github.com/kbukum/oidcauth/validation"
)

// Settings holds host-site settings the plugin needs beyond the persisted
// provider configuration: where the site lives (for building the callback
// URL) and which hosts a caller may be redirected back to.
type Settings struct {
	// SiteURL is the public base URL of the host application.
	SiteURL string `json:"site_url" yaml:"site_url" mapstructure:"site_url" validate:"required,absolute_url"`

	// PluginID identifies this plugin instance in webhook paths,
	// e.g. "authentication.openidconnect".
	PluginID string `json:"plugin_id" yaml:"plugin_id" mapstructure:"plugin_id" validate:"required"`

	// AllowedRedirectHosts lists hosts a caller-supplied redirectUrl may
	// point at. "*" allows any host.
	AllowedRedirectHosts []string `json:"allowed_redirect_hosts" yaml:"allowed_redirect_hosts" mapstructure:"allowed_redirect_hosts"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (s *Settings) ApplyDefaults() {
	if s.PluginID == "" {
		s.PluginID = "authentication.openidconnect"
	}
	if len(s.AllowedRedirectHosts) == 0 {
		s.AllowedRedirectHosts = []string{"*"}
	}
}

// Validate checks the settings using struct tags.
func (s *Settings) Validate() error {
	return validation.Validate(s)
}

// HostAllowed reports whether the given host is covered by the allow-list.
func (s *Settings) HostAllowed(host string) bool {
	for _, allowed := range s.AllowedRedirectHosts {
		if allowed == "*" || strings.EqualFold(allowed, host) {
			return true
		}
	}
	return false
}
