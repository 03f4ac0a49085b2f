package plugin

import (
	"context"
	"net/url"

	"github.com/kbukum/oidcauth/errors"
)

// ExternalLogout builds the provider logout URL. Every payload field is
// passed through verbatim as a query parameter and client_id is always
// present. Without a configured logout URL the result is empty, which is
// a no-op rather than an error. When the plugin is inactive the previous
// chain value passes through unchanged.
func (p *Plugin) ExternalLogout(ctx context.Context, payload Payload, previous *LogoutData) (*LogoutData, *errors.AppError) {
	ctx, span := p.tracer.Start(ctx, "plugin.external_logout")
	defer span.End()

	cfg, appErr := p.configuration(ctx)
	if appErr != nil {
		return nil, appErr
	}
	if !cfg.Active {
		return previous, nil
	}
	if cfg.OAuthLogoutURL == "" {
		return &LogoutData{}, nil
	}

	logoutURL, err := url.Parse(cfg.OAuthLogoutURL)
	if err != nil {
		return nil, errors.InvalidConfiguration("oauth_logout_url is not a valid URL").WithCause(err)
	}

	q := logoutURL.Query()
	for key, value := range payload {
		q.Set(key, value)
	}
	if q.Get("client_id") == "" {
		q.Set("client_id", cfg.ClientID)
	}
	logoutURL.RawQuery = q.Encode()

	return &LogoutData{LogoutURL: logoutURL.String()}, nil
}
