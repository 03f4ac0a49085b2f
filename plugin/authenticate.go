package plugin

import (
	"context"
	"net/url"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/logger"
	"github.com/kbukum/oidcauth/oidc"
)

// ExternalAuthenticationURL starts a login: it validates the caller's
// redirect target and returns the provider authorization URL the browser
// should be sent to. When the plugin is inactive the previous chain value
// passes through unchanged.
//
// The redirect_uri sent to the provider is this plugin's callback endpoint
// with the caller's redirectUrl embedded as a query parameter, so the
// callback can route the browser back after the exchange.
func (p *Plugin) ExternalAuthenticationURL(ctx context.Context, payload Payload, previous *AuthenticationData) (*AuthenticationData, *errors.AppError) {
	ctx, span := p.tracer.Start(ctx, "plugin.external_authentication_url")
	defer span.End()

	cfg, appErr := p.configuration(ctx)
	if appErr != nil {
		return nil, appErr
	}
	if !cfg.Active {
		return previous, nil
	}

	redirectTarget := payload["redirectUrl"]
	if appErr := p.validateRedirectURL(redirectTarget); appErr != nil {
		return nil, appErr
	}

	client, appErr := p.sessionClient(cfg)
	if appErr != nil {
		return nil, appErr
	}

	state, err := oidc.GenerateState()
	if err != nil {
		return nil, errors.Internal(err)
	}

	redirectURI := p.callbackURL() + "?redirectUrl=" + url.QueryEscape(redirectTarget)
	authorizationURL := client.AuthorizationURL(redirectURI, state)

	p.log.Debug("built authorization url", logger.Fields(
		logger.FieldClientID, cfg.ClientID,
		logger.FieldOperation, "external_authentication_url",
	))
	return &AuthenticationData{AuthorizationURL: authorizationURL}, nil
}
