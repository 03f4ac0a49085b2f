package plugin

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/oidcauth/config"
	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/httpclient"
	"github.com/kbukum/oidcauth/logger"
	"github.com/kbukum/oidcauth/oidc"
	"github.com/kbukum/oidcauth/session"
	"github.com/kbukum/oidcauth/tokens"
	"github.com/kbukum/oidcauth/user"
)

// Plugin orchestrates the OpenID Connect authentication flow.
//
// Configuration is loaded from the Store once per operation, so the host
// can change provider settings without restarting. The JWKS verifier is
// the one piece of cached state and is rebuilt when the relevant settings
// change.
type Plugin struct {
	store      config.Store
	settings   config.Settings
	tokens     *tokens.Service
	users      user.Repository
	httpClient *httpclient.Client

	log    *logger.Logger
	tracer trace.Tracer

	verifierMu  sync.Mutex
	verifier    *oidc.Verifier
	verifierKey string
}

// New creates a Plugin.
func New(store config.Store, settings config.Settings, tokenService *tokens.Service, users user.Repository, httpClient *httpclient.Client) (*Plugin, error) {
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Plugin{
		store:      store,
		settings:   settings,
		tokens:     tokenService,
		users:      users,
		httpClient: httpClient,
		log:        logger.WithComponent("plugin.oidc"),
		tracer:     otel.Tracer("oidcauth/plugin"),
	}, nil
}

// configuration loads and validates the plugin configuration.
func (p *Plugin) configuration(ctx context.Context) (*config.Configuration, *errors.AppError) {
	cfg, err := p.store.GetConfiguration(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, validationErr
	}
	return cfg, nil
}

// sessionClient builds the OAuth2 client for the current configuration.
func (p *Plugin) sessionClient(cfg *config.Configuration) (*session.Client, *errors.AppError) {
	client, err := session.New(session.Config{
		ClientID:           cfg.ClientID,
		ClientSecret:       cfg.ClientSecret,
		AuthorizationURL:   cfg.OAuthAuthorizationURL,
		TokenURL:           cfg.OAuthTokenURL,
		EnableRefreshToken: cfg.EnableRefreshToken,
	}, p.httpClient)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.Internal(err)
	}
	return client, nil
}

// idTokenVerifier returns a verifier for the current configuration. The
// verifier (and its JWKS cache) is reused across calls until the JWKS URL
// or client ID changes.
func (p *Plugin) idTokenVerifier(cfg *config.Configuration) (*oidc.Verifier, *errors.AppError) {
	key := cfg.JSONWebKeySetURL + "|" + cfg.ClientID

	p.verifierMu.Lock()
	defer p.verifierMu.Unlock()

	if p.verifier != nil && p.verifierKey == key {
		return p.verifier, nil
	}

	verifier, err := oidc.NewVerifier(oidc.Config{
		JWKSURL:  cfg.JSONWebKeySetURL,
		Audience: cfg.ClientID,
	}, p.httpClient)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.Internal(err)
	}

	p.verifier = verifier
	p.verifierKey = key
	return verifier, nil
}

// callbackURL is the plugin's own webhook endpoint the provider redirects
// back to after authorization.
func (p *Plugin) callbackURL() string {
	return strings.TrimRight(p.settings.SiteURL, "/") + "/plugins/" + p.settings.PluginID + "/callback"
}

// validateRedirectURL checks a caller-supplied redirect target.
func (p *Plugin) validateRedirectURL(raw string) *errors.AppError {
	if raw == "" {
		return errors.MissingField("redirectUrl")
	}
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return errors.InvalidFormat("redirectUrl", "absolute URL")
	}
	if !p.settings.HostAllowed(parsed.Hostname()) {
		return errors.Validation("redirectUrl points to a host that is not allowed").
			WithDetail("host", parsed.Hostname())
	}
	return nil
}

// asValidation translates an internal failure into the caller-facing
// validation error, preserving the original as the cause for logging.
// Errors that are already caller input problems pass through unchanged.
func asValidation(appErr *errors.AppError) *errors.AppError {
	switch appErr.Code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeMissingField, errors.ErrCodeInvalidFormat,
		errors.ErrCodeCSRFMismatch, errors.ErrCodeInvalidConfiguration:
		return appErr
	}
	return errors.Validation(appErr.Message).WithCause(appErr)
}
