package plugin

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/oidcauth/config"
	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/logger"
	"github.com/kbukum/oidcauth/oidc"
	"github.com/kbukum/oidcauth/user"
)

// Webhook routes inbound plugin requests. Only the /callback suffix is
// served; anything else, or an inactive plugin, yields a not-found
// response so the host's router can fall through.
func (p *Plugin) Webhook(ctx context.Context, req *Request) *Response {
	cfg, appErr := p.configuration(ctx)
	if appErr != nil || !cfg.Active {
		return notFoundResponse()
	}
	if !strings.HasSuffix(req.URL.Path, "/callback") {
		return notFoundResponse()
	}
	return p.handleAuthCallback(ctx, cfg, req)
}

// handleAuthCallback finishes a login after the provider redirects back
// with an authorization code. On success the browser is redirected to the
// caller's original redirectUrl with the issued tokens appended as query
// parameters.
func (p *Plugin) handleAuthCallback(ctx context.Context, cfg *config.Configuration, req *Request) *Response {
	ctx, span := p.tracer.Start(ctx, "plugin.handle_auth_callback")
	defer span.End()

	query := req.URL.Query()
	redirectTarget := query.Get("redirectUrl")
	if redirectTarget == "" {
		return errorResponse(errors.MissingField("redirectUrl"))
	}
	if appErr := p.validateRedirectURL(redirectTarget); appErr != nil {
		return errorResponse(appErr)
	}

	data, appErr := p.completeLogin(ctx, cfg, req)
	if appErr != nil {
		p.log.WithError(appErr).Error("authentication callback failed", logger.Fields(
			logger.FieldOperation, "handle_auth_callback",
		))
		return errorResponse(asValidation(appErr))
	}

	location, err := appendTokenParams(redirectTarget, data)
	if err != nil {
		return errorResponse(errors.Internal(err))
	}
	return &Response{
		StatusCode: http.StatusFound,
		Headers:    map[string]string{"Location": location},
	}
}

// completeLogin exchanges the code, verifies the identity, provisions the
// user, and issues the application tokens.
func (p *Plugin) completeLogin(ctx context.Context, cfg *config.Configuration, req *Request) (*TokenData, *errors.AppError) {
	client, appErr := p.sessionClient(cfg)
	if appErr != nil {
		return nil, appErr
	}

	// The exchange redirect_uri must match the one used at initiation
	// byte-for-byte, so the caller's query parameters are stripped.
	payload, appErr := client.ExchangeCode(ctx, req.URL, p.callbackURL())
	if appErr != nil {
		return nil, appErr
	}

	verifier, appErr := p.idTokenVerifier(cfg)
	if appErr != nil {
		return nil, appErr
	}
	claims, appErr := verifier.VerifyIDToken(ctx, payload.IDToken)
	if appErr != nil {
		return nil, appErr
	}

	provisioner := user.NewProvisioner(p.users, cfg.ActivateNewUsers)
	account, appErr := provisioner.GetOrCreate(ctx, user.Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	})
	if appErr != nil {
		return nil, appErr
	}

	accessToken, appErr := p.tokens.IssueAccess(account.ID, account.Email, payload.AccessToken, claims.Expiry())
	if appErr != nil {
		return nil, appErr
	}

	data := &TokenData{Token: accessToken}
	if cfg.EnableRefreshToken && payload.RefreshToken != "" {
		csrfToken, err := oidc.GenerateCSRFToken()
		if err != nil {
			return nil, errors.Internal(err)
		}
		refreshToken, appErr := p.tokens.IssueRefresh(payload.RefreshToken, csrfToken)
		if appErr != nil {
			return nil, appErr
		}
		data.RefreshToken = refreshToken
		data.CSRFToken = csrfToken
	}

	p.log.Info("user authenticated", logger.Fields(
		logger.FieldUserID, account.ID,
		logger.FieldEmail, account.Email,
	))
	return data, nil
}

// appendTokenParams adds the issued tokens to the caller's redirect URL.
func appendTokenParams(redirectTarget string, data *TokenData) (string, error) {
	parsed, err := url.Parse(redirectTarget)
	if err != nil {
		return "", err
	}
	q := parsed.Query()
	q.Set("token", data.Token)
	if data.RefreshToken != "" {
		q.Set("refreshToken", data.RefreshToken)
		q.Set("csrfToken", data.CSRFToken)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func notFoundResponse() *Response {
	return &Response{
		StatusCode: http.StatusNotFound,
		Body:       errors.NotFound("webhook").ToResponse(),
	}
}

func errorResponse(appErr *errors.AppError) *Response {
	return &Response{
		StatusCode: appErr.HTTPStatus,
		Body:       appErr.ToResponse(),
	}
}
