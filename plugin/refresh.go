package plugin

import (
	"context"
	"crypto/subtle"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/logger"
	"github.com/kbukum/oidcauth/oidc"
	"github.com/kbukum/oidcauth/user"
)

// ExternalRefresh exchanges a valid application refresh token (plus its
// matching CSRF token) for a fresh set of application tokens. The refresh
// token is taken from the payload when supplied, otherwise from the
// refresh cookie. When the plugin is inactive the previous chain value
// passes through unchanged.
//
// Every failure below this layer surfaces as a validation error with the
// original cause preserved, so callers see a uniform 4xx and logs keep the
// real reason.
func (p *Plugin) ExternalRefresh(ctx context.Context, payload Payload, req *Request, previous *TokenData) (*TokenData, *errors.AppError) {
	ctx, span := p.tracer.Start(ctx, "plugin.external_refresh")
	defer span.End()

	cfg, appErr := p.configuration(ctx)
	if appErr != nil {
		return nil, appErr
	}
	if !cfg.Active {
		return previous, nil
	}

	refreshToken := payload["refreshToken"]
	if refreshToken == "" {
		refreshToken = req.Cookie(RefreshTokenCookieName)
	}
	if refreshToken == "" {
		return nil, errors.MissingField("refreshToken")
	}

	claims, appErr := p.tokens.DecodeRefresh(refreshToken)
	if appErr != nil {
		return nil, asValidation(appErr)
	}

	csrfToken := payload["csrfToken"]
	if csrfToken == "" || subtle.ConstantTimeCompare([]byte(csrfToken), []byte(claims.CSRFToken)) != 1 {
		return nil, errors.CSRFMismatch()
	}

	client, appErr := p.sessionClient(cfg)
	if appErr != nil {
		return nil, appErr
	}
	idpPayload, appErr := client.Refresh(ctx, claims.OAuthRefreshToken)
	if appErr != nil {
		p.log.WithError(appErr).Warn("provider refresh failed", logger.Fields(
			logger.FieldOperation, "external_refresh",
		))
		return nil, asValidation(appErr)
	}

	verifier, appErr := p.idTokenVerifier(cfg)
	if appErr != nil {
		return nil, appErr
	}
	idClaims, appErr := verifier.VerifyIDToken(ctx, idpPayload.IDToken)
	if appErr != nil {
		return nil, asValidation(appErr)
	}

	provisioner := user.NewProvisioner(p.users, cfg.ActivateNewUsers)
	account, appErr := provisioner.GetOrCreate(ctx, user.Identity{
		Subject:   idClaims.Subject,
		Email:     idClaims.Email,
		FirstName: idClaims.GivenName,
		LastName:  idClaims.FamilyName,
	})
	if appErr != nil {
		return nil, appErr
	}

	accessToken, appErr := p.tokens.IssueAccess(account.ID, account.Email, idpPayload.AccessToken, idClaims.Expiry())
	if appErr != nil {
		return nil, appErr
	}

	// CSRF rotates with every refresh; the provider refresh token rotates
	// when the provider returned a new one.
	newCSRF, err := oidc.GenerateCSRFToken()
	if err != nil {
		return nil, errors.Internal(err)
	}
	newRefreshToken, appErr := p.tokens.IssueRefresh(idpPayload.RefreshToken, newCSRF)
	if appErr != nil {
		return nil, appErr
	}

	return &TokenData{
		Token:        accessToken,
		RefreshToken: newRefreshToken,
		CSRFToken:    newCSRF,
	}, nil
}
