package oidc

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/httpclient"
)

// supportedAlgs are the signature algorithms accepted for ID tokens.
var supportedAlgs = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// IDTokenClaims are the claims extracted from a verified ID token.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Nonce         string `json:"nonce"`
}

// Expiry returns the token's expiration time, or the zero time when the
// token carries no exp claim.
func (c *IDTokenClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Verifier validates ID token signatures and claims against a cached JWKS.
type Verifier struct {
	config Config
	keys   *KeySet
}

// NewVerifier creates a Verifier fetching keys from cfg.JWKSURL.
func NewVerifier(cfg Config, client *httpclient.Client) (*Verifier, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Verifier{
		config: cfg,
		keys:   NewKeySet(cfg.JWKSURL, client),
	}, nil
}

// KeySet exposes the underlying key cache, mainly so callers can warm it.
func (v *Verifier) KeySet() *KeySet {
	return v.keys
}

// VerifyIDToken checks the token's signature against the provider's JWKS
// and validates its registered claims. When verification fails with the
// cached keys the set is refreshed and the token is checked once more, so
// a provider rotating keys under an unchanged kid does not lock users out.
func (v *Verifier) VerifyIDToken(ctx context.Context, rawToken string) (*IDTokenClaims, *errors.AppError) {
	claims, err := v.parse(ctx, rawToken)
	if err == nil {
		return claims, nil
	}

	if stderrors.Is(err, jwt.ErrTokenSignatureInvalid) {
		if refreshErr := v.keys.Refresh(ctx); refreshErr != nil {
			return nil, v.translate(refreshErr)
		}
		claims, err = v.parse(ctx, rawToken)
		if err == nil {
			return claims, nil
		}
	}

	return nil, v.translate(err)
}

func (v *Verifier) parse(ctx context.Context, rawToken string) (*IDTokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(supportedAlgs),
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	claims := &IDTokenClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token header missing kid")
		}
		return v.keys.Key(ctx, kid)
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// translate maps verification failures onto the module's error types.
// Infrastructure failures (JWKS unreachable) pass through untouched so
// callers can distinguish a bad token from a broken provider.
func (v *Verifier) translate(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrCodeExternalService, errors.ErrCodeTimeout, errors.ErrCodeConnectionFailed:
			return appErr
		}
	}
	var httpErr *httpclient.Error
	if stderrors.As(err, &httpErr) {
		return errors.ExternalService("JWKS", err)
	}
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		return errors.TokenExpired().WithCause(err)
	}
	return errors.IdentityVerification(err)
}
