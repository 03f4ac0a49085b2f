package tokens

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/oidcauth/errors"
)

const (
	// TypeAccess marks locally issued access tokens.
	TypeAccess = "access"
	// TypeRefresh marks locally issued refresh tokens.
	TypeRefresh = "refresh"
)

// AccessClaims are the claims carried by a locally issued access token.
// The token expires together with the provider's ID token.
type AccessClaims struct {
	jwt.RegisteredClaims

	Type           string `json:"type"`
	Email          string `json:"email,omitempty"`
	OAuthAccessKey string `json:"oauth_access_key"`
}

// RefreshClaims are the claims carried by a locally issued refresh token.
// The CSRF token must be echoed by the caller on every refresh to prove
// possession.
type RefreshClaims struct {
	jwt.RegisteredClaims

	Type              string `json:"type"`
	OAuthRefreshToken string `json:"oauth_refresh_token"`
	CSRFToken         string `json:"csrf_token"`
}

// Service signs and decodes the module's local tokens with an HMAC secret.
type Service struct {
	cfg Config
}

// NewService creates a token service.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg}, nil
}

// IssueAccess signs an access token for the given user. expiresAt is the
// provider ID token's expiry; when zero the configured TTL applies.
func (s *Service) IssueAccess(userID, email, oauthAccessKey string, expiresAt time.Time) (string, *errors.AppError) {
	now := time.Now()
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.cfg.AccessTokenTTL)
	}
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Type:           TypeAccess,
		Email:          email,
		OAuthAccessKey: oauthAccessKey,
	}
	return s.sign(claims)
}

// IssueRefresh signs a refresh token wrapping the provider refresh token
// and binding it to the given CSRF value.
func (s *Service) IssueRefresh(oauthRefreshToken, csrfToken string) (string, *errors.AppError) {
	now := time.Now()
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTokenTTL)),
		},
		Type:              TypeRefresh,
		OAuthRefreshToken: oauthRefreshToken,
		CSRFToken:         csrfToken,
	}
	return s.sign(claims)
}

// DecodeAccess validates a local access token and returns its claims.
func (s *Service) DecodeAccess(token string) (*AccessClaims, *errors.AppError) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeAccess {
		return nil, errors.InvalidToken().WithCause(fmt.Errorf("expected %s token, got %q", TypeAccess, claims.Type))
	}
	return claims, nil
}

// DecodeRefresh validates a local refresh token and returns its claims.
func (s *Service) DecodeRefresh(token string) (*RefreshClaims, *errors.AppError) {
	claims := &RefreshClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, errors.InvalidToken().WithCause(fmt.Errorf("expected %s token, got %q", TypeRefresh, claims.Type))
	}
	return claims, nil
}

func (s *Service) sign(claims jwt.Claims) (string, *errors.AppError) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", errors.Internal(fmt.Errorf("sign token: %w", err))
	}
	return signed, nil
}

func (s *Service) parse(token string, claims jwt.Claims) *errors.AppError {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return errors.TokenExpired().WithCause(err)
		}
		return errors.InvalidToken().WithCause(err)
	}
	return nil
}
