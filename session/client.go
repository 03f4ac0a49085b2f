package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/httpclient"
)

// TokenPayload holds the tokens returned by the provider's token endpoint.
type TokenPayload struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	ExpiresAt    time.Time
}

// Client performs the OAuth2 authorization-code flow against one provider.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a Client. All token-endpoint calls go through the provided
// HTTP client so timeouts and transport settings apply uniformly.
func New(cfg Config, client *httpclient.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     cfg,
		httpClient: client.Unwrap(),
	}, nil
}

// AuthorizationURL builds the provider URL the user is redirected to.
// The state value is echoed back by the provider and must be checked by
// the caller on return.
func (c *Client) AuthorizationURL(redirectURI, state string) string {
	return c.oauth(redirectURI).AuthCodeURL(state)
}

// ExchangeCode swaps the authorization code carried by the provider's
// callback for tokens. authorizationResponse is the full inbound callback
// URL; redirectURI must match the one used to build the authorization URL.
func (c *Client) ExchangeCode(ctx context.Context, authorizationResponse *url.URL, redirectURI string) (*TokenPayload, *errors.AppError) {
	query := authorizationResponse.Query()
	if errCode := query.Get("error"); errCode != "" {
		cause := fmt.Errorf("provider returned %s: %s", errCode, query.Get("error_description"))
		return nil, errors.IdentityVerification(cause)
	}
	code := query.Get("code")
	if code == "" {
		return nil, errors.MissingField("code")
	}

	token, err := c.oauth(redirectURI).Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, c.translate("exchange authorization code", err)
	}
	return payloadFromToken(token), nil
}

// Refresh obtains a fresh provider session from a refresh token. The
// returned payload carries the provider's current refresh token, which may
// differ from the input when the provider rotates them.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPayload, *errors.AppError) {
	if refreshToken == "" {
		return nil, errors.MissingField("refresh_token")
	}

	source := c.oauth("").TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, c.translate("refresh token", err)
	}

	payload := payloadFromToken(token)
	if payload.RefreshToken == "" {
		payload.RefreshToken = refreshToken
	}
	return payload, nil
}

func (c *Client) oauth(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       c.config.Scopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.config.AuthorizationURL,
			TokenURL: c.config.TokenURL,
		},
	}
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// translate maps token-endpoint failures onto the module's error types.
// A 4xx means the provider rejected the grant; anything else is an
// infrastructure failure.
func (c *Client) translate(operation string, err error) *errors.AppError {
	var retrieveErr *oauth2.RetrieveError
	if stderrors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= 400 && retrieveErr.Response.StatusCode < 500 {
			return errors.IdentityVerification(err)
		}
		return errors.ExternalService("OAuth2 token endpoint", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(operation).WithCause(err)
	}
	return errors.ExternalService("OAuth2 token endpoint", err)
}

func payloadFromToken(token *oauth2.Token) *TokenPayload {
	payload := &TokenPayload{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		payload.IDToken = idToken
	}
	return payload
}
