package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/httpclient"
)

func newTestClient(t *testing.T, tokenURL string, enableRefresh bool) *Client {
	t.Helper()
	hc, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{
		ClientID:           "client_id",
		ClientSecret:       "client_secret",
		AuthorizationURL:   "https://saleor.auth.com/auth",
		TokenURL:           tokenURL,
		EnableRefreshToken: enableRefresh,
	}, hc)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func tokenEndpoint(t *testing.T, handler func(r *http.Request) (int, map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		status, body := handler(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_AuthorizationURL(t *testing.T) {
	c := newTestClient(t, "https://saleor.auth.com/token", true)

	raw := c.AuthorizationURL("https://shop.example.com/callback?redirectUrl=http%3A%2F%2Flocalhost%3A3000", "state-123")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("client_id") != "client_id" {
		t.Errorf("unexpected client_id: %s", q.Get("client_id"))
	}
	if q.Get("state") != "state-123" {
		t.Errorf("unexpected state: %s", q.Get("state"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("unexpected response_type: %s", q.Get("response_type"))
	}
	if got := q.Get("scope"); got != "openid profile email offline_access" {
		t.Errorf("unexpected scope: %q", got)
	}
	if !strings.Contains(q.Get("redirect_uri"), "redirectUrl=") {
		t.Errorf("redirect_uri should carry the caller redirect: %s", q.Get("redirect_uri"))
	}
}

func TestClient_AuthorizationURL_NoOfflineAccessWithoutRefresh(t *testing.T) {
	c := newTestClient(t, "https://saleor.auth.com/token", false)

	raw := c.AuthorizationURL("https://shop.example.com/callback", "s")
	u, _ := url.Parse(raw)
	if got := u.Query().Get("scope"); got != "openid profile email" {
		t.Errorf("unexpected scope: %q", got)
	}
}

func TestClient_ExchangeCode_Success(t *testing.T) {
	srv := tokenEndpoint(t, func(r *http.Request) (int, map[string]any) {
		if r.Form.Get("grant_type") != "authorization_code" {
			t.Errorf("unexpected grant_type: %s", r.Form.Get("grant_type"))
		}
		if r.Form.Get("code") != "the-code" {
			t.Errorf("unexpected code: %s", r.Form.Get("code"))
		}
		if !strings.HasSuffix(r.Form.Get("redirect_uri"), "/callback") {
			t.Errorf("unexpected redirect_uri: %s", r.Form.Get("redirect_uri"))
		}
		return http.StatusOK, map[string]any{
			"access_token":  "provider-access",
			"refresh_token": "provider-refresh",
			"id_token":      "provider-id-token",
			"token_type":    "Bearer",
			"expires_in":    3600,
		}
	})

	c := newTestClient(t, srv.URL, true)
	callback, _ := url.Parse("https://shop.example.com/callback?code=the-code&state=s")
	payload, appErr := c.ExchangeCode(context.Background(), callback, "https://shop.example.com/callback")
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if payload.AccessToken != "provider-access" {
		t.Errorf("unexpected access token: %s", payload.AccessToken)
	}
	if payload.RefreshToken != "provider-refresh" {
		t.Errorf("unexpected refresh token: %s", payload.RefreshToken)
	}
	if payload.IDToken != "provider-id-token" {
		t.Errorf("unexpected id token: %s", payload.IDToken)
	}
	if payload.ExpiresAt.IsZero() {
		t.Error("expected expiry to be populated")
	}
}

func TestClient_ExchangeCode_ProviderError(t *testing.T) {
	c := newTestClient(t, "https://saleor.auth.com/token", true)

	callback, _ := url.Parse("https://shop.example.com/callback?error=access_denied&error_description=denied")
	_, appErr := c.ExchangeCode(context.Background(), callback, "https://shop.example.com/callback")
	if appErr == nil {
		t.Fatal("expected error for provider-reported failure")
	}
	if appErr.Code != errors.ErrCodeIdentityVerification {
		t.Errorf("expected %s, got %s", errors.ErrCodeIdentityVerification, appErr.Code)
	}
}

func TestClient_ExchangeCode_MissingCode(t *testing.T) {
	c := newTestClient(t, "https://saleor.auth.com/token", true)

	callback, _ := url.Parse("https://shop.example.com/callback?state=s")
	_, appErr := c.ExchangeCode(context.Background(), callback, "https://shop.example.com/callback")
	if appErr == nil {
		t.Fatal("expected error for missing code")
	}
	if appErr.Code != errors.ErrCodeMissingField {
		t.Errorf("expected %s, got %s", errors.ErrCodeMissingField, appErr.Code)
	}
}

func TestClient_ExchangeCode_RejectedGrant(t *testing.T) {
	srv := tokenEndpoint(t, func(_ *http.Request) (int, map[string]any) {
		return http.StatusBadRequest, map[string]any{"error": "invalid_grant"}
	})

	c := newTestClient(t, srv.URL, true)
	callback, _ := url.Parse("https://shop.example.com/callback?code=expired-code")
	_, appErr := c.ExchangeCode(context.Background(), callback, "https://shop.example.com/callback")
	if appErr == nil {
		t.Fatal("expected error for rejected grant")
	}
	if appErr.Code != errors.ErrCodeIdentityVerification {
		t.Errorf("expected %s, got %s", errors.ErrCodeIdentityVerification, appErr.Code)
	}
}

func TestClient_Refresh_Success(t *testing.T) {
	srv := tokenEndpoint(t, func(r *http.Request) (int, map[string]any) {
		if r.Form.Get("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant_type: %s", r.Form.Get("grant_type"))
		}
		if r.Form.Get("refresh_token") != "old-refresh" {
			t.Errorf("unexpected refresh_token: %s", r.Form.Get("refresh_token"))
		}
		return http.StatusOK, map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"id_token":      "new-id-token",
			"token_type":    "Bearer",
			"expires_in":    3600,
		}
	})

	c := newTestClient(t, srv.URL, true)
	payload, appErr := c.Refresh(context.Background(), "old-refresh")
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if payload.AccessToken != "new-access" {
		t.Errorf("unexpected access token: %s", payload.AccessToken)
	}
	if payload.RefreshToken != "new-refresh" {
		t.Errorf("unexpected refresh token: %s", payload.RefreshToken)
	}
}

func TestClient_Refresh_KeepsInputTokenWhenNotRotated(t *testing.T) {
	srv := tokenEndpoint(t, func(_ *http.Request) (int, map[string]any) {
		return http.StatusOK, map[string]any{
			"access_token": "new-access",
			"id_token":     "new-id-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
	})

	c := newTestClient(t, srv.URL, true)
	payload, appErr := c.Refresh(context.Background(), "old-refresh")
	if appErr != nil {
		t.Fatal(appErr)
	}
	if payload.RefreshToken != "old-refresh" {
		t.Errorf("expected input refresh token to be kept, got %s", payload.RefreshToken)
	}
}

func TestClient_Refresh_Rejected(t *testing.T) {
	srv := tokenEndpoint(t, func(_ *http.Request) (int, map[string]any) {
		return http.StatusUnauthorized, map[string]any{"error": "invalid_grant"}
	})

	c := newTestClient(t, srv.URL, true)
	_, appErr := c.Refresh(context.Background(), "revoked")
	if appErr == nil {
		t.Fatal("expected error for revoked refresh token")
	}
	if appErr.Code != errors.ErrCodeIdentityVerification {
		t.Errorf("expected %s, got %s", errors.ErrCodeIdentityVerification, appErr.Code)
	}
}

func TestClient_Refresh_MissingToken(t *testing.T) {
	c := newTestClient(t, "https://saleor.auth.com/token", true)
	_, appErr := c.Refresh(context.Background(), "")
	if appErr == nil {
		t.Fatal("expected error for empty refresh token")
	}
	if appErr.Code != errors.ErrCodeMissingField {
		t.Errorf("expected %s, got %s", errors.ErrCodeMissingField, appErr.Code)
	}
}

func TestClient_Refresh_ProviderDown(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1/token", true)
	_, appErr := c.Refresh(context.Background(), "refresh")
	if appErr == nil {
		t.Fatal("expected error when the provider is unreachable")
	}
	if appErr.Code != errors.ErrCodeExternalService {
		t.Errorf("expected %s, got %s", errors.ErrCodeExternalService, appErr.Code)
	}
}
