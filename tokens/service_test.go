package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/oidcauth/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{Secret: "test-secret", Issuer: "https://shop.example.com"})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestNewService_RequiresSecret(t *testing.T) {
	if _, err := NewService(Config{}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestService_IssueAccess_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	token, appErr := svc.IssueAccess("user-1", "admin@example.com", "provider-access", expiry)
	if appErr != nil {
		t.Fatal(appErr)
	}

	claims, appErr := svc.DecodeAccess(token)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if claims.Subject != "user-1" {
		t.Errorf("unexpected sub: %s", claims.Subject)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.OAuthAccessKey != "provider-access" {
		t.Errorf("unexpected oauth_access_key: %s", claims.OAuthAccessKey)
	}
	if !claims.ExpiresAt.Time.Equal(expiry) {
		t.Errorf("access token expiry %v should match the provider session expiry %v", claims.ExpiresAt.Time, expiry)
	}
}

func TestService_IssueAccess_FallbackTTL(t *testing.T) {
	svc := newTestService(t)

	token, appErr := svc.IssueAccess("user-1", "", "key", time.Time{})
	if appErr != nil {
		t.Fatal(appErr)
	}
	claims, appErr := svc.DecodeAccess(token)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("expected a future expiry from the fallback TTL")
	}
}

func TestService_IssueRefresh_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, appErr := svc.IssueRefresh("provider-refresh", "csrf-value")
	if appErr != nil {
		t.Fatal(appErr)
	}
	claims, appErr := svc.DecodeRefresh(token)
	if appErr != nil {
		t.Fatal(appErr)
	}
	if claims.OAuthRefreshToken != "provider-refresh" {
		t.Errorf("unexpected oauth_refresh_token: %s", claims.OAuthRefreshToken)
	}
	if claims.CSRFToken != "csrf-value" {
		t.Errorf("unexpected csrf_token: %s", claims.CSRFToken)
	}
}

func TestService_Decode_RejectsWrongType(t *testing.T) {
	svc := newTestService(t)

	access, _ := svc.IssueAccess("user-1", "", "key", time.Time{})
	if _, appErr := svc.DecodeRefresh(access); appErr == nil {
		t.Fatal("access token must not decode as refresh token")
	}

	refresh, _ := svc.IssueRefresh("provider-refresh", "csrf")
	if _, appErr := svc.DecodeAccess(refresh); appErr == nil {
		t.Fatal("refresh token must not decode as access token")
	}
}

func TestService_Decode_RejectsTamperedToken(t *testing.T) {
	svc := newTestService(t)

	token, _ := svc.IssueRefresh("provider-refresh", "csrf")
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, appErr := svc.DecodeRefresh(tampered)
	if appErr == nil {
		t.Fatal("expected error for tampered signature")
	}
	if appErr.Code != errors.ErrCodeInvalidToken {
		t.Errorf("expected %s, got %s", errors.ErrCodeInvalidToken, appErr.Code)
	}
}

func TestService_Decode_RejectsWrongSecret(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService(Config{Secret: "other-secret"})
	if err != nil {
		t.Fatal(err)
	}

	token, _ := svc.IssueRefresh("provider-refresh", "csrf")
	if _, appErr := other.DecodeRefresh(token); appErr == nil {
		t.Fatal("token signed with another secret must not decode")
	}
}

func TestService_Decode_Expired(t *testing.T) {
	svc, err := NewService(Config{Secret: "test-secret", AccessTokenTTL: -time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	token, appErr := svc.IssueAccess("user-1", "", "key", time.Time{})
	if appErr != nil {
		t.Fatal(appErr)
	}
	_, appErr = svc.DecodeAccess(token)
	if appErr == nil {
		t.Fatal("expected error for expired token")
	}
	if appErr.Code != errors.ErrCodeTokenExpired {
		t.Errorf("expected %s, got %s", errors.ErrCodeTokenExpired, appErr.Code)
	}
}
