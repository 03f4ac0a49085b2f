package oidc

import (
	"context"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/oidcauth/errors"
)

func mintIDToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":         "https://saleor.auth.com/",
		"aud":         "client_id",
		"sub":         "oauth|1234",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"email":       "admin@example.com",
		"given_name":  "Admin",
		"family_name": "Example",
	}
}

func newTestVerifier(t *testing.T, jwksURL string) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{
		JWKSURL:  jwksURL,
		Issuer:   "https://saleor.auth.com/",
		Audience: "client_id",
	}, newKeySetClient(t))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestVerifier_VerifyIDToken_Valid(t *testing.T) {
	key := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})

	v := newTestVerifier(t, srv.URL)
	claims, err := v.VerifyIDToken(context.Background(), mintIDToken(t, key, "kid-1", baseClaims()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "oauth|1234" {
		t.Errorf("unexpected sub: %s", claims.Subject)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
	if claims.GivenName != "Admin" || claims.FamilyName != "Example" {
		t.Errorf("unexpected name claims: %s %s", claims.GivenName, claims.FamilyName)
	}
	if claims.Expiry().IsZero() {
		t.Error("expected a populated expiry")
	}
}

func TestVerifier_VerifyIDToken_Expired(t *testing.T) {
	key := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})

	claims := baseClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	v := newTestVerifier(t, srv.URL)
	_, err := v.VerifyIDToken(context.Background(), mintIDToken(t, key, "kid-1", claims))
	if err == nil {
		t.Fatal("expected error for expired token")
	}
	if err.Code != errors.ErrCodeTokenExpired {
		t.Errorf("expected %s, got %s", errors.ErrCodeTokenExpired, err.Code)
	}
}

func TestVerifier_VerifyIDToken_WrongIssuer(t *testing.T) {
	key := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})

	claims := baseClaims()
	claims["iss"] = "https://evil.example.com/"

	v := newTestVerifier(t, srv.URL)
	_, err := v.VerifyIDToken(context.Background(), mintIDToken(t, key, "kid-1", claims))
	if err == nil {
		t.Fatal("expected error for wrong issuer")
	}
	if err.Code != errors.ErrCodeIdentityVerification {
		t.Errorf("expected %s, got %s", errors.ErrCodeIdentityVerification, err.Code)
	}
}

func TestVerifier_VerifyIDToken_WrongAudience(t *testing.T) {
	key := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})

	claims := baseClaims()
	claims["aud"] = "someone_else"

	v := newTestVerifier(t, srv.URL)
	if _, err := v.VerifyIDToken(context.Background(), mintIDToken(t, key, "kid-1", claims)); err == nil {
		t.Fatal("expected error for wrong audience")
	}
}

func TestVerifier_VerifyIDToken_TamperedSignature(t *testing.T) {
	key := newTestRSAKey(t)
	other := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})

	// Signed by a key the provider never published, under a known kid.
	raw := mintIDToken(t, other, "kid-1", baseClaims())

	v := newTestVerifier(t, srv.URL)
	_, err := v.VerifyIDToken(context.Background(), raw)
	if err == nil {
		t.Fatal("expected error for forged signature")
	}
	if err.Code != errors.ErrCodeIdentityVerification {
		t.Errorf("expected %s, got %s", errors.ErrCodeIdentityVerification, err.Code)
	}
}

func TestVerifier_VerifyIDToken_KeyRotation(t *testing.T) {
	oldKey := newTestRSAKey(t)
	newKey := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-old": &oldKey.PublicKey})

	v := newTestVerifier(t, srv.URL)
	if _, err := v.VerifyIDToken(context.Background(), mintIDToken(t, oldKey, "kid-old", baseClaims())); err != nil {
		t.Fatal(err)
	}

	// Provider rotates; a token signed with the new key must verify
	// after a single transparent refresh.
	state.mu.Lock()
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-new": &newKey.PublicKey})
	state.mu.Unlock()

	if _, err := v.VerifyIDToken(context.Background(), mintIDToken(t, newKey, "kid-new", baseClaims())); err != nil {
		t.Fatalf("rotated key should verify: %v", err)
	}
}

func TestVerifier_VerifyIDToken_RotationUnderSameKid(t *testing.T) {
	oldKey := newTestRSAKey(t)
	newKey := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &oldKey.PublicKey})

	v := newTestVerifier(t, srv.URL)
	if err := v.KeySet().Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Key replaced while the kid stays the same: the first attempt fails
	// on the stale cached key and the retry after refresh succeeds.
	state.mu.Lock()
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &newKey.PublicKey})
	state.mu.Unlock()

	if _, err := v.VerifyIDToken(context.Background(), mintIDToken(t, newKey, "kid-1", baseClaims())); err != nil {
		t.Fatalf("expected retry after refresh to verify: %v", err)
	}
}

func TestVerifier_VerifyIDToken_UnreachableJWKS(t *testing.T) {
	key := newTestRSAKey(t)
	v := newTestVerifier(t, "http://127.0.0.1:1/jwks")

	_, err := v.VerifyIDToken(context.Background(), mintIDToken(t, key, "kid-1", baseClaims()))
	if err == nil {
		t.Fatal("expected error when JWKS is unreachable")
	}
	if err.Code == errors.ErrCodeIdentityVerification {
		t.Errorf("infrastructure failure must not be reported as a bad token, got %s", err.Code)
	}
}

func TestVerifier_VerifyIDToken_RejectsAlgNone(t *testing.T) {
	key := newTestRSAKey(t)
	srv, state := newJWKSServer(t)
	state.body = jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})

	token := jwt.NewWithClaims(jwt.SigningMethodNone, baseClaims())
	token.Header["kid"] = "kid-1"
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	v := newTestVerifier(t, srv.URL)
	if _, err := v.VerifyIDToken(context.Background(), raw); err == nil {
		t.Fatal("alg=none token must be rejected")
	}
}

func TestGenerateState_Unique(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("state values must be unique")
	}
}

func TestGenerateCSRFToken_Length(t *testing.T) {
	token, err := GenerateCSRFToken()
	if err != nil {
		t.Fatal(err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(token))
	}
}
