package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FakeIdP is an in-process OpenID Connect provider. It serves
// /.well-known/jwks.json and /oauth/token and signs ID tokens with a
// generated RSA key.
type FakeIdP struct {
	Server *httptest.Server

	key *rsa.PrivateKey
	kid string

	mu            sync.Mutex
	tokenStatus   int
	tokenResponse map[string]any
	tokenRequests []map[string]string
}

// NewFakeIdP starts a fake provider. It is shut down automatically when
// the test finishes.
func NewFakeIdP(t *testing.T) *FakeIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}

	idp := &FakeIdP{
		key:         key,
		kid:         "test-kid",
		tokenStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", idp.serveJWKS)
	mux.HandleFunc("/oauth/token", idp.serveToken)
	idp.Server = httptest.NewServer(mux)
	t.Cleanup(idp.Server.Close)
	return idp
}

// JWKSURL returns the provider's JWKS endpoint.
func (idp *FakeIdP) JWKSURL() string {
	return idp.Server.URL + "/.well-known/jwks.json"
}

// TokenURL returns the provider's token endpoint.
func (idp *FakeIdP) TokenURL() string {
	return idp.Server.URL + "/oauth/token"
}

// AuthorizationURL returns a plausible authorization endpoint. The fake
// never serves it; initiation tests only inspect the built URL.
func (idp *FakeIdP) AuthorizationURL() string {
	return idp.Server.URL + "/authorize"
}

// MintIDToken signs an ID token with the provider's key. Claims given by
// the caller override the defaults.
func (idp *FakeIdP) MintIDToken(t *testing.T, overrides map[string]any) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":         idp.Server.URL,
		"aud":         "client_id",
		"sub":         "oauth|1234",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"email":       "admin@example.com",
		"given_name":  "Admin",
		"family_name": "Example",
	}
	for k, v := range overrides {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = idp.kid
	signed, err := token.SignedString(idp.key)
	if err != nil {
		t.Fatalf("sign ID token: %v", err)
	}
	return signed
}

// SetTokenResponse sets the body served by the token endpoint.
func (idp *FakeIdP) SetTokenResponse(status int, body map[string]any) {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	idp.tokenStatus = status
	idp.tokenResponse = body
}

// TokenRequests returns the form values of every token-endpoint call.
func (idp *FakeIdP) TokenRequests() []map[string]string {
	idp.mu.Lock()
	defer idp.mu.Unlock()
	out := make([]map[string]string, len(idp.tokenRequests))
	copy(out, idp.tokenRequests)
	return out
}

func (idp *FakeIdP) serveJWKS(w http.ResponseWriter, _ *http.Request) {
	doc := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": idp.kid,
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(idp.key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(idp.key.PublicKey.E)).Bytes()),
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

func (idp *FakeIdP) serveToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := make(map[string]string, len(r.Form))
	for k := range r.Form {
		form[k] = r.Form.Get(k)
	}

	idp.mu.Lock()
	idp.tokenRequests = append(idp.tokenRequests, form)
	status := idp.tokenStatus
	body := idp.tokenResponse
	idp.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
