// Package testutil provides a fake OpenID Connect provider for tests: an
// httptest server exposing a JWKS endpoint and a token endpoint, plus
// helpers for minting ID tokens signed with the server's key.
package testutil
