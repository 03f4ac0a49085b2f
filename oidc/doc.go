// Package oidc verifies OpenID Connect ID tokens against a provider's
// published JSON Web Key Set.
//
// The key set is cached as an immutable snapshot behind an atomic
// pointer, so concurrent verifications never block each other. When a
// token arrives signed with an unknown key the set is refreshed once
// (key rotation) before the token is rejected.
package oidc
