// Package session drives the OAuth2 side of the login flow: building the
// authorization redirect, exchanging the returned code for provider
// tokens, and refreshing an expired provider session.
package session
