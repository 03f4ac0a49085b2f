// Package tokens issues and decodes the module's own signed tokens: an
// access token wrapping the provider session and a refresh token that
// carries the provider refresh token bound to a CSRF value.
//
// These are local tokens signed with the host's secret, distinct from the
// provider-issued tokens they wrap.
package tokens
