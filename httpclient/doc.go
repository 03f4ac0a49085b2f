// Package httpclient provides a small HTTP client with bounded timeouts
// and classified errors. The module uses it for outbound identity-provider
// calls such as fetching the JSON Web Key Set.
package httpclient
