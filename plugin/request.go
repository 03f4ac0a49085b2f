package plugin

import "net/url"

// RefreshTokenCookieName is the cookie the refresh token is read from when
// the caller does not pass one explicitly. Stable contract with callers.
const RefreshTokenCookieName = "refreshToken"

// Payload carries the caller-supplied fields of an operation.
type Payload map[string]string

// Request is the transport-neutral view of an inbound HTTP request.
type Request struct {
	Method  string
	URL     *url.URL
	Cookies map[string]string
}

// Cookie returns the named cookie value, or "" when absent.
func (r *Request) Cookie(name string) string {
	if r == nil || r.Cookies == nil {
		return ""
	}
	return r.Cookies[name]
}

// Response is the transport-neutral view of an outbound HTTP response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       any
}

// AuthenticationData is the result of initiating authentication.
type AuthenticationData struct {
	AuthorizationURL string `json:"authorizationUrl"`
}

// TokenData is the result of a completed login or refresh.
type TokenData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	CSRFToken    string `json:"csrfToken"`
}

// LogoutData is the result of building a provider logout URL.
type LogoutData struct {
	LogoutURL string `json:"logoutUrl,omitempty"`
}
