package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Validation errors (caller input)
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeCSRFMismatch indicates the presented CSRF token does not match
	// the one bound into the refresh token.
	ErrCodeCSRFMismatch ErrorCode = "CSRF_MISMATCH"
)

// Configuration errors (surfaced at configuration-save time)
const (
	// ErrCodeInvalidConfiguration indicates plugin settings are missing or malformed.
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// Token errors
const (
	// ErrCodeTokenExpired indicates the token has expired.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInvalidToken indicates the token is malformed or its signature is bad.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	// ErrCodeIdentityVerification indicates an ID token failed signature or
	// claim validation against the provider's key set.
	ErrCodeIdentityVerification ErrorCode = "IDENTITY_VERIFICATION_FAILED"
)

// Upstream errors (identity provider)
const (
	// ErrCodeExternalService indicates an error response from the identity provider.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeTimeout indicates an outbound request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnectionFailed indicates a failed connection to the identity provider.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
)

// Resource and internal errors
const (
	// ErrCodeNotFound indicates the requested resource or route was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExternalService:  true,
	ErrCodeTimeout:          true,
	ErrCodeConnectionFailed: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
