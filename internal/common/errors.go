// Package common defines shared sentinel errors, the typed authentication
// error used across service and transport layers, and small crypto/random
// helpers. Callers match sentinels with errors.Is and extract auth codes
// with CodeOf.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
)

// AuthCode discriminates authentication failures. The code is safe to expose
// to clients for UX branching; the attached message is deliberately generic
// and never reveals which part of a credential was wrong.
type AuthCode int

const (
	CodeInvalidCredentials AuthCode = iota + 1
	CodeEmailAlreadyUsed
	CodeUserNotFound
	CodeTokenExpired
	CodeTokenInvalidSignature
	CodeTokenMalformed
	CodeTokenUnsupported
	CodeTokenInvalidFormat
	CodeRefreshTokenInvalid
	CodeRefreshTokenExpired
	CodeRefreshTokenReplay
	CodeAccountDisabled
	CodeAccountLocked
)

// String returns a stable machine-readable identifier, used in response
// bodies and log/metric attributes.
func (c AuthCode) String() string {
	switch c {
	case CodeInvalidCredentials:
		return "invalid_credentials"
	case CodeEmailAlreadyUsed:
		return "email_already_used"
	case CodeUserNotFound:
		return "user_not_found"
	case CodeTokenExpired:
		return "token_expired"
	case CodeTokenInvalidSignature:
		return "token_invalid_signature"
	case CodeTokenMalformed:
		return "token_malformed"
	case CodeTokenUnsupported:
		return "token_unsupported"
	case CodeTokenInvalidFormat:
		return "token_invalid_format"
	case CodeRefreshTokenInvalid:
		return "refresh_token_invalid"
	case CodeRefreshTokenExpired:
		return "refresh_token_expired"
	case CodeRefreshTokenReplay:
		return "refresh_token_replay"
	case CodeAccountDisabled:
		return "account_disabled"
	case CodeAccountLocked:
		return "account_locked"
	}
	return "unknown"
}

// AuthError is the single error type covering the authentication failure
// taxonomy. It carries no context beyond the code so that nothing sensitive
// can leak through error chains.
type AuthError struct {
	Code AuthCode
}

func (e *AuthError) Error() string {
	switch e.Code {
	case CodeEmailAlreadyUsed:
		return "email already used"
	case CodeAccountDisabled:
		return "account disabled"
	case CodeAccountLocked:
		return "account locked"
	default:
		return "authentication failed"
	}
}

// Is makes two AuthErrors with the same code match under errors.Is.
func (e *AuthError) Is(target error) bool {
	var other *AuthError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewAuthError returns an AuthError with the given code.
func NewAuthError(code AuthCode) error {
	return &AuthError{Code: code}
}

// CodeOf extracts the AuthCode from err. The second result is false when err
// is not an AuthError.
func CodeOf(err error) (AuthCode, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return 0, false
}
