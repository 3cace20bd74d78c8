// Package auth implements stateless signing and verification of access
// tokens (HS256 JWTs). Verification is a pure function of the token, the
// signing key, and the clock; nothing here touches storage.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yassinebz/expensetracker/internal/common"
)

// Claims are the access-token claims: the user id travels in the standard
// sub claim, the email in a private claim.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// errUnexpectedSigningMethod marks tokens whose header names any algorithm
// other than HS256, including "none".
var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// Signer issues and verifies access tokens with a symmetric key fixed at
// construction. Safe for concurrent use.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner constructs a Signer around the process-wide signing secret.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret, now: time.Now}
}

// Generate produces a signed token with claims
// {sub: userID, email, iat: now, exp: now + ttl}.
func (s *Signer) Generate(userID, email string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates an access token. Failures carry exactly one of
// the token AuthCodes: InvalidFormat (empty/garbage input), Malformed,
// Unsupported (wrong algorithm), InvalidSignature, Expired. Expiry is a
// closed comparison: a token with exp == now is already expired, and no
// leeway is applied around the boundary.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, common.NewAuthError(common.CodeTokenInvalidFormat)
	}

	parser := jwt.NewParser(
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errUnexpectedSigningMethod
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, common.NewAuthError(common.CodeTokenMalformed)
	}

	// The jwt library accepts a token at the exact expiry instant; the
	// contract here is now >= exp fails.
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, common.NewAuthError(common.CodeTokenExpired)
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, errUnexpectedSigningMethod):
		return common.NewAuthError(common.CodeTokenUnsupported)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.NewAuthError(common.CodeTokenMalformed)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.NewAuthError(common.CodeTokenInvalidSignature)
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.NewAuthError(common.CodeTokenExpired)
	default:
		return common.NewAuthError(common.CodeTokenMalformed)
	}
}
