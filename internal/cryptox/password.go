// Package cryptox wraps the password hashing primitive. Callers treat it as
// a black box: hash on write, verify on read, no reversible operations.
package cryptox

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt hash from the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether candidate matches the stored hash. The
// comparison is constant-time inside bcrypt.
func VerifyPassword(hash string, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// dummyHash is a valid bcrypt hash of an unguessable random value. Login
// verifies against it when the email is unknown so that the request costs
// the same as a real password check.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// VerifyDummy burns one bcrypt comparison and always returns false.
func VerifyDummy(candidate string) bool {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(candidate))
	return false
}
