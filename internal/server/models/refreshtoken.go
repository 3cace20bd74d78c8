package models

import "time"

// RefreshTokenStatus is the stored state of a refresh-token record.
//
// Transitions: active -> rotated (successful redemption, exactly once) and
// active -> revoked (logout, revoke-all, replay cascade). Rotated and revoked
// are terminal; a replay attempt against a terminal record revokes the whole
// family. Expiry is derived from ExpiresAt at redemption time, never stored.
type RefreshTokenStatus string

const (
	RefreshTokenActive  RefreshTokenStatus = "active"
	RefreshTokenRotated RefreshTokenStatus = "rotated"
	RefreshTokenRevoked RefreshTokenStatus = "revoked"
)

// RefreshToken is the persisted record of an issued refresh token. Only the
// SHA-256 hash of the raw token is stored; the raw value exists transiently
// in the issuance response and the client cookie.
//
// FamilyID ties together every record descended from one original issuance
// through rotation; at most one record per family is active. ParentID points
// at the record this one was rotated from, for audit of the lineage.
// RememberMe is carried so that rotated children inherit the lifetime chosen
// at first issuance. Records are never deleted here; cleanup of long-expired
// rows belongs to external housekeeping.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	FamilyID   string
	ParentID   *string
	Status     RefreshTokenStatus
	RememberMe bool
	IssuedAt   time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}
