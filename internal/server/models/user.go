// Package models holds the persistence-facing structs shared by repositories
// and services.
package models

import "time"

// UserStatus reflects the account state maintained by the user store.
// Disabled and locked accounts fail authentication with distinct codes.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
	UserStatusLocked   UserStatus = "locked"
)

// User is an account record. Email is stored normalized (trimmed,
// lowercased) and is unique.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
}
