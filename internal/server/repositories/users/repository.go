// Package users declares the server-side repository contract for account
// records.
package users

import (
	"context"

	"github.com/yassinebz/expensetracker/internal/server/models"
)

// Repository defines operations over stored user accounts. Lookups return
// common.ErrorNotFound when the user is absent.
type Repository interface {
	// Create inserts a new user and returns it with the generated id and
	// creation time filled in.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail returns the user with the given normalized email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmail reports whether a user with the given normalized email
	// exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdatePasswordHash replaces the stored password hash for the user.
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
}
