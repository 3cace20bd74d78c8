// Package refreshtokens declares the server-side repository contract for
// refresh-token records in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/yassinebz/expensetracker/internal/server/models"
)

// Repository defines the storage operations behind refresh-token issuance,
// rotation, and revocation. Lookups return common.ErrorNotFound when no
// record matches. Records are only ever inserted and flipped to terminal
// states; nothing is deleted.
type Repository interface {
	// Create inserts a new record.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindByHash returns the record whose token_hash equals hash. Every
	// redemption goes through this fresh read; validity is never cached.
	FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error)

	// MarkRotated atomically transitions the record from active to rotated.
	// The boolean result reports whether this caller won the transition;
	// a false result means the record was no longer active.
	MarkRotated(ctx context.Context, id string) (bool, error)

	// MarkRevoked transitions the record to revoked if it is still active.
	// Revoking a terminal record is a no-op.
	MarkRevoked(ctx context.Context, id string, at time.Time) error

	// RevokeFamily marks every non-revoked record in the family as revoked
	// and returns the number of affected records.
	RevokeFamily(ctx context.Context, familyID string, at time.Time) (int64, error)

	// RevokeAllForUser marks every active record owned by userID as revoked
	// and returns the number of affected records.
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error)
}
