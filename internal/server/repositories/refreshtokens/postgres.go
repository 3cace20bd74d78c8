// Package refreshtokens provides the PostgreSQL-backed repository for
// refresh-token records.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yassinebz/expensetracker/internal/common"
	"github.com/yassinebz/expensetracker/internal/dbx"
	"github.com/yassinebz/expensetracker/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens
			(id, user_id, token_hash, family_id, parent_id, status, remember_me, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.FamilyID, token.ParentID,
		token.Status, token.RememberMe, token.IssuedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, family_id, parent_id, status, remember_me, issued_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	token := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.FamilyID, &token.ParentID,
		&token.Status, &token.RememberMe, &token.IssuedAt, &token.ExpiresAt, &token.RevokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// MarkRotated is the serialization point of rotation: the WHERE clause only
// matches an active record, so of two concurrent redemptions exactly one
// observes an affected row.
func (r *PostgresRepository) MarkRotated(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE refresh_tokens SET status = $3
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, models.RefreshTokenActive, models.RefreshTokenRotated)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRepository) MarkRevoked(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE refresh_tokens SET status = $3, revoked_at = $4
		WHERE id = $1 AND status = $2
	`
	if _, err := r.db.ExecContext(ctx, query, id, models.RefreshTokenActive, models.RefreshTokenRevoked, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RevokeFamily(ctx context.Context, familyID string, at time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens SET status = $2, revoked_at = $3
		WHERE family_id = $1 AND status <> $2
	`
	res, err := r.db.ExecContext(ctx, query, familyID, models.RefreshTokenRevoked, at)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}

func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens SET status = $3, revoked_at = $4
		WHERE user_id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, models.RefreshTokenActive, models.RefreshTokenRevoked, at)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
