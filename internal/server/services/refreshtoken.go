// Package services contains the server-side business logic of the
// authentication subsystem: refresh-token lifecycle management and the
// orchestration of credential checks and token issuance.
package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yassinebz/expensetracker/internal/common"
	"github.com/yassinebz/expensetracker/internal/dbx"
	"github.com/yassinebz/expensetracker/internal/server/config"
	"github.com/yassinebz/expensetracker/internal/server/models"
	"github.com/yassinebz/expensetracker/internal/server/repositories/repomanager"
)

// errRotationLost signals that another redemption won the active->rotated
// transition first; the caller routes this into the replay cascade.
var errRotationLost = errors.New("rotation lost")

// RefreshTokenService implements issuance, rotation with replay detection,
// and revocation of refresh tokens over the persisted store.
//
// A raw token is shown to the caller exactly once; only its SHA-256 hash is
// persisted. Every token belongs to a family: the set of records descended
// from one original issuance through rotation. Redeeming a token that is no
// longer active is treated as theft and revokes the whole family.
type RefreshTokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	shortTTL    time.Duration
	longTTL     time.Duration
	now         func() time.Time
}

// NewRefreshTokenService constructs a RefreshTokenService using repositories
// and server config.
func NewRefreshTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *RefreshTokenService {
	return &RefreshTokenService{
		db:          db,
		repomanager: m,
		shortTTL:    cfg.RefreshTokenValidityDuration,
		longTTL:     cfg.RefreshTokenRememberMeValidityDuration,
		now:         time.Now,
	}
}

// HashToken returns the hex SHA-256 digest under which a raw refresh token
// is stored and looked up.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *RefreshTokenService) ttlFor(rememberMe bool) time.Duration {
	if rememberMe {
		return s.longTTL
	}
	return s.shortTTL
}

// Issue creates a new active record in a fresh family and returns the raw
// token alongside the stored metadata. The raw value is never persisted.
func (s *RefreshTokenService) Issue(ctx context.Context, userID string, rememberMe bool) (string, *models.RefreshToken, error) {
	raw, err := common.MakeRandHexString(32)
	if err != nil {
		return "", nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	now := s.now()
	token := &models.RefreshToken{
		ID:         uuid.NewString(),
		UserID:     userID,
		TokenHash:  HashToken(raw),
		FamilyID:   uuid.NewString(),
		Status:     models.RefreshTokenActive,
		RememberMe: rememberMe,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.ttlFor(rememberMe)),
	}

	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Create(ctx, token); err != nil {
		return "", nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return raw, token, nil
}

// VerifyAndRotate redeems a raw refresh token: on success the record is
// atomically transitioned to rotated and a child record in the same family
// is created, with expiry computed from the remember-me choice made at first
// issuance. It returns the new raw token, the child record, and the owning
// user id.
//
// Failure modes:
//   - unknown hash: CodeRefreshTokenInvalid;
//   - record already rotated or revoked: the whole family is revoked and
//     CodeRefreshTokenReplay is returned — a replayed token is treated as
//     stolen, not merely stale;
//   - record active but expired: it is revoked and CodeRefreshTokenExpired
//     is returned.
//
// Two concurrent redemptions of the same raw token produce at most one
// success; the loser of the conditional update lands in the replay path.
func (s *RefreshTokenService) VerifyAndRotate(ctx context.Context, raw string) (string, *models.RefreshToken, string, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.FindByHash(ctx, HashToken(raw))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, "", common.NewAuthError(common.CodeRefreshTokenInvalid)
		}
		return "", nil, "", fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Status != models.RefreshTokenActive {
		return "", nil, "", s.cascadeReplay(ctx, token)
	}

	now := s.now()
	if !now.Before(token.ExpiresAt) {
		if err := repo.MarkRevoked(ctx, token.ID, now); err != nil {
			return "", nil, "", fmt.Errorf("error revoking expired refresh token: %w", err)
		}
		return "", nil, "", common.NewAuthError(common.CodeRefreshTokenExpired)
	}

	newRaw, err := common.MakeRandHexString(32)
	if err != nil {
		return "", nil, "", fmt.Errorf("error generating refresh token: %w", err)
	}

	child := &models.RefreshToken{
		ID:         uuid.NewString(),
		UserID:     token.UserID,
		TokenHash:  HashToken(newRaw),
		FamilyID:   token.FamilyID,
		ParentID:   &token.ID,
		Status:     models.RefreshTokenActive,
		RememberMe: token.RememberMe,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.ttlFor(token.RememberMe)),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		won, err := repoTx.MarkRotated(ctx, token.ID)
		if err != nil {
			return fmt.Errorf("error rotating refresh token: %w", err)
		}
		if !won {
			return errRotationLost
		}
		if err := repoTx.Create(ctx, child); err != nil {
			return fmt.Errorf("error storing rotated refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errRotationLost) {
			return "", nil, "", s.cascadeReplay(ctx, token)
		}
		return "", nil, "", err
	}

	return newRaw, child, token.UserID, nil
}

// cascadeReplay revokes every record in the token's family and returns the
// replay error. The cascade is mandatory: a replayed token means the real
// client and a thief both held the same value, so the entire session lineage
// is killed rather than the single record.
func (s *RefreshTokenService) cascadeReplay(ctx context.Context, token *models.RefreshToken) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if _, err := repo.RevokeFamily(ctx, token.FamilyID, s.now()); err != nil {
		return fmt.Errorf("error revoking token family: %w", err)
	}
	return common.NewAuthError(common.CodeRefreshTokenReplay)
}

// Revoke marks the record behind the raw token as revoked. An unknown token
// is a no-op success: logging out with an already-invalid cookie must not
// error.
func (s *RefreshTokenService) Revoke(ctx context.Context, raw string) error {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.FindByHash(ctx, HashToken(raw))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error searching refresh token: %w", err)
	}

	if err := repo.MarkRevoked(ctx, token.ID, s.now()); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every active refresh token owned by userID. Used
// by logout-everywhere and password change.
func (s *RefreshTokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if _, err := repo.RevokeAllForUser(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("error revoking refresh tokens for user: %w", err)
	}
	return nil
}
