package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yassinebz/expensetracker/internal/common"
	"github.com/yassinebz/expensetracker/internal/cryptox"
	"github.com/yassinebz/expensetracker/internal/server/auth"
	"github.com/yassinebz/expensetracker/internal/server/config"
	"github.com/yassinebz/expensetracker/internal/server/models"
	"github.com/yassinebz/expensetracker/internal/server/repositories/repomanager"
)

// Session bundles everything a transport layer needs after a successful
// authentication: the access token for the response body and the raw refresh
// token plus its expiry for the cookie.
type Session struct {
	AccessToken      string
	ExpiresInSeconds int64
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService coordinates credential checks, token issuance, refresh, logout,
// and password change. Password hashing is consumed as a black box via the
// cryptox package; refresh-token state transitions live in
// RefreshTokenService.
type AuthService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	refreshTokens *RefreshTokenService
	signer        *auth.Signer
	accessTTL     time.Duration
}

// NewAuthService constructs an AuthService using repositories, the token
// signer, and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, rts *RefreshTokenService, signer *auth.Signer, cfg *config.Config) *AuthService {
	return &AuthService{
		db:            db,
		repomanager:   m,
		refreshTokens: rts,
		signer:        signer,
		accessTTL:     cfg.AccessTokenValidityDuration,
	}
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Every email entering the subsystem passes through here, so lookups and the
// unique constraint agree on one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the normalized email and behaves as an
// implicit login: the new user gets an access token and a refresh token
// (default lifetime, not remember-me).
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, common.NewAuthError(common.CodeEmailAlreadyUsed)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issueSession(ctx, user, false)
}

// Login verifies credentials and issues a token pair. The error is the same
// CodeInvalidCredentials whether the email is unknown or the password wrong,
// and an unknown email still costs one hash comparison, so the caller cannot
// probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*Session, error) {
	email = NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.VerifyDummy(password)
			return nil, common.NewAuthError(common.CodeInvalidCredentials)
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !cryptox.VerifyPassword(user.PasswordHash, password) {
		return nil, common.NewAuthError(common.CodeInvalidCredentials)
	}

	if err := accountStatusError(user); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user, rememberMe)
}

// Refresh redeems a raw refresh token through the rotation state machine and
// mints a new access token for the resolved user. Refresh-token failures
// (invalid, expired, replay) propagate unchanged.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*Session, error) {
	newRaw, record, userID, err := s.refreshTokens.VerifyAndRotate(ctx, rawRefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewAuthError(common.CodeUserNotFound)
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	accessToken, err := s.signer.Generate(user.ID, user.Email, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	return &Session{
		AccessToken:      accessToken,
		ExpiresInSeconds: int64(s.accessTTL.Seconds()),
		RefreshToken:     newRaw,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// ChangePassword verifies the current password, stores a new hash, and
// revokes every refresh token of the user: all other sessions and devices
// must authenticate again.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewAuthError(common.CodeUserNotFound)
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	if !cryptox.VerifyPassword(user.PasswordHash, currentPassword) {
		return common.NewAuthError(common.CodeInvalidCredentials)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	return s.refreshTokens.RevokeAllForUser(ctx, user.ID)
}

// Logout revokes the single refresh token behind the cookie. Idempotent.
func (s *AuthService) Logout(ctx context.Context, rawRefreshToken string) error {
	return s.refreshTokens.Revoke(ctx, rawRefreshToken)
}

// LogoutEverywhere revokes every refresh token owned by the user.
func (s *AuthService) LogoutEverywhere(ctx context.Context, userID string) error {
	return s.refreshTokens.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, rememberMe bool) (*Session, error) {
	accessToken, err := s.signer.Generate(user.ID, user.Email, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	raw, record, err := s.refreshTokens.Issue(ctx, user.ID, rememberMe)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:      accessToken,
		ExpiresInSeconds: int64(s.accessTTL.Seconds()),
		RefreshToken:     raw,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

func accountStatusError(user *models.User) error {
	switch user.Status {
	case models.UserStatusDisabled:
		return common.NewAuthError(common.CodeAccountDisabled)
	case models.UserStatusLocked:
		return common.NewAuthError(common.CodeAccountLocked)
	default:
		return nil
	}
}
