package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yassinebz/expensetracker/internal/common"
	"github.com/yassinebz/expensetracker/internal/dbx"
	"github.com/yassinebz/expensetracker/internal/server/config"
	"github.com/yassinebz/expensetracker/internal/server/models"
	"github.com/yassinebz/expensetracker/internal/server/repositories/refreshtokens"
	"github.com/yassinebz/expensetracker/internal/server/repositories/users"
)

// newTestDB returns a *sql.DB whose transactions always succeed. The fake
// repositories below keep state in memory and ignore the DBTX handed to
// them, so the sqlmock connection only has to satisfy Begin/Commit/Rollback.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *user
	stored.ID = uuid.NewString()
	stored.Status = models.UserStatusActive
	stored.CreatedAt = time.Now()
	r.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) setStatus(t *testing.T, id string, status models.UserStatus) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	require.True(t, ok)
	user.Status = status
}

func (r *fakeUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *token
	r.tokens[stored.ID] = &stored
	return nil
}

func (r *fakeRefreshTokenRepo) FindByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == hash {
			out := *token
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeRefreshTokenRepo) MarkRotated(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok || token.Status != models.RefreshTokenActive {
		return false, nil
	}
	token.Status = models.RefreshTokenRotated
	return true, nil
}

func (r *fakeRefreshTokenRepo) MarkRevoked(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok || token.Status != models.RefreshTokenActive {
		return nil
	}
	token.Status = models.RefreshTokenRevoked
	token.RevokedAt = &at
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeFamily(_ context.Context, familyID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, token := range r.tokens {
		if token.FamilyID == familyID && token.Status != models.RefreshTokenRevoked {
			token.Status = models.RefreshTokenRevoked
			token.RevokedAt = &at
			n++
		}
	}
	return n, nil
}

func (r *fakeRefreshTokenRepo) RevokeAllForUser(_ context.Context, userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, token := range r.tokens {
		if token.UserID == userID && token.Status == models.RefreshTokenActive {
			token.Status = models.RefreshTokenRevoked
			token.RevokedAt = &at
			n++
		}
	}
	return n, nil
}

func (r *fakeRefreshTokenRepo) get(t *testing.T, id string) models.RefreshToken {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	require.True(t, ok)
	return *token
}

func (r *fakeRefreshTokenRepo) statusCounts(familyID string) map[models.RefreshTokenStatus]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.RefreshTokenStatus]int)
	for _, token := range r.tokens {
		if token.FamilyID == familyID {
			counts[token.Status]++
		}
	}
	return counts
}

// fakeRepoManager hands out the same in-memory repositories regardless of
// the DBTX, which mirrors how services bind repositories to the pool or an
// open transaction.
type fakeRepoManager struct {
	users         *fakeUserRepo
	refreshTokens *fakeRefreshTokenRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:         newFakeUserRepo(),
		refreshTokens: newFakeRefreshTokenRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}
