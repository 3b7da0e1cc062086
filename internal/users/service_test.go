package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/roadcasehq/merchtable-backend/pkg/auth"
	"github.com/roadcasehq/merchtable-backend/pkg/config"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'crew',
  band_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

type memTokenStore struct {
	tokens map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]string{}}
}

func (m *memTokenStore) StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	m.tokens[userID] = token
	return nil
}

func (m *memTokenStore) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	return m.tokens[userID], nil
}

func (m *memTokenStore) RevokeRefreshToken(ctx context.Context, userID string) error {
	delete(m.tokens, userID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "merchtable-test",
		ExpirationMinutes: 15,
		RefreshTTLHours:   24,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, db *gorm.DB, tokens *memTokenStore) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), tokens, testJWTConfig(), testPasswordConfig(), nil)
	require.NoError(t, err)
	return svc
}

func uniqueEmail() string {
	return uuid.NewString()[:8] + "@roadcase.test"
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newTestService(t, db, newMemTokenStore())

	email := uniqueEmail()
	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Name:     "Tour Manager",
		Password: "correct-horse",
		Role:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, email, user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Password: "another-pass",
		Role:     enums.UserRoleCrew,
	})
	require.Error(t, err)
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	db := setupUsersTestDB(t)
	svc := newTestService(t, db, newMemTokenStore())

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    uniqueEmail(),
		Password: "short",
		Role:     enums.UserRoleCrew,
	})
	require.Error(t, err)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	db := setupUsersTestDB(t)
	tokens := newMemTokenStore()
	svc := newTestService(t, db, tokens)

	email := uniqueEmail()
	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Password: "correct-horse",
		Role:     enums.UserRoleCrew,
	})
	require.NoError(t, err)

	pair, user, err := svc.Login(context.Background(), email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, 15*60, pair.ExpiresIn)
	assert.Equal(t, pair.RefreshToken, tokens.tokens[created.ID])

	claims, err := auth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleCrew, claims.Role)

	_, _, err = svc.Login(context.Background(), email, "wrong-pass")
	require.Error(t, err)

	_, _, err = svc.Login(context.Background(), uniqueEmail(), "correct-horse")
	require.Error(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupUsersTestDB(t)
	tokens := newMemTokenStore()
	svc := newTestService(t, db, tokens)

	email := uniqueEmail()
	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Password: "correct-horse",
		Role:     enums.UserRoleCrew,
	})
	require.NoError(t, err)

	pair, user, err := svc.Login(context.Background(), email, "correct-horse")
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)
	assert.Equal(t, fresh.RefreshToken, tokens.tokens[user.ID])

	// the old refresh token no longer matches
	_, err = svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	require.Error(t, err)
}

func TestChangePasswordRevokesRefreshToken(t *testing.T) {
	db := setupUsersTestDB(t)
	tokens := newMemTokenStore()
	svc := newTestService(t, db, tokens)

	email := uniqueEmail()
	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Password: "correct-horse",
		Role:     enums.UserRoleCrew,
	})
	require.NoError(t, err)

	_, user, err := svc.Login(context.Background(), email, "correct-horse")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong-pass", "battery-staple")
	require.Error(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "correct-horse", "battery-staple"))
	assert.Empty(t, tokens.tokens[user.ID])

	_, _, err = svc.Login(context.Background(), email, "battery-staple")
	require.NoError(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := setupUsersTestDB(t)
	tokens := newMemTokenStore()
	svc := newTestService(t, db, tokens)

	email := uniqueEmail()
	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    email,
		Password: "correct-horse",
		Role:     enums.UserRoleCrew,
	})
	require.NoError(t, err)

	pair, user, err := svc.Login(context.Background(), email, "correct-horse")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), user.ID))

	_, err = svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	require.Error(t, err)
}
