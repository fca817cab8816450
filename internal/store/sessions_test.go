package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwinston/pushpickup/internal/domain"
)

func newTestSession(id, userID, tokenHash string) *domain.Session {
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        time.Now().Add(24 * time.Hour),
		CreatedAt:        time.Now(),
		LastSeenAt:       time.Now(),
		ClientName:       "Push Pickup Web",
	}
}

func TestCreateSession(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := newTestSession("session-test123", "user-test123", "hashed_token")
	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	retrieved, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.RefreshTokenHash, retrieved.RefreshTokenHash)
}

func TestCreateSession_DuplicateID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("session-dup", "user-a", "token-a")))

	err := store.CreateSession(ctx, newTestSession("session-dup", "user-b", "token-b"))
	assert.Error(t, err)
}

func TestGetSession_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetSession(context.Background(), "session-missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSession_Expired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := newTestSession("session-old", "user-a", "token-old")
	session.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.CreateSession(ctx, session))

	_, err := store.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestGetSessionByRefreshToken_Success(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := newTestSession("session-a", "user-a", "token-hash-a")
	require.NoError(t, store.CreateSession(ctx, session))

	found, err := store.GetSessionByRefreshToken(ctx, "token-hash-a")
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)
}

func TestGetSessionByRefreshToken_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetSessionByRefreshToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSession_TokenRotation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := newTestSession("session-a", "user-a", "token-old")
	require.NoError(t, store.CreateSession(ctx, session))

	session.RefreshTokenHash = "token-new"
	require.NoError(t, store.UpdateSession(ctx, session))

	// Old token index is gone, new one resolves
	_, err := store.GetSessionByRefreshToken(ctx, "token-old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	found, err := store.GetSessionByRefreshToken(ctx, "token-new")
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)
}

func TestDeleteSession_Success(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := newTestSession("session-a", "user-a", "token-a")
	require.NoError(t, store.CreateSession(ctx, session))

	require.NoError(t, store.DeleteSession(ctx, session.ID))

	_, err := store.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.GetSessionByRefreshToken(ctx, "token-a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSession_NonExistent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Idempotent
	assert.NoError(t, store.DeleteSession(context.Background(), "session-missing"))
}

func TestListUserSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("session-1", "user-a", "token-1")))
	require.NoError(t, store.CreateSession(ctx, newTestSession("session-2", "user-a", "token-2")))
	require.NoError(t, store.CreateSession(ctx, newTestSession("session-3", "user-b", "token-3")))

	sessions, err := store.ListUserSessions(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestListUserSessions_SkipsExpired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("session-1", "user-a", "token-1")))

	expired := newTestSession("session-2", "user-a", "token-2")
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.CreateSession(ctx, expired))

	sessions, err := store.ListUserSessions(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, "session-1", sessions[0].ID)
}

func TestDeleteAllUserSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("session-1", "user-a", "token-1")))
	require.NoError(t, store.CreateSession(ctx, newTestSession("session-2", "user-a", "token-2")))

	require.NoError(t, store.DeleteAllUserSessions(ctx, "user-a"))

	sessions, err := store.ListUserSessions(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteExpiredSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("session-live", "user-a", "token-live")))

	expired := newTestSession("session-dead", "user-a", "token-dead")
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.CreateSession(ctx, expired))

	count, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.GetSession(ctx, "session-dead")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
