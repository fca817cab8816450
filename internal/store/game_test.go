package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwinston/pushpickup/internal/domain"
)

func newStoredGame(id string, startsAt time.Time) *domain.Game {
	return &domain.Game{
		ID:        id,
		Type:      "soccer",
		Status:    domain.GameProposed,
		StartsAt:  startsAt,
		UTCOffset: -7,
		Location: domain.Location{
			Name:     "Golden Gate Park",
			GeoPoint: domain.NewGeoPoint(-122.48, 37.77),
		},
		Requested: domain.Requested{Players: 10},
		Creator:   domain.Creator{UserID: "user-organizer", Name: "Sam"},
	}
}

func TestCreateGame_AndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	game := newStoredGame("game-a", time.Now().Add(48*time.Hour))
	require.NoError(t, store.CreateGame(ctx, game))

	retrieved, err := store.GetGame(ctx, "game-a")
	require.NoError(t, err)
	assert.Equal(t, "soccer", retrieved.Type)
	assert.Equal(t, domain.GameProposed, retrieved.Status)
	assert.False(t, retrieved.CreatedAt.IsZero())
}

func TestCreateGame_Duplicate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour))))
	err := store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGetGame_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetGame(context.Background(), "game-missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestPushPlayer(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour))))

	game, err := store.PushPlayer(ctx, "game-a", domain.Player{UserID: "user-kim", Name: "Kim", RSVP: domain.RSVPIn})
	require.NoError(t, err)
	require.Len(t, game.Players, 1)
	assert.Equal(t, "Kim", game.Players[0].Name)
}

func TestPullPlayers_AffectedCountIsPerDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour))))
	_, err := store.PushPlayer(ctx, "game-a", domain.Player{FriendID: "user-kim", Name: "Pat", RSVP: domain.RSVPIn})
	require.NoError(t, err)
	_, err = store.PushPlayer(ctx, "game-a", domain.Player{FriendID: "user-kim", Name: "Pat", RSVP: domain.RSVPIn})
	require.NoError(t, err)

	// Two entries match, but the count reports documents touched, not elements
	game, affected, err := store.PullPlayers(ctx, "game-a", func(p domain.Player) bool {
		return p.FriendID == "user-kim" && p.Name == "Pat"
	})
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	assert.Empty(t, game.Players)
}

func TestPullPlayers_GameNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, _, err := store.PullPlayers(context.Background(), "game-missing", func(domain.Player) bool { return true })
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestPushAndPullComment(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour))))

	comment := domain.Comment{
		UserID:    "user-kim",
		UserName:  "Kim",
		Message:   "see you there",
		Timestamp: time.Now().Truncate(time.Millisecond),
	}
	game, err := store.PushComment(ctx, "game-a", comment)
	require.NoError(t, err)
	require.Len(t, game.Comments, 1)

	removed, err := store.PullComment(ctx, "game-a", comment)
	require.NoError(t, err)
	assert.True(t, removed)

	game, err = store.GetGame(ctx, "game-a")
	require.NoError(t, err)
	assert.Empty(t, game.Comments)
}

func TestPullComment_NoStructuralMatch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour))))

	comment := domain.Comment{UserID: "user-kim", UserName: "Kim", Message: "original", Timestamp: time.Now()}
	_, err := store.PushComment(ctx, "game-a", comment)
	require.NoError(t, err)

	// Any field mismatch means no removal
	altered := comment
	altered.Message = "tampered"
	removed, err := store.PullComment(ctx, "game-a", altered)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSetGameStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour))))

	game, err := store.SetGameStatus(ctx, "game-a", domain.GameOn)
	require.NoError(t, err)
	assert.Equal(t, domain.GameOn, game.Status)
}

func TestDeleteGame(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", time.Now().Add(time.Hour))))

	affected, err := store.DeleteGame(ctx, "game-a")
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	// The ID is permanently invalid afterwards
	_, err = store.GetGame(ctx, "game-a")
	assert.ErrorIs(t, err, ErrGameNotFound)

	affected, err = store.DeleteGame(ctx, "game-a")
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}

func TestListGamesStartingBetween(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-soon", base.Add(2*time.Hour))))
	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-tomorrow", base.Add(26*time.Hour))))
	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-later", base.Add(80*time.Hour))))

	games, err := store.ListGamesStartingBetween(ctx, base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "game-tomorrow", games[0].ID)
}

func TestListGamesStartingBetween_TracksRescheduledGames(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.CreateGame(ctx, newStoredGame("game-a", base.Add(2*time.Hour))))

	// Reschedule into the window via a full update
	game, err := store.GetGame(ctx, "game-a")
	require.NoError(t, err)
	game.StartsAt = base.Add(30 * time.Hour)
	require.NoError(t, store.UpdateGame(ctx, game))

	games, err := store.ListGamesStartingBetween(ctx, base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, games, 1)

	games, err = store.ListGamesStartingBetween(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestListGamesPaginated(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"game-1", "game-2", "game-3", "game-4", "game-5"} {
		require.NoError(t, store.CreateGame(ctx, newStoredGame(id, base.Add(time.Duration(i+1)*time.Hour))))
	}

	page1, err := store.ListGamesPaginated(ctx, PaginationParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	assert.Equal(t, "game-1", page1.Items[0].ID)

	page2, err := store.ListGamesPaginated(ctx, PaginationParams{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "game-3", page2.Items[0].ID)

	page3, err := store.ListGamesPaginated(ctx, PaginationParams{Limit: 2, Cursor: page2.NextCursor})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
}
