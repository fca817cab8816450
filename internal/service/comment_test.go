package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/dwinston/pushpickup/internal/errors"
)

func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	comment, err := env.comments.AddComment(ctx, "user-kim", game.ID, "Is there parking?")
	require.NoError(t, err)
	assert.Equal(t, "user-kim", comment.UserID)
	assert.Equal(t, "Kim", comment.UserName)
	assert.False(t, comment.Timestamp.IsZero())

	got, err := env.games.GetGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Is there parking?", got.Comments[0].Message)
}

func TestAddComment_NonPlayerMayComment(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	// Kim never joined the roster.
	_, err := env.comments.AddComment(context.Background(), "user-kim", game.ID, "What skill level?")
	require.NoError(t, err)
}

func TestAddComment_AnonymousFallbackName(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	comment, err := env.comments.AddComment(context.Background(), "user-kim", game.ID, "In!")
	require.NoError(t, err)
	// Falls back to the primary email when there is no display name.
	assert.Equal(t, "kim@example.com", comment.UserName)
}

func TestAddComment_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	_, err := env.comments.AddComment(context.Background(), "user-sam", game.ID, "")
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestAddComment_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	for i := range 5 {
		_, err := env.comments.AddComment(ctx, "user-kim", game.ID, strings.Repeat("x", i+1))
		require.NoError(t, err)
	}

	_, err := env.comments.AddComment(ctx, "user-kim", game.ID, "one too many")
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeRateLimited, domainErr.Code)

	// The limit is per user, not global.
	_, err = env.comments.AddComment(ctx, "user-sam", game.ID, "still fine")
	require.NoError(t, err)
}

func TestAddComment_NotifiesPlayersNotAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	env.createUser(t, "user-lee", "Lee", "lee@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	_, err := env.roster.AddSelf(ctx, "user-kim", game.ID, "")
	require.NoError(t, err)
	_, err = env.roster.AddSelf(ctx, "user-lee", game.ID, "")
	require.NoError(t, err)

	_, err = env.comments.AddComment(ctx, "user-kim", game.ID, "Running 10 late")
	require.NoError(t, err)

	var notified []string
	for _, msg := range env.deliverMail(t) {
		if strings.Contains(msg.Subject, "commented on your") {
			notified = append(notified, msg.To[0].Address)
			assert.Contains(t, msg.Text, "> Running 10 late")
		}
	}
	// Lee and the organizer hear about it; Kim wrote it.
	assert.ElementsMatch(t, []string{"sam@example.com", "lee@example.com"}, notified)
}

func TestAddComment_OrganizerAuthorNotMailed(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	_, err := env.roster.AddSelf(ctx, "user-kim", game.ID, "")
	require.NoError(t, err)

	_, err = env.comments.AddComment(ctx, "user-sam", game.ID, "Field 7, not 3")
	require.NoError(t, err)

	var notified []string
	for _, msg := range env.deliverMail(t) {
		if strings.Contains(msg.Subject, "commented on your") {
			notified = append(notified, msg.To[0].Address)
		}
	}
	assert.Equal(t, []string{"kim@example.com"}, notified)
}

func TestRemoveComment_Author(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	comment, err := env.comments.AddComment(ctx, "user-kim", game.ID, "oops wrong game")
	require.NoError(t, err)

	removed, err := env.comments.RemoveComment(ctx, "user-kim", game.ID, *comment)
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := env.games.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestRemoveComment_Organizer(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	comment, err := env.comments.AddComment(ctx, "user-kim", game.ID, "spam")
	require.NoError(t, err)

	removed, err := env.comments.RemoveComment(ctx, "user-sam", game.ID, *comment)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestRemoveComment_UnauthorizedIsQuietNoOp(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	env.createUser(t, "user-lee", "Lee", "lee@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	comment, err := env.comments.AddComment(ctx, "user-kim", game.ID, "staying up")
	require.NoError(t, err)

	removed, err := env.comments.RemoveComment(ctx, "user-lee", game.ID, *comment)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := env.games.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)
}

func TestRemoveComment_StructuralMatch(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)
	game := env.createGame(t, "user-sam", 10)

	ctx := context.Background()
	comment, err := env.comments.AddComment(ctx, "user-kim", game.ID, "see you there")
	require.NoError(t, err)

	// A mismatched field means no structural match and nothing removed.
	altered := *comment
	altered.Message = "see you there!"
	removed, err := env.comments.RemoveComment(ctx, "user-kim", game.ID, altered)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = env.comments.RemoveComment(ctx, "user-kim", game.ID, *comment)
	require.NoError(t, err)
	assert.True(t, removed)
}
