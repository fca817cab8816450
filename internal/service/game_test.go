package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwinston/pushpickup/internal/domain"
	domainerrors "github.com/dwinston/pushpickup/internal/errors"
)

func TestAddGame_Proposed(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	game, err := env.games.AddGame(context.Background(), "user-sam", validGameRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.GameProposed, game.Status)
	assert.Equal(t, "soccer", game.Type)
	assert.Equal(t, "user-sam", game.Creator.UserID)
	assert.Equal(t, "Sam", game.Creator.Name)
	assert.NotEmpty(t, game.ID)
	assert.Empty(t, game.Players)
}

func TestAddGame_OnWhenNobodyNeeded(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	req := validGameRequest()
	req.RequestedPlayers = 0

	game, err := env.games.AddGame(context.Background(), "user-sam", req)
	require.NoError(t, err)
	assert.Equal(t, domain.GameOn, game.Status)
}

func TestAddGame_TypeSlugged(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	req := validGameRequest()
	req.Type = "Ultimate"

	game, err := env.games.AddGame(context.Background(), "user-sam", req)
	require.NoError(t, err)
	assert.Equal(t, "ultimate", game.Type)
}

func TestAddGame_UnknownType(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	req := validGameRequest()
	req.Type = "curling"

	_, err := env.games.AddGame(context.Background(), "user-sam", req)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestAddGame_TypeCatalogReadLive(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	admin := env.createUser(t, "user-admin", "Admin", "admin@example.com", true)
	admin.IsAdmin = true
	require.NoError(t, env.store.UpdateUser(context.Background(), admin))

	req := validGameRequest()
	req.Type = "curling"

	_, err := env.games.AddGame(context.Background(), "user-sam", req)
	require.Error(t, err)

	// Admin adds the sport to the catalog; the next create sees it
	// without any restart.
	_, err = env.options.UpdateOption(context.Background(), "user-admin", "type",
		append(domain.DefaultGameTypes, "curling"))
	require.NoError(t, err)

	game, err := env.games.AddGame(context.Background(), "user-sam", req)
	require.NoError(t, err)
	assert.Equal(t, "curling", game.Type)
}

func TestAddGame_NoteTooLong(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	req := validGameRequest()
	req.Note = strings.Repeat("x", 251)

	_, err := env.games.AddGame(context.Background(), "user-sam", req)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodePayloadTooLarge, domainErr.Code)
}

func TestAddGame_LocationNameTooLong(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	req := validGameRequest()
	req.Location.Name = strings.Repeat("x", 101)

	_, err := env.games.AddGame(context.Background(), "user-sam", req)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodePayloadTooLarge, domainErr.Code)
}

func TestAddGame_TooFarOut(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	req := validGameRequest()
	req.StartsAt = time.Now().Add(8 * 24 * time.Hour)

	_, err := env.games.AddGame(context.Background(), "user-sam", req)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestAddGame_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.games.AddGame(context.Background(), "", validGameRequest())
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeUnauthenticated, domainErr.Code)
}

func TestEditGame_OnlyOrganizer(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)

	game, err := env.games.AddGame(context.Background(), "user-sam", validGameRequest())
	require.NoError(t, err)

	_, err = env.games.EditGame(context.Background(), "user-kim", game.ID, validGameRequest())
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)
}

func TestEditGame_AdminAllowed(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	admin := env.createUser(t, "user-admin", "Admin", "admin@example.com", true)
	admin.IsAdmin = true
	require.NoError(t, env.store.UpdateUser(context.Background(), admin))

	game, err := env.games.AddGame(context.Background(), "user-sam", validGameRequest())
	require.NoError(t, err)

	req := validGameRequest()
	req.Note = "Moved to the north field"

	updated, err := env.games.EditGame(context.Background(), "user-admin", game.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Moved to the north field", updated.Note)
	// The organizer does not change hands on an admin edit.
	assert.Equal(t, "user-sam", updated.Creator.UserID)
}

func TestEditGame_PreservesRosterAndComments(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)

	ctx := context.Background()
	game, err := env.games.AddGame(ctx, "user-sam", validGameRequest())
	require.NoError(t, err)

	joined, err := env.roster.AddSelf(ctx, "user-kim", game.ID, "")
	require.NoError(t, err)
	require.True(t, joined)

	_, err = env.comments.AddComment(ctx, "user-kim", game.ID, "Is there parking?")
	require.NoError(t, err)

	req := validGameRequest()
	req.Note = "Rain or shine"

	updated, err := env.games.EditGame(ctx, "user-sam", game.ID, req)
	require.NoError(t, err)
	assert.Len(t, updated.Players, 1)
	assert.Len(t, updated.Comments, 1)
}

func TestEditGame_LongerNoteAllowed(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	game, err := env.games.AddGame(context.Background(), "user-sam", validGameRequest())
	require.NoError(t, err)

	// 251-1000 characters is fine on edit, just not on create.
	req := validGameRequest()
	req.Note = strings.Repeat("x", 600)

	updated, err := env.games.EditGame(context.Background(), "user-sam", game.ID, req)
	require.NoError(t, err)
	assert.Len(t, updated.Note, 600)
}

func TestEditGame_RescheduleClearsReminder(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	ctx := context.Background()
	game, err := env.games.AddGame(ctx, "user-sam", validGameRequest())
	require.NoError(t, err)
	require.NoError(t, env.store.MarkGameReminded(ctx, game.ID))

	req := validGameRequest()
	req.StartsAt = game.StartsAt.Add(2 * time.Hour)

	updated, err := env.games.EditGame(ctx, "user-sam", game.ID, req)
	require.NoError(t, err)
	assert.False(t, updated.ReminderSent)
}

func TestEditGame_AnyEditClearsReminder(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)

	ctx := context.Background()
	game, err := env.games.AddGame(ctx, "user-sam", validGameRequest())
	require.NoError(t, err)
	require.NoError(t, env.store.MarkGameReminded(ctx, game.ID))

	// A note tweak does not touch the schedule but still re-arms the reminder.
	req := validGameRequest()
	req.StartsAt = game.StartsAt
	req.Note = "Bring both colors and water"

	updated, err := env.games.EditGame(ctx, "user-sam", game.ID, req)
	require.NoError(t, err)
	assert.False(t, updated.ReminderSent)
}

func TestEditGame_NotifiesPlayersOfChanges(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)

	ctx := context.Background()
	game, err := env.games.AddGame(ctx, "user-sam", validGameRequest())
	require.NoError(t, err)

	joined, err := env.roster.AddSelf(ctx, "user-kim", game.ID, "")
	require.NoError(t, err)
	require.True(t, joined)

	req := validGameRequest()
	req.StartsAt = game.StartsAt
	req.Location = LocationRequest{Name: "Dolores Park", Longitude: -122.4270, Latitude: 37.7596}

	_, err = env.games.EditGame(ctx, "user-sam", game.ID, req)
	require.NoError(t, err)

	var changed []string
	for _, msg := range env.deliverMail(t) {
		if strings.HasPrefix(msg.Subject, "Changes to your") {
			changed = append(changed, msg.To[0].Address)
			assert.Contains(t, msg.Text, "New location: Dolores Park")
		}
	}
	assert.Equal(t, []string{"kim@example.com"}, changed)
}

func TestCancelGame_DeletesAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)

	ctx := context.Background()
	game, err := env.games.AddGame(ctx, "user-sam", validGameRequest())
	require.NoError(t, err)

	joined, err := env.roster.AddSelf(ctx, "user-kim", game.ID, "")
	require.NoError(t, err)
	require.True(t, joined)

	require.NoError(t, env.games.CancelGame(ctx, "user-sam", game.ID))

	_, err = env.games.GetGame(ctx, game.ID)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeNotFound, domainErr.Code)

	var cancelled []string
	for _, msg := range env.deliverMail(t) {
		if strings.HasPrefix(msg.Subject, "Game CANCELLED") {
			cancelled = append(cancelled, msg.To[0].Address)
			assert.Contains(t, msg.Text, "Sorry, Kim.")
		}
	}
	assert.Equal(t, []string{"kim@example.com"}, cancelled)
}

func TestCancelGame_OnlyOrganizer(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "user-sam", "Sam", "sam@example.com", true)
	env.createUser(t, "user-kim", "Kim", "kim@example.com", true)

	game, err := env.games.AddGame(context.Background(), "user-sam", validGameRequest())
	require.NoError(t, err)

	err = env.games.CancelGame(context.Background(), "user-kim", game.ID)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)
}
