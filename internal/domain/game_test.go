package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testGame() *Game {
	return &Game{
		ID:        "game-abc123",
		Type:      "soccer",
		Status:    GameProposed,
		StartsAt:  time.Date(2026, 9, 5, 2, 0, 0, 0, time.UTC), // Friday 7:00pm Pacific
		UTCOffset: -7,
		Location: Location{
			Name:     "Golden Gate Park",
			GeoPoint: NewGeoPoint(-122.48, 37.77),
		},
		Requested: Requested{Players: 10},
		Creator:   Creator{UserID: "user-organizer", Name: "Sam"},
	}
}

func TestGame_DisplayFormats(t *testing.T) {
	g := testGame()

	assert.Equal(t, "Fri", g.DisplayDay())
	assert.Equal(t, "7:00pm", g.DisplayTime())
	assert.Equal(t, "Friday 7:00PM", g.DisplayDayTime())
}

func TestGame_DisplayTime_Morning(t *testing.T) {
	g := testGame()
	g.StartsAt = time.Date(2026, 9, 5, 16, 30, 0, 0, time.UTC)

	assert.Equal(t, "9:30am", g.DisplayTime())
}

func TestGame_LocalStartsAt_HalfHourOffset(t *testing.T) {
	g := testGame()
	g.StartsAt = time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)
	g.UTCOffset = 5.5 // India

	assert.Equal(t, "5:30pm", g.DisplayTime())
}

func TestGame_ShouldTurnOn(t *testing.T) {
	g := testGame()
	g.Players = make([]Player, 9)
	assert.False(t, g.ShouldTurnOn())

	g.Players = append(g.Players, Player{Name: "Kim", UserID: "user-kim", RSVP: RSVPIn})
	assert.True(t, g.ShouldTurnOn())

	// Already-on games never re-trigger.
	g.Status = GameOn
	assert.False(t, g.ShouldTurnOn())
}

func TestGame_ShouldTurnOn_ZeroTarget(t *testing.T) {
	g := testGame()
	g.Requested.Players = 0

	// No roster target means the game turns on with an empty roster.
	assert.True(t, g.ShouldTurnOn())
}

func TestGame_HasPlayerUser(t *testing.T) {
	g := testGame()
	g.Players = []Player{
		{UserID: "user-kim", Name: "Kim", RSVP: RSVPIn},
		{FriendID: "user-kim", Name: "Pat", RSVP: RSVPIn},
	}

	assert.True(t, g.HasPlayerUser("user-kim"))
	assert.False(t, g.HasPlayerUser("user-pat"))
}

func TestGame_FriendsOf(t *testing.T) {
	g := testGame()
	g.Players = []Player{
		{UserID: "user-kim", Name: "Kim", RSVP: RSVPIn},
		{FriendID: "user-kim", Name: "Pat", RSVP: RSVPIn},
		{FriendID: "user-kim", Name: "Lee", RSVP: RSVPIn},
		// A friend who later created an account no longer counts.
		{FriendID: "user-kim", UserID: "user-jo", Name: "Jo", RSVP: RSVPIn},
	}

	assert.Equal(t, 2, g.FriendsOf("user-kim"))
	assert.Equal(t, 0, g.FriendsOf("user-jo"))
}

func TestDiff_NoChanges(t *testing.T) {
	old := testGame()
	updated := testGame()

	cs := Diff(old, updated)
	assert.True(t, cs.Empty())
	assert.Empty(t, cs.Fields())
}

func TestDiff_TimeShiftWithinSameLabel(t *testing.T) {
	old := testGame()
	updated := testGame()
	// Sub-minute changes never cross a display label boundary.
	updated.StartsAt = old.StartsAt.Add(30 * time.Second)

	cs := Diff(old, updated)
	assert.True(t, cs.Empty())
}

func TestDiff_TimeChange(t *testing.T) {
	old := testGame()
	updated := testGame()
	updated.StartsAt = old.StartsAt.Add(time.Hour)

	cs := Diff(old, updated)
	assert.False(t, cs.Empty())
	assert.True(t, cs.Time)
	assert.False(t, cs.Day)
}

func TestDiff_DayChange(t *testing.T) {
	old := testGame()
	updated := testGame()
	updated.StartsAt = old.StartsAt.Add(24 * time.Hour)

	cs := Diff(old, updated)
	assert.True(t, cs.Day)
	assert.False(t, cs.Time) // same clock label on a different day
}

func TestDiff_LocationAndNoteAndType(t *testing.T) {
	old := testGame()
	updated := testGame()
	updated.Location.GeoPoint = NewGeoPoint(-122.27, 37.80)
	updated.Note = "bring a dark shirt"
	updated.Type = "ultimate"

	cs := Diff(old, updated)
	assert.True(t, cs.Location)
	assert.True(t, cs.Note)
	assert.True(t, cs.Type)
	assert.Equal(t, []string{"location", "note", "type"}, cs.Fields())
}

func TestDiff_LocationNameOnly(t *testing.T) {
	// Renaming the venue without moving it is not a location change.
	old := testGame()
	updated := testGame()
	updated.Location.Name = "Mission Dolores Park"

	cs := Diff(old, updated)
	assert.False(t, cs.Location)
	assert.True(t, cs.Empty())
}

func TestComment_Equal(t *testing.T) {
	now := time.Now()
	a := Comment{UserID: "user-kim", UserName: "Kim", Message: "see you there", Timestamp: now}
	b := Comment{UserID: "user-kim", UserName: "Kim", Message: "see you there", Timestamp: now}
	c := a
	c.Message = "running late"

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestGeoPoint_Equal(t *testing.T) {
	assert.True(t, NewGeoPoint(-122.48, 37.77).Equal(NewGeoPoint(-122.48, 37.77)))
	assert.False(t, NewGeoPoint(-122.48, 37.77).Equal(NewGeoPoint(37.77, -122.48)))
}
