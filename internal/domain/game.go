package domain

import (
	"math"
	"time"
)

// GameStatus represents a game's lifecycle state.
// Cancellation removes the game document entirely, so there is no cancelled status value.
type GameStatus string

const (
	// GameProposed means the game is waiting for enough players to commit.
	GameProposed GameStatus = "proposed"
	// GameOn means the game has enough players and is happening.
	GameOn GameStatus = "on"
)

// GeoPoint is a GeoJSON point, longitude first.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Longitude returns the point's longitude.
func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }

// Latitude returns the point's latitude.
func (p GeoPoint) Latitude() float64 { return p.Coordinates[1] }

// Equal reports structural equality of two points.
func (p GeoPoint) Equal(other GeoPoint) bool {
	return p.Type == other.Type &&
		p.Coordinates[0] == other.Coordinates[0] &&
		p.Coordinates[1] == other.Coordinates[1]
}

// Location is where a game takes place.
type Location struct {
	Name     string   `json:"name"`
	GeoPoint GeoPoint `json:"geo_point"`
}

// Requested holds the organizer's target roster size.
// A game with a zero target is always on.
type Requested struct {
	Players int `json:"players"`
}

// Creator identifies the user who created a game. Set once, never altered.
type Creator struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Player is a roster entry. Either UserID is set (an account holder),
// or FriendID is set (someone invited on behalf of the account holder
// identified by FriendID), or both. An entry with neither is representable
// but never produced by the roster operations.
type Player struct {
	UserID   string `json:"user_id,omitempty"`
	FriendID string `json:"friend_id,omitempty"`
	Name     string `json:"name"`
	RSVP     string `json:"rsvp"`
}

// RSVPIn is the only legal RSVP value. The roster only holds confirmed players.
const RSVPIn = "in"

// Comment is a remark attached to a game. Immutable once created except for removal,
// which matches on structural equality of the whole record.
type Comment struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Equal reports structural equality of two comments.
func (c Comment) Equal(other Comment) bool {
	return c.UserID == other.UserID &&
		c.UserName == other.UserName &&
		c.Message == other.Message &&
		c.Timestamp.Equal(other.Timestamp)
}

// Game is the central aggregate: a scheduled pickup game with its roster and comments.
// Players and comments are owned by value; users are referenced by id only.
type Game struct {
	Timestamps
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Status    GameStatus `json:"status"`
	StartsAt  time.Time  `json:"starts_at"`
	UTCOffset float64    `json:"utc_offset"`
	Location  Location   `json:"location"`
	Note      string     `json:"note,omitempty"`
	Players   []Player   `json:"players"`
	Comments  []Comment  `json:"comments"`
	Requested Requested  `json:"requested"`
	Creator   Creator    `json:"creator"`
	// ReminderSent marks that the organizer reminder for the current
	// schedule went out. Cleared when the game is rescheduled.
	ReminderSent bool `json:"reminder_sent,omitempty"`
}

// LocalStartsAt returns the start time shifted into the game's local zone,
// derived from the stored UTC offset in hours.
func (g *Game) LocalStartsAt() time.Time {
	offset := int(math.Round(g.UTCOffset * 3600))
	return g.StartsAt.In(time.FixedZone("local", offset))
}

// DisplayDay is the short weekday label shown to players, e.g. "Sat".
func (g *Game) DisplayDay() string {
	return g.LocalStartsAt().Format("Mon")
}

// DisplayTime is the clock label shown to players, e.g. "7:00pm".
func (g *Game) DisplayTime() string {
	t := g.LocalStartsAt().Format("3:04PM")
	return g.lowerMeridiem(t)
}

// DisplayDayTime is the long form used in subjects, e.g. "Saturday 7:00PM".
func (g *Game) DisplayDayTime() string {
	return g.LocalStartsAt().Format("Monday 3:04PM")
}

func (g *Game) lowerMeridiem(s string) string {
	if n := len(s); n >= 2 {
		switch s[n-2:] {
		case "AM":
			return s[:n-2] + "am"
		case "PM":
			return s[:n-2] + "pm"
		}
	}
	return s
}

// ShouldTurnOn reports whether a proposed game has reached its target roster size.
func (g *Game) ShouldTurnOn() bool {
	return g.Status == GameProposed && len(g.Players) >= g.Requested.Players
}

// HasPlayerUser reports whether the roster already contains an entry for the given account.
func (g *Game) HasPlayerUser(userID string) bool {
	for _, p := range g.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// FriendsOf counts friend-invitee entries added by the given account
// that have no account of their own.
func (g *Game) FriendsOf(userID string) int {
	n := 0
	for _, p := range g.Players {
		if p.FriendID == userID && p.UserID == "" {
			n++
		}
	}
	return n
}

// IsCreator reports whether the given user organized this game.
func (g *Game) IsCreator(userID string) bool {
	return g.Creator.UserID == userID
}

// ChangeSet records which player-visible fields differ between two versions of a game.
// An empty change set suppresses edit notifications entirely.
type ChangeSet struct {
	Location bool
	Day      bool
	Time     bool
	Note     bool
	Type     bool
}

// Empty reports whether nothing player-visible changed.
func (c ChangeSet) Empty() bool {
	return !c.Location && !c.Day && !c.Time && !c.Note && !c.Type
}

// Fields lists the changed fields in display order for notification bodies.
func (c ChangeSet) Fields() []string {
	var fields []string
	if c.Location {
		fields = append(fields, "location")
	}
	if c.Day {
		fields = append(fields, "day")
	}
	if c.Time {
		fields = append(fields, "time")
	}
	if c.Note {
		fields = append(fields, "note")
	}
	if c.Type {
		fields = append(fields, "type")
	}
	return fields
}

// Diff compares two versions of a game on the fields players see.
// Day and time are compared on their formatted display strings, not raw
// timestamps, so a shift that does not cross a label boundary produces no entry.
// Location is compared on the point alone; renaming the venue in place is
// not a move.
func Diff(old, updated *Game) ChangeSet {
	return ChangeSet{
		Location: !old.Location.GeoPoint.Equal(updated.Location.GeoPoint),
		Day:      old.DisplayDay() != updated.DisplayDay(),
		Time:     old.DisplayTime() != updated.DisplayTime(),
		Note:     old.Note != updated.Note,
		Type:     old.Type != updated.Type,
	}
}
