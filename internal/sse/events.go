// Package sse implements Server-Sent Events for real-time game updates and event broadcasting.
package sse

import (
	"time"

	"github.com/dwinston/pushpickup/internal/domain"
)

// SSE is server-to-client only here; every client action goes through the
// regular request/response API.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventGameCreated represents a game creation event.
	EventGameCreated EventType = "game.created"
	// EventGameUpdated represents a game update event, covering edits,
	// roster changes, and the proposed-to-on transition.
	EventGameUpdated EventType = "game.updated"
	// EventGameCancelled represents a game cancellation event.
	// The game document is gone by the time clients receive this.
	EventGameCancelled EventType = "game.cancelled"

	// EventCommentAdded represents a new comment on a game.
	EventCommentAdded EventType = "comment.added"
	// EventCommentRemoved represents a comment removal.
	EventCommentRemoved EventType = "comment.removed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// Filtering field for multi-user support.
	// When set, the event is only delivered to clients for that user.
	// Empty string means "broadcast to all".
	UserID string `json:"-"` // Filter to specific user (not sent to client)
}

// GameEventData is the data payload for game events.
// Carries the full game document so events are self-contained and
// immediately renderable without additional queries.
type GameEventData struct {
	Game *domain.Game `json:"game"`
}

// GameCancelledEventData is the data payload for game cancellation events.
type GameCancelledEventData struct {
	CancelledAt time.Time `json:"cancelled_at"`
	GameID      string    `json:"game_id"`
}

// CommentEventData is the data payload for comment events.
// Keyed by game ID and comment timestamp, which together identify a comment.
type CommentEventData struct {
	GameID  string         `json:"game_id"`
	Comment domain.Comment `json:"comment"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewGameCreatedEvent creates a game.created event.
func NewGameCreatedEvent(game *domain.Game) Event {
	return Event{
		Type:      EventGameCreated,
		Data:      GameEventData{Game: game},
		Timestamp: time.Now(),
	}
}

// NewGameUpdatedEvent creates a game.updated event.
func NewGameUpdatedEvent(game *domain.Game) Event {
	return Event{
		Type:      EventGameUpdated,
		Data:      GameEventData{Game: game},
		Timestamp: time.Now(),
	}
}

// NewGameCancelledEvent creates a game.cancelled event.
func NewGameCancelledEvent(gameID string) Event {
	now := time.Now()
	return Event{
		Type:      EventGameCancelled,
		Data:      GameCancelledEventData{CancelledAt: now, GameID: gameID},
		Timestamp: now,
	}
}

// NewCommentAddedEvent creates a comment.added event.
func NewCommentAddedEvent(gameID string, comment domain.Comment) Event {
	return Event{
		Type:      EventCommentAdded,
		Data:      CommentEventData{GameID: gameID, Comment: comment},
		Timestamp: time.Now(),
	}
}

// NewCommentRemovedEvent creates a comment.removed event.
func NewCommentRemovedEvent(gameID string, comment domain.Comment) Event {
	return Event{
		Type:      EventCommentRemoved,
		Data:      CommentEventData{GameID: gameID, Comment: comment},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}
