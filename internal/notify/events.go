// Package notify turns game mutations into targeted emails. Services publish
// semantic events after their mutation commits; a background worker pool
// resolves recipients, composes the messages, and delivers them with bounded
// retry. Delivery failures are logged and never surface to the caller.
package notify

import "github.com/dwinston/pushpickup/internal/domain"

// Event is a notification to be delivered asynchronously. Exactly one of the
// payload fields is set, matching Kind.
type Event struct {
	Kind EventKind

	// Game is a snapshot taken at publish time. Cancellation events carry
	// the only remaining copy of the document.
	Game *domain.Game

	// ActorID/ActorName identify who triggered the event. The actor never
	// receives their own notification.
	ActorID   string
	ActorName string

	// FriendCount is the number of friend invitees joining or leaving
	// alongside the actor.
	FriendCount int

	// Changes scopes a GameChanged event to the fields that differ.
	Changes domain.ChangeSet

	// Comment is the comment added for a CommentAdded event.
	Comment *domain.Comment

	// Feedback fields.
	FeedbackKind    string
	FeedbackMessage string
	FeedbackFrom    string
}

// EventKind identifies the notification type.
type EventKind string

const (
	PlayerJoined      EventKind = "player.joined"
	PlayerLeft        EventKind = "player.left"
	GameChanged       EventKind = "game.changed"
	GameCancelled     EventKind = "game.cancelled"
	CommentAdded      EventKind = "comment.added"
	OrganizerReminder EventKind = "organizer.reminder"
	Feedback          EventKind = "feedback"
)
