package notify

import (
	"fmt"
	"strings"

	"github.com/dwinston/pushpickup/internal/domain"
	"github.com/dwinston/pushpickup/internal/mail"
)

// gameInfo is the short game description used in subjects,
// e.g. "7:00pm soccer".
func gameInfo(game *domain.Game) string {
	return game.DisplayTime() + " " + game.Type
}

// organizerBody is the shared body for join/leave/reminder mails to the
// organizer.
func (d *Dispatcher) organizerBody(game *domain.Game) string {
	return "For your reference, [here](" + d.gameURL(game.ID) + ")" +
		" is a link to your game.\n\n" +
		"Thanks for organizing."
}

func (d *Dispatcher) gameURL(gameID string) string {
	return d.baseURL + "/g/" + gameID
}

// joinedSubject renders "Kim joined your 7:00pm soccer game" or
// "Kim added 2 friends to your 7:00pm soccer game".
func joinedSubject(event Event) string {
	who := event.ActorName
	if event.FriendCount > 0 {
		who += fmt.Sprintf(" added %d friend", event.FriendCount)
		if event.FriendCount > 1 {
			who += "s"
		}
		who += " to"
	} else {
		who += " joined"
	}
	return who + " your " + gameInfo(event.Game) + " game"
}

// leftSubject renders "Kim left your 7:00pm soccer game" or
// "Kim and 2 friends left your 7:00pm soccer game".
func leftSubject(event Event) string {
	who := event.ActorName
	if event.FriendCount > 0 {
		who += fmt.Sprintf(" and %d friend", event.FriendCount)
		if event.FriendCount > 1 {
			who += "s"
		}
	}
	return who + " left your " + gameInfo(event.Game) + " game"
}

// cancelledMessage is the per-recipient cancellation mail,
// e.g. subject "Game CANCELLED: soccer Friday 7:00PM at Memorial Park".
func (d *Dispatcher) cancelledMessage(game *domain.Game, to mail.Recipient) mail.Message {
	return mail.Message{
		From: d.from,
		To:   []mail.Recipient{to},
		Subject: "Game CANCELLED: " + game.Type + " " +
			game.DisplayDayTime() + " at " + game.Location.Name,
		Text: "Sorry, " + to.Name + ".\n" +
			"This game has been cancelled. [Check out](" + d.baseURL + "/) " +
			"other nearby games, or [add](" + d.baseURL + "/addGame) your own!",
	}
}

// changedBody renders one bullet per changed field, showing the new value.
func changedBody(game *domain.Game, changes domain.ChangeSet) string {
	var b strings.Builder
	b.WriteString("Your " + gameInfo(game) + " game has changed:\n\n")
	for _, field := range changes.Fields() {
		switch field {
		case "location":
			b.WriteString("- New location: " + game.Location.Name + "\n")
		case "day":
			b.WriteString("- New day: " + game.LocalStartsAt().Format("Monday") + "\n")
		case "time":
			b.WriteString("- New time: " + game.DisplayTime() + "\n")
		case "note":
			if game.Note == "" {
				b.WriteString("- The organizer's note was removed\n")
			} else {
				b.WriteString("- New note: " + game.Note + "\n")
			}
		case "type":
			b.WriteString("- The game is now " + game.Type + "\n")
		}
	}
	return b.String()
}

func (d *Dispatcher) changedMessage(event Event, to []mail.Recipient) mail.Message {
	return mail.Message{
		From:    d.from,
		To:      to,
		Subject: "Changes to your " + gameInfo(event.Game) + " game",
		Text: changedBody(event.Game, event.Changes) +
			"\n[Here](" + d.gameURL(event.Game.ID) + ") is a link to the game.",
	}
}

func (d *Dispatcher) commentMessage(event Event, to []mail.Recipient) mail.Message {
	return mail.Message{
		From:    d.from,
		To:      to,
		Subject: event.Comment.UserName + " commented on your " + gameInfo(event.Game) + " game",
		Text: event.Comment.UserName + " wrote:\n\n" +
			"> " + event.Comment.Message + "\n\n" +
			"[Here](" + d.gameURL(event.Game.ID) + ") is a link to the game.",
	}
}

func (d *Dispatcher) reminderMessage(game *domain.Game, to mail.Recipient) mail.Message {
	return mail.Message{
		From:    d.from,
		To:      []mail.Recipient{to},
		Subject: "Reminder: your " + gameInfo(game) + " game is coming up",
		Text: "Is your " + game.Type + " game " + game.DisplayDayTime() +
			" at " + game.Location.Name + " still on?\n\n" +
			d.organizerBody(game),
	}
}

// feedbackMessage forwards feedback to the support address. The sender
// becomes the From header so support can reply directly; anonymous feedback
// comes from the support address itself.
func (d *Dispatcher) feedbackMessage(event Event) mail.Message {
	from := "Anonymous <" + d.supportAddress + ">"
	if event.FeedbackFrom != "" {
		name := event.ActorName
		if name == "" {
			name = "Anonymous"
		}
		from = name + " <" + event.FeedbackFrom + ">"
	}
	return mail.Message{
		From:    from,
		To:      []mail.Recipient{{Address: d.supportAddress}},
		Subject: "Push Pickup feedback: " + event.FeedbackKind,
		Text:    event.FeedbackMessage,
	}
}
