package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/centromex/request-relay-bot/internal/models"
)

type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventButton
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventButton:
		return "button"
	default:
		return "text"
	}
}

// Event is an inbound update reduced to what the handlers need.
type Event struct {
	Kind      EventKind
	ChatID    int64
	MessageID int
	Sender    models.User

	// Text is the message body; for buttons it is the text of the message
	// the buttons are attached to.
	Text string

	Command string
	Args    string

	Payload    string
	CallbackID string
}

type handlerFunc func(ctx context.Context, ev Event)

// eventFromUpdate converts a Telegram update. Updates the bot does not handle
// (edits, media without text, channel posts) are reported as !ok.
func eventFromUpdate(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Data == "" || q.From == nil {
			return Event{}, false
		}
		ev := Event{
			Kind:       EventButton,
			Sender:     userFrom(q.From),
			Payload:    q.Data,
			CallbackID: q.ID,
		}
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
			ev.Text = q.Message.Text
			if q.Message.Chat != nil {
				ev.ChatID = q.Message.Chat.ID
			}
		}
		return ev, true

	case update.Message != nil:
		msg := update.Message
		if msg.Text == "" || msg.From == nil || msg.Chat == nil {
			return Event{}, false
		}
		ev := Event{
			Kind:      EventText,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Sender:    userFrom(msg.From),
			Text:      msg.Text,
		}
		if msg.IsCommand() {
			ev.Kind = EventCommand
			ev.Command = msg.Command()
			ev.Args = msg.CommandArguments()
		}
		return ev, true
	}

	return Event{}, false
}

func userFrom(u *tgbotapi.User) models.User {
	return models.User{ID: u.ID, Handle: u.UserName}
}

func (b *Bot) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		"start":       b.handleStart,
		"help":        b.handleHelp,
		"setdeadline": b.handleSetDeadline,
	}
}

func (b *Bot) dispatch(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventCommand:
		handler, ok := b.commands[ev.Command]
		if !ok {
			b.logger.Debug("ignoring unknown command", "command", ev.Command, "user_id", ev.Sender.ID)
			return
		}
		b.metrics.Command(ev.Command)
		handler(ctx, ev)
	case EventButton:
		b.handleDecision(ctx, ev)
	default:
		b.handleRequest(ctx, ev)
	}
}
