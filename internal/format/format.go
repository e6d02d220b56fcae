package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/centromex/request-relay-bot/internal/models"
)

// RawTextLimit caps how much of the original message is copied into the
// admin notice.
const RawTextLimit = 1000

const absent = "-"

const RequestTemplate = "Please use this format:\n\n" +
	"#Request\n" +
	"Name: <Movie/Series Title>\n" +
	"Year: <Release Year>\n" +
	"Quality: <e.g., 1080p, 720p>\n" +
	"Language: <e.g., English, Hindi, Dual Audio>\n"

// Timestamp renders t as "2006-01-02 15:04 UTC".
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04") + " UTC"
}

// DeadlineTimestamp is Timestamp with seconds, used in admin notices.
func DeadlineTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// ETA returns the sentence promising fulfilment within hours of now.
func ETA(hours int, now time.Time) string {
	deadline := now.Add(time.Duration(hours) * time.Hour)
	return fmt.Sprintf("within %d hour(s) (by %s)", hours, Timestamp(deadline))
}

// UserAck is the acknowledgment sent back to the requester.
func UserAck(f models.Fields, eta string) string {
	var sb strings.Builder

	sb.WriteString("✅ Your request has been received!\n")
	sb.WriteString(fmt.Sprintf("⏳ We aim to fulfill it %s.\n\n", eta))
	sb.WriteString("Here’s what I understood:\n")
	sb.WriteString(fmt.Sprintf("• Name: %s\n", orAbsent(f.Name)))
	sb.WriteString(fmt.Sprintf("• Year: %s\n", orAbsent(f.Year)))
	sb.WriteString(fmt.Sprintf("• Quality: %s\n", orAbsent(f.Quality)))
	sb.WriteString(fmt.Sprintf("• Language: %s", orAbsent(f.Language)))

	if !f.Complete() {
		sb.WriteString("\n\nℹ️ Tip: Include all fields for faster processing:\n")
		sb.WriteString(RequestTemplate)
	}

	return sb.String()
}

// AdminNotice is the summary posted to the admin chat.
func AdminNotice(req models.Request, hours int) string {
	var sb strings.Builder

	sb.WriteString("🆕 New Request\n")
	sb.WriteString(fmt.Sprintf("From: %s (id: %d)\n", req.Requester.Mention(), req.Requester.ID))
	sb.WriteString(fmt.Sprintf("Name: %s\n", orAbsent(req.Fields.Name)))
	sb.WriteString(fmt.Sprintf("Year: %s\n", orAbsent(req.Fields.Year)))
	sb.WriteString(fmt.Sprintf("Quality: %s\n", orAbsent(req.Fields.Quality)))
	sb.WriteString(fmt.Sprintf("Language: %s\n\n", orAbsent(req.Fields.Language)))
	sb.WriteString(fmt.Sprintf("Raw:\n%s\n\n", Truncate(req.RawText, RawTextLimit)))
	sb.WriteString(fmt.Sprintf("⏳ Deadline: %s  (in %dh)", DeadlineTimestamp(req.Deadline), hours))

	return sb.String()
}

// DecisionLine records who decided and when.
func DecisionLine(action models.Action, actor models.User, at time.Time) string {
	if action == models.ActionReject {
		return fmt.Sprintf("❌ Rejected by %s at %s", actor.Mention(), Timestamp(at))
	}
	return fmt.Sprintf("✅ Marked done by %s at %s", actor.Mention(), Timestamp(at))
}

// DecisionEdit appends the decision line to the original admin notice.
func DecisionEdit(original string, action models.Action, actor models.User, at time.Time) string {
	return original + "\n\n" + DecisionLine(action, actor, at)
}

// UserDecisionNotice is the direct message sent to the requester.
func UserDecisionNotice(action models.Action) string {
	if action == models.ActionReject {
		return "😔 Update: Your request was rejected."
	}
	return "🎉 Update: Your request has been fulfilled. Enjoy!"
}

func AlreadyDecided(status models.RequestStatus) string {
	return fmt.Sprintf("ℹ️ This request was already marked %s.", status)
}

func Welcome(eta string) string {
	return "🎬 Welcome to the Movies & Series Request Bot!\n\n" +
		"Send a request in this format:\n\n" +
		RequestTemplate + "\n" +
		fmt.Sprintf("⏳ Current ETA: requests are typically fulfilled %s.", eta)
}

func Help(eta string) string {
	return "🆘 Help\n\n" +
		"• Send your request starting with #Request (or the word Request) and include details.\n" +
		"• Example:\n" +
		"#Request\nName: Example Movie\nYear: 2024\nQuality: 1080p\nLanguage: Hindi\n\n" +
		fmt.Sprintf("⏳ ETA: %s\n\n", eta) +
		"Owner only:\n" +
		"• /setdeadline <hours> - change the ETA for future requests (not persisted).\n"
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func orAbsent(v string) string {
	if v == "" {
		return absent
	}
	return v
}
