package bot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FailureKind classifies a failed call to the Telegram API.
type FailureKind string

const (
	// FailureForbidden means the bot may not write there: the user blocked it,
	// never started it, or the bot was removed from the chat.
	FailureForbidden FailureKind = "forbidden"

	// FailureNotFound means the chat or user does not exist (e.g. ADMIN_CHAT_ID unset).
	FailureNotFound FailureKind = "not_found"

	// FailureNotModifiable means an edit target cannot be changed.
	FailureNotModifiable FailureKind = "not_modifiable"

	FailureRateLimited FailureKind = "rate_limited"
	FailureTimeout     FailureKind = "timeout"
	FailureTransport   FailureKind = "transport"
)

// SendError is returned for every failed outbound call.
type SendError struct {
	Op   string
	Kind FailureKind
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func classify(op string, err error) *SendError {
	if err == nil {
		return nil
	}
	return &SendError{Op: op, Kind: failureKind(err), Err: err}
}

func failureKind(err error) FailureKind {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiFailureKind(apiErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureTransport
}

func apiFailureKind(err *tgbotapi.Error) FailureKind {
	msg := strings.ToLower(err.Message)
	switch {
	case err.Code == 403:
		return FailureForbidden
	case err.Code == 429:
		return FailureRateLimited
	case strings.Contains(msg, "chat not found"), strings.Contains(msg, "user not found"):
		return FailureNotFound
	case strings.Contains(msg, "message can't be edited"),
		strings.Contains(msg, "message is not modified"),
		strings.Contains(msg, "message to edit not found"):
		return FailureNotModifiable
	default:
		return FailureTransport
	}
}

// kindOf returns the failure kind of err, or FailureTransport for errors that
// did not come from send.
func kindOf(err error) FailureKind {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Kind
	}
	return FailureTransport
}
