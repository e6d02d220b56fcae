package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{
			name: "blocked by user",
			err:  &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"},
			want: FailureForbidden,
		},
		{
			name: "chat not found",
			err:  &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"},
			want: FailureNotFound,
		},
		{
			name: "message too old",
			err:  &tgbotapi.Error{Code: 400, Message: "Bad Request: message can't be edited"},
			want: FailureNotModifiable,
		},
		{
			name: "not modified",
			err:  &tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified"},
			want: FailureNotModifiable,
		},
		{
			name: "flood",
			err:  &tgbotapi.Error{Code: 429, Message: "Too Many Requests: retry after 5"},
			want: FailureRateLimited,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("send: %w", &tgbotapi.Error{Code: 403, Message: "Forbidden"}),
			want: FailureForbidden,
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: FailureTimeout,
		},
		{
			name: "net timeout",
			err:  timeoutError{},
			want: FailureTimeout,
		},
		{
			name: "other",
			err:  errors.New("connection reset"),
			want: FailureTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("forward", tt.err)
			if got.Kind != tt.want {
				t.Errorf("classify().Kind = %s, want %s", got.Kind, tt.want)
			}
			if got.Op != "forward" {
				t.Errorf("classify().Op = %s, want forward", got.Op)
			}
			if !errors.Is(got, tt.err) {
				t.Error("SendError does not unwrap to the original error")
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if got := classify("forward", nil); got != nil {
		t.Fatalf("classify(nil) = %v, want nil", got)
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", classify("notify", &tgbotapi.Error{Code: 403}))
	if got := kindOf(err); got != FailureForbidden {
		t.Errorf("kindOf() = %s, want forbidden", got)
	}
	if got := kindOf(errors.New("plain")); got != FailureTransport {
		t.Errorf("kindOf(plain) = %s, want transport", got)
	}
}
