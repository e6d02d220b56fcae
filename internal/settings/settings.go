package settings

import (
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/centromex/request-relay-bot/internal/format"
)

const (
	DefaultDeadlineHours = 12
	MinDeadlineHours     = 1
	MaxDeadlineHours     = 168
)

var (
	ErrMissingHours    = errors.New("deadline hours not provided")
	ErrHoursNotInteger = errors.New("deadline hours must be an integer")
	ErrHoursOutOfRange = errors.New("deadline hours out of range")
)

// Settings holds the runtime-mutable SLA. It lives only in memory; a restart
// reverts to the configured default.
type Settings struct {
	deadlineHours atomic.Int64
}

// New returns settings starting at hours, or at DefaultDeadlineHours when
// hours is outside the allowed range.
func New(hours int) *Settings {
	s := &Settings{}
	if hours < MinDeadlineHours || hours > MaxDeadlineHours {
		hours = DefaultDeadlineHours
	}
	s.deadlineHours.Store(int64(hours))
	return s
}

func (s *Settings) DeadlineHours() int {
	return int(s.deadlineHours.Load())
}

// ETA renders the current promise relative to now.
func (s *Settings) ETA(now time.Time) string {
	return format.ETA(s.DeadlineHours(), now)
}

// ParseDeadlineHours validates a raw /setdeadline argument.
func ParseDeadlineHours(raw string) (int, error) {
	args := strings.Fields(raw)
	if len(args) == 0 {
		return 0, ErrMissingHours
	}
	// only the first argument counts, like "/setdeadline 24 please"
	hours, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, ErrHoursNotInteger
	}
	if hours < MinDeadlineHours || hours > MaxDeadlineHours {
		return 0, ErrHoursOutOfRange
	}
	return hours, nil
}

// SetDeadlineHours replaces the SLA and returns the new ETA sentence. On error
// the current value is left untouched.
func (s *Settings) SetDeadlineHours(raw string, now time.Time) (string, error) {
	hours, err := ParseDeadlineHours(raw)
	if err != nil {
		return "", err
	}
	s.deadlineHours.Store(int64(hours))
	return format.ETA(hours, now), nil
}
