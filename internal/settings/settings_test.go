package settings

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewDefaults(t *testing.T) {
	if got := New(DefaultDeadlineHours).DeadlineHours(); got != 12 {
		t.Fatalf("DeadlineHours() = %d, want 12", got)
	}
	if got := New(0).DeadlineHours(); got != DefaultDeadlineHours {
		t.Fatalf("New(0).DeadlineHours() = %d, want default", got)
	}
	if got := New(500).DeadlineHours(); got != DefaultDeadlineHours {
		t.Fatalf("New(500).DeadlineHours() = %d, want default", got)
	}
}

func TestSetDeadlineHoursRejectsInvalid(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"0", ErrHoursOutOfRange},
		{"169", ErrHoursOutOfRange},
		{"-5", ErrHoursOutOfRange},
		{"x", ErrHoursNotInteger},
		{"1.5", ErrHoursNotInteger},
		{"", ErrMissingHours},
		{"   ", ErrMissingHours},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s := New(12)
			_, err := s.SetDeadlineHours(tt.raw, now)
			if !errors.Is(err, tt.want) {
				t.Fatalf("SetDeadlineHours(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
			if got := s.DeadlineHours(); got != 12 {
				t.Fatalf("DeadlineHours() = %d after failed update, want 12", got)
			}
		})
	}
}

func TestSetDeadlineHoursUpdatesETA(t *testing.T) {
	s := New(12)

	confirmation, err := s.SetDeadlineHours("24", now)
	if err != nil {
		t.Fatalf("SetDeadlineHours(24) error = %v", err)
	}
	if !strings.Contains(confirmation, "within 24 hour(s)") {
		t.Errorf("confirmation = %q", confirmation)
	}
	if got := s.DeadlineHours(); got != 24 {
		t.Fatalf("DeadlineHours() = %d, want 24", got)
	}
	if eta := s.ETA(now); !strings.Contains(eta, "2024-01-02 00:00 UTC") {
		t.Errorf("ETA() = %q, want 24h deadline", eta)
	}
}

func TestSetDeadlineHoursBounds(t *testing.T) {
	s := New(12)
	for _, raw := range []string{"1", "168", " 48 ", "72 hours"} {
		if _, err := s.SetDeadlineHours(raw, now); err != nil {
			t.Errorf("SetDeadlineHours(%q) error = %v", raw, err)
		}
	}
	if got := s.DeadlineHours(); got != 72 {
		t.Fatalf("DeadlineHours() = %d, want 72", got)
	}
}
