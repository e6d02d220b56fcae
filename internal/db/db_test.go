package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/centromex/request-relay-bot/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleRequest(id string, messageID int, received time.Time) models.Request {
	return models.Request{
		ID:             id,
		Requester:      models.User{ID: 42, Handle: "alice"},
		Fields:         models.Fields{Name: "Dune", Year: "2021", Quality: "1080p", Language: "English"},
		RawText:        "#Request\nName: Dune",
		ReceivedAt:     received,
		Deadline:       received.Add(12 * time.Hour),
		AdminChatID:    -100,
		AdminMessageID: messageID,
	}
}

func TestCreateAndGetRequest(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	received := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := database.CreateRequest(ctx, sampleRequest("r1", 10, received)); err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	got, err := database.GetByAdminMessage(ctx, -100, 10)
	if err != nil {
		t.Fatalf("GetByAdminMessage() error = %v", err)
	}
	if got.ID != "r1" || got.Requester.ID != 42 || got.Requester.Handle != "alice" {
		t.Errorf("unexpected requester: %+v", got)
	}
	if got.Fields.Name != "Dune" || got.Fields.Year != "2021" {
		t.Errorf("unexpected fields: %+v", got.Fields)
	}
	if got.Status != models.StatusPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}
	if !got.Deadline.Equal(received.Add(12 * time.Hour)) {
		t.Errorf("Deadline = %v", got.Deadline)
	}
	if got.DecidedAt != nil {
		t.Errorf("DecidedAt = %v, want nil", got.DecidedAt)
	}
}

func TestGetByAdminMessageNotFound(t *testing.T) {
	database := newTestDB(t)
	_, err := database.GetByAdminMessage(context.Background(), -100, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDecideOnlyOnce(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	if err := database.CreateRequest(ctx, sampleRequest("r1", 10, now)); err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	req, err := database.Decide(ctx, -100, 10, models.StatusDone, 1, now)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if req.Status != models.StatusDone || req.DecidedBy != 1 || req.DecidedAt == nil {
		t.Fatalf("unexpected decided request: %+v", req)
	}

	again, err := database.Decide(ctx, -100, 10, models.StatusRejected, 1, now.Add(time.Minute))
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second Decide() error = %v, want ErrAlreadyDecided", err)
	}
	if again == nil || again.Status != models.StatusDone {
		t.Fatalf("second Decide() request = %+v, want status done", again)
	}
}

func TestDecideUnknownMessage(t *testing.T) {
	database := newTestDB(t)
	_, err := database.Decide(context.Background(), -100, 1, models.StatusDone, 1, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPurgeOldRequests(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "recent", "pending"} {
		if err := database.CreateRequest(ctx, sampleRequest(id, i+1, base)); err != nil {
			t.Fatalf("CreateRequest(%s) error = %v", id, err)
		}
	}
	if _, err := database.Decide(ctx, -100, 1, models.StatusDone, 1, base); err != nil {
		t.Fatalf("Decide(old) error = %v", err)
	}
	if _, err := database.Decide(ctx, -100, 2, models.StatusRejected, 1, base.Add(47*time.Hour)); err != nil {
		t.Fatalf("Decide(recent) error = %v", err)
	}

	purged, err := database.PurgeOldRequests(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeOldRequests() error = %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}

	counts, err := database.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[models.StatusPending] != 1 || counts[models.StatusRejected] != 1 || counts[models.StatusDone] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestLedgersAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := newTestDB(t)
	b := newTestDB(t)

	if err := a.CreateRequest(ctx, sampleRequest("r1", 1, time.Now())); err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}
	if _, err := b.GetByAdminMessage(ctx, -100, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second ledger saw first ledger's row: %v", err)
	}
}
