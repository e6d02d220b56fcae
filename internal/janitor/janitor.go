package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/centromex/request-relay-bot/internal/metrics"
	"github.com/centromex/request-relay-bot/internal/models"
)

var scheduleParser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// Store is the part of the ledger the janitor maintains.
type Store interface {
	PurgeOldRequests(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error)
}

// Janitor periodically drops decided requests from the ledger and publishes
// the ledger size.
type Janitor struct {
	store     Store
	retention time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cron      *cron.Cron
	now       func() time.Time
}

// New validates schedule and prepares a janitor. Call Start to run it.
func New(store Store, schedule string, retention time.Duration, m *metrics.Metrics, logger *slog.Logger) (*Janitor, error) {
	schedule = strings.TrimSpace(schedule)
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}

	j := &Janitor{
		store:     store,
		retention: retention,
		metrics:   m,
		logger:    logger,
		cron:      cron.New(cron.WithParser(scheduleParser)),
		now:       time.Now,
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("failed to schedule purge: %w", err)
	}
	return j, nil
}

func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running purge to finish or ctx to
// be done.
func (j *Janitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce purges requests decided more than the retention ago.
func (j *Janitor) RunOnce(ctx context.Context) {
	cutoff := j.now().Add(-j.retention)

	purged, err := j.store.PurgeOldRequests(ctx, cutoff)
	if err != nil {
		j.logger.Error("error purging old requests", "error", err)
	} else if purged > 0 {
		j.logger.Info("purged old requests", "count", purged)
	}

	counts, err := j.store.CountByStatus(ctx)
	if err != nil {
		j.logger.Error("error counting requests", "error", err)
		return
	}
	for _, status := range []models.RequestStatus{models.StatusPending, models.StatusDone, models.StatusRejected} {
		j.metrics.SetLedgerCount(string(status), counts[status])
	}
}
