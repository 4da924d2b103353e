package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/smallnest/talentsearch/log"
)

// Reaper periodically deletes inactive sessions.
type Reaper struct {
	store     Store
	maxAge    time.Duration
	interval  time.Duration
	logger    log.Logger
	onReap    func(n int)
	scheduler gocron.Scheduler
}

// ReaperOption configures a Reaper.
type ReaperOption func(*Reaper)

// WithReaperLogger sets the logger.
func WithReaperLogger(l log.Logger) ReaperOption {
	return func(r *Reaper) { r.logger = l }
}

// WithReapCallback is called with the number of sessions removed by each run.
func WithReapCallback(fn func(n int)) ReaperOption {
	return func(r *Reaper) { r.onReap = fn }
}

// NewReaper schedules a reap of store every interval.
func NewReaper(store Store, maxAge, interval time.Duration, opts ...ReaperOption) (*Reaper, error) {
	if maxAge <= 0 || interval <= 0 {
		return nil, fmt.Errorf("reaper: max age and interval must be positive")
	}
	r := &Reaper{store: store, maxAge: maxAge, interval: interval}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.OrDefault(r.logger)

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { r.RunOnce(context.Background()) }),
		gocron.WithName("session_reaper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule reaper: %w", err)
	}
	r.scheduler = scheduler
	return r, nil
}

// Start begins the schedule.
func (r *Reaper) Start() {
	r.logger.Info("session reaper started (max age %s, every %s)", r.maxAge, r.interval)
	r.scheduler.Start()
}

// RunOnce reaps immediately.
func (r *Reaper) RunOnce(ctx context.Context) int {
	n, err := r.store.Reap(ctx, r.maxAge)
	if err != nil {
		r.logger.Error("session reaper: %v", err)
		return n
	}
	if n > 0 {
		r.logger.Info("session reaper removed %d inactive sessions", n)
	}
	if r.onReap != nil {
		r.onReap(n)
	}
	return n
}

// Stop shuts the scheduler down, waiting for a running reap to finish.
func (r *Reaper) Stop() error {
	return r.scheduler.Shutdown()
}
