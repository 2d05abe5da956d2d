package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oeduardop1/life-assistant-sub001/internal/services"
)

// OverdueWorker runs the overdue sweep on a cron schedule. The schedule uses
// six fields (seconds first), matching the OVERDUE_CRON config default.
type OverdueWorker struct {
	checker  *services.OverdueChecker
	schedule string
	timeout  time.Duration
	loc      *time.Location
	cron     *cron.Cron
}

func NewOverdueWorker(checker *services.OverdueChecker, schedule string, timeout time.Duration, loc *time.Location) *OverdueWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &OverdueWorker{
		checker:  checker,
		schedule: schedule,
		timeout:  timeout,
		loc:      loc,
	}
}

// Start registers the sweep job and starts the scheduler. One sweep runs
// immediately so a restarted worker never waits a full period.
func (w *OverdueWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithSeconds(), cron.WithLocation(w.loc))
	if _, err := c.AddFunc(w.schedule, func() { w.runSweep(ctx) }); err != nil {
		return fmt.Errorf("register overdue sweep: %w", err)
	}
	w.cron = c

	go w.runSweep(ctx)
	c.Start()

	slog.InfoContext(ctx, "Overdue worker started", "schedule", w.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (w *OverdueWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

func (w *OverdueWorker) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	flipped, err := w.checker.Sweep(sweepCtx, time.Now())
	if err != nil {
		slog.ErrorContext(sweepCtx, "Overdue sweep failed", "error", err)
		return
	}
	slog.InfoContext(sweepCtx, "Overdue sweep completed", "flipped", flipped)
}
