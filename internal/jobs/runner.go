package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"teleconseil/internal/pkg/config"
	"teleconseil/internal/usecase"
)

// Job is one scheduled task. Run must be safe to call concurrently with the
// HTTP surface; errors are logged and the ticker keeps going.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner owns one goroutine per job. Every job also runs once at startup so
// a restarted process catches up immediately instead of waiting a full
// interval.
type Runner struct {
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(appointments usecase.AppointmentCommands, evaluations usecase.EvaluationCommands, reminders usecase.ReminderCommands, cfg config.JobsConfig) *Runner {
	return &Runner{jobs: []Job{
		{
			Name:     "expire_stale_initiations",
			Interval: cfg.ExpiryInterval,
			Run: func(ctx context.Context) error {
				deleted, err := appointments.ExpireStaleInitiations(ctx)
				if err != nil {
					return err
				}
				if deleted > 0 {
					slog.Info("expired stale initiations", "deleted", deleted)
				}
				return nil
			},
		},
		{
			Name:     "scan_reminders",
			Interval: cfg.ReminderInterval,
			Run: func(ctx context.Context) error {
				sent, err := reminders.ScanDue(ctx)
				if err != nil {
					return err
				}
				if sent > 0 {
					slog.Info("reminders sent", "count", sent)
				}
				return nil
			},
		},
		{
			Name:     "rebuild_reminder_index",
			Interval: cfg.IndexInterval,
			Run:      appointments.RefreshReminderIndex,
		},
		{
			Name:     "process_evaluations",
			Interval: cfg.EvaluationInterval,
			Run: func(ctx context.Context) error {
				res, err := evaluations.ProcessDueEvaluations(ctx)
				if err != nil {
					return err
				}
				if res.Scanned > 0 {
					slog.Info("evaluation batch done",
						"scanned", res.Scanned, "released", res.Released, "withheld", res.Withheld)
				}
				return nil
			},
		},
		{
			Name:     "process_payouts",
			Interval: cfg.PayoutInterval,
			Run: func(ctx context.Context) error {
				res, err := evaluations.ProcessDuePayouts(ctx)
				if err != nil {
					return err
				}
				if res.Scanned > 0 {
					slog.Info("payout batch done",
						"scanned", res.Scanned, "paid", res.Paid, "skipped", res.Skipped, "failed", res.Failed)
				}
				return nil
			},
		},
	}}
}

func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
}

func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	run := func() {
		if err := job.Run(ctx); err != nil {
			slog.Error("scheduled job failed", "job", job.Name, "error", err)
		}
	}
	run()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
