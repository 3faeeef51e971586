package bootstrap

import (
	"context"

	"teleconseil/internal/jobs"
	"teleconseil/internal/pkg/config"
	"teleconseil/internal/usecase"

	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Provide(
		NewJobRunner,
	),
	fx.Invoke(
		StartJobRunner,
	),
)

func NewJobRunner(appointments usecase.AppointmentCommands, evaluations usecase.EvaluationCommands, reminders usecase.ReminderCommands, cfg config.Config) *jobs.Runner {
	return jobs.NewRunner(appointments, evaluations, reminders, cfg.Jobs)
}

func StartJobRunner(lc fx.Lifecycle, runner *jobs.Runner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runner.Start(context.WithoutCancel(ctx))
			return nil
		},
		OnStop: func(_ context.Context) error {
			runner.Stop()
			return nil
		},
	})
}
