package components

import (
	"teleconseil/internal/pkg/clock"
	"teleconseil/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		usecase.NewAppointmentCommands,
		usecase.NewEvaluationCommands,
		usecase.NewReminderCommands,
		usecase.NewAppointmentQueries,
	),
)
