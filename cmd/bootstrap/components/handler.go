package components

import (
	"teleconseil/internal/handler"
	"teleconseil/internal/handler/api"
	"teleconseil/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAppointmentHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(
		handler.NewRouter,
	),
)
