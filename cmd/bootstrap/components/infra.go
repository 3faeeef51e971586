package components

import (
	"teleconseil/internal/infra/collab"
	"teleconseil/internal/infra/notify"
	"teleconseil/internal/infra/payment"
	"teleconseil/internal/infra/reminder"
	"teleconseil/internal/infra/repository"
	"teleconseil/internal/pkg/config"
	"teleconseil/internal/usecase"

	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		repository.NewAppointmentRepository,
		repository.NewUserRepository,
		repository.NewNotificationRepository,
		reminder.NewIndex,
		notify.NewNotifier,
		collab.NewInvoiceGenerator,
		collab.NewChatActivator,
		NewPaymentGateway,
	),
)

func NewPaymentGateway(cfg config.Config) usecase.PaymentGateway {
	return payment.NewStripeGateway(cfg.Stripe)
}
