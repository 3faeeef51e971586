package payment

import (
	"context"

	"teleconseil/internal/pkg/config"
	"teleconseil/internal/pkg/errs"
	"teleconseil/internal/usecase"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// StripeGateway drives the money movement: manual-capture intents for the
// booking hold, refunds for cancellations and connected-account transfers
// for payouts.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(cfg config.StripeConfig) usecase.PaymentGateway {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateAuthorization(ctx context.Context, amount int64, currency string, metadata map[string]string) (*usecase.PaymentAuthorization, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, errs.Wrap(err, "stripe: create payment intent")
	}
	return &usecase.PaymentAuthorization{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCaptureParams{
		Params: stripe.Params{Context: ctx},
	}
	if _, err := g.api.PaymentIntents.Capture(intentID, params); err != nil {
		return errs.Wrap(err, "stripe: capture payment intent")
	}
	return nil
}

func (g *StripeGateway) CancelAuthorization(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{Context: ctx},
	}
	if _, err := g.api.PaymentIntents.Cancel(intentID, params); err != nil {
		return errs.Wrap(err, "stripe: cancel payment intent")
	}
	return nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount *int64) error {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(intentID),
	}
	if amount != nil {
		params.Amount = stripe.Int64(*amount)
	}
	if _, err := g.api.Refunds.New(params); err != nil {
		return errs.Wrap(err, "stripe: create refund")
	}
	return nil
}

func (g *StripeGateway) Transfer(ctx context.Context, amount int64, currency, destinationAccount string, metadata map[string]string) (string, error) {
	params := &stripe.TransferParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Destination: stripe.String(destinationAccount),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	transfer, err := g.api.Transfers.New(params)
	if err != nil {
		return "", errs.Wrap(err, "stripe: create transfer")
	}
	return transfer.ID, nil
}
