package collab

import (
	"context"
	"fmt"
	"log/slog"

	"teleconseil/internal/domain/appointment"
	"teleconseil/internal/pkg/clock"
	"teleconseil/internal/usecase"

	"github.com/google/uuid"
)

// InvoiceGenerator mints the document references handed to the external
// billing renderer on confirmation: one invoice for the client, one for the
// professional's share.
type InvoiceGenerator struct {
	clock clock.Clock
}

func NewInvoiceGenerator(clk clock.Clock) usecase.InvoiceGenerator {
	return &InvoiceGenerator{clock: clk}
}

func (g *InvoiceGenerator) Generate(ctx context.Context, a *appointment.Appointment) (usecase.InvoicePair, error) {
	stamp := g.clock.Now().Format("20060102")
	pair := usecase.InvoicePair{
		Client:       fmt.Sprintf("INV-%s-%s-C", stamp, shortID(a.ID)),
		Professional: fmt.Sprintf("INV-%s-%s-P", stamp, shortID(a.ID)),
	}

	slog.Info("invoices issued",
		"appointment_id", a.ID,
		"client_invoice", pair.Client,
		"pro_invoice", pair.Professional,
		"amount_total", a.AmountTotal)
	return pair, nil
}

// ChatActivator signals the chat/video subsystem that a room went live.
type ChatActivator struct{}

func NewChatActivator() usecase.ChatActivator {
	return &ChatActivator{}
}

func (c *ChatActivator) Activate(ctx context.Context, appointmentID uuid.UUID, roomID string) error {
	slog.Info("chat room activated",
		"appointment_id", appointmentID, "room_id", roomID)
	return nil
}

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}
