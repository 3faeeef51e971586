//go:build unit

package usecase_test

import (
	"context"
	"errors"
	"time"

	"teleconseil/internal/domain/appointment"
	"teleconseil/internal/domain/notification"
	"teleconseil/internal/domain/user"
	"teleconseil/internal/infra"
	"teleconseil/internal/usecase"

	"github.com/google/uuid"
)

// In-memory stand-ins for the ports. Each fake mimics the real adapter's
// contract (CAS on status, at-most-once window claims) closely enough for
// the command logic to be exercised end to end.

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*appointment.Appointment
	updateCalls  int
	failUpdate   error
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*appointment.Appointment)}
}

func (r *fakeAppointmentRepo) put(a *appointment.Appointment) {
	cp := *a
	r.appointments[a.ID] = &cp
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	r.put(a)
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) FindByParticipant(_ context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	var result []*appointment.Appointment
	for _, a := range r.appointments {
		if a.ProID == userID || a.ClientID == userID {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) UpdateIfStatus(_ context.Context, a *appointment.Appointment, expected appointment.Status) error {
	r.updateCalls++
	if r.failUpdate != nil {
		return r.failUpdate
	}
	stored, ok := r.appointments[a.ID]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "appointment not found")
	}
	if stored.Status != expected {
		return infra.NewRepoErr(infra.KindConflict, "appointment status changed concurrently")
	}
	r.put(a)
	return nil
}

func (r *fakeAppointmentRepo) DeleteStaleInitiated(_ context.Context, olderThan time.Time) (int64, error) {
	var deleted int64
	for id, a := range r.appointments {
		if a.Status == appointment.StatusPaymentInitiated && a.CreatedAt.Before(olderThan) {
			delete(r.appointments, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeAppointmentRepo) FindEvaluationDue(_ context.Context, startedBefore time.Time) ([]*appointment.Appointment, error) {
	var result []*appointment.Appointment
	for _, a := range r.appointments {
		if a.Status == appointment.StatusConfirmed && a.DateTime.Before(startedBefore) && a.HasUnprocessedEvaluation() {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) FindPayoutDue(_ context.Context, pendingSince time.Time) ([]*appointment.Appointment, error) {
	var result []*appointment.Appointment
	for _, a := range r.appointments {
		if a.Status == appointment.StatusPendingPayout && a.PendingPayoutSince != nil && !a.PendingPayoutSince.After(pendingSince) {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) FindConfirmedBetween(_ context.Context, from, to time.Time) ([]*appointment.Appointment, error) {
	var result []*appointment.Appointment
	for _, a := range r.appointments {
		if a.Status == appointment.StatusConfirmed && !a.DateTime.Before(from) && a.DateTime.Before(to) {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users        map[uuid.UUID]*user.User
	ratingCalls  int
	lastAvg      float64
	lastCount    int
	lastRatedPro uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeUserRepo) put(u *user.User) {
	cp := *u
	r.users[u.ID] = &cp
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateRatingStats(_ context.Context, id uuid.UUID, ratingAvg float64, reviewsCount int) error {
	r.ratingCalls++
	r.lastRatedPro = id
	r.lastAvg = ratingAvg
	r.lastCount = reviewsCount
	if u, ok := r.users[id]; ok {
		u.RatingAvg = ratingAvg
		u.ReviewsCount = reviewsCount
	}
	return nil
}

type gatewayCall struct {
	op       string
	intentID string
	amount   int64
	account  string
}

type fakeGateway struct {
	calls       []gatewayCall
	failCreate  error
	failCapture error
	failCancel  error
	failRefund  error
	failXfer    error
	emptyIntent bool
}

func (g *fakeGateway) CreateAuthorization(_ context.Context, amount int64, _ string, _ map[string]string) (*usecase.PaymentAuthorization, error) {
	g.calls = append(g.calls, gatewayCall{op: "create", amount: amount})
	if g.failCreate != nil {
		return nil, g.failCreate
	}
	if g.emptyIntent {
		return &usecase.PaymentAuthorization{}, nil
	}
	return &usecase.PaymentAuthorization{IntentID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (g *fakeGateway) Capture(_ context.Context, intentID string) error {
	g.calls = append(g.calls, gatewayCall{op: "capture", intentID: intentID})
	return g.failCapture
}

func (g *fakeGateway) CancelAuthorization(_ context.Context, intentID string) error {
	g.calls = append(g.calls, gatewayCall{op: "cancel", intentID: intentID})
	return g.failCancel
}

func (g *fakeGateway) Refund(_ context.Context, intentID string, amount *int64) error {
	call := gatewayCall{op: "refund_full", intentID: intentID}
	if amount != nil {
		call.op = "refund_partial"
		call.amount = *amount
	}
	g.calls = append(g.calls, call)
	return g.failRefund
}

func (g *fakeGateway) Transfer(_ context.Context, amount int64, _ string, destinationAccount string, _ map[string]string) (string, error) {
	g.calls = append(g.calls, gatewayCall{op: "transfer", amount: amount, account: destinationAccount})
	if g.failXfer != nil {
		return "", g.failXfer
	}
	return "tr_test", nil
}

func (g *fakeGateway) ops() []string {
	ops := make([]string, len(g.calls))
	for i, c := range g.calls {
		ops[i] = c.op
	}
	return ops
}

type fakeNotifier struct {
	sent []notification.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, msg notification.Notification) {
	n.sent = append(n.sent, msg)
}

func (n *fakeNotifier) sentTo(userID uuid.UUID) []notification.Notification {
	var result []notification.Notification
	for _, msg := range n.sent {
		if msg.UserID != nil && *msg.UserID == userID {
			result = append(result, msg)
		}
	}
	return result
}

func (n *fakeNotifier) operatorKinds() []string {
	var kinds []string
	for _, msg := range n.sent {
		if msg.UserID == nil {
			kinds = append(kinds, msg.Kind)
		}
	}
	return kinds
}

type fakeReminderIndex struct {
	entries  map[uuid.UUID]usecase.ReminderEntry
	claimed  map[string]bool
	removed  []uuid.UUID
	rebuilds int
}

func newFakeReminderIndex() *fakeReminderIndex {
	return &fakeReminderIndex{
		entries: make(map[uuid.UUID]usecase.ReminderEntry),
		claimed: make(map[string]bool),
	}
}

func (i *fakeReminderIndex) Add(_ context.Context, e usecase.ReminderEntry) error {
	i.entries[e.ID] = e
	return nil
}

func (i *fakeReminderIndex) Remove(_ context.Context, id uuid.UUID) error {
	delete(i.entries, id)
	i.removed = append(i.removed, id)
	return nil
}

func (i *fakeReminderIndex) Rebuild(_ context.Context, entries []usecase.ReminderEntry) error {
	i.rebuilds++
	i.entries = make(map[uuid.UUID]usecase.ReminderEntry)
	for _, e := range entries {
		i.entries[e.ID] = e
	}
	return nil
}

func (i *fakeReminderIndex) Entries(_ context.Context) ([]usecase.ReminderEntry, error) {
	result := make([]usecase.ReminderEntry, 0, len(i.entries))
	for _, e := range i.entries {
		result = append(result, e)
	}
	return result, nil
}

func (i *fakeReminderIndex) ClaimWindow(_ context.Context, id uuid.UUID, window string) (bool, error) {
	key := id.String() + ":" + window
	if i.claimed[key] {
		return false, nil
	}
	i.claimed[key] = true
	return true, nil
}

type fakeInvoiceGenerator struct {
	calls int
	fail  error
}

func (g *fakeInvoiceGenerator) Generate(_ context.Context, _ *appointment.Appointment) (usecase.InvoicePair, error) {
	g.calls++
	if g.fail != nil {
		return usecase.InvoicePair{}, g.fail
	}
	return usecase.InvoicePair{Client: "INV-C", Professional: "INV-P"}, nil
}

type fakeChatActivator struct {
	activated []string
}

func (c *fakeChatActivator) Activate(_ context.Context, _ uuid.UUID, roomID string) error {
	c.activated = append(c.activated, roomID)
	return nil
}

var errGatewayDown = errors.New("gateway unavailable")
