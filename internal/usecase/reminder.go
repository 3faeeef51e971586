package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"teleconseil/internal/domain/notification"
	"teleconseil/internal/pkg/clock"
)

// Reminder windows. Each band is three minutes wide so a scan running every
// minute always lands in it at least once, and the fired marker keeps it to
// exactly once.
type reminderWindow struct {
	name    string
	fromEnd bool
	// minutes remaining, inclusive bounds
	min, max int
	title    string
	body     string
	kind     string
}

var reminderWindows = []reminderWindow{
	{
		name: "upcoming-48h", min: 2879, max: 2881,
		title: "Rendez-vous dans deux jours",
		body:  "Votre rendez-vous a lieu dans deux jours.",
		kind:  notification.KindUpcoming,
	},
	{
		name: "start-15", min: 14, max: 16,
		title: "Rendez-vous dans 15 minutes",
		body:  "Votre rendez-vous commence dans 15 minutes.",
		kind:  notification.KindReminder,
	},
	{
		name: "start-5", min: 4, max: 6,
		title: "Rendez-vous dans 5 minutes",
		body:  "Votre rendez-vous commence dans 5 minutes.",
		kind:  notification.KindReminder,
	},
	{
		name: "start-2", min: 1, max: 3,
		title: "Rendez-vous imminent",
		body:  "Votre rendez-vous commence dans 2 minutes.",
		kind:  notification.KindReminder,
	},
	{
		name: "end-5", fromEnd: true, min: 4, max: 6,
		title: "Fin de rendez-vous dans 5 minutes",
		body:  "Votre rendez-vous se termine dans 5 minutes.",
		kind:  notification.KindEndingSoon,
	},
}

// ReminderCommands runs the minute-resolution scan over the side-index.
type ReminderCommands interface {
	ScanDue(ctx context.Context) (int, error)
}

type reminderCommandsImpl struct {
	reminders ReminderIndex
	notifier  Notifier
	clock     clock.Clock
}

func NewReminderCommands(reminders ReminderIndex, notifier Notifier, clk clock.Clock) ReminderCommands {
	return &reminderCommandsImpl{reminders: reminders, notifier: notifier, clock: clk}
}

// ScanDue walks the snapshot once and fires every window whose band the
// current minute falls into. Returns the number of reminders sent.
func (uc *reminderCommandsImpl) ScanDue(ctx context.Context) (int, error) {
	entries, err := uc.reminders.Entries(ctx)
	if err != nil {
		return 0, err
	}

	now := uc.clock.Now()
	sent := 0
	for _, e := range entries {
		start := int(math.Round(e.DateTime.Sub(now).Minutes()))
		end := int(math.Round(e.DateTime.Add(time.Duration(e.DurationMinutes) * time.Minute).Sub(now).Minutes()))

		for _, w := range reminderWindows {
			remaining := start
			if w.fromEnd {
				remaining = end
			}
			if remaining < w.min || remaining > w.max {
				continue
			}

			claimed, err := uc.reminders.ClaimWindow(ctx, e.ID, w.name)
			if err != nil {
				slog.Error("failed to claim reminder window",
					"appointment_id", e.ID, "window", w.name, "error", err)
				continue
			}
			if !claimed {
				continue
			}

			data := map[string]string{
				"appointmentId": e.ID.String(),
				"timeSlot":      e.TimeSlot,
			}
			if e.RoomID != "" {
				data["roomId"] = e.RoomID
			}
			uc.notifier.Notify(ctx, notification.New(e.ClientID, w.title, w.body, w.kind, data))
			uc.notifier.Notify(ctx, notification.New(e.ProID, w.title, w.body, w.kind, data))
			sent += 2
		}
	}
	return sent, nil
}
