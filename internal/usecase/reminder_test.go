//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"teleconseil/internal/domain/notification"
	"teleconseil/internal/pkg/clock"
	"teleconseil/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reminderEnv struct {
	reminders *fakeReminderIndex
	notifier  *fakeNotifier
	clock     *clock.MockClock
	commands  usecase.ReminderCommands
}

func newReminderEnv() *reminderEnv {
	env := &reminderEnv{
		reminders: newFakeReminderIndex(),
		notifier:  &fakeNotifier{},
		clock:     clock.NewMockClock(testNow),
	}
	env.commands = usecase.NewReminderCommands(env.reminders, env.notifier, env.clock)
	return env
}

func (env *reminderEnv) addEntry(startsIn time.Duration, durationMinutes int) usecase.ReminderEntry {
	e := usecase.ReminderEntry{
		ID:              uuid.New(),
		ProID:           uuid.New(),
		ClientID:        uuid.New(),
		DateTime:        testNow.Add(startsIn),
		DurationMinutes: durationMinutes,
		TimeSlot:        "14:00-15:00",
		RoomID:          "123456",
	}
	env.reminders.entries[e.ID] = e
	return e
}

func TestScanDueBands(t *testing.T) {
	tests := []struct {
		name     string
		startsIn time.Duration
		kind     string
	}{
		{"two day notice", 48 * time.Hour, notification.KindUpcoming},
		{"fifteen minutes before", 15 * time.Minute, notification.KindReminder},
		{"five minutes before", 5 * time.Minute, notification.KindReminder},
		{"two minutes before", 2 * time.Minute, notification.KindReminder},
		{"five minutes before the end", -55 * time.Minute, notification.KindEndingSoon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newReminderEnv()
			e := env.addEntry(tt.startsIn, 60)

			sent, err := env.commands.ScanDue(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 2, sent, "both parties are notified")

			clientMsgs := env.notifier.sentTo(e.ClientID)
			require.Len(t, clientMsgs, 1)
			assert.Equal(t, tt.kind, clientMsgs[0].Kind)
			assert.Equal(t, "123456", clientMsgs[0].Data["roomId"])

			require.Len(t, env.notifier.sentTo(e.ProID), 1)
		})
	}
}

func TestScanDueBandEdges(t *testing.T) {
	tests := []struct {
		name     string
		startsIn time.Duration
		fires    bool
	}{
		{"16 minutes is inside the 15-minute band", 16 * time.Minute, true},
		{"17 minutes is outside every band", 17 * time.Minute, false},
		{"just over an hour away", 70 * time.Minute, false},
		{"already started", -10 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newReminderEnv()
			env.addEntry(tt.startsIn, 30)

			sent, err := env.commands.ScanDue(context.Background())
			require.NoError(t, err)
			if tt.fires {
				assert.Equal(t, 2, sent)
			} else {
				assert.Zero(t, sent)
			}
		})
	}
}

func TestScanDueAtMostOncePerWindow(t *testing.T) {
	env := newReminderEnv()
	env.addEntry(15*time.Minute, 60)

	sent, err := env.commands.ScanDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	// same minute again, e.g. overlapping scans
	sent, err = env.commands.ScanDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	// next minute is still inside the band but the window is claimed
	env.clock.Advance(time.Minute)
	sent, err = env.commands.ScanDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestScanDueDistinctWindowsFireSeparately(t *testing.T) {
	env := newReminderEnv()
	env.addEntry(15*time.Minute, 60)

	sent, err := env.commands.ScanDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "15-minute reminder")

	env.clock.Advance(10 * time.Minute)
	sent, err = env.commands.ScanDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "5-minute reminder")

	env.clock.Advance(3 * time.Minute)
	sent, err = env.commands.ScanDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "2-minute reminder")
}

func TestScanDueEmptyIndex(t *testing.T) {
	env := newReminderEnv()

	sent, err := env.commands.ScanDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}
