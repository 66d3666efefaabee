package service

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/go-co-op/gocron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bably/internal/logger"
	"bably/internal/models"
)

func TestNextReminder(t *testing.T) {
	// 2024-06-01 12:00:00 UTC
	fedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Unix()
	now := time.Unix(fedAt, 0).Add(time.Minute)

	enabled := models.DefaultReminders()
	enabled.Enabled = true

	withCutoff := func(start, cutoff, tz string) models.Reminders {
		r := enabled
		r.CutoffEnabled = true
		r.Start = start
		r.Cutoff = cutoff
		r.Timezone = tz
		return r
	}

	earlier := fedAt - 3600
	later := fedAt + 3600

	tests := []struct {
		name     string
		rem      models.Reminders
		previous *int64
		now      time.Time
		want     bool
	}{
		{"disabled", models.DefaultReminders(), nil, now, false},
		{"first feed", enabled, nil, now, true},
		{"newest feed", enabled, &earlier, now, true},
		{"backfilled feed", enabled, &later, now, false},
		{"already past", enabled, nil, time.Unix(fedAt, 0).Add(4 * time.Hour), false},
		{"inside window", withCutoff("07:00", "21:00", "UTC"), nil, now, true},
		{"after cutoff", withCutoff("07:00", "14:00", "UTC"), nil, now, false},
		{"exactly at cutoff", withCutoff("07:00", "15:00", "UTC"), nil, now, false},
		{"before start", withCutoff("16:00", "23:00", "UTC"), nil, now, false},
		// 15:00 UTC is 11:00 in New York
		{"cutoff in local time", withCutoff("07:00", "12:00", "America/New_York"), nil, now, true},
		{"start in local time", withCutoff("12:00", "23:00", "America/New_York"), nil, now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, ok := NextReminder(tt.rem, fedAt, tt.previous, tt.now)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, time.Unix(fedAt, 0).Add(3*time.Hour), at)
			}
		})
	}
}

type stubDispatcher struct {
	scheduled []Reminder
}

func (d *stubDispatcher) Schedule(_ context.Context, r Reminder) error {
	d.scheduled = append(d.scheduled, r)
	return nil
}

func TestAfterFeedUsesOwnerPreferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dispatcher := &stubDispatcher{}
	svc := NewReminderService(f.users, dispatcher, logger.Nop())

	fedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Unix()
	svc.now = func() time.Time { return time.Unix(fedAt, 0) }

	owner := f.user(t, "owner@example.com", "Olive")
	svc.AfterFeed(ctx, identity(owner), "Ivy", fedAt, nil)
	assert.Empty(t, dispatcher.scheduled, "new accounts start with reminders off")

	rem := models.DefaultReminders()
	rem.Enabled = true
	rem.Hours = 2
	rem.Minutes = 30
	require.NoError(t, f.users.UpdateReminders(ctx, owner.ID, rem))

	svc.AfterFeed(ctx, identity(owner), "Ivy", fedAt, nil)
	require.Len(t, dispatcher.scheduled, 1)
	assert.Equal(t, Reminder{
		To:         owner.Email,
		InfantName: "Ivy",
		At:         time.Unix(fedAt, 0).Add(150 * time.Minute),
	}, dispatcher.scheduled[0])
}

func TestSchedulerDispatcherReplacesPendingReminder(t *testing.T) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.TagsUnique()
	notifier := &recordingNotifier{}
	d := NewSchedulerDispatcher(scheduler, notifier, logger.Nop())

	at := time.Now().Add(time.Hour)
	require.NoError(t, d.Schedule(ctx, Reminder{To: "a@example.com", InfantName: "Ivy", At: at}))
	require.NoError(t, d.Schedule(ctx, Reminder{To: "a@example.com", InfantName: "Ivy", At: at.Add(time.Hour)}))
	require.NoError(t, d.Schedule(ctx, Reminder{To: "b@example.com", InfantName: "Ivy", At: at}))

	assert.True(t, d.Pending("a@example.com"))
	assert.True(t, d.Pending("b@example.com"))
	assert.False(t, d.Pending("c@example.com"))
	assert.Len(t, scheduler.Jobs(), 2)

	d.fire(Reminder{To: "a@example.com", InfantName: "Ivy"})
	assert.Equal(t, [][]string{{"a@example.com"}}, notifier.sent)
}
