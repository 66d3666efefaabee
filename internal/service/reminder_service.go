package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/validation"
)

// NextReminder decides when the reminder for a feed at fedAt should fire.
// previousLatest is the infant's newest fed_at before this feed, if any.
// It returns false when no reminder is due.
func NextReminder(rem models.Reminders, fedAt int64, previousLatest *int64, now time.Time) (time.Time, bool) {
	if !rem.Enabled {
		return time.Time{}, false
	}
	// backfilled feeds never schedule
	if previousLatest != nil && fedAt < *previousLatest {
		return time.Time{}, false
	}

	at := time.Unix(fedAt, 0).Add(rem.Offset())
	if !at.After(now) {
		return time.Time{}, false
	}

	if rem.CutoffEnabled {
		loc, err := time.LoadLocation(rem.Timezone)
		if err != nil {
			loc = time.UTC
		}
		start, okStart := validation.ParseClock(rem.Start)
		cutoff, okCutoff := validation.ParseClock(rem.Cutoff)
		if okStart && okCutoff {
			local := at.In(loc)
			m := local.Hour()*60 + local.Minute()
			if m >= cutoff || m <= start {
				return time.Time{}, false
			}
		}
	}

	return at, true
}

// ReminderService schedules feed reminders for the user who logged a feed.
type ReminderService struct {
	userRepo   *repository.UserRepository
	dispatcher ReminderDispatcher
	now        func() time.Time
	log        *zap.SugaredLogger
}

// NewReminderService creates a new reminder service
func NewReminderService(userRepo *repository.UserRepository, dispatcher ReminderDispatcher, log *zap.SugaredLogger) *ReminderService {
	return &ReminderService{userRepo: userRepo, dispatcher: dispatcher, now: time.Now, log: log}
}

// AfterFeed schedules a reminder when one is due. Failures are logged only.
func (s *ReminderService) AfterFeed(ctx context.Context, owner Identity, infantName string, fedAt int64, previousLatest *int64) {
	rem, err := s.userRepo.GetReminders(ctx, owner.UserID)
	if err != nil {
		s.log.Errorw("failed to load reminders", "user_id", owner.UserID, "error", err)
		return
	}

	at, ok := NextReminder(rem, fedAt, previousLatest, s.now())
	if !ok {
		return
	}

	r := Reminder{To: owner.Email, InfantName: infantName, At: at}
	if err := s.dispatcher.Schedule(ctx, r); err != nil {
		s.log.Errorw("failed to schedule reminder", "user_id", owner.UserID, "error", err)
		return
	}
	s.log.Debugw("reminder scheduled", "user_id", owner.UserID, "at", at)
}

// SchedulerDispatcher runs reminders as one-shot gocron jobs tagged per
// recipient, so a newer reminder replaces a pending one.
type SchedulerDispatcher struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	log       *zap.SugaredLogger
}

// NewSchedulerDispatcher creates a dispatcher on a started scheduler
func NewSchedulerDispatcher(scheduler *gocron.Scheduler, notifier Notifier, log *zap.SugaredLogger) *SchedulerDispatcher {
	return &SchedulerDispatcher{scheduler: scheduler, notifier: notifier, log: log}
}

func reminderTag(email string) string {
	return "reminder-" + email
}

// Schedule replaces any pending reminder for r.To
func (d *SchedulerDispatcher) Schedule(_ context.Context, r Reminder) error {
	tag := reminderTag(r.To)
	// not finding a pending job is fine
	_ = d.scheduler.RemoveByTag(tag)

	_, err := d.scheduler.Every(1).Day().StartAt(r.At).LimitRunsTo(1).Tag(tag).Do(d.fire, r)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return nil
}

// Pending reports whether a reminder job is registered for email
func (d *SchedulerDispatcher) Pending(email string) bool {
	for _, job := range d.scheduler.Jobs() {
		for _, tag := range job.Tags() {
			if tag == reminderTag(email) {
				return true
			}
		}
	}
	return false
}

func (d *SchedulerDispatcher) fire(r Reminder) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body := fmt.Sprintf("It's time to feed %s", r.InfantName)
	if err := d.notifier.Notify(ctx, []string{r.To}, "Feed reminder", body); err != nil {
		d.log.Errorw("failed to send reminder", "to", r.To, "error", err)
		return
	}
	d.log.Infow("reminder sent", "to", r.To)
}
