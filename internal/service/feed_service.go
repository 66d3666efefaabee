package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/validation"
)

// FeedService is the feed event store
type FeedService struct {
	feedRepo   *repository.FeedRepository
	infantRepo *repository.InfantRepository
	access     *AccessService
	reminders  *ReminderService
	notifier   Notifier
	validator  *validation.Validator
	log        *zap.SugaredLogger
}

// NewFeedService creates a new feed service
func NewFeedService(
	feedRepo *repository.FeedRepository,
	infantRepo *repository.InfantRepository,
	access *AccessService,
	reminders *ReminderService,
	notifier Notifier,
	validator *validation.Validator,
	log *zap.SugaredLogger,
) *FeedService {
	return &FeedService{
		feedRepo:   feedRepo,
		infantRepo: infantRepo,
		access:     access,
		reminders:  reminders,
		notifier:   notifier,
		validator:  validator,
		log:        log,
	}
}

// Add logs a feed, then schedules a reminder and notifies admins. Neither
// side effect can fail the call.
func (s *FeedService) Add(ctx context.Context, caller Identity, req models.NewFeed) (*models.Feed, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	actor, err := s.access.Authorize(ctx, caller, req.InfantID, models.PermLog)
	if err != nil {
		return nil, err
	}

	latest, hadFeeds, err := s.feedRepo.LatestFedAt(ctx, req.InfantID)
	if err != nil {
		return nil, err
	}

	feed := &models.Feed{
		Method:   req.Method,
		FedAt:    *req.FedAt,
		Amount:   req.Amount,
		Duration: req.Duration,
		InfantID: req.InfantID,
	}
	if err := s.feedRepo.Create(ctx, feed); err != nil {
		return nil, err
	}

	infantName := s.infantName(ctx, feed.InfantID)

	var previous *int64
	if hadFeeds {
		previous = &latest
	}
	s.reminders.AfterFeed(ctx, caller, infantName, feed.FedAt, previous)

	notifyAdmins(ctx, s.access, s.notifier, s.log, actor,
		fmt.Sprintf("%s was fed", infantName),
		fmt.Sprintf("%s logged a %s feed", caller.Email, feed.Method))

	return feed, nil
}

// Get returns one feed of the infant
func (s *FeedService) Get(ctx context.Context, caller Identity, infantID, id int64) (*models.Feed, error) {
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermRead); err != nil {
		return nil, err
	}

	feed, err := s.feedRepo.Get(ctx, infantID, id)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, ErrFeedNotFound
	}
	return feed, nil
}

// Update applies a partial update. The patched feed is validated as a
// whole, so changing method requires the matching measurement.
func (s *FeedService) Update(ctx context.Context, caller Identity, infantID, id int64, patch models.FeedPatch) (*models.Feed, error) {
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermModify); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, err
	}

	existing, err := s.feedRepo.Get(ctx, infantID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrFeedNotFound
	}
	// the merged row must still carry the measurement its method needs
	if err := s.validator.Struct(patch.ApplyTo(*existing)); err != nil {
		return nil, err
	}

	feed, err := s.feedRepo.Update(ctx, infantID, id, patch)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, ErrFeedNotFound
	}
	return feed, nil
}

// Delete removes a feed
func (s *FeedService) Delete(ctx context.Context, caller Identity, infantID, id int64) error {
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermModify); err != nil {
		return err
	}

	deleted, err := s.feedRepo.Delete(ctx, infantID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFeedNotFound
	}
	return nil
}

// ListInWindow returns feeds strictly inside (start, end), newest first
func (s *FeedService) ListInWindow(ctx context.Context, infantID, start, end int64) ([]models.Feed, error) {
	return s.feedRepo.ListInWindow(ctx, infantID, start, end)
}

// ListAsCalendarEvents is ListInWindow projected for the calendar
func (s *FeedService) ListAsCalendarEvents(ctx context.Context, infantID, start, end int64) ([]models.CalendarEvent, error) {
	feeds, err := s.ListInWindow(ctx, infantID, start, end)
	if err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, len(feeds))
	for i, f := range feeds {
		events[i] = models.FeedEvent(f)
	}
	return events, nil
}

func (s *FeedService) infantName(ctx context.Context, infantID int64) string {
	return lookupInfantName(ctx, s.infantRepo, s.log, infantID)
}
