package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/validation"
)

// DiaperService is the diaper event store
type DiaperService struct {
	diaperRepo *repository.DiaperRepository
	infantRepo *repository.InfantRepository
	access     *AccessService
	notifier   Notifier
	validator  *validation.Validator
	log        *zap.SugaredLogger
}

// NewDiaperService creates a new diaper service
func NewDiaperService(
	diaperRepo *repository.DiaperRepository,
	infantRepo *repository.InfantRepository,
	access *AccessService,
	notifier Notifier,
	validator *validation.Validator,
	log *zap.SugaredLogger,
) *DiaperService {
	return &DiaperService{
		diaperRepo: diaperRepo,
		infantRepo: infantRepo,
		access:     access,
		notifier:   notifier,
		validator:  validator,
		log:        log,
	}
}

// Add logs a diaper change. The size is stored as given.
func (s *DiaperService) Add(ctx context.Context, caller Identity, req models.NewDiaper) (*models.Diaper, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	actor, err := s.access.Authorize(ctx, caller, req.InfantID, models.PermLog)
	if err != nil {
		return nil, err
	}

	diaper := &models.Diaper{
		Type:      req.Type,
		Size:      req.Size,
		ChangedAt: *req.ChangedAt,
		InfantID:  req.InfantID,
	}
	if err := s.diaperRepo.Create(ctx, diaper); err != nil {
		return nil, err
	}

	if actor.NotifyAdmin {
		infantName := lookupInfantName(ctx, s.infantRepo, s.log, diaper.InfantID)
		notifyAdmins(ctx, s.access, s.notifier, s.log, actor,
			fmt.Sprintf("%s had a diaper change", infantName),
			fmt.Sprintf("%s logged a %s diaper", caller.Email, diaper.Type))
	}

	return diaper, nil
}

// Get returns one diaper change of the infant
func (s *DiaperService) Get(ctx context.Context, caller Identity, infantID, id int64) (*models.Diaper, error) {
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermRead); err != nil {
		return nil, err
	}

	diaper, err := s.diaperRepo.Get(ctx, infantID, id)
	if err != nil {
		return nil, err
	}
	if diaper == nil {
		return nil, ErrDiaperNotFound
	}
	return diaper, nil
}

// Update applies a partial update
func (s *DiaperService) Update(ctx context.Context, caller Identity, infantID, id int64, patch models.DiaperPatch) (*models.Diaper, error) {
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermModify); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, err
	}

	diaper, err := s.diaperRepo.Update(ctx, infantID, id, patch)
	if err != nil {
		return nil, err
	}
	if diaper == nil {
		return nil, ErrDiaperNotFound
	}
	return diaper, nil
}

// Delete removes a diaper change
func (s *DiaperService) Delete(ctx context.Context, caller Identity, infantID, id int64) error {
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermModify); err != nil {
		return err
	}

	deleted, err := s.diaperRepo.Delete(ctx, infantID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDiaperNotFound
	}
	return nil
}

// ListInWindow returns diapers strictly inside (start, end), newest first
func (s *DiaperService) ListInWindow(ctx context.Context, infantID, start, end int64) ([]models.Diaper, error) {
	return s.diaperRepo.ListInWindow(ctx, infantID, start, end)
}

// ListAsCalendarEvents is ListInWindow projected for the calendar
func (s *DiaperService) ListAsCalendarEvents(ctx context.Context, infantID, start, end int64) ([]models.CalendarEvent, error) {
	diapers, err := s.ListInWindow(ctx, infantID, start, end)
	if err != nil {
		return nil, err
	}
	events := make([]models.CalendarEvent, len(diapers))
	for i, d := range diapers {
		events[i] = models.DiaperEvent(d)
	}
	return events, nil
}
