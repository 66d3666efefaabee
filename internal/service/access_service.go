package service

import (
	"context"
	"fmt"

	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/security"
)

// AccessService decides what a caller may do with an infant.
type AccessService struct {
	accessRepo *repository.AccessRepository
	demo       security.DemoPolicy
}

// NewAccessService creates a new access service
func NewAccessService(accessRepo *repository.AccessRepository, demo security.DemoPolicy) *AccessService {
	return &AccessService{accessRepo: accessRepo, demo: demo}
}

// CheckAuthorized resolves the caller's link to the infant. A nil result
// means no access; only storage failures return an error.
func (s *AccessService) CheckAuthorized(ctx context.Context, email string, infantID int64) (*models.Authorization, error) {
	auth, err := s.accessRepo.GetAuthorization(ctx, email, infantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}
	return auth, nil
}

// Authorize returns the caller's link when it grants need. The demo
// identity is limited to reads.
func (s *AccessService) Authorize(ctx context.Context, id Identity, infantID int64, need models.Permission) (*models.Authorization, error) {
	if need != models.PermRead && s.demo.IsReadOnlyDemoIdentity(id.Email) {
		return nil, ErrDemoReadOnly
	}

	auth, err := s.CheckAuthorized(ctx, id.Email, infantID)
	if err != nil {
		return nil, err
	}
	if !auth.Allows(need) {
		return nil, ErrForbidden
	}
	return auth, nil
}

// AddAuthorizedUser grants role unless the user already has a link.
// The first grant wins.
func (s *AccessService) AddAuthorizedUser(ctx context.Context, userID, infantID int64, role models.Role) (bool, error) {
	added, err := s.accessRepo.AddLink(ctx, userID, infantID, role)
	if err != nil {
		return false, fmt.Errorf("failed to add authorized user: %w", err)
	}
	return added, nil
}

// UpdateAccess switches a non-admin between guardian and babysitter.
func (s *AccessService) UpdateAccess(ctx context.Context, actor *models.Authorization, userID, infantID int64, crud bool) (bool, error) {
	if !actor.IsAdmin() || actor.InfantID != infantID {
		return false, ErrForbidden
	}

	link, err := s.accessRepo.GetLink(ctx, userID, infantID)
	if err != nil {
		return false, fmt.Errorf("failed to get link: %w", err)
	}
	if link == nil {
		return false, ErrLinkNotFound
	}
	if link.IsAdmin() {
		return false, ErrAdminTarget
	}

	if err := s.accessRepo.UpdateRole(ctx, userID, infantID, models.RoleFromCrud(crud)); err != nil {
		return false, err
	}
	return crud, nil
}

// RemoveAccess deletes a user's link to the infant. Events are untouched.
func (s *AccessService) RemoveAccess(ctx context.Context, actor *models.Authorization, userID, infantID int64) (int64, error) {
	if !actor.IsAdmin() || actor.InfantID != infantID {
		return 0, ErrForbidden
	}
	if actor.UserID == userID {
		return 0, ErrRemoveSelf
	}

	removed, err := s.accessRepo.RemoveLink(ctx, userID, infantID)
	if err != nil {
		return 0, err
	}
	if !removed {
		return 0, ErrLinkNotFound
	}
	return userID, nil
}

// UpdateNotifyAdmin sets the notify bit. Admins may set it for anyone on
// the infant, everyone else only for themselves.
func (s *AccessService) UpdateNotifyAdmin(ctx context.Context, actor *models.Authorization, userID, infantID int64, notify bool) (bool, error) {
	if actor == nil || actor.InfantID != infantID || (!actor.IsAdmin() && actor.UserID != userID) {
		return false, ErrForbidden
	}

	link, err := s.accessRepo.GetLink(ctx, userID, infantID)
	if err != nil {
		return false, fmt.Errorf("failed to get link: %w", err)
	}
	if link == nil {
		return false, ErrLinkNotFound
	}

	if err := s.accessRepo.UpdateNotifyAdmin(ctx, userID, infantID, notify); err != nil {
		return false, err
	}
	return notify, nil
}

// AuthorizedUsers lists everyone else linked to the infant.
func (s *AccessService) AuthorizedUsers(ctx context.Context, infantID, excludeUserID int64) ([]models.InfantUser, error) {
	return s.accessRepo.ListUsers(ctx, infantID, excludeUserID)
}

// NotifyTargets returns the admin emails that should hear about an event
// logged by actor, or nil when actor has not opted in.
func (s *AccessService) NotifyTargets(ctx context.Context, actor *models.Authorization) ([]string, error) {
	if actor == nil || !actor.NotifyAdmin {
		return nil, nil
	}
	return s.accessRepo.ListAdminEmails(ctx, actor.InfantID, actor.UserID)
}

// demoGuard refuses the demo identity for operations not tied to one infant.
func (s *AccessService) demoGuard(id Identity) error {
	if s.demo.IsReadOnlyDemoIdentity(id.Email) {
		return ErrDemoReadOnly
	}
	return nil
}

// IsDemo reports whether id is the read-only demo identity.
func (s *AccessService) IsDemo(id Identity) bool {
	return s.demo.IsReadOnlyDemoIdentity(id.Email)
}
