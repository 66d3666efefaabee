package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/validation"
)

// InviteRequest shares an infant with an email address.
type InviteRequest struct {
	SentTo     string `json:"sentTo" validate:"required,email"`
	SentByName string `json:"sentByName" validate:"required"`
	SentByID   int64  `json:"sentById"`
	Crud       bool   `json:"crud"`
	InfantName string `json:"infantName" validate:"required"`
}

// InvitationService attaches registered users to infants and invites the rest.
type InvitationService struct {
	userRepo       *repository.UserRepository
	invitationRepo *repository.InvitationRepository
	access         *AccessService
	mailer         Mailer
	validator      *validation.Validator
	log            *zap.SugaredLogger
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	userRepo *repository.UserRepository,
	invitationRepo *repository.InvitationRepository,
	access *AccessService,
	mailer Mailer,
	validator *validation.Validator,
	log *zap.SugaredLogger,
) *InvitationService {
	return &InvitationService{
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		access:         access,
		mailer:         mailer,
		validator:      validator,
		log:            log,
	}
}

// InviteOrAttach links a registered recipient directly, or records an
// invitation and emails an unregistered one. The two steps are not atomic.
func (s *InvitationService) InviteOrAttach(ctx context.Context, caller Identity, infantID int64, req InviteRequest) (*models.InviteDetails, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	actor, err := s.access.Authorize(ctx, caller, infantID, models.PermAdmin)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.SentTo))
	role := models.RoleFromCrud(req.Crud)

	recipient, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if recipient != nil {
		added, err := s.access.AddAuthorizedUser(ctx, recipient.ID, infantID, role)
		if err != nil {
			return nil, err
		}
		return &models.InviteDetails{
			Recipient:       recipient.FirstName,
			InviteSent:      false,
			PreviouslyAdded: !added,
		}, nil
	}

	if _, err := s.invitationRepo.CreateInvitation(ctx, actor.UserID, infantID, req.Crud, email); err != nil {
		return nil, err
	}

	if err := s.mailer.SendInvitationEmail(ctx, email, req.SentByName, req.InfantName); err != nil {
		s.log.Errorw("failed to send invitation email", "to", email, "infant_id", infantID, "error", err)
	}

	return &models.InviteDetails{InviteSent: true}, nil
}

// ResolvePending turns every open invitation for the user's email into a
// link. Individual failures are logged and skipped.
func (s *InvitationService) ResolvePending(ctx context.Context, user *models.User) error {
	pending, err := s.invitationRepo.ListPendingByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to list pending invitations: %w", err)
	}

	for _, inv := range pending {
		if _, err := s.access.AddAuthorizedUser(ctx, user.ID, inv.InfantID, inv.Role()); err != nil {
			s.log.Errorw("failed to resolve invitation", "invitation_id", inv.ID, "error", err)
			continue
		}
		if err := s.invitationRepo.MarkAccepted(ctx, inv.ID); err != nil {
			s.log.Errorw("failed to mark invitation accepted", "invitation_id", inv.ID, "error", err)
			continue
		}
		s.log.Infow("invitation resolved", "user_id", user.ID, "infant_id", inv.InfantID)
	}
	return nil
}
