package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bably/internal/database"
	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/validation"
)

// InfantRequest creates or replaces an infant profile
type InfantRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=30"`
	DOB       string  `json:"dob" validate:"required,date"`
	Gender    string  `json:"gender" validate:"required,max=20"`
	PublicID  *string `json:"publicId"`
}

// InfantService manages infant profiles
type InfantService struct {
	db         *database.DB
	infantRepo *repository.InfantRepository
	accessRepo *repository.AccessRepository
	access     *AccessService
	validator  *validation.Validator
	log        *zap.SugaredLogger
}

// NewInfantService creates a new infant service
func NewInfantService(
	db *database.DB,
	infantRepo *repository.InfantRepository,
	accessRepo *repository.AccessRepository,
	access *AccessService,
	validator *validation.Validator,
	log *zap.SugaredLogger,
) *InfantService {
	return &InfantService{
		db:         db,
		infantRepo: infantRepo,
		accessRepo: accessRepo,
		access:     access,
		validator:  validator,
		log:        log,
	}
}

// Register creates an infant with the caller as its admin. Both rows are
// written in one transaction.
func (s *InfantService) Register(ctx context.Context, caller Identity, userID int64, req InfantRequest) (*models.Infant, error) {
	if caller.UserID != userID {
		return nil, ErrForbidden
	}
	if err := s.access.demoGuard(caller); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	infant := &models.Infant{
		FirstName: strings.TrimSpace(req.FirstName),
		DOB:       req.DOB,
		Gender:    req.Gender,
		PublicID:  req.PublicID,
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.infantRepo.WithTx(tx).CreateInfant(ctx, infant); err != nil {
			return err
		}
		if _, err := s.accessRepo.WithTx(tx).AddLink(ctx, userID, infant.ID, models.RoleAdmin); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register infant: %w", err)
	}

	s.log.Infow("infant registered", "infant_id", infant.ID, "user_id", userID)
	return infant, nil
}

// Get returns the infant as seen by the caller
func (s *InfantService) Get(ctx context.Context, caller Identity, infantID int64) (*models.InfantProfile, error) {
	auth, err := s.access.Authorize(ctx, caller, infantID, models.PermRead)
	if err != nil {
		return nil, err
	}

	infant, err := s.infantRepo.GetInfant(ctx, infantID)
	if err != nil {
		return nil, err
	}
	if infant == nil {
		return nil, ErrInfantNotFound
	}

	isAdmin, crud := auth.Role.Flags()
	return &models.InfantProfile{
		Infant:      *infant,
		UserIsAdmin: isAdmin,
		Crud:        crud,
		NotifyAdmin: auth.NotifyAdmin,
	}, nil
}

// Update replaces the profile fields. Admin only.
func (s *InfantService) Update(ctx context.Context, caller Identity, infantID int64, req InfantRequest) (*models.Infant, error) {
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	infant, err := s.infantRepo.GetInfant(ctx, infantID)
	if err != nil {
		return nil, err
	}
	if infant == nil {
		return nil, ErrInfantNotFound
	}

	infant.FirstName = strings.TrimSpace(req.FirstName)
	infant.DOB = req.DOB
	infant.Gender = req.Gender
	infant.PublicID = req.PublicID

	if err := s.infantRepo.UpdateInfant(ctx, infant); err != nil {
		return nil, err
	}
	return infant, nil
}
