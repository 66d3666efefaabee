package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/security"
	"bably/internal/validation"
)

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=5,max=72"`
	FirstName string `json:"firstName" validate:"required,max=30"`
}

// CredentialsRequest is the login and new-password payload
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5,max=72"`
}

// RemindersRequest replaces a user's reminder settings
type RemindersRequest struct {
	Enabled       bool   `json:"enabled"`
	Hours         int    `json:"hours" validate:"min=0,max=23"`
	Minutes       int    `json:"minutes" validate:"min=0,max=59"`
	CutoffEnabled bool   `json:"cutoffEnabled"`
	Start         string `json:"start" validate:"required,time_stamp"`
	Cutoff        string `json:"cutoff" validate:"required,time_stamp"`
	Timezone      string `json:"timezone"`
}

// AuthService handles accounts, tokens and per-user settings
type AuthService struct {
	userRepo    *repository.UserRepository
	infantRepo  *repository.InfantRepository
	invitations *InvitationService
	hasher      *security.Hasher
	tokens      *security.TokenManager
	mailer      Mailer
	validator   *validation.Validator
	log         *zap.SugaredLogger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *repository.UserRepository,
	infantRepo *repository.InfantRepository,
	invitations *InvitationService,
	hasher *security.Hasher,
	tokens *security.TokenManager,
	mailer Mailer,
	validator *validation.Validator,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		infantRepo:  infantRepo,
		invitations: invitations,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		validator:   validator,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account, resolves any invitations waiting for its
// email and returns a bearer token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", err
	}
	email := normalizeEmail(req.Email)

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return "", fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, email, hash, strings.TrimSpace(req.FirstName))
	if errors.Is(err, repository.ErrDuplicate) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}
	if err != nil {
		return "", err
	}

	// Registration succeeds even if invitations cannot be resolved
	if err := s.invitations.ResolvePending(ctx, user); err != nil {
		s.log.Errorw("failed to resolve invitations", "user_id", user.ID, "error", err)
	}

	s.log.Infow("user registered", "user_id", user.ID)
	return s.tokens.Issue(user)
}

// Login checks credentials and returns a bearer token
func (s *AuthService) Login(ctx context.Context, req CredentialsRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(user.PasswordHash, req.Password)
	if err != nil {
		return "", fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}

// RequestPasswordReset emails a reset link. Unknown emails are silently
// ignored so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.validator.Email(email); err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := s.tokens.IssueResetToken(user)
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.FirstName, token); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password when token was issued for the account's
// current password. The token stops verifying once the hash changes.
func (s *AuthService) ResetPassword(ctx context.Context, token string, req CredentialsRequest) error {
	if token == "" {
		return badRequest("Invalid or missing token")
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	claims, err := s.tokens.ParseResetToken(token, user.PasswordHash)
	if err != nil || claims.Email != user.Email {
		return ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hash)
}

// Profile returns the account with its reminders and linked infants
func (s *AuthService) Profile(ctx context.Context, email string) (*models.UserProfile, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	reminders, err := s.userRepo.GetReminders(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	infants, err := s.infantRepo.ListInfantsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.UserProfile{User: *user, Reminders: reminders, Infants: infants}, nil
}

// UpdateReminders replaces the user's reminder settings
func (s *AuthService) UpdateReminders(ctx context.Context, email string, req RemindersRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return badRequest("timezone must be an IANA time zone name")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	return s.userRepo.UpdateReminders(ctx, user.ID, models.Reminders{
		Enabled:       req.Enabled,
		Hours:         req.Hours,
		Minutes:       req.Minutes,
		CutoffEnabled: req.CutoffEnabled,
		Start:         req.Start,
		Cutoff:        req.Cutoff,
		Timezone:      req.Timezone,
	})
}
