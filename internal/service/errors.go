package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// kindError carries a client-facing message and unwraps to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

var (
	ErrDuplicateEmail     = &kindError{ErrBadRequest, "Duplicate email"}
	ErrInvalidCredentials = &kindError{ErrUnauthorized, "Invalid email/password"}
	ErrInvalidResetToken  = &kindError{ErrBadRequest, "Invalid or expired reset token"}
	ErrEmptyPatch         = &kindError{ErrBadRequest, "no fields to update"}
	ErrDemoReadOnly       = &kindError{ErrUnauthorized, "Demo account is read-only"}
	ErrForbidden          = &kindError{ErrUnauthorized, "Unauthorized"}
	ErrInfantNotFound     = &kindError{ErrNotFound, "Infant not found"}
	ErrFeedNotFound       = &kindError{ErrNotFound, "Feed not found"}
	ErrDiaperNotFound     = &kindError{ErrNotFound, "Diaper not found"}
	ErrUserNotFound       = &kindError{ErrNotFound, "User not found"}
	ErrLinkNotFound       = &kindError{ErrNotFound, "Access not found"}
	ErrAdminTarget        = &kindError{ErrBadRequest, "Cannot change an admin's access"}
	ErrRemoveSelf         = &kindError{ErrBadRequest, "Admins cannot remove their own access"}
)

func badRequest(format string, args ...any) error {
	return &kindError{ErrBadRequest, fmt.Sprintf(format, args...)}
}
