package models

import "time"

// Infant is the tracked child profile.
type Infant struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	DOB       string    `json:"dob"`
	Gender    string    `json:"gender"`
	PublicID  *string   `json:"publicId"`
	CreatedAt time.Time `json:"-"`
}

// InfantProfile is an infant as seen by one linked user.
type InfantProfile struct {
	Infant
	UserIsAdmin bool `json:"userIsAdmin"`
	Crud        bool `json:"crud"`
	NotifyAdmin bool `json:"notifyAdmin"`
}

// InfantUser describes another user linked to an infant.
type InfantUser struct {
	UserName    string `json:"userName"`
	UserID      int64  `json:"userId"`
	InfantID    int64  `json:"infantId"`
	UserIsAdmin bool   `json:"userIsAdmin"`
	Crud        bool   `json:"crud"`
	NotifyAdmin bool   `json:"notifyAdmin"`
}

// Role is a user's standing on one infant.
type Role string

const (
	// RoleAdmin manages the profile and who can see it.
	RoleAdmin Role = "admin"
	// RoleGuardian may log, edit and delete events.
	RoleGuardian Role = "guardian"
	// RoleBabysitter may view and log events only.
	RoleBabysitter Role = "babysitter"
)

// RoleFromFlags maps the stored user_is_admin/crud columns to a role.
func RoleFromFlags(userIsAdmin, crud bool) Role {
	switch {
	case userIsAdmin:
		return RoleAdmin
	case crud:
		return RoleGuardian
	default:
		return RoleBabysitter
	}
}

// RoleFromCrud is the non-admin role for a crud flag.
func RoleFromCrud(crud bool) Role {
	return RoleFromFlags(false, crud)
}

// Flags returns the stored column values for the role.
func (r Role) Flags() (userIsAdmin, crud bool) {
	switch r {
	case RoleAdmin:
		return true, true
	case RoleGuardian:
		return false, true
	default:
		return false, false
	}
}

// Permission is an action checked against a Role.
type Permission int

const (
	PermRead Permission = iota
	PermLog
	PermModify
	PermAdmin
)

// Allows reports whether the role grants p.
func (r Role) Allows(p Permission) bool {
	switch p {
	case PermRead, PermLog:
		return r == RoleAdmin || r == RoleGuardian || r == RoleBabysitter
	case PermModify:
		return r == RoleAdmin || r == RoleGuardian
	case PermAdmin:
		return r == RoleAdmin
	}
	return false
}

// Authorization is a resolved user-infant link.
type Authorization struct {
	UserID      int64
	InfantID    int64
	Role        Role
	NotifyAdmin bool
}

// IsAdmin reports whether the link carries the admin role.
func (a *Authorization) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Allows is nil-safe so a missing link denies everything.
func (a *Authorization) Allows(p Permission) bool {
	return a != nil && a.Role.Allows(p)
}
