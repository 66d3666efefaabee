package models

import "time"

// Invitation is a pending grant for an email that has no account yet.
// It becomes a UserInfantLink when that email registers.
type Invitation struct {
	ID         int64
	Code       string
	SentBy     int64
	InfantID   int64
	Crud       bool
	SentTo     string
	CreatedAt  time.Time
	AcceptedAt *time.Time
}

// IsAccepted reports whether the invitation has been resolved.
func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// Role is the role the invitation grants on acceptance.
func (i *Invitation) Role() Role {
	return RoleFromFlags(false, i.Crud)
}

// InviteDetails reports the outcome of sharing an infant with an email.
type InviteDetails struct {
	Recipient       string `json:"recipient"`
	InviteSent      bool   `json:"inviteSent"`
	PreviouslyAdded bool   `json:"previouslyAdded"`
}
