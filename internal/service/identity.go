package service

import (
	"context"
	"time"
)

// Identity is the authenticated caller, taken from the bearer token.
type Identity struct {
	UserID int64
	Email  string
}

// Mailer sends transactional email.
type Mailer interface {
	SendInvitationEmail(ctx context.Context, toEmail, sentByName, infantName string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error
}

// Notifier publishes push notifications to users, addressed by email.
type Notifier interface {
	Notify(ctx context.Context, emails []string, title, body string) error
}

// Reminder is a single pending feed reminder.
type Reminder struct {
	To         string
	InfantName string
	At         time.Time
}

// ReminderDispatcher delivers a reminder at its time.
type ReminderDispatcher interface {
	Schedule(ctx context.Context, r Reminder) error
}
