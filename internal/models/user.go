package models

import "time"

// User represents a caregiver account
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	CreatedAt    time.Time `json:"-"`
}

// Reminders holds a user's feed reminder preferences. Start and Cutoff are
// "HH:MM" times of day bounding when reminders may fire.
type Reminders struct {
	Enabled       bool   `json:"enabled"`
	Hours         int    `json:"hours"`
	Minutes       int    `json:"minutes"`
	CutoffEnabled bool   `json:"cutoffEnabled"`
	Start         string `json:"start"`
	Cutoff        string `json:"cutoff"`
	Timezone      string `json:"timezone"`
}

// DefaultReminders is what a new account starts with.
func DefaultReminders() Reminders {
	return Reminders{
		Enabled:  false,
		Hours:    3,
		Minutes:  0,
		Start:    "07:00",
		Cutoff:   "21:00",
		Timezone: "UTC",
	}
}

// Offset is the delay between a feed and its reminder.
func (r Reminders) Offset() time.Duration {
	return time.Duration(r.Hours)*time.Hour + time.Duration(r.Minutes)*time.Minute
}

// UserProfile is the account view returned to its owner.
type UserProfile struct {
	User
	Reminders Reminders       `json:"reminders"`
	Infants   []InfantProfile `json:"infants"`
}
