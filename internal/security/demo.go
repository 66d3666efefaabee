package security

import "strings"

// DemoPolicy identifies the public demo account, which may read canned data
// but never mutate anything.
type DemoPolicy struct {
	email string
}

// NewDemoPolicy returns a policy for the given sentinel email. An empty email
// disables the demo account.
func NewDemoPolicy(email string) DemoPolicy {
	return DemoPolicy{email: strings.ToLower(strings.TrimSpace(email))}
}

// IsReadOnlyDemoIdentity reports whether email is the demo account.
func (p DemoPolicy) IsReadOnlyDemoIdentity(email string) bool {
	return p.email != "" && strings.EqualFold(email, p.email)
}

// Email is the sentinel address, used when seeding.
func (p DemoPolicy) Email() string {
	return p.email
}
