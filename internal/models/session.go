package models

import "time"

// Session is the server-side state behind one session cookie.
// It is always read and replaced as a whole.
type Session struct {
	CustomerID    int64  `json:"customer_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`

	// Pending-login fallback state, used when no durable code store is available
	PendingEmail     string     `json:"pending_email,omitempty"`
	PendingCode      string     `json:"pending_code,omitempty"`
	PendingExpiresAt *time.Time `json:"pending_expires_at,omitempty"`
}

// IsAuthenticated reports whether a customer is bound to the session
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.CustomerID != 0
}

// HasPending reports whether a login is pending in the session fallback
func (s *Session) HasPending() bool {
	return s != nil && s.PendingEmail != ""
}

// PendingExpired reports whether the fallback code expired before now
func (s *Session) PendingExpired(now time.Time) bool {
	return s.PendingExpiresAt != nil && now.After(*s.PendingExpiresAt)
}
