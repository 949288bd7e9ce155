package models

import (
	"time"
)

// VerificationRecord is an outstanding one-time login code for an email.
// There is at most one record per email; a new login request overwrites it.
type VerificationRecord struct {
	Email      string     `json:"email" dynamodbav:"email"`
	Code       string     `json:"-" dynamodbav:"code"` // Never expose the code
	ExpiresAt  time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty" dynamodbav:"consumed_at,omitempty"`
}

// IsExpired reports whether the code expired before now
func (v *VerificationRecord) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// IsConsumed reports whether the code was already used for a verification attempt
func (v *VerificationRecord) IsConsumed() bool {
	return v.ConsumedAt != nil
}

// Matches reports whether code is the outstanding, unconsumed code
func (v *VerificationRecord) Matches(code string) bool {
	return !v.IsConsumed() && v.Code == code
}
