package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrUnauthenticated means the request carries no authenticated session
	ErrUnauthenticated = errors.New("authentication required")

	// ErrAuthRejected matches every *AuthRejectedError via errors.Is
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrStoreUnavailable is returned by optional stores that are not configured
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUpstream wraps failures of the external commerce API
	ErrUpstream = errors.New("commerce api error")
)

// RejectionReason classifies why a verification attempt was refused
type RejectionReason string

const (
	RejectExpired       RejectionReason = "EXPIRED"
	RejectInvalid       RejectionReason = "INVALID"
	RejectNoPending     RejectionReason = "NO_PENDING"
	RejectEmailMismatch RejectionReason = "EMAIL_MISMATCH"
	RejectNoAccount     RejectionReason = "NO_ACCOUNT"
)

// AuthRejectedError is a terminal rejection of one verification attempt.
// The client has to restart from a new login request.
type AuthRejectedError struct {
	Reason RejectionReason
}

// NewAuthRejected creates an AuthRejectedError for the given reason
func NewAuthRejected(reason RejectionReason) *AuthRejectedError {
	return &AuthRejectedError{Reason: reason}
}

func (e *AuthRejectedError) Error() string {
	return "authentication rejected: " + string(e.Reason)
}

// Is lets errors.Is(err, ErrAuthRejected) match any rejection
func (e *AuthRejectedError) Is(target error) bool {
	return target == ErrAuthRejected
}

// Message returns the human-readable text sent to the client
func (e *AuthRejectedError) Message() string {
	switch e.Reason {
	case RejectExpired:
		return "Verification code expired"
	case RejectInvalid:
		return "Invalid verification code"
	case RejectNoPending:
		return "No pending verification"
	case RejectEmailMismatch:
		return "Email mismatch"
	case RejectNoAccount:
		return "No customer found. Please make a purchase first."
	default:
		return "Verification failed"
	}
}

// Code returns the machine-readable error code sent to the client
func (e *AuthRejectedError) Code() string {
	switch e.Reason {
	case RejectExpired:
		return "code_expired"
	case RejectInvalid:
		return "code_invalid"
	case RejectNoPending:
		return "no_pending_verification"
	case RejectEmailMismatch:
		return "email_mismatch"
	case RejectNoAccount:
		return "no_account"
	default:
		return "unauthorized"
	}
}

// RejectionReasonOf extracts the rejection reason from err, if any
func RejectionReasonOf(err error) (RejectionReason, bool) {
	var rejected *AuthRejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason, true
	}
	return "", false
}
