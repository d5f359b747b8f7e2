package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, not
// on messages.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Written by middleware with the same envelope.
	ErrCodeUnauthorized = "unauthorized"      // missing or invalid admin token
	ErrCodeForbidden    = "forbidden"         // valid token without the admin role
	ErrCodeRateLimited  = "too_many_requests" // per-caller budget spent
	ErrCodeInternal     = "internal_error"    // recovered panic

	ErrCodeInvalidKind      = "invalid_kind"
	ErrCodeInvalidMode      = "invalid_mode"
	ErrCodeBusy             = "busy"        // every generation slot taken
	ErrCodeUnavailable      = "unavailable" // shutting down
	ErrCodeScheduleFailed   = "schedule_failed"
	ErrCodeInvalidateFailed = "invalidate_failed"
	ErrCodeStatsFailed      = "stats_failed"
)
