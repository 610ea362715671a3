// Package handlers defines HTTP-layer error codes used across the local API.
//
// These symbolic constants are mapped to HTTP responses via the fail()
// helper in this package. They give clients a stable, machine-readable
// error taxonomy beside the human-readable messages. Generic codes mirror
// HTTP status semantics; the domain-specific codes cover booking outcomes
// a status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeScheduleMissing = "schedule_missing"
	ErrCodeCommitInFlight  = "commit_in_flight"
	ErrCodePaymentFailed   = "payment_failed"
)
