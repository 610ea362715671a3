// Package booking – checkout pricing, payment split and commit pipeline.
//
// The pipeline turns a BookingItem plus the checkout form into three
// correlated records (Order, optional UserSubscription, Appointment) and
// persists all of them atomically in one store transaction. Pricing and
// the wallet/online split are pure functions kept separate from the
// pipeline so they can be tested without storage.
package booking

import "errors"

var (
	// ErrMissingSchedule is returned when the checkout form lacks a
	// date or time. The pipeline state is not advanced in this case.
	ErrMissingSchedule = errors.New("booking: date and time are required")

	// ErrCommitInFlight is returned when Commit is called while a
	// previous commit on the same pipeline is still submitting.
	ErrCommitInFlight = errors.New("booking: commit already in flight")

	// ErrChargeDeclined wraps a payment gateway failure for the online
	// portion of a split.
	ErrChargeDeclined = errors.New("booking: online charge failed")
)
