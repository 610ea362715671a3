// Package handlers provides HTTP handler implementations for the local API.
//
// The local API is the read/commit surface the UI talks to: catalog and
// banner reads served from the durable cache, the stored booking records,
// the draft form, and the booking commit itself. Handlers never reach the
// remote backend directly; warmup and the commit pipeline own that.
package handlers

import (
	"context"

	"github.com/mezoapp/salon-core/internal/booking"
	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/draft"
	"github.com/mezoapp/salon-core/internal/store"
)

// Pipeline is the booking commit dependency of the handlers.
// *booking.Pipeline satisfies it; tests substitute fakes.
type Pipeline interface {
	Commit(ctx context.Context, item domain.BookingItem, form domain.BookingForm, paymentMethod string) (booking.Result, error)
}

// Handler bundles the dependencies shared by all endpoint methods.
type Handler struct {
	store    *store.Store
	draft    *draft.Persistence
	pipeline Pipeline
	amounts  AmountFormatter
}

// New constructs the API handler set.
func New(s *store.Store, d *draft.Persistence, p Pipeline, amounts AmountFormatter) *Handler {
	return &Handler{store: s, draft: d, pipeline: p, amounts: amounts}
}
