// Package handlers – checkout draft and booking commit.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mezoapp/salon-core/internal/booking"
	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/httpapi/middleware"
)

// commitRequest is the body of POST /bookings.
type commitRequest struct {
	Item          domain.BookingItem `json:"item"`
	Form          domain.BookingForm `json:"form"`
	PaymentMethod string             `json:"paymentMethod"`
}

// GetDraft returns the persisted checkout form, with defaults filled in
// when nothing was saved.
func (h *Handler) GetDraft(c *gin.Context) {
	ok(c, http.StatusOK, h.draft.Load(c.Request.Context()))
}

// PutDraft saves the checkout form. Saves are debounced by the
// persistence layer, so rapid per-field edits cost one write.
func (h *Handler) PutDraft(c *gin.Context) {
	var form domain.BookingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid draft payload")
		return
	}
	h.draft.Save(c.Request.Context(), form)
	noContent(c)
}

// CommitBooking runs the commit pipeline for the posted item and form.
func (h *Handler) CommitBooking(c *gin.Context) {
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid booking payload")
		return
	}
	switch req.PaymentMethod {
	case domain.PaymentMethodWallet, domain.PaymentMethodOnline:
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "paymentMethod must be wallet or online")
		return
	}
	if req.Item.Product.ID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item.product is required")
		return
	}

	res, err := h.pipeline.Commit(c.Request.Context(), req.Item, req.Form, req.PaymentMethod)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrMissingSchedule):
		fail(c, http.StatusBadRequest, ErrCodeScheduleMissing, "date and time are required")
		return
	case errors.Is(err, booking.ErrCommitInFlight):
		fail(c, http.StatusConflict, ErrCodeCommitInFlight, "a booking is already being submitted")
		return
	case errors.Is(err, booking.ErrChargeDeclined):
		fail(c, http.StatusPaymentRequired, ErrCodePaymentFailed, "online payment was declined")
		return
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("booking commit failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "booking could not be completed")
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"orderId":       res.OrderID,
		"amountPaid":    res.AmountPaid,
		"amountDisplay": h.amounts.Format(res.AmountPaid),
	})
}
