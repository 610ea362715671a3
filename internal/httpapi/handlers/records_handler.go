// Package handlers – stored booking records and favourites.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/store"
	"github.com/mezoapp/salon-core/internal/utils"
)

// pageSlice applies the optional ?page and ?pageSize query parameters.
// Without them the whole list is returned.
func pageSlice[T any](c *gin.Context, items []T) []T {
	page := utils.AtoiDefault(c.Query("page"), 0)
	size := utils.AtoiDefault(c.Query("pageSize"), 0)
	lo, hi := utils.PageBounds(len(items), page, size)
	return items[lo:hi]
}

// orderView decorates a stored order with its display total.
type orderView struct {
	domain.Order
	TotalDisplay string `json:"totalDisplay"`
}

// ListSubscriptions returns the user's package subscriptions.
func (h *Handler) ListSubscriptions(c *gin.Context) {
	items := store.Records[domain.UserSubscription](c.Request.Context(), h.store, store.DomainSubscriptions)
	if items == nil {
		items = []domain.UserSubscription{}
	}
	ok(c, http.StatusOK, items)
}

// ListAppointments returns the user's appointments.
func (h *Handler) ListAppointments(c *gin.Context) {
	items := store.Records[domain.Appointment](c.Request.Context(), h.store, store.DomainAppointments)
	if items == nil {
		items = []domain.Appointment{}
	}
	ok(c, http.StatusOK, pageSlice(c, items))
}

// ListOrders returns past orders with locale-formatted totals.
func (h *Handler) ListOrders(c *gin.Context) {
	orders := pageSlice(c, store.Records[domain.Order](c.Request.Context(), h.store, store.DomainOrders))
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{Order: o, TotalDisplay: h.amounts.Format(o.Total)})
	}
	ok(c, http.StatusOK, views)
}

// ListFavourites returns the favourited service ids.
func (h *Handler) ListFavourites(c *gin.Context) {
	ids := store.Records[string](c.Request.Context(), h.store, store.DomainFavourites)
	if ids == nil {
		ids = []string{}
	}
	ok(c, http.StatusOK, ids)
}

// ToggleFavourite adds the service id to the favourites when absent and
// removes it when present, returning the updated list.
func (h *Handler) ToggleFavourite(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "service id is required")
		return
	}

	ctx := c.Request.Context()
	ids := store.Records[string](ctx, h.store, store.DomainFavourites)

	next := make([]string, 0, len(ids)+1)
	favourited := true
	for _, existing := range ids {
		if existing == id {
			favourited = false
			continue
		}
		next = append(next, existing)
	}
	if favourited {
		next = append(next, id)
	}

	if err := store.SaveRecords(ctx, h.store, store.DomainFavourites, next); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not save favourites")
		return
	}
	ok(c, http.StatusOK, gin.H{"favourites": next, "favourited": favourited})
}
