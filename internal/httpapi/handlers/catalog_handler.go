// Package handlers – catalog, banner and profile reads.
//
// These endpoints serve whatever the cache holds, stale included; warmup
// refreshes the underlying keys in the background. A 404 here means the
// domain has never been populated, which only happens before the first
// successful warmup.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/store"
)

// ListCategories returns the cached service categories.
func (h *Handler) ListCategories(c *gin.Context) {
	items, found := store.Get[[]domain.Category](c.Request.Context(), h.store, store.DomainCatalogCategories)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "categories not cached yet")
		return
	}
	ok(c, http.StatusOK, items)
}

// ListServices returns the cached services with their addons and package
// options.
func (h *Handler) ListServices(c *gin.Context) {
	items, found := store.Get[[]domain.Service](c.Request.Context(), h.store, store.DomainCatalogServices)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "services not cached yet")
		return
	}
	ok(c, http.StatusOK, items)
}

// ListBanners returns the cached promotional banners.
func (h *Handler) ListBanners(c *gin.Context) {
	items, found := store.Get[[]domain.Banner](c.Request.Context(), h.store, store.DomainBanners)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "banners not cached yet")
		return
	}
	ok(c, http.StatusOK, items)
}

// GetProfile returns the cached user profile, wallet balance included.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, found := store.Get[domain.Profile](c.Request.Context(), h.store, store.DomainProfile)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not cached yet")
		return
	}
	ok(c, http.StatusOK, gin.H{
		"id":            profile.ID,
		"name":          profile.Name,
		"phone":         profile.Phone,
		"walletBalance": profile.WalletBalance,
		"walletDisplay": h.amounts.Format(profile.WalletBalance),
	})
}
