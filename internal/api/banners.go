// Package api – banner metadata source.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mezoapp/salon-core/internal/domain"
)

// BannerSource fetches the current promotional banner set from the backend.
type BannerSource struct {
	Client *Client
}

// Banners returns the banner metadata, or an error when the backend is
// unreachable or answers with a non-200. The orchestrator keeps serving
// whatever is cached in either case.
func (s BannerSource) Banners(ctx context.Context) ([]domain.Banner, error) {
	resp, err := s.Client.Request(ctx, http.MethodGet, "/banners", nil)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("banners: unexpected status %d", resp.Status)
	}
	var banners []domain.Banner
	if err := json.Unmarshal(resp.Data, &banners); err != nil {
		return nil, fmt.Errorf("banners: %w", err)
	}
	return banners, nil
}
