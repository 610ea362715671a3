// Package warmup reconciles every cache domain against its freshness
// policy at application start. The orchestrator composes the store, the
// blob prefetcher, and the two source-of-truth providers (bundled catalog,
// remote banner API); screens then read exclusively through the store.
package warmup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mezoapp/salon-core/internal/blob"
	"github.com/mezoapp/salon-core/internal/catalog"
	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/store"
)

// BannerSource yields the current promotional banner metadata.
type BannerSource interface {
	Banners(ctx context.Context) ([]domain.Banner, error)
}

// Orchestrator owns the per-domain refresh policy. Fields are injected;
// Banners may be nil when no backend is configured, in which case only the
// cached banner set is reconciled against the blob cache.
type Orchestrator struct {
	Store   *store.Store
	Blob    *blob.Prefetcher
	Catalog catalog.Source
	Banners BannerSource
	Log     zerolog.Logger
}

// Warmup runs the startup reconciliation. Domains are refreshed
// sequentially and independently, so a failing banner fetch never blocks
// the catalog; the only fatal condition is an unreadable bundled catalog
// when catalog domains are stale.
//
// The second Warmup in a row with all domains fresh performs zero store
// writes: reconciling the blob cache against cached banner metadata is the
// only repeated work, and it is a no-op once the blobs are present.
func (o *Orchestrator) Warmup(ctx context.Context) error {
	if err := o.refreshCatalog(ctx); err != nil {
		return err
	}
	o.seedRecords(ctx)
	o.refreshBanners(ctx)
	return nil
}

// refreshCatalog replaces stale catalog domains with the source-of-truth
// snapshot. The snapshot is loaded at most once per warmup.
func (o *Orchestrator) refreshCatalog(ctx context.Context) error {
	staleCategories := !o.Store.IsFresh(ctx, store.DomainCatalogCategories)
	staleServices := !o.Store.IsFresh(ctx, store.DomainCatalogServices)
	staleProfile := !o.Store.IsFresh(ctx, store.DomainProfile)
	if !staleCategories && !staleServices && !staleProfile {
		return nil
	}

	snap, err := o.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	if staleCategories {
		store.Set(ctx, o.Store, store.DomainCatalogCategories, snap.Categories)
	}
	if staleServices {
		store.Set(ctx, o.Store, store.DomainCatalogServices, snap.Services)
	}
	if staleProfile {
		store.Set(ctx, o.Store, store.DomainProfile, snap.Profile)
	}
	o.Log.Info().
		Bool("categories", staleCategories).
		Bool("services", staleServices).
		Bool("profile", staleProfile).
		Msg("catalog domains refreshed from snapshot")
	return nil
}

// seedRecords guarantees every record domain holds at least an empty list,
// so no screen ever observes a null. Existing data, fresh or stale, is
// never overwritten here.
func (o *Orchestrator) seedRecords(ctx context.Context) {
	for _, d := range []store.Domain{
		store.DomainSubscriptions,
		store.DomainAppointments,
		store.DomainOrders,
		store.DomainFavourites,
	} {
		if o.Store.IsFresh(ctx, d) || o.Store.Has(ctx, d) {
			continue
		}
		if err := seedEmpty(ctx, o.Store, d); err != nil {
			o.Log.Error().Err(err).Str("domain", string(d)).Msg("record seed failed")
		}
	}
}

func seedEmpty(ctx context.Context, s *store.Store, d store.Domain) error {
	switch d {
	case store.DomainSubscriptions:
		return store.SaveRecords(ctx, s, d, []domain.UserSubscription{})
	case store.DomainAppointments:
		return store.SaveRecords(ctx, s, d, []domain.Appointment{})
	case store.DomainOrders:
		return store.SaveRecords(ctx, s, d, []domain.Order{})
	default:
		return store.SaveRecords(ctx, s, d, []string{})
	}
}

// refreshBanners refreshes banner metadata when stale, then reconciles the
// blob cache against whatever metadata is current. Blob presence and
// metadata freshness deliberately diverge: the blob cache may have been
// cleared independently of the TTL, so the prefetch runs on every warmup.
func (o *Orchestrator) refreshBanners(ctx context.Context) {
	if !o.Store.IsFresh(ctx, store.DomainBanners) && o.Banners != nil {
		banners, err := o.Banners.Banners(ctx)
		if err != nil {
			o.Log.Warn().Err(err).Msg("banner refresh failed, serving cached set")
		} else {
			store.Set(ctx, o.Store, store.DomainBanners, banners)
		}
	}

	banners, ok := store.Get[[]domain.Banner](ctx, o.Store, store.DomainBanners)
	if !ok {
		return
	}
	urls := make([]string, 0, len(banners))
	for _, b := range banners {
		urls = append(urls, b.ImageURL)
	}
	if n := o.Blob.EnsureCached(ctx, urls); n > 0 {
		o.Log.Info().Int("fetched", n).Msg("banner blobs prefetched")
	}
}
