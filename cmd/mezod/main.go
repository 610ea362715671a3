// Command mezod runs the salon client core: it opens the durable cache,
// reconciles it against the freshness policy, and serves the local HTTP
// API the UI reads through.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mezoapp/salon-core/internal/api"
	"github.com/mezoapp/salon-core/internal/blob"
	"github.com/mezoapp/salon-core/internal/booking"
	"github.com/mezoapp/salon-core/internal/catalog"
	"github.com/mezoapp/salon-core/internal/config"
	"github.com/mezoapp/salon-core/internal/draft"
	"github.com/mezoapp/salon-core/internal/httpapi"
	"github.com/mezoapp/salon-core/internal/observability"
	"github.com/mezoapp/salon-core/internal/store"
	"github.com/mezoapp/salon-core/internal/sysutil"
	"github.com/mezoapp/salon-core/internal/warmup"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	blobCache := blob.New(cfg.BlobDir,
		blob.HTTPFetcher{Client: &http.Client{Timeout: cfg.Remote.RequestTimeout}},
		blob.WithLimiter(cfg.Prefetch.RPS, cfg.Prefetch.Burst),
		blob.WithLogger(log.With().Str("component", "blob").Logger()),
	)

	st, err := store.Open(cfg.DBPath,
		store.WithWiper(blobCache),
		store.WithLogger(log.With().Str("component", "store").Logger()),
		store.WithTTL(store.DomainCatalogCategories, cfg.Cache.CatalogTTL),
		store.WithTTL(store.DomainCatalogServices, cfg.Cache.CatalogTTL),
		store.WithTTL(store.DomainProfile, cfg.Cache.CatalogTTL),
		store.WithTTL(store.DomainBanners, cfg.Cache.BannersTTL),
		store.WithTTL(store.DomainSubscriptions, cfg.Cache.RecordsTTL),
		store.WithTTL(store.DomainAppointments, cfg.Cache.RecordsTTL),
		store.WithTTL(store.DomainOrders, cfg.Cache.RecordsTTL),
		store.WithTTL(store.DomainFavourites, cfg.Cache.RecordsTTL),
	)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open store failed")
	}

	if purged, err := st.PurgeIfVersionChanged(ctx); err != nil {
		log.Fatal().Err(err).Msg("cache version purge failed")
	} else if purged {
		log.Info().Str("version", store.CurrentVersion).Msg("cache purged after version change")
	}

	var bannerSrc warmup.BannerSource
	var charger booking.Charger
	if cfg.Remote.BaseURL != "" {
		client := &api.Client{
			BaseURL: cfg.Remote.BaseURL,
			HTTP:    &http.Client{Timeout: cfg.Remote.RequestTimeout},
			Log:     log.With().Str("component", "api").Logger(),
		}
		bannerSrc = api.BannerSource{Client: client}
		charger = api.Gateway{Client: client, Timeout: cfg.Remote.ChargeTimeout}
	}

	orch := &warmup.Orchestrator{
		Store:   st,
		Blob:    blobCache,
		Catalog: catalog.Bundled{Path: cfg.CatalogPath},
		Banners: bannerSrc,
		Log:     log.With().Str("component", "warmup").Logger(),
	}
	if err := orch.Warmup(ctx); err != nil {
		log.Fatal().Err(err).Msg("warmup failed")
	}

	drafts := draft.New(st,
		draft.WithDebounce(cfg.DraftDebounce),
		draft.WithLogger(log.With().Str("component", "draft").Logger()),
	)
	pipeline := booking.NewPipeline(st, charger, drafts,
		booking.WithLogger(log.With().Str("component", "booking").Logger()),
	)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	httpapi.RegisterRoutes(router, httpapi.Deps{
		Store:    st,
		Draft:    drafts,
		Pipeline: pipeline,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	drafts.Flush()
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("close store failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("server stopped")
}
