// Package httpapi wires the HTTP transport (Gin) to the cache store, the
// draft persistence, and the booking pipeline. It centralizes the
// cross-cutting concerns: tracing, correlation IDs, redacting logs, panic
// recovery, metrics, compression, rate limiting, CORS, and security
// headers.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mezoapp/salon-core/internal/booking"
	"github.com/mezoapp/salon-core/internal/config"
	"github.com/mezoapp/salon-core/internal/draft"
	"github.com/mezoapp/salon-core/internal/httpapi/handlers"
	"github.com/mezoapp/salon-core/internal/httpapi/middleware"
	"github.com/mezoapp/salon-core/internal/store"
)

// Deps carries the application dependencies the routes need.
type Deps struct {
	Store    *store.Store
	Draft    *draft.Persistence
	Pipeline *booking.Pipeline
}

// RegisterRoutes attaches all middleware and endpoints to the Gin engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. Compression, CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging; profile phone numbers must not reach logs
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) Compression; catalog payloads are JSON lists and shrink well
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS posture (allow all when no origins are configured; the UI
	// webview typically runs on another origin)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (no HSTS: the local API serves plain HTTP)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(deps.Store, deps.Draft, deps.Pipeline, handlers.NewAmountFormatter(cfg.Locale))

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Catalog reads (cache-backed, stale tolerated)
		api.GET("/categories", h.ListCategories)
		api.GET("/services", h.ListServices)
		api.GET("/banners", h.ListBanners)
		api.GET("/profile", h.GetProfile)

		// Stored records
		api.GET("/subscriptions", h.ListSubscriptions)
		api.GET("/appointments", h.ListAppointments)
		api.GET("/orders", h.ListOrders)

		// Favourites
		api.GET("/favourites", h.ListFavourites)
		api.POST("/favourites/:id", h.ToggleFavourite)

		// Checkout
		api.GET("/draft", h.GetDraft)
		api.PUT("/draft", h.PutDraft)
		api.POST("/bookings", h.CommitBooking)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
