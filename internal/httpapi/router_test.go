package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mezoapp/salon-core/internal/booking"
	"github.com/mezoapp/salon-core/internal/config"
	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/draft"
	"github.com/mezoapp/salon-core/internal/store"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("router_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.KVEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	s := store.New(db)

	cfg := config.Config{
		APIBasePath: "/api/v1",
		Locale:      "en",
		RateRPS:     1000,
		RateBurst:   1000,
	}
	cfg.OTEL.ServiceName = "salon-core-test"

	r := gin.New()
	RegisterRoutes(r, Deps{
		Store:    s,
		Draft:    draft.New(s),
		Pipeline: booking.NewPipeline(s, nil, nil),
	}, cfg)
	return r
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newRouter(t)

	if w := get(t, r, "/health"); w.Code != http.StatusOK {
		t.Fatalf("/health -> %d", w.Code)
	}
	if w := get(t, r, "/metrics"); w.Code != http.StatusOK {
		t.Fatalf("/metrics -> %d", w.Code)
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("Accept-Encoding", "identity")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("envelope not JSON: %v (%s)", err, w.Body.String())
	}
	if resp.Code != "not_found" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRouter_MountsAPIUnderBasePath(t *testing.T) {
	r := newRouter(t)

	// Record endpoints answer even on a cold store.
	if w := get(t, r, "/api/v1/subscriptions"); w.Code != http.StatusOK {
		t.Fatalf("/api/v1/subscriptions -> %d", w.Code)
	}
	if w := get(t, r, "/api/v1/draft"); w.Code != http.StatusOK {
		t.Fatalf("/api/v1/draft -> %d", w.Code)
	}
}

func TestRouter_SetsCorrelationAndSecurityHeaders(t *testing.T) {
	r := newRouter(t)

	w := get(t, r, "/health")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID missing")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
}

func TestGroupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	for _, prefix := range []string{"", "/", "/api/v1"} {
		g := groupWithPrefix(r, prefix)
		if g == nil {
			t.Fatalf("group for %q is nil", prefix)
		}
		if prefix == "/api/v1" && !strings.HasPrefix(g.BasePath(), "/api/v1") {
			t.Fatalf("base path = %q", g.BasePath())
		}
	}
}
