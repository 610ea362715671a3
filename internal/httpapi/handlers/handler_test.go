package handlers

import (
	"context"
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
	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/draft"
	"github.com/mezoapp/salon-core/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("handlers_test_%d.db", time.Now().UnixNano()))
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
	return store.New(db)
}

// stubPipeline returns a canned result or error from Commit.
type stubPipeline struct {
	res  booking.Result
	err  error
	last *domain.BookingItem
}

func (s *stubPipeline) Commit(_ context.Context, item domain.BookingItem, _ domain.BookingForm, _ string) (booking.Result, error) {
	s.last = &item
	return s.res, s.err
}

// newTestRouter builds a bare engine with only the handler routes, no
// middleware stack.
func newTestRouter(t *testing.T, s *store.Store, p Pipeline) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := New(s, draft.New(s), p, NewAmountFormatter("en"))
	r := gin.New()
	r.GET("/categories", h.ListCategories)
	r.GET("/services", h.ListServices)
	r.GET("/banners", h.ListBanners)
	r.GET("/profile", h.GetProfile)
	r.GET("/subscriptions", h.ListSubscriptions)
	r.GET("/appointments", h.ListAppointments)
	r.GET("/orders", h.ListOrders)
	r.GET("/favourites", h.ListFavourites)
	r.POST("/favourites/:id", h.ToggleFavourite)
	r.GET("/draft", h.GetDraft)
	r.PUT("/draft", h.PutDraft)
	r.POST("/bookings", h.CommitBooking)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
