package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mezoapp/salon-core/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("store_test_%d.db", time.Now().UnixNano()))
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
	return db
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return New(newTestDB(t), opts...)
}

// --- envelope round trip ---

func TestGetSet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := []domain.Category{{ID: "c1", Name: "Hair"}, {ID: "c2", Name: "Nails"}}
	Set(ctx, s, DomainCatalogCategories, in)

	out, ok := Get[[]domain.Category](ctx, s, DomainCatalogCategories)
	if !ok {
		t.Fatalf("expected hit after set")
	}
	if len(out) != 2 || out[0].Name != "Hair" {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// Reads must hand out copies: mutating one read result must not leak
	// into the next.
	out[0].Name = "Mutated"
	again, _ := Get[[]domain.Category](ctx, s, DomainCatalogCategories)
	if again[0].Name != "Hair" {
		t.Fatalf("read aliasing detected: %+v", again)
	}
}

func TestGet_AbsentIsMiss(t *testing.T) {
	s := newTestStore(t)
	if _, ok := Get[[]domain.Banner](context.Background(), s, DomainBanners); ok {
		t.Fatalf("expected miss on empty store")
	}
}

func TestGet_CorruptEntryIsMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutRaw(ctx, DomainBanners.Key(), []byte("{not json")); err != nil {
		t.Fatalf("PutRaw: %v", err)
	}
	if _, ok := Get[[]domain.Banner](ctx, s, DomainBanners); ok {
		t.Fatalf("corrupt entry must read as miss")
	}
}

func TestGet_VersionMismatchIsMiss(t *testing.T) {
	db := newTestDB(t)
	old := New(db, WithVersion("0.9.0"))
	cur := New(db)
	ctx := context.Background()

	Set(ctx, old, DomainProfile, domain.Profile{ID: "u1", WalletBalance: 3})
	if _, ok := Get[domain.Profile](ctx, cur, DomainProfile); ok {
		t.Fatalf("entry written under an old version must be invalid")
	}
}

// --- freshness ---

func TestIsFresh_Lifecycle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newTestStore(t, WithClock(clock))
	ctx := context.Background()

	if s.IsFresh(ctx, DomainBanners) {
		t.Fatalf("absent domain must not be fresh")
	}

	Set(ctx, s, DomainBanners, []domain.Banner{{ID: "b1", ImageURL: "https://img/1"}})
	if !s.IsFresh(ctx, DomainBanners) {
		t.Fatalf("freshly set domain must be fresh")
	}

	now = now.Add(6*time.Hour - time.Minute)
	if !s.IsFresh(ctx, DomainBanners) {
		t.Fatalf("must stay fresh until the TTL elapses")
	}

	now = now.Add(2 * time.Minute)
	if s.IsFresh(ctx, DomainBanners) {
		t.Fatalf("must be stale after the TTL elapses")
	}

	// Stale data is still served.
	if _, ok := Get[[]domain.Banner](ctx, s, DomainBanners); !ok {
		t.Fatalf("stale entries must still be readable")
	}
}

func TestIsFresh_TTLOverride(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t,
		WithClock(func() time.Time { return now }),
		WithTTL(DomainBanners, time.Minute),
	)
	ctx := context.Background()

	Set(ctx, s, DomainBanners, []domain.Banner{})
	now = now.Add(2 * time.Minute)
	if s.IsFresh(ctx, DomainBanners) {
		t.Fatalf("override TTL should apply")
	}
}

func TestIsFresh_RecordDomainUsesMetaSibling(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if err := SaveRecords(ctx, s, DomainAppointments, []domain.Appointment{}); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}
	if !s.IsFresh(ctx, DomainAppointments) {
		t.Fatalf("record domain must be fresh after save")
	}
	now = now.Add(11 * time.Minute)
	if s.IsFresh(ctx, DomainAppointments) {
		t.Fatalf("record domain must go stale after 10m")
	}
}

// --- version purge ---

type fakeWiper struct {
	calls int
	err   error
}

func (w *fakeWiper) Wipe() error { w.calls++; return w.err }

func TestPurgeIfVersionChanged_FirstRunWritesMarkerOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	purged, err := s.PurgeIfVersionChanged(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged {
		t.Fatalf("fresh install must not report a purge")
	}
	raw, err := s.GetRaw(ctx, KeyVersionMarker)
	if err != nil || string(raw) != CurrentVersion {
		t.Fatalf("marker not written: %q err=%v", raw, err)
	}
}

func TestPurgeIfVersionChanged_SparesRecordKeys(t *testing.T) {
	db := newTestDB(t)
	wiper := &fakeWiper{}
	ctx := context.Background()

	// Populate under an older schema version.
	old := New(db, WithVersion("0.9.0"))
	Set(ctx, old, DomainCatalogCategories, []domain.Category{{ID: "c1"}})
	Set(ctx, old, DomainBanners, []domain.Banner{{ID: "b1"}})
	if err := SaveRecords(ctx, old, DomainOrders, []domain.Order{{ID: "BK-000001"}}); err != nil {
		t.Fatalf("seed orders: %v", err)
	}
	if _, err := old.PurgeIfVersionChanged(ctx); err != nil {
		t.Fatalf("write old marker: %v", err)
	}

	cur := New(db, WithWiper(wiper))
	purged, err := cur.PurgeIfVersionChanged(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if !purged {
		t.Fatalf("version mismatch must purge")
	}
	if wiper.calls != 1 {
		t.Fatalf("blob wipe requested %d times; want 1", wiper.calls)
	}

	// The whole mezo_cache_ namespace is gone...
	if _, err := cur.GetRaw(ctx, DomainCatalogCategories.Key()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("categories should be purged, err=%v", err)
	}
	if _, err := cur.GetRaw(ctx, DomainBanners.Key()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("banners should be purged, err=%v", err)
	}
	// ...while record keys survive untouched.
	orders := Records[domain.Order](ctx, cur, DomainOrders)
	if len(orders) != 1 || orders[0].ID != "BK-000001" {
		t.Fatalf("orders must survive a version purge: %+v", orders)
	}
	// Marker now carries the current version; a second call is a no-op.
	purged, err = cur.PurgeIfVersionChanged(ctx)
	if err != nil || purged {
		t.Fatalf("second purge call must be a no-op: purged=%v err=%v", purged, err)
	}
	if wiper.calls != 1 {
		t.Fatalf("wiper must not run again")
	}
}

// --- records ---

func TestRecords_SaveLoadAppend(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if got := Records[domain.Appointment](ctx, s, DomainAppointments); got != nil {
		t.Fatalf("absent record domain must read nil, got %+v", got)
	}

	a1 := domain.Appointment{ID: "a1", ServiceID: "s1", Status: domain.AppointmentUpcoming}
	if err := SaveRecords(ctx, s, DomainAppointments, []domain.Appointment{a1}); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}
	if err := AppendRecord(ctx, s, DomainAppointments, domain.Appointment{ID: "a2"}); err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}
	got := Records[domain.Appointment](ctx, s, DomainAppointments)
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("records = %+v", got)
	}
}

func TestRecords_CorruptArrayIsNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.PutRaw(ctx, DomainOrders.Key(), []byte(`{"not":"an array"}`)); err != nil {
		t.Fatalf("PutRaw: %v", err)
	}
	if got := Records[domain.Order](ctx, s, DomainOrders); got != nil {
		t.Fatalf("corrupt record array must read nil, got %+v", got)
	}
}

func TestTransaction_AtomicAcrossRecordDomains(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx *Store) error {
		if err := SaveRecords(ctx, tx, DomainSubscriptions, []domain.UserSubscription{{ID: "sub1"}}); err != nil {
			return err
		}
		if err := SaveRecords(ctx, tx, DomainAppointments, []domain.Appointment{{ID: "a1"}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rollback error, got %v", err)
	}
	if got := Records[domain.UserSubscription](ctx, s, DomainSubscriptions); got != nil {
		t.Fatalf("rolled back subscription leaked: %+v", got)
	}
	if got := Records[domain.Appointment](ctx, s, DomainAppointments); got != nil {
		t.Fatalf("rolled back appointment leaked: %+v", got)
	}

	// Success path persists everything.
	err = s.Transaction(ctx, func(tx *Store) error {
		return SaveRecords(ctx, tx, DomainSubscriptions, []domain.UserSubscription{{ID: "sub2"}})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if got := Records[domain.UserSubscription](ctx, s, DomainSubscriptions); len(got) != 1 || got[0].ID != "sub2" {
		t.Fatalf("committed subscription missing: %+v", got)
	}
}

// --- misc ---

func TestHas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if s.Has(ctx, DomainSubscriptions) {
		t.Fatalf("empty store must not report presence")
	}
	if err := SaveRecords(ctx, s, DomainSubscriptions, []domain.UserSubscription{}); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}
	if !s.Has(ctx, DomainSubscriptions) {
		t.Fatalf("seeded empty list should count as present")
	}
}

func TestOpen_ErrorOnBadPath(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "salon.db")
	if s, err := Open(bad); err == nil {
		_ = s.Close()
		t.Fatalf("expected error opening %q", bad)
	}
}

func TestOpen_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salon.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	Set(ctx, s, DomainProfile, domain.Profile{ID: "u1"})
	if _, ok := Get[domain.Profile](ctx, s, DomainProfile); !ok {
		t.Fatalf("round trip through opened store failed")
	}
}

func TestDecodeError_Unwrap(t *testing.T) {
	inner := errors.New("bad json")
	de := &DecodeError{Key: "k", Err: inner}
	if !errors.Is(de, inner) {
		t.Fatalf("DecodeError must unwrap to the inner error")
	}
}
