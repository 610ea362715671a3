// Package store – store lifecycle and freshness policy.
//
// The Store is constructed explicitly and injected into every collaborator
// (orchestrator, draft persistence, commit pipeline, HTTP handlers). It owns
// the SQLite handle and the serialized bytes under every key; callers only
// ever see freshly deserialized value copies.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/metrics"
)

// Wiper clears an external cache coupled to the store's schema version.
// The blob prefetcher implements it; a version purge asks it to wipe so
// image blobs never outlive the metadata that references them.
type Wiper interface {
	Wipe() error
}

// Store is the versioned, TTL-governed durable cache. All methods are safe
// for sequential use from any goroutine holding the instance; SQLite's WAL
// mode serializes concurrent writers underneath.
type Store struct {
	db      *gorm.DB
	log     zerolog.Logger
	version string
	now     func() time.Time
	ttls    map[Domain]time.Duration
	wiper   Wiper
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source (used by freshness tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithVersion overrides the schema version marker (used by purge tests).
func WithVersion(v string) Option {
	return func(s *Store) { s.version = v }
}

// WithTTL overrides the staleness threshold of a single domain.
func WithTTL(d Domain, ttl time.Duration) Option {
	return func(s *Store) { s.ttls[d] = ttl }
}

// WithWiper attaches the blob cache wiper invoked on a version purge.
func WithWiper(w Wiper) Option {
	return func(s *Store) { s.wiper = w }
}

// WithLogger attaches a component logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Open opens (or creates) the SQLite database at path, applies PRAGMAs,
// migrates the key-value table, and returns a ready Store.
func Open(path string, opts ...Option) (*Store, error) {
	// Fail early if the parent directory does not exist (instead of a
	// cryptic sqlite "out of memory (14)" on some platforms).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	// Trace store queries alongside the HTTP spans.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&domain.KVEntry{}); err != nil {
		return nil, err
	}
	return New(db, opts...), nil
}

// New wraps an existing GORM handle. The caller remains responsible for
// migrating domain.KVEntry when bypassing Open.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:      db,
		version: CurrentVersion,
		now:     time.Now,
		ttls:    make(map[Domain]time.Duration),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TTL returns the effective staleness threshold of a domain.
func (s *Store) TTL(d Domain) time.Duration {
	if ttl, ok := s.ttls[d]; ok {
		return ttl
	}
	return policies[d].ttl
}

// Has reports whether any value exists under the domain's key, fresh or
// not. Warmup uses it to seed record domains exactly once.
func (s *Store) Has(ctx context.Context, d Domain) bool {
	ok, err := hasKV(ctx, s.db, d.Key())
	if err != nil {
		s.log.Error().Err(err).Str("domain", string(d)).Msg("cache existence check failed")
		return false
	}
	return ok
}

// IsFresh reports whether the domain holds a valid entry younger than its
// TTL. It is false when the entry is absent, written under a different
// schema version, or older than the threshold. Staleness never blocks
// reads: Get still serves stale data while warmup refreshes it.
func (s *Store) IsFresh(ctx context.Context, d Domain) bool {
	meta, ok := s.metadata(ctx, d)
	if !ok || meta.Version != s.version {
		return false
	}
	age := s.now().UTC().Sub(time.UnixMilli(meta.Timestamp))
	return age <= s.TTL(d)
}

// metadata loads the envelope (or _meta sibling) metadata of a domain.
func (s *Store) metadata(ctx context.Context, d Domain) (domain.Metadata, bool) {
	key := d.Key()
	if d.IsRecord() {
		key = d.metaKey()
	}
	raw, err := getKV(ctx, s.db, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("cache metadata read failed")
		}
		return domain.Metadata{}, false
	}
	var meta domain.Metadata
	if d.IsRecord() {
		if err := decodeJSON(raw, &meta); err != nil {
			s.logDecode(key, err)
			return domain.Metadata{}, false
		}
		return meta, true
	}
	var env envelope
	if err := decodeJSON(raw, &env); err != nil {
		s.logDecode(key, err)
		return domain.Metadata{}, false
	}
	return env.Metadata, true
}

// PurgeIfVersionChanged compares the stored version marker against the
// store's schema version. On mismatch it deletes every key under the cache
// namespace prefix, rewrites the marker, and asks the blob wiper to clear
// its cache. Record-domain keys live outside the prefix and are never
// touched; they carry their own version through their _meta siblings.
//
// Run once at process start, before any read.
func (s *Store) PurgeIfVersionChanged(ctx context.Context) (bool, error) {
	raw, err := getKV(ctx, s.db, KeyVersionMarker)
	switch {
	case err == nil && string(raw) == s.version:
		return false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return false, err
	}

	purged := err == nil // marker existed with a different version
	if purged {
		if err := deleteByPrefix(ctx, s.db, cachePrefix); err != nil {
			return false, err
		}
		metrics.CachePurges.Inc()
		if s.wiper != nil {
			if werr := s.wiper.Wipe(); werr != nil {
				s.log.Warn().Err(werr).Msg("blob cache wipe failed during version purge")
			}
		}
		s.log.Info().
			Str("from", string(raw)).
			Str("to", s.version).
			Msg("cache namespace purged after version change")
	}

	if err := putKV(ctx, s.db, KeyVersionMarker, []byte(s.version)); err != nil {
		return purged, err
	}
	return purged, nil
}

// Transaction runs fn against a transactional view of the store. Every
// write issued through the derived Store commits or rolls back atomically;
// the commit pipeline uses this to persist its three records as one unit.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(txdb *gorm.DB) error {
		tx := *s
		tx.db = txdb
		return fn(&tx)
	})
}

// GetRaw reads the raw bytes stored under an arbitrary key (the draft uses
// this). Returns ErrNotFound when absent.
func (s *Store) GetRaw(ctx context.Context, key string) ([]byte, error) {
	return getKV(ctx, s.db, key)
}

// PutRaw writes raw bytes under an arbitrary key.
func (s *Store) PutRaw(ctx context.Context, key string, value []byte) error {
	return putKV(ctx, s.db, key, value)
}

// DeleteRaw removes an arbitrary key. Absence is not an error.
func (s *Store) DeleteRaw(ctx context.Context, key string) error {
	return deleteKV(ctx, s.db, key)
}

// logDecode records a corrupt entry as a typed DecodeError, distinct from
// plain absence in the logs. Readers still observe a miss.
func (s *Store) logDecode(key string, err error) {
	s.log.Warn().Err(&DecodeError{Key: key, Err: err}).Msg("corrupt cache entry treated as miss")
}
