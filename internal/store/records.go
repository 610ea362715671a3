// Package store – record-domain persistence.
//
// Booking records (subscriptions, appointments, orders, favourites) are
// stored as a bare JSON array under their legacy key, with the version and
// timestamp in a sibling <key>_meta entry. The shape intentionally differs
// from the CacheEntry envelope so the keys survive a cache version purge;
// unifying it would require a data migration on existing installs.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/metrics"
)

// Records returns a fresh copy of the list stored under a record domain.
// Absence and corruption both yield nil; corruption is additionally logged
// as a DecodeError.
func Records[T any](ctx context.Context, s *Store, d Domain) []T {
	raw, err := getKV(ctx, s.db, d.Key())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("domain", string(d)).Msg("record read failed")
		}
		metrics.CacheReads.WithLabelValues(string(d), "miss").Inc()
		return nil
	}
	var items []T
	if err := decodeJSON(raw, &items); err != nil {
		s.logDecode(d.Key(), err)
		metrics.CacheReads.WithLabelValues(string(d), "decode_error").Inc()
		return nil
	}
	metrics.CacheReads.WithLabelValues(string(d), "hit").Inc()
	return items
}

// SaveRecords replaces the whole list of a record domain and refreshes its
// _meta sibling. Unlike envelope writes, failures are returned: losing a
// booking record is not acceptable degradation, and the commit pipeline
// must observe the error. Call inside Store.Transaction to persist several
// record domains atomically.
func SaveRecords[T any](ctx context.Context, s *Store, d Domain, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		metrics.CacheWrites.WithLabelValues(string(d), "error").Inc()
		return err
	}
	meta, err := json.Marshal(domain.Metadata{
		Version:   s.version,
		Timestamp: s.now().UTC().UnixMilli(),
	})
	if err != nil {
		metrics.CacheWrites.WithLabelValues(string(d), "error").Inc()
		return err
	}
	if err := putKV(ctx, s.db, d.Key(), raw); err != nil {
		metrics.CacheWrites.WithLabelValues(string(d), "error").Inc()
		return err
	}
	if err := putKV(ctx, s.db, d.metaKey(), meta); err != nil {
		metrics.CacheWrites.WithLabelValues(string(d), "error").Inc()
		return err
	}
	metrics.CacheWrites.WithLabelValues(string(d), "ok").Inc()
	return nil
}

// AppendRecord appends one item to a record domain, preserving existing
// entries. Not atomic across domains on its own; use Store.Transaction when
// several domains must move together.
func AppendRecord[T any](ctx context.Context, s *Store, d Domain, item T) error {
	items := Records[T](ctx, s, d)
	return SaveRecords(ctx, s, d, append(items, item))
}
