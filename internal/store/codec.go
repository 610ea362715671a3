// Package store – typed codecs over the cache envelope.
//
// Non-record domains are serialized as a CacheEntry envelope:
//
//	{"data": <payload>, "metadata": {"version": "1.4.0", "timestamp": 1700000000000}}
//
// Record domains (subscriptions, appointments, orders, favourites) keep the
// legacy bare-array shape with a sibling _meta key; see records.go. Decode
// failures surface internally as DecodeError and externally as a miss: the
// store never propagates corruption to readers.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/metrics"
)

// DecodeError reports malformed bytes under a storage key. It is logged by
// the store and never returned to readers, so dashboards can distinguish
// corruption from plain absence.
type DecodeError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Key, e.Err) }

// Unwrap exposes the underlying JSON error.
func (e *DecodeError) Unwrap() error { return e.Err }

// envelope is the on-disk shape of non-record domains.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	Metadata domain.Metadata `json:"metadata"`
}

func decodeJSON(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}

// Get returns a fresh copy of the payload cached under an envelope domain,
// or the zero value and false when the entry is absent, written under a
// different schema version, or corrupt. TTL staleness does not affect Get;
// stale entries are still served.
func Get[T any](ctx context.Context, s *Store, d Domain) (T, bool) {
	var zero T
	raw, err := getKV(ctx, s.db, d.Key())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("domain", string(d)).Msg("cache read failed")
		}
		metrics.CacheReads.WithLabelValues(string(d), "miss").Inc()
		return zero, false
	}

	var env envelope
	if err := decodeJSON(raw, &env); err != nil {
		s.logDecode(d.Key(), err)
		metrics.CacheReads.WithLabelValues(string(d), "decode_error").Inc()
		return zero, false
	}
	if env.Metadata.Version != s.version {
		metrics.CacheReads.WithLabelValues(string(d), "miss").Inc()
		return zero, false
	}

	var v T
	if err := decodeJSON(env.Data, &v); err != nil {
		s.logDecode(d.Key(), err)
		metrics.CacheReads.WithLabelValues(string(d), "decode_error").Inc()
		return zero, false
	}
	metrics.CacheReads.WithLabelValues(string(d), "hit").Inc()
	return v, true
}

// Set writes the payload under an envelope domain, stamped with the current
// schema version and clock. Serialization or storage failures are logged
// and swallowed: a failed cache write degrades to a future miss, it never
// fails the caller.
func Set[T any](ctx context.Context, s *Store, d Domain, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("domain", string(d)).Msg("cache payload not serializable")
		metrics.CacheWrites.WithLabelValues(string(d), "error").Inc()
		return
	}
	raw, err := json.Marshal(envelope{
		Data: data,
		Metadata: domain.Metadata{
			Version:   s.version,
			Timestamp: s.now().UTC().UnixMilli(),
		},
	})
	if err != nil {
		metrics.CacheWrites.WithLabelValues(string(d), "error").Inc()
		return
	}
	if err := putKV(ctx, s.db, d.Key(), raw); err != nil {
		s.log.Error().Err(err).Str("domain", string(d)).Msg("cache write failed")
		metrics.CacheWrites.WithLabelValues(string(d), "error").Inc()
		return
	}
	metrics.CacheWrites.WithLabelValues(string(d), "ok").Inc()
}
