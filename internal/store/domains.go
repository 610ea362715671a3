// Package store implements the versioned, TTL-governed durable cache at the
// heart of the salon client. Every persisted key lives in one SQLite-backed
// key-value table; this file defines the closed set of cache domains, their
// legacy storage keys, and the default staleness policy.
package store

import "time"

// CurrentVersion is the cache schema version. Entries written under a
// different version are invalid, and a mismatch of the stored marker at
// startup purges the whole cache namespace (record keys excluded).
const CurrentVersion = "1.4.0"

// Domain is a named category of cached data with its own TTL policy.
type Domain string

// The closed set of cache domains.
const (
	DomainCatalogCategories Domain = "catalogCategories"
	DomainCatalogServices   Domain = "catalogServices"
	DomainBanners           Domain = "banners"
	DomainSubscriptions     Domain = "subscriptions"
	DomainAppointments      Domain = "appointments"
	DomainProfile           Domain = "profile"
	DomainOrders            Domain = "orders"
	DomainFavourites        Domain = "favourites"
)

// Storage keys. The names are inherited from earlier releases and must not
// change without a migration: existing installs hold data under them.
const (
	keyCategories    = "mezo_cache_categories"
	keyServices      = "mezo_cache_services"
	keyBanners       = "mezo_cache_banners"
	keyProfile       = "mezo_cache_profile"
	keySubscriptions = "mezo_subscriptions_v1"
	keyAppointments  = "salon_appointments_v1"
	keyOrders        = "mezo_bookings_v1"
	keyFavourites    = "mezo_favourites_v1"

	// KeyVersionMarker stores the schema version of the cache namespace.
	KeyVersionMarker = "mezo_cache_version"

	// KeyDraft stores the in-progress booking form.
	KeyDraft = "mezo_draft_booking_v1"

	// cachePrefix scopes the keys wiped by a version purge. Record keys
	// (subscriptions, appointments, orders, favourites) deliberately do
	// not share it and survive the purge; they are versioned through
	// their sibling _meta entries instead.
	cachePrefix = "mezo_cache_"

	// metaSuffix is appended to a record key to form its metadata sibling.
	metaSuffix = "_meta"
)

// policy binds a domain to its storage key, default TTL, and shape.
// Record domains are stored as a bare JSON array plus a _meta sibling;
// all other domains use the CacheEntry envelope.
type policy struct {
	key    string
	ttl    time.Duration
	record bool
}

var policies = map[Domain]policy{
	DomainCatalogCategories: {key: keyCategories, ttl: 24 * time.Hour},
	DomainCatalogServices:   {key: keyServices, ttl: 24 * time.Hour},
	DomainBanners:           {key: keyBanners, ttl: 6 * time.Hour},
	DomainProfile:           {key: keyProfile, ttl: 24 * time.Hour},
	DomainSubscriptions:     {key: keySubscriptions, ttl: 10 * time.Minute, record: true},
	DomainAppointments:      {key: keyAppointments, ttl: 10 * time.Minute, record: true},
	DomainOrders:            {key: keyOrders, ttl: 10 * time.Minute, record: true},
	DomainFavourites:        {key: keyFavourites, ttl: 10 * time.Minute, record: true},
}

// Key returns the storage key of the domain.
func (d Domain) Key() string { return policies[d].key }

// IsRecord reports whether the domain uses the bare-array record shape.
func (d Domain) IsRecord() bool { return policies[d].record }

// metaKey returns the sibling metadata key of a record domain.
func (d Domain) metaKey() string { return policies[d].key + metaSuffix }
