// Package domain defines the value types shared across the salon client
// core: the catalog (categories, services, add-ons, package options),
// promotional banners, the user profile, and the cache envelope metadata
// persisted alongside every cached payload.
//
// All of these types are plain values. Reads from the cache deserialize a
// fresh copy on every call, so no instance is ever shared by reference
// between the store and its callers.
package domain

// Category is a top-level grouping of salon services (e.g. "Hair", "Nails").
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order,omitempty"`
}

// Addon is an optional extra sold on top of a service. The price is kept
// as the display string delivered by the catalog (e.g. "2.500 د.ك") and
// parsed only at pricing time.
type Addon struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// PackageOption describes a multi-session bundle attached to a service.
// Purchasing one creates a UserSubscription in addition to the immediate
// appointment.
type PackageOption struct {
	Title         string `json:"title"`
	SessionsCount int    `json:"sessionsCount"`
	ValidityDays  int    `json:"validityDays,omitempty"`
	Price         string `json:"price,omitempty"`
	MinGapDays    int    `json:"minGapDays,omitempty"`
}

// Service is a bookable salon service. Price and Duration are free-text
// fields sourced from the catalog content system; both are parsed
// defensively (see the booking package).
type Service struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"categoryId"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          string          `json:"price"`
	Duration       string          `json:"duration,omitempty"`
	Image          string          `json:"image,omitempty"`
	Addons         []Addon         `json:"addons,omitempty"`
	PackageOptions []PackageOption `json:"packageOptions,omitempty"`
}

// Banner is a promotional slot shown on the home screen. Its image is
// prefetched into the blob cache during warmup.
type Banner struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link,omitempty"`
}

// Profile is the locally cached user profile. WalletBalance feeds the
// payment split at checkout.
type Profile struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone,omitempty"`
	WalletBalance float64 `json:"walletBalance"`
}

// Metadata is the envelope header persisted with every cached payload.
// Timestamp is epoch milliseconds; an entry is only considered valid when
// Version matches the store's current schema version.
type Metadata struct {
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}
