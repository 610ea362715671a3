// Package domain – booking records.
//
// This file defines the three correlated records produced by a booking
// commit (Order, UserSubscription, Appointment) plus the checkout inputs
// (BookingItem, BookingForm). The records are persisted by the store as
// bare JSON arrays under their legacy keys; see internal/store.
package domain

import "time"

// Payment method selected at checkout.
const (
	PaymentMethodWallet = "wallet"
	PaymentMethodOnline = "online"
)

// Subscription lifecycle states.
const (
	SubscriptionActive  = "active"
	SubscriptionPaused  = "paused"
	SubscriptionExpired = "expired"
)

// Appointment lifecycle states.
const (
	AppointmentUpcoming  = "upcoming"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment sources.
const (
	SourceSubscription = "subscription"
	SourceService      = "service"
)

// BookingItem is the input to a booking commit.
//
// Exactly one of CustomFinalPrice or (Product.Price + SelectedAddons)
// determines the unit price. PackageOption is orthogonal to the pricing
// mode: when present, the commit additionally creates a UserSubscription.
type BookingItem struct {
	Product          Service        `json:"product"`
	Quantity         int            `json:"quantity"`
	SelectedAddons   []Addon        `json:"selectedAddons,omitempty"`
	PackageOption    *PackageOption `json:"packageOption,omitempty"`
	CustomFinalPrice *float64       `json:"customFinalPrice,omitempty"`
}

// BookingForm is the checkout form state persisted as the draft.
// Date is an ISO calendar date (2006-01-02), Time a 24h clock (15:04).
type BookingForm struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Notes string `json:"notes,omitempty"`
}

// Order is created exactly once per commit and is immutable thereafter.
type Order struct {
	ID                string    `json:"id"`
	Date              string    `json:"date"`
	Time              string    `json:"time,omitempty"`
	Status            string    `json:"status"`
	Total             float64   `json:"total"`
	IsPackage         bool      `json:"isPackage,omitempty"`
	PackageName       string    `json:"packageName,omitempty"`
	WalletPaid        float64   `json:"walletPaid,omitempty"`
	OnlinePaid        float64   `json:"onlinePaid,omitempty"`
	PaymentMethodType string    `json:"paymentMethodType,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NextSession is the upcoming slot of a subscription, mutated later by
// the reschedule and book-next flows.
type NextSession struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// UserSubscription is created only when a PackageOption is purchased.
// SessionsUsed starts at 1: the session booked at purchase time is
// consumed immediately. A subscription is logically expired once
// SessionsUsed reaches SessionsTotal or ExpiryDate has passed.
type UserSubscription struct {
	ID              string       `json:"id"`
	ServiceID       string       `json:"serviceId"`
	PackageTitle    string       `json:"packageTitle"`
	Status          string       `json:"status"`
	SessionsTotal   int          `json:"sessionsTotal"`
	SessionsUsed    int          `json:"sessionsUsed"`
	ExpiryDate      time.Time    `json:"expiryDate"`
	NextSession     *NextSession `json:"nextSession,omitempty"`
	MinGapDays      int          `json:"minGapDays,omitempty"`
	DurationMinutes int          `json:"durationMinutes"`
}

// Expired reports whether the subscription is logically expired at the
// given instant, either by exhausting its sessions or by date.
func (s UserSubscription) Expired(now time.Time) bool {
	return s.SessionsUsed >= s.SessionsTotal || now.After(s.ExpiryDate)
}

// Appointment is created once per commit, or once per reschedule when it
// replaces the existing upcoming entry of a subscription.
type Appointment struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	SubscriptionID  string    `json:"subscriptionId,omitempty"`
	ServiceID       string    `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	DurationMinutes int       `json:"durationMinutes"`
	DateISO         string    `json:"dateISO"`
	Time24          string    `json:"time24"`
	PricePaidNow    float64   `json:"pricePaidNow"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	BookingType     string    `json:"bookingType,omitempty"`
}
