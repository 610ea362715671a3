// Package booking – commit pipeline.
package booking

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mezoapp/salon-core/internal/api"
	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/draft"
	"github.com/mezoapp/salon-core/internal/metrics"
	"github.com/mezoapp/salon-core/internal/store"
)

// Order IDs are six random digits behind a fixed prefix. Collisions are
// checked against the stored orders and retried a bounded number of
// times before falling back to a UUID.
const (
	orderIDPrefix  = "BK-"
	orderIDSpace   = 1_000_000
	orderIDRetries = 5
)

// defaultValidityDays applies when a package option carries no validity.
const defaultValidityDays = 30

// State is the lifecycle of a commit pipeline.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

// String implements fmt.Stringer for log fields.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Charger charges the online portion of a payment. *api.Gateway
// satisfies it.
type Charger interface {
	Charge(ctx context.Context, req api.ChargeRequest) error
}

// Result is returned by a successful commit.
type Result struct {
	OrderID    string
	AmountPaid float64
}

// Pipeline orchestrates a booking commit: pricing, payment split,
// gateway charge, and the atomic persistence of the order, the optional
// subscription, and the appointment. A mutex-guarded state flag makes a
// second Commit while one is submitting a cheap rejection, so a double
// tap cannot create two orders.
type Pipeline struct {
	store   *store.Store
	gateway Charger
	draft   *draft.Persistence
	log     zerolog.Logger
	now     func() time.Time
	randInt func(int) int

	mu    sync.Mutex
	state State
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock overrides the pipeline's time source.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline wires a commit pipeline. The gateway may be nil when the
// caller guarantees wallet-only flows; a nil draft skips the post-commit
// clear.
func NewPipeline(s *store.Store, gateway Charger, d *draft.Persistence, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:   s,
		gateway: gateway,
		draft:   d,
		log:     zerolog.Nop(),
		now:     time.Now,
		randInt: rand.IntN,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State reports the pipeline's current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Commit runs a booking to completion.
//
// A form without a date or time is rejected up front without touching
// the pipeline state. While a commit is submitting, further calls fail
// with ErrCommitInFlight. On success the draft is cleared and the order
// id plus the total paid are returned.
func (p *Pipeline) Commit(ctx context.Context, item domain.BookingItem, form domain.BookingForm, paymentMethod string) (Result, error) {
	if strings.TrimSpace(form.Date) == "" || strings.TrimSpace(form.Time) == "" {
		metrics.Commits.WithLabelValues("rejected").Inc()
		return Result{}, ErrMissingSchedule
	}

	p.mu.Lock()
	if p.state == Submitting {
		p.mu.Unlock()
		metrics.Commits.WithLabelValues("inflight").Inc()
		return Result{}, ErrCommitInFlight
	}
	p.state = Submitting
	p.mu.Unlock()

	started := time.Now()
	res, err := p.commit(ctx, item, form, paymentMethod)
	metrics.CommitDuration.Observe(time.Since(started).Seconds())

	p.mu.Lock()
	if err != nil {
		p.state = Failed
	} else {
		p.state = Succeeded
	}
	p.mu.Unlock()

	if err != nil {
		metrics.Commits.WithLabelValues("failed").Inc()
		p.log.Error().Err(err).Str("order_id", res.OrderID).Msg("booking commit failed")
		return Result{}, err
	}
	metrics.Commits.WithLabelValues("succeeded").Inc()
	p.log.Info().
		Str("order_id", res.OrderID).
		Float64("amount", res.AmountPaid).
		Msg("booking committed")
	return res, nil
}

func (p *Pipeline) commit(ctx context.Context, item domain.BookingItem, form domain.BookingForm, paymentMethod string) (Result, error) {
	breakdown := ComputePrice(item)

	profile, _ := store.Get[domain.Profile](ctx, p.store, store.DomainProfile)
	split := SplitPayment(breakdown.Total, profile.WalletBalance, paymentMethod)

	orderID := p.newOrderID(ctx)

	if split.OnlinePaid > 0 {
		if p.gateway == nil {
			return Result{OrderID: orderID}, fmt.Errorf("%w: no gateway configured", ErrChargeDeclined)
		}
		err := p.gateway.Charge(ctx, api.ChargeRequest{
			OrderID: orderID,
			Amount:  split.OnlinePaid,
			Method:  paymentMethod,
		})
		if err != nil {
			return Result{OrderID: orderID}, fmt.Errorf("%w: %v", ErrChargeDeclined, err)
		}
	}

	now := p.now()
	duration := ParseDuration(item.Product.Duration)

	order := domain.Order{
		ID:                orderID,
		Date:              form.Date,
		Time:              form.Time,
		Status:            split.StatusLabel(),
		Total:             breakdown.Total,
		WalletPaid:        split.WalletPaid,
		OnlinePaid:        split.OnlinePaid,
		PaymentMethodType: paymentMethod,
		CreatedAt:         now,
	}

	var sub *domain.UserSubscription
	if opt := item.PackageOption; opt != nil {
		order.IsPackage = true
		order.PackageName = opt.Title

		validity := opt.ValidityDays
		if validity <= 0 {
			validity = defaultValidityDays
		}
		sub = &domain.UserSubscription{
			ID:              uuid.NewString(),
			ServiceID:       item.Product.ID,
			PackageTitle:    opt.Title,
			Status:          domain.SubscriptionActive,
			SessionsTotal:   opt.SessionsCount,
			SessionsUsed:    1,
			ExpiryDate:      now.AddDate(0, 0, validity),
			NextSession:     &domain.NextSession{Date: form.Date, Time: form.Time},
			MinGapDays:      opt.MinGapDays,
			DurationMinutes: duration,
		}
	}

	appt := domain.Appointment{
		ID:              uuid.NewString(),
		Source:          domain.SourceService,
		ServiceID:       item.Product.ID,
		ServiceName:     item.Product.Name,
		DurationMinutes: duration,
		DateISO:         form.Date,
		Time24:          form.Time,
		PricePaidNow:    breakdown.Total,
		Status:          domain.AppointmentUpcoming,
		CreatedAt:       now,
		BookingType:     domain.SourceService,
	}
	if sub != nil {
		appt.Source = domain.SourceSubscription
		appt.SubscriptionID = sub.ID
		appt.BookingType = domain.SourceSubscription
	}

	err := p.store.Transaction(ctx, func(tx *store.Store) error {
		if sub != nil {
			if err := store.AppendRecord(ctx, tx, store.DomainSubscriptions, *sub); err != nil {
				return fmt.Errorf("persist subscription: %w", err)
			}
		}
		if err := store.AppendRecord(ctx, tx, store.DomainAppointments, appt); err != nil {
			return fmt.Errorf("persist appointment: %w", err)
		}
		if err := store.AppendRecord(ctx, tx, store.DomainOrders, order); err != nil {
			return fmt.Errorf("persist order: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{OrderID: orderID}, err
	}

	if split.WalletPaid > 0 {
		profile.WalletBalance -= split.WalletPaid
		store.Set(ctx, p.store, store.DomainProfile, profile)
	}

	if p.draft != nil {
		p.draft.Clear(ctx)
	}
	return Result{OrderID: orderID, AmountPaid: breakdown.Total}, nil
}

// newOrderID draws BK-prefixed six-digit ids until one is free of the
// stored orders, then gives up on brevity and uses a UUID. The pipeline
// is single-flight, so the check cannot race with another local commit.
func (p *Pipeline) newOrderID(ctx context.Context) string {
	taken := make(map[string]struct{})
	for _, o := range store.Records[domain.Order](ctx, p.store, store.DomainOrders) {
		taken[o.ID] = struct{}{}
	}
	for i := 0; i < orderIDRetries; i++ {
		id := fmt.Sprintf("%s%06d", orderIDPrefix, p.randInt(orderIDSpace))
		if _, dup := taken[id]; !dup {
			return id
		}
	}
	return orderIDPrefix + uuid.NewString()
}
