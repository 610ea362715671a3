// Package draft persists the in-progress booking form so it survives an
// application restart. Saves are write-through with a short debounce so a
// keystroke-per-field UI does not turn into a write-per-keystroke store.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mezoapp/salon-core/internal/domain"
	"github.com/mezoapp/salon-core/internal/store"
)

// DefaultTime is the slot suggested when no draft exists.
const DefaultTime = "09:00"

// Persistence saves and restores the booking draft.
type Persistence struct {
	store    *store.Store
	now      func() time.Time
	debounce time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	pending *domain.BookingForm
	timer   *time.Timer
}

// Option customizes a Persistence.
type Option func(*Persistence)

// WithClock overrides the time source (used by the default-date tests).
func WithClock(now func() time.Time) Option {
	return func(p *Persistence) { p.now = now }
}

// WithDebounce sets the save coalescing window. Zero writes through
// immediately.
func WithDebounce(d time.Duration) Option {
	return func(p *Persistence) { p.debounce = d }
}

// WithLogger attaches a component logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Persistence) { p.log = log }
}

// New creates draft persistence over the given store.
func New(s *store.Store, opts ...Option) *Persistence {
	p := &Persistence{store: s, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Load returns the last saved draft. When no draft exists, or the stored
// bytes are corrupt, it returns the defaults: tomorrow at 09:00 with empty
// notes. An unflushed pending save takes precedence over the stored copy.
func (p *Persistence) Load(ctx context.Context) domain.BookingForm {
	p.mu.Lock()
	if p.pending != nil {
		form := *p.pending
		p.mu.Unlock()
		return form
	}
	p.mu.Unlock()

	raw, err := p.store.GetRaw(ctx, store.KeyDraft)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.log.Error().Err(err).Msg("draft read failed")
		}
		return p.defaults()
	}
	var form domain.BookingForm
	if err := json.Unmarshal(raw, &form); err != nil {
		p.log.Warn().Err(err).Msg("corrupt draft discarded")
		return p.defaults()
	}
	if form.Date == "" {
		form.Date = p.defaults().Date
	}
	if form.Time == "" {
		form.Time = DefaultTime
	}
	return form
}

// Save persists the form. Calls inside the debounce window coalesce into
// one write carrying the latest value.
func (p *Persistence) Save(ctx context.Context, form domain.BookingForm) {
	if p.debounce <= 0 {
		p.write(ctx, form)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &form
	if p.timer == nil {
		p.timer = time.AfterFunc(p.debounce, p.flush)
	}
}

// Flush forces any pending debounced save to disk immediately.
func (p *Persistence) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if pending != nil {
		p.write(context.Background(), *pending)
	}
}

// Clear removes the draft. Called only on a successful commit; any pending
// debounced save is dropped with it.
func (p *Persistence) Clear(ctx context.Context) {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.pending = nil
	p.mu.Unlock()

	if err := p.store.DeleteRaw(ctx, store.KeyDraft); err != nil {
		p.log.Error().Err(err).Msg("draft clear failed")
	}
}

func (p *Persistence) flush() {
	p.mu.Lock()
	p.timer = nil
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if pending != nil {
		p.write(context.Background(), *pending)
	}
}

func (p *Persistence) write(ctx context.Context, form domain.BookingForm) {
	raw, err := json.Marshal(form)
	if err != nil {
		p.log.Error().Err(err).Msg("draft not serializable")
		return
	}
	if err := p.store.PutRaw(ctx, store.KeyDraft, raw); err != nil {
		p.log.Error().Err(err).Msg("draft write failed")
	}
}

// defaults is the form presented to a first-time (or post-commit) visitor.
func (p *Persistence) defaults() domain.BookingForm {
	return domain.BookingForm{
		Date: p.now().UTC().AddDate(0, 0, 1).Format("2006-01-02"),
		Time: DefaultTime,
	}
}
