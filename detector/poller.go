package detector

import (
	"context"
	"sync"
	"time"

	"github.com/esimov/illusion/frame"
)

// DefaultInterval is the minimum delay between two detection requests.
const DefaultInterval = 100 * time.Millisecond

// Detect is implemented by anything able to find faces in a frame.
type Detect interface {
	Detect(ctx context.Context, f *frame.Frame) ([]Face, error)
}

// Poller runs detection in the background and keeps the latest result. At
// most one request is in flight, and requests are spaced by at least the
// configured interval. The render loop reads the latest snapshot each tick
// and never waits on a request.
type Poller struct {
	det      Detect
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	latest  []Face
	started time.Time
	busy    bool
	failed  uint64
	wg      sync.WaitGroup
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock used to space requests.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// NewPoller creates a poller over det. A nil det yields a poller that never
// reports faces. A non positive interval selects DefaultInterval.
func NewPoller(det Detect, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		det:      det,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit starts a detection on a copy of f when no request is in flight and
// the interval since the previous request has elapsed. It reports whether a
// request was started.
func (p *Poller) Submit(ctx context.Context, f *frame.Frame) bool {
	if p.det == nil || !f.Valid() {
		return false
	}
	p.mu.Lock()
	now := p.now()
	if p.busy || (!p.started.IsZero() && now.Sub(p.started) < p.interval) {
		p.mu.Unlock()
		return false
	}
	p.busy = true
	p.started = now
	p.mu.Unlock()

	snap := f.Clone()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		faces, err := p.det.Detect(ctx, snap)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.busy = false
		if err != nil {
			p.failed++
			Logf("detector: detection failed: %v", err)
			return
		}
		p.latest = faces
	}()
	return true
}

// Latest returns a copy of the most recent successful result. A failed
// request keeps the previous result.
func (p *Poller) Latest() []Face {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.latest) == 0 {
		return nil
	}
	out := make([]Face, len(p.latest))
	copy(out, p.latest)
	return out
}

// Failures returns the number of failed requests.
func (p *Poller) Failures() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Wait blocks until the request in flight, if any, completes.
func (p *Poller) Wait() {
	p.wg.Wait()
}
