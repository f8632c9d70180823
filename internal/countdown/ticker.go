package countdown

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how often a Ticker recomputes.
const DefaultInterval = time.Minute

// Display is one computed countdown.
type Display struct {
	Text         string
	HappeningNow bool
}

// Ticker recomputes a countdown immediately on Start and then every interval
// until Stop is called or the context passed to Start is done. onTick is never
// called concurrently with itself and must not call Reset.
type Ticker struct {
	mode     Mode
	interval time.Duration
	now      func() time.Time
	onTick   func(Display)

	// emitMu serializes onTick between Start, Reset and the ticker goroutine.
	emitMu sync.Mutex

	mu     sync.Mutex
	start  time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) TickerOption {
	return func(t *Ticker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) TickerOption {
	return func(t *Ticker) { t.now = now }
}

// NewTicker creates a stopped ticker for an event starting at start.
func NewTicker(start time.Time, mode Mode, onTick func(Display), opts ...TickerOption) *Ticker {
	t := &Ticker{
		mode:     mode,
		interval: DefaultInterval,
		now:      time.Now,
		onTick:   onTick,
		start:    start,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start emits the current countdown and begins recomputing. Starting a
// running ticker restarts it.
func (t *Ticker) Start(ctx context.Context) {
	t.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	t.emit()
	go t.run(ctx, done)
}

// Reset changes the start time and emits immediately.
func (t *Ticker) Reset(start time.Time) {
	t.mu.Lock()
	t.start = start
	t.mu.Unlock()
	t.emit()
}

// Stop halts the ticker and waits for its goroutine to exit. It is safe to
// call on a stopped ticker.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.emit()
		}
	}
}

func (t *Ticker) emit() {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	start := t.start
	t.mu.Unlock()

	text, now := Format(start, t.now(), t.mode)
	t.onTick(Display{Text: text, HappeningNow: now})
}
