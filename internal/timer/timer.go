// Package timer provides the beacon's periodic tick source.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultPeriod is the beacon's fixed tick period.
const DefaultPeriod = 500 * time.Millisecond

var (
	// ErrOpen is returned when the timer cannot be acquired.
	ErrOpen = errors.New("timer: open failed")
	// ErrStart is returned when the timer cannot be started.
	ErrStart = errors.New("timer: start failed")
)

// Timer is a continuous periodic timer. Ticks are delivered on C after Start.
// Like time.Ticker, slow receivers drop ticks rather than queueing them.
type Timer struct {
	period time.Duration

	mu      sync.Mutex
	ticker  *time.Ticker
	stopped bool
}

// Open acquires a timer with the given period.
func Open(period time.Duration) (*Timer, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %v", ErrOpen, period)
	}
	return &Timer{period: period}, nil
}

// Period returns the tick period.
func (t *Timer) Period() time.Duration {
	return t.period
}

// Start begins ticking. A timer can be started once.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return fmt.Errorf("%w: timer stopped", ErrStart)
	}
	if t.ticker != nil {
		return fmt.Errorf("%w: already started", ErrStart)
	}
	t.ticker = time.NewTicker(t.period)
	return nil
}

// C returns the tick channel. It is nil (never ready) before Start.
func (t *Timer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ticker == nil {
		return nil
	}
	return t.ticker.C
}

// Stop stops the timer. It is safe to call more than once.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ticker != nil {
		t.ticker.Stop()
	}
	t.stopped = true
}
