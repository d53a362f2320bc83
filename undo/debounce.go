package undo

import (
	"sync"
	"time"
)

// DefaultDelay is the idle period after which a debounced checkpoint fires
const DefaultDelay = 250 * time.Millisecond

// Debouncer coalesces bursts of triggers into one call of a function after
// an idle period. Each trigger cancels and restarts the timer rather than
// stacking another one.
//
// The function is called on the timer goroutine with a token. It must take
// whatever lock guards its state and then Claim the token; a token is only
// claimable if no later Trigger or Stop has happened in the meantime, so a
// timer that fires concurrently with an undo never pushes a stale
// checkpoint.
type Debouncer struct {
	delay time.Duration
	fn    func(token uint64)

	mu    sync.Mutex
	timer *time.Timer
	token uint64
	armed bool
}

// NewDebouncer returns a debouncer calling fn once triggers have stopped for
// delay
func NewDebouncer(delay time.Duration, fn func(token uint64)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay: delay,
		fn:    fn,
	}
}

// Trigger (re)starts the timer
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.token++
	d.armed = true
	token := d.token
	d.timer = time.AfterFunc(d.delay, func() {
		d.fn(token)
	})
}

// Claim reports whether token belongs to the latest trigger and it has not
// been stopped or claimed since. A successful claim disarms the debouncer.
func (d *Debouncer) Claim(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.armed || token != d.token {
		return false
	}
	d.armed = false
	d.timer = nil
	return true
}

// Pending reports whether a trigger is waiting to fire
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.armed
}

// Stop cancels any pending trigger. It reports whether one was pending, in
// which case the caller is expected to perform the work itself.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.token++
	pending := d.armed
	d.armed = false
	return pending
}
