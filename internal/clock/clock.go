// Package clock provides the whole-second countdown that drives a test
// session, plus the ticker and timer seams used to drive it in tests.
package clock

import (
	"fmt"
	"sync"
	"time"
)

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop() { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc wraps time.AfterFunc.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type run struct {
	stop chan struct{}
	once sync.Once
}

func (r *run) halt() { r.once.Do(func() { close(r.stop) }) }

// Clock counts down in whole seconds. It has a single subscriber, given as
// the onTick and onExpire callbacks, which are always invoked from the
// clock's own goroutine and never while the clock's lock is held.
type Clock struct {
	mu        sync.Mutex
	newTicker TickerFactory
	onTick    func(remaining int)
	onExpire  func()
	current   *run
	remaining int
}

// New creates a stopped clock. A nil factory uses real tickers.
func New(newTicker TickerFactory, onTick func(remaining int), onExpire func()) *Clock {
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	if onTick == nil {
		onTick = func(int) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Clock{newTicker: newTicker, onTick: onTick, onExpire: onExpire}
}

// Start begins counting down from seconds, cancelling any earlier run.
// Starting at zero or below expires immediately.
func (c *Clock) Start(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	c.mu.Lock()
	if c.current != nil {
		c.current.halt()
	}
	r := &run{stop: make(chan struct{})}
	c.current = r
	c.remaining = seconds
	var t Ticker
	if seconds > 0 {
		t = c.newTicker(time.Second)
	}
	c.mu.Unlock()

	go c.loop(r, t)
}

// Stop cancels future ticks. It is safe to call any number of times.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.halt()
		c.current = nil
	}
}

// Remaining returns the seconds left on the current or last run.
func (c *Clock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether a countdown is in progress.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *Clock) loop(r *run, t Ticker) {
	if t == nil {
		if c.finish(r) {
			c.onExpire()
		}
		return
	}
	defer t.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-t.C():
			c.mu.Lock()
			if c.current != r {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			expired := remaining <= 0
			if expired {
				c.current = nil
				r.halt()
			}
			c.mu.Unlock()

			c.onTick(remaining)
			if expired {
				c.onExpire()
				return
			}
		}
	}
}

// finish retires r if it is still current.
func (c *Clock) finish(r *run) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != r {
		return false
	}
	c.current = nil
	r.halt()
	return true
}

// FormatRemaining renders seconds as mm:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
