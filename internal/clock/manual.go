package clock

import (
	"sync"
	"time"
)

// ManualTicker is a Ticker driven by explicit Tick calls.
type ManualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

// NewManualTicker returns a ticker that only fires on Tick.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() { m.once.Do(func() { close(m.stopped) }) }

// Tick hands one tick to the consumer. It reports false if the ticker was
// stopped or nobody received within a second.
func (m *ManualTicker) Tick() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-m.stopped:
		return false
	case <-time.After(time.Second):
		return false
	}
}

// ManualTickers is a TickerFactory that remembers what it created.
type ManualTickers struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

// New satisfies TickerFactory.
func (f *ManualTickers) New(time.Duration) Ticker {
	t := NewManualTicker()
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	return t
}

// Latest returns the most recently created ticker, or nil.
func (f *ManualTickers) Latest() *ManualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

// Count returns how many tickers were created.
func (f *ManualTickers) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

type manualTimer struct {
	s     *ManualScheduler
	delay time.Duration
	f     func()
	done  bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// ManualScheduler is an AfterFunc replacement whose callbacks run only
// when FireAll is called.
type ManualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

// AfterFunc satisfies the AfterFunc signature.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the delays of timers that have neither fired nor been
// stopped, in scheduling order.
func (s *ManualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.timers {
		if !t.done {
			out = append(out, t.delay)
		}
	}
	return out
}

// FireAll runs every pending callback on the calling goroutine and returns
// how many ran.
func (s *ManualScheduler) FireAll() int {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.done {
			t.done = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}
