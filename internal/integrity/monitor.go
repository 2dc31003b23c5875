// Package integrity counts focus-loss incidents during a session and
// signals when the count crosses the violation threshold. It never ends a
// session itself.
package integrity

import (
	"sync"
	"time"

	"github.com/abhisek/examprep/internal/clock"
)

const (
	DefaultThreshold   = 5
	DefaultGracePeriod = 10 * time.Second
)

// Config tunes the monitor.
type Config struct {
	Threshold   int
	GracePeriod time.Duration
	AfterFunc   clock.AfterFunc

	// OnForceSubmit runs once, GracePeriod after the threshold is first
	// reached.
	OnForceSubmit func()
}

// Incident describes the state right after a visibility loss.
type Incident struct {
	Count int

	// Warning is set while the count is still below the threshold.
	Warning bool

	// Violation is set on the incident that first reaches the threshold.
	Violation bool
}

// Monitor tracks visibility incidents and fullscreen exits.
type Monitor struct {
	mu              sync.Mutex
	cfg             Config
	incidents       int
	fullscreenExits int
	cheatDetected   bool
	pending         clock.Timer
	stopped         bool
}

// NewMonitor creates a monitor, filling unset config with defaults.
func NewMonitor(cfg Config) *Monitor {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = clock.RealAfterFunc
	}
	return &Monitor{cfg: cfg}
}

// VisibilityLost records one incident. Incidents keep counting after the
// threshold, but the forced submission is scheduled only once.
func (m *Monitor) VisibilityLost() Incident {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.incidents++
	inc := Incident{Count: m.incidents}
	if m.incidents < m.cfg.Threshold {
		inc.Warning = true
		return inc
	}
	if !m.cheatDetected {
		m.cheatDetected = true
		inc.Violation = true
		m.scheduleLocked()
	}
	return inc
}

// Restore seeds the counter from a recovered snapshot. A restored count at
// or over the threshold reports a violation and schedules the forced
// submission as if the last incident had just happened.
func (m *Monitor) Restore(count int) Incident {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count <= m.incidents {
		return Incident{Count: m.incidents}
	}
	m.incidents = count
	inc := Incident{Count: count}
	if count >= m.cfg.Threshold && !m.cheatDetected {
		m.cheatDetected = true
		inc.Violation = true
		m.scheduleLocked()
	}
	return inc
}

func (m *Monitor) scheduleLocked() {
	if m.stopped || m.cfg.OnForceSubmit == nil {
		return
	}
	m.pending = m.cfg.AfterFunc(m.cfg.GracePeriod, m.cfg.OnForceSubmit)
}

// FullscreenChanged records a fullscreen transition. Leaving fullscreen is
// counted separately and is not an incident.
func (m *Monitor) FullscreenChanged(fullscreen bool) {
	if fullscreen {
		return
	}
	m.mu.Lock()
	m.fullscreenExits++
	m.mu.Unlock()
}

func (m *Monitor) Incidents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incidents
}

func (m *Monitor) FullscreenExits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fullscreenExits
}

// CheatDetected reports whether the threshold has been reached.
func (m *Monitor) CheatDetected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cheatDetected
}

// Stop cancels a pending forced submission and prevents new ones.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}
