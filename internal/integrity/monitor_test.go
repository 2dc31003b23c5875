package integrity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/clock"
)

func newTestMonitor(forced *int) (*Monitor, *clock.ManualScheduler) {
	sched := &clock.ManualScheduler{}
	m := NewMonitor(Config{
		AfterFunc:     sched.AfterFunc,
		OnForceSubmit: func() { *forced++ },
	})
	return m, sched
}

func TestMonitor_WarnsBelowThreshold(t *testing.T) {
	forced := 0
	m, sched := newTestMonitor(&forced)

	for i := 1; i <= 4; i++ {
		inc := m.VisibilityLost()
		assert.Equal(t, i, inc.Count)
		assert.True(t, inc.Warning)
		assert.False(t, inc.Violation)
	}
	assert.False(t, m.CheatDetected())
	assert.Empty(t, sched.Pending())
}

func TestMonitor_FifthIncidentSchedulesForcedSubmit(t *testing.T) {
	forced := 0
	m, sched := newTestMonitor(&forced)

	for i := 0; i < 4; i++ {
		m.VisibilityLost()
	}
	inc := m.VisibilityLost()
	assert.Equal(t, 5, inc.Count)
	assert.True(t, inc.Violation)
	assert.False(t, inc.Warning)
	assert.True(t, m.CheatDetected())
	require.Equal(t, []time.Duration{10 * time.Second}, sched.Pending())

	// Later incidents still count but do not reschedule.
	inc = m.VisibilityLost()
	assert.Equal(t, 6, inc.Count)
	assert.False(t, inc.Violation)
	assert.Len(t, sched.Pending(), 1)

	assert.Equal(t, 1, sched.FireAll())
	assert.Equal(t, 1, forced)
}

func TestMonitor_StopCancelsForcedSubmit(t *testing.T) {
	forced := 0
	m, sched := newTestMonitor(&forced)
	for i := 0; i < 5; i++ {
		m.VisibilityLost()
	}
	m.Stop()
	assert.Equal(t, 0, sched.FireAll())
	assert.Equal(t, 0, forced)

	// Counting continues after stop, nothing is scheduled.
	m.VisibilityLost()
	assert.Equal(t, 6, m.Incidents())
	assert.Empty(t, sched.Pending())
}

func TestMonitor_Restore(t *testing.T) {
	forced := 0
	m, sched := newTestMonitor(&forced)

	inc := m.Restore(3)
	assert.Equal(t, 3, inc.Count)
	assert.False(t, inc.Violation)
	assert.Equal(t, 3, m.Incidents())

	inc = m.VisibilityLost()
	assert.Equal(t, 4, inc.Count)
	assert.True(t, inc.Warning)

	m2, sched2 := newTestMonitor(&forced)
	inc = m2.Restore(7)
	assert.True(t, inc.Violation)
	assert.True(t, m2.CheatDetected())
	assert.Len(t, sched2.Pending(), 1)
	assert.Empty(t, sched.Pending())
}

func TestMonitor_RestoreNeverLowersCount(t *testing.T) {
	forced := 0
	m, _ := newTestMonitor(&forced)
	m.VisibilityLost()
	m.VisibilityLost()
	inc := m.Restore(1)
	assert.Equal(t, 2, inc.Count)
	assert.Equal(t, 2, m.Incidents())
}

func TestMonitor_FullscreenExitsAreNotIncidents(t *testing.T) {
	forced := 0
	m, _ := newTestMonitor(&forced)
	m.FullscreenChanged(true)
	m.FullscreenChanged(false)
	m.FullscreenChanged(false)
	assert.Equal(t, 2, m.FullscreenExits())
	assert.Equal(t, 0, m.Incidents())
}

func TestNewMonitor_Defaults(t *testing.T) {
	m := NewMonitor(Config{})
	assert.Equal(t, DefaultThreshold, m.cfg.Threshold)
	assert.Equal(t, DefaultGracePeriod, m.cfg.GracePeriod)
	assert.NotNil(t, m.cfg.AfterFunc)
}
