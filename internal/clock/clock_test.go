package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	ticks   chan int
	expired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ticks: make(chan int, 16), expired: make(chan struct{}, 4)}
}

func (r *recorder) onTick(n int) { r.ticks <- n }
func (r *recorder) onExpire() { r.expired <- struct{}{} }

func (r *recorder) nextTick(t *testing.T) int {
	t.Helper()
	select {
	case n := <-r.ticks:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return -1
	}
}

func (r *recorder) waitExpired(t *testing.T) {
	t.Helper()
	select {
	case <-r.expired:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for expiry")
	}
}

func TestClock_CountsDownAndExpiresOnce(t *testing.T) {
	tickers := &ManualTickers{}
	rec := newRecorder()
	c := New(tickers.New, rec.onTick, rec.onExpire)

	c.Start(3)
	tk := tickers.Latest()
	require.NotNil(t, tk)

	require.True(t, tk.Tick())
	assert.Equal(t, 2, rec.nextTick(t))
	require.True(t, tk.Tick())
	assert.Equal(t, 1, rec.nextTick(t))
	require.True(t, tk.Tick())
	assert.Equal(t, 0, rec.nextTick(t))
	rec.waitExpired(t)

	// The run is over; further ticks are not consumed.
	assert.False(t, tk.Tick())
	assert.False(t, c.Running())
	assert.Equal(t, 0, c.Remaining())
	assert.Len(t, rec.expired, 0)
}

func TestClock_StopIsIdempotent(t *testing.T) {
	tickers := &ManualTickers{}
	rec := newRecorder()
	c := New(tickers.New, rec.onTick, rec.onExpire)

	c.Start(10)
	tk := tickers.Latest()
	require.True(t, tk.Tick())
	assert.Equal(t, 9, rec.nextTick(t))

	c.Stop()
	c.Stop()
	assert.False(t, c.Running())
	assert.Equal(t, 9, c.Remaining())

	tk.Tick()
	select {
	case n := <-rec.ticks:
		t.Fatalf("unexpected tick %d after stop", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClock_RestartCancelsPreviousRun(t *testing.T) {
	tickers := &ManualTickers{}
	rec := newRecorder()
	c := New(tickers.New, rec.onTick, rec.onExpire)

	c.Start(5)
	first := tickers.Latest()
	c.Start(2)
	second := tickers.Latest()
	require.NotSame(t, first, second)

	require.True(t, second.Tick())
	assert.Equal(t, 1, rec.nextTick(t))
	require.True(t, second.Tick())
	assert.Equal(t, 0, rec.nextTick(t))
	rec.waitExpired(t)
}

func TestClock_StartAtZeroExpiresImmediately(t *testing.T) {
	tickers := &ManualTickers{}
	rec := newRecorder()
	c := New(tickers.New, rec.onTick, rec.onExpire)

	c.Start(0)
	rec.waitExpired(t)
	assert.Equal(t, 0, tickers.Count())
	assert.Len(t, rec.ticks, 0)
}

func TestClock_RealTicker(t *testing.T) {
	rec := newRecorder()
	c := New(nil, rec.onTick, rec.onExpire)
	c.Start(1)
	select {
	case <-rec.expired:
	case <-time.After(3 * time.Second):
		t.Fatal("real clock never expired")
	}
	assert.Equal(t, 0, <-rec.ticks)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "15:00", FormatRemaining(900))
	assert.Equal(t, "01:05", FormatRemaining(65))
	assert.Equal(t, "00:00", FormatRemaining(-3))
}

func TestManualScheduler(t *testing.T) {
	s := &ManualScheduler{}
	fired := 0
	keep := s.AfterFunc(10*time.Second, func() { fired++ })
	drop := s.AfterFunc(5*time.Second, func() { fired += 100 })

	assert.Equal(t, []time.Duration{10 * time.Second, 5 * time.Second}, s.Pending())
	assert.True(t, drop.Stop())
	assert.False(t, drop.Stop())

	assert.Equal(t, 1, s.FireAll())
	assert.Equal(t, 1, fired)
	assert.False(t, keep.Stop())
	assert.Empty(t, s.Pending())
	assert.Equal(t, 0, s.FireAll())
}
