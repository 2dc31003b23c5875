// Package session runs one timed, integrity-monitored test attempt from
// start to finalized result. A Controller owns the countdown, the
// integrity monitor and the recoverable session state, and persists a
// snapshot of that state on every mutation so a reload can pick up where
// the user left off.
package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/integrity"
)

// DefaultExpiryGrace is how long the timeout review stays up before the
// session submits itself.
const DefaultExpiryGrace = 5 * time.Second

// ResultSink is the persistence collaborator for finished sessions.
type ResultSink interface {
	SaveResult(ctx context.Context, userID string, rec exam.ResultRecord) (string, error)
}

// Options configures a session. Bank is required; everything else has a
// usable zero value.
type Options struct {
	UserID string
	Config exam.TestConfiguration
	Bank   QuestionSource

	// Snapshots holds the recoverable state. Nil keeps it in memory only.
	Snapshots KV

	// Results receives the finalized record. Nil skips persistence.
	Results ResultSink

	Resume ResumePolicy

	Now                func() time.Time
	NewTicker          clock.TickerFactory
	AfterFunc          clock.AfterFunc
	ExpiryGrace        time.Duration
	IntegrityThreshold int
	IntegrityGrace     time.Duration
	Logger             *log.Logger

	OnTick      func(remaining int)
	OnWarning   func(inc integrity.Incident)
	OnSummary   func(Summary)
	OnFinalized func(exam.ResultRecord)
}

func (o *Options) applyDefaults() {
	if o.Snapshots == nil {
		o.Snapshots = NewMemoryKV()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewTicker == nil {
		o.NewTicker = clock.NewRealTicker
	}
	if o.AfterFunc == nil {
		o.AfterFunc = clock.RealAfterFunc
	}
	if o.ExpiryGrace <= 0 {
		o.ExpiryGrace = DefaultExpiryGrace
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "", 0)
	}
	if o.OnTick == nil {
		o.OnTick = func(int) {}
	}
	if o.OnWarning == nil {
		o.OnWarning = func(integrity.Incident) {}
	}
	if o.OnSummary == nil {
		o.OnSummary = func(Summary) {}
	}
	if o.OnFinalized == nil {
		o.OnFinalized = func(exam.ResultRecord) {}
	}
}

// Controller is the session state machine:
// Initializing → Active → Summarizing → Finalized.
type Controller struct {
	mu        sync.Mutex
	opts      Options
	id        string
	cfg       exam.TestConfiguration
	questions []exam.Question
	state     State
	phase     Phase
	reason    exam.SubmitReason
	restored  bool
	closed    bool
	result    *exam.ResultRecord

	// finalizing is closed once an in-flight finalization has cleared the
	// snapshot.
	finalizing chan struct{}

	clock       *clock.Clock
	monitor     *integrity.Monitor
	persist     *persister
	expiryTimer clock.Timer
}

// Start loads the question pool, recovers a matching snapshot if one
// exists and starts the countdown.
func Start(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Bank == nil {
		return nil, fmt.Errorf("session: question source is required")
	}
	opts.applyDefaults()
	cfg := opts.Config.Normalized()

	all, err := opts.Bank.Questions(ctx, cfg.Subject)
	if err != nil {
		return nil, fmt.Errorf("load questions for %q: %w", cfg.Subject, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoQuestions, cfg.Subject)
	}

	c := &Controller{
		opts:      opts,
		id:        uuid.NewString(),
		cfg:       cfg,
		questions: FilterPool(all, cfg.Difficulty, cfg.Chapters),
		state:     newState(cfg.DurationSeconds),
		phase:     PhaseInitializing,
	}

	keys := keysFor(opts.UserID)
	c.recover(ctx, keys)

	c.monitor = integrity.NewMonitor(integrity.Config{
		Threshold:     opts.IntegrityThreshold,
		GracePeriod:   opts.IntegrityGrace,
		AfterFunc:     opts.AfterFunc,
		OnForceSubmit: c.autoFinalize,
	})
	c.clock = clock.New(opts.NewTicker, c.handleTick, c.handleExpire)
	c.persist = newPersister(opts.Snapshots, keys, opts.Logger)

	c.mu.Lock()
	c.persist.full(c.cfg, c.state)
	c.phase = PhaseActive
	c.startClockLocked()

	var summary *Summary
	if c.state.Incidents > 0 {
		if inc := c.monitor.Restore(c.state.Incidents); inc.Violation {
			s := c.enterSummaryLocked(exam.ReasonIntegrity)
			summary = &s
		}
	}
	c.mu.Unlock()

	if summary != nil {
		c.opts.OnSummary(*summary)
	}
	return c, nil
}

// recover rehydrates from a snapshot taken under the same configuration.
// A mismatched or unreadable snapshot is discarded.
func (c *Controller) recover(ctx context.Context, keys snapshotKeys) {
	kv := c.opts.Snapshots
	snap, err := loadSnapshot(ctx, kv, keys)
	if err != nil {
		c.opts.Logger.Printf("warning: discarding unreadable session snapshot: %v", err)
	}
	if snap != nil && snap.config.Normalized().Equal(c.cfg) {
		snap.restore(&c.state, c.questions)
		c.state.RemainingSeconds = snap.remainingFor(c.opts.Resume, c.cfg.DurationSeconds, c.opts.Now())
		c.restored = true
		return
	}
	if err != nil || snap != nil {
		if err := kv.Delete(ctx, keys.all()...); err != nil {
			c.opts.Logger.Printf("warning: clear stale session snapshot: %v", err)
		}
	}
}

func (c *Controller) startClockLocked() {
	c.persist.deadline(c.opts.Now().Add(time.Duration(c.state.RemainingSeconds) * time.Second))
	c.clock.Start(c.state.RemainingSeconds)
}

func (c *Controller) handleTick(remaining int) {
	c.mu.Lock()
	if c.phase != PhaseActive || c.closed {
		c.mu.Unlock()
		return
	}
	c.state.RemainingSeconds = remaining
	c.persist.setInt(c.persist.keys.remaining, remaining)
	c.mu.Unlock()

	c.opts.OnTick(remaining)
}

func (c *Controller) handleExpire() {
	c.mu.Lock()
	if c.phase != PhaseActive || c.closed {
		c.mu.Unlock()
		return
	}
	c.state.RemainingSeconds = 0
	c.persist.setInt(c.persist.keys.remaining, 0)
	summary := c.enterSummaryLocked(exam.ReasonTimeout)
	c.mu.Unlock()

	c.opts.OnSummary(summary)
}

// enterSummaryLocked moves to the review screen. The countdown is paused
// for a user submission and stopped for the terminal reasons.
func (c *Controller) enterSummaryLocked(reason exam.SubmitReason) Summary {
	c.phase = PhaseSummarizing
	c.reason = reason
	c.clock.Stop()

	switch reason {
	case exam.ReasonUser:
		c.persist.del(c.persist.keys.deadline)
	case exam.ReasonTimeout:
		c.expiryTimer = c.opts.AfterFunc(c.opts.ExpiryGrace, c.autoFinalize)
	}
	return c.summaryLocked()
}

func (c *Controller) summaryLocked() Summary {
	s := c.state.summarize(len(c.questions))
	s.Reason = c.reason
	s.CanResume = c.phase == PhaseSummarizing && c.reason == exam.ReasonUser
	return s
}

func (c *Controller) checkActiveLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.phase == PhaseFinalized:
		return ErrFinalized
	case c.phase != PhaseActive:
		return ErrNotActive
	}
	return nil
}

// SelectOption records opt as the answer to question i, replacing any
// earlier choice.
func (c *Controller) SelectOption(i int, opt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActiveLocked(); err != nil {
		return err
	}
	if i < 0 || i >= len(c.questions) {
		return ErrIndexOutOfRange
	}
	if !c.questions[i].HasOption(opt) {
		return fmt.Errorf("%w: %q", ErrInvalidOption, opt)
	}
	c.state.Answers[i] = opt
	c.persist.answers(c.state)
	return nil
}

// ClearAnswer returns question i to unattempted.
func (c *Controller) ClearAnswer(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActiveLocked(); err != nil {
		return err
	}
	if i < 0 || i >= len(c.questions) {
		return ErrIndexOutOfRange
	}
	delete(c.state.Answers, i)
	c.persist.answers(c.state)
	return nil
}

// ToggleMark flips the review flag on question i and reports the new value.
func (c *Controller) ToggleMark(i int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActiveLocked(); err != nil {
		return false, err
	}
	if i < 0 || i >= len(c.questions) {
		return false, ErrIndexOutOfRange
	}
	marked := !c.state.Marked[i]
	if marked {
		c.state.Marked[i] = true
	} else {
		delete(c.state.Marked, i)
	}
	c.persist.marked(c.state)
	return marked, nil
}

// Navigate moves the question pointer to i.
func (c *Controller) Navigate(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActiveLocked(); err != nil {
		return err
	}
	if i < 0 || i >= len(c.questions) {
		return ErrIndexOutOfRange
	}
	c.moveLocked(i)
	return nil
}

// Next advances the pointer, staying put on the last question.
func (c *Controller) Next() (int, error) { return c.step(1) }

// Previous moves the pointer back, staying put on the first question.
func (c *Controller) Previous() (int, error) { return c.step(-1) }

func (c *Controller) step(delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActiveLocked(); err != nil {
		return c.state.CurrentIndex, err
	}
	c.moveLocked(min(max(c.state.CurrentIndex+delta, 0), len(c.questions)-1))
	return c.state.CurrentIndex, nil
}

func (c *Controller) moveLocked(i int) {
	if i == c.state.CurrentIndex {
		return
	}
	c.state.CurrentIndex = i
	c.persist.setInt(c.persist.keys.index, i)
}

// Submit moves to the review screen on the user's request. The countdown
// pauses until Resume or Finalize.
func (c *Controller) Submit() (Summary, error) {
	c.mu.Lock()
	if err := c.checkActiveLocked(); err != nil {
		c.mu.Unlock()
		return Summary{}, err
	}
	c.persist.setInt(c.persist.keys.remaining, c.state.RemainingSeconds)
	summary := c.enterSummaryLocked(exam.ReasonUser)
	c.mu.Unlock()

	c.opts.OnSummary(summary)
	return summary, nil
}

// Resume returns from a user-initiated review to the test with state
// intact. Timeout and integrity reviews cannot be resumed.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrClosed
	case c.phase == PhaseFinalized:
		return ErrFinalized
	case c.phase != PhaseSummarizing:
		return ErrNotSummarizing
	case c.reason != exam.ReasonUser:
		return ErrCannotResume
	}
	c.phase = PhaseActive
	c.reason = ""
	c.startClockLocked()
	return nil
}

// VisibilityLost records an integrity incident. Below the threshold the
// incident is surfaced as a warning; reaching it forces the review screen
// with no way back and a delayed automatic submission.
func (c *Controller) VisibilityLost() (integrity.Incident, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return integrity.Incident{}, ErrClosed
	}
	if c.phase == PhaseFinalized {
		c.mu.Unlock()
		return integrity.Incident{}, ErrFinalized
	}

	inc := c.monitor.VisibilityLost()
	c.state.Incidents = inc.Count
	c.persist.setInt(c.persist.keys.incidents, inc.Count)

	var summary *Summary
	if inc.Violation && c.reason != exam.ReasonTimeout {
		s := c.enterSummaryLocked(exam.ReasonIntegrity)
		summary = &s
	}
	c.mu.Unlock()

	if inc.Warning {
		c.opts.OnWarning(inc)
	}
	if summary != nil {
		c.opts.OnSummary(*summary)
	}
	return inc, nil
}

// FullscreenChanged records a fullscreen transition for the result's
// integrity metadata.
func (c *Controller) FullscreenChanged(fullscreen bool) {
	c.monitor.FullscreenChanged(fullscreen)
}

// Finalize compiles and persists the result. It may be called once, from
// the review screen; persistence failures are logged and do not prevent
// completion.
func (c *Controller) Finalize(ctx context.Context) (exam.ResultRecord, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return exam.ResultRecord{}, ErrClosed
	case c.phase == PhaseFinalized:
		c.mu.Unlock()
		return exam.ResultRecord{}, ErrFinalized
	case c.phase != PhaseSummarizing:
		c.mu.Unlock()
		return exam.ResultRecord{}, ErrNotSummarizing
	}
	return c.finalizeLocked(ctx), nil
}

func (c *Controller) autoFinalize() {
	c.mu.Lock()
	if c.closed || c.phase != PhaseSummarizing {
		c.mu.Unlock()
		return
	}
	c.finalizeLocked(context.Background())
}

// finalizeLocked is entered with c.mu held and releases it.
func (c *Controller) finalizeLocked(ctx context.Context) exam.ResultRecord {
	c.phase = PhaseFinalized
	done := make(chan struct{})
	c.finalizing = done
	c.clock.Stop()
	c.monitor.Stop()
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
	}

	rec := Compile(CompileInput{
		UserID:      c.opts.UserID,
		SessionID:   c.id,
		Config:      c.cfg,
		Questions:   c.questions,
		State:       c.state,
		Reason:      c.reason,
		CompletedAt: c.opts.Now(),
		Integrity: exam.Integrity{
			Incidents:       c.monitor.Incidents(),
			CheatDetected:   c.monitor.CheatDetected(),
			FullscreenExits: c.monitor.FullscreenExits(),
		},
	})
	c.result = &rec
	c.mu.Unlock()

	if c.opts.Results != nil {
		if _, err := c.opts.Results.SaveResult(ctx, c.opts.UserID, rec); err != nil {
			c.opts.Logger.Printf("warning: failed to save result %s: %v", rec.ID, err)
		}
	}

	c.mu.Lock()
	c.persist.clear()
	c.persist.close()
	c.mu.Unlock()
	close(done)

	c.opts.OnFinalized(rec)
	return rec
}

// Close tears the session down without submitting. The snapshot is left
// in place so the attempt can be recovered later. If a finalization is in
// flight, Close waits for it to clear the snapshot.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.clock.Stop()
	c.monitor.Stop()
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
	}
	if done := c.finalizing; done != nil {
		c.mu.Unlock()
		<-done
		return
	}
	c.persist.close()
	c.mu.Unlock()
}

// Flush blocks until every snapshot write issued so far has been applied.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	done := c.persist.flush()
	c.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Config() exam.TestConfiguration { return c.cfg }

// Questions returns the session's question list.
func (c *Controller) Questions() []exam.Question { return slices.Clone(c.questions) }

// Restored reports whether the session resumed from a snapshot.
func (c *Controller) Restored() bool { return c.restored }

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Summary returns the current tallies.
func (c *Controller) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaryLocked()
}

// Result returns the finalized record, if any.
func (c *Controller) Result() (exam.ResultRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return exam.ResultRecord{}, false
	}
	return *c.result, true
}
