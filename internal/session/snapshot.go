package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/abhisek/examprep/internal/exam"
)

// ResumePolicy decides how much time a recovered session gets back.
type ResumePolicy int

const (
	// ResumeDeadline recomputes remaining time from the wall-clock deadline
	// recorded when the countdown last started. Falls back to the last
	// persisted tick when no deadline is stored (e.g. the session was
	// reloaded while paused on the review screen).
	ResumeDeadline ResumePolicy = iota

	// ResumeLastTick continues from the last persisted remaining value.
	ResumeLastTick

	// ResumeRestart gives the full configured duration again.
	ResumeRestart
)

// ParseResumePolicy accepts "deadline", "last-tick" or "restart".
func ParseResumePolicy(s string) (ResumePolicy, error) {
	switch s {
	case "", "deadline":
		return ResumeDeadline, nil
	case "last-tick":
		return ResumeLastTick, nil
	case "restart":
		return ResumeRestart, nil
	default:
		return 0, fmt.Errorf("unknown resume policy %q", s)
	}
}

const keyPrefix = "examprep"

// snapshotKeys are the session-scoped durable keys for one user.
type snapshotKeys struct {
	answers   string
	marked    string
	config    string
	index     string
	remaining string
	deadline  string
	incidents string
}

func keysFor(userID string) snapshotKeys {
	if userID == "" {
		userID = "anonymous"
	}
	p := keyPrefix + ":" + userID + ":"
	return snapshotKeys{
		answers:   p + "answers",
		marked:    p + "marked",
		config:    p + "config",
		index:     p + "index",
		remaining: p + "remaining",
		deadline:  p + "deadline",
		incidents: p + "incidents",
	}
}

func (k snapshotKeys) all() []string {
	return []string{k.answers, k.marked, k.config, k.index, k.remaining, k.deadline, k.incidents}
}

// ClearSnapshot deletes every durable key of a user's in-progress
// session.
func ClearSnapshot(ctx context.Context, kv KV, userID string) error {
	if err := kv.Delete(ctx, keysFor(userID).all()...); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// snapshot is a decoded set of durable keys.
type snapshot struct {
	config    exam.TestConfiguration
	answers   map[int]string
	marked    []int
	index     int
	remaining *int
	deadline  *time.Time
	incidents int
}

// loadSnapshot reads a user's snapshot. It returns (nil, nil) when no
// configuration is stored, and an error when any stored key is unreadable.
func loadSnapshot(ctx context.Context, kv KV, keys snapshotKeys) (*snapshot, error) {
	raw, ok, err := kv.Get(ctx, keys.config)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keys.config, err)
	}
	if !ok {
		return nil, nil
	}

	snap := &snapshot{answers: map[int]string{}}
	if err := json.Unmarshal([]byte(raw), &snap.config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := getJSON(ctx, kv, keys.answers, &snap.answers); err != nil {
		return nil, err
	}
	if err := getJSON(ctx, kv, keys.marked, &snap.marked); err != nil {
		return nil, err
	}

	if n, ok, err := getInt(ctx, kv, keys.index); err != nil {
		return nil, err
	} else if ok {
		snap.index = n
	}
	if n, ok, err := getInt(ctx, kv, keys.remaining); err != nil {
		return nil, err
	} else if ok {
		snap.remaining = &n
	}
	if n, ok, err := getInt(ctx, kv, keys.deadline); err != nil {
		return nil, err
	} else if ok {
		d := time.UnixMilli(int64(n))
		snap.deadline = &d
	}
	if n, ok, err := getInt(ctx, kv, keys.incidents); err != nil {
		return nil, err
	} else if ok {
		snap.incidents = n
	}
	return snap, nil
}

func getJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func getInt(ctx context.Context, kv KV, key string) (int, bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return n, true, nil
}

// restore applies a snapshot onto a fresh state, dropping entries that do
// not fit the question list.
func (snap *snapshot) restore(st *State, questions []exam.Question) {
	for i, opt := range snap.answers {
		if i < 0 || i >= len(questions) || !questions[i].HasOption(opt) {
			continue
		}
		st.Answers[i] = opt
	}
	for _, i := range snap.marked {
		if i >= 0 && i < len(questions) {
			st.Marked[i] = true
		}
	}
	if snap.index >= 0 && snap.index < len(questions) {
		st.CurrentIndex = snap.index
	}
	if snap.incidents > 0 {
		st.Incidents = snap.incidents
	}
}

// remainingFor picks the recovered countdown value under policy.
func (snap *snapshot) remainingFor(policy ResumePolicy, duration int, now time.Time) int {
	var rem int
	switch {
	case policy == ResumeRestart:
		rem = duration
	case policy == ResumeDeadline && snap.deadline != nil:
		rem = int(math.Ceil(snap.deadline.Sub(now).Seconds()))
	case snap.remaining != nil:
		rem = *snap.remaining
	default:
		rem = duration
	}
	return min(max(rem, 0), duration)
}

type persistOp struct {
	key   string
	value string
	del   []string
	flush chan struct{}
}

// persister applies snapshot writes one at a time, in the order they were
// enqueued. Enqueueing blocks when the queue is full rather than dropping.
type persister struct {
	kv      KV
	keys    snapshotKeys
	logger  *log.Logger
	timeout time.Duration
	ops     chan persistOp
	done    chan struct{}
	closed  bool
}

func newPersister(kv KV, keys snapshotKeys, logger *log.Logger) *persister {
	p := &persister{
		kv:      kv,
		keys:    keys,
		logger:  logger,
		timeout: 5 * time.Second,
		ops:     make(chan persistOp, 64),
		done:    make(chan struct{}),
	}
	go p.processLoop()
	return p
}

func (p *persister) processLoop() {
	defer close(p.done)
	for op := range p.ops {
		if op.flush != nil {
			close(op.flush)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		var err error
		if op.del != nil {
			err = p.kv.Delete(ctx, op.del...)
		} else {
			err = p.kv.Set(ctx, op.key, op.value)
		}
		cancel()
		if err != nil {
			p.logger.Printf("warning: session snapshot write failed: %v", err)
		}
	}
}

func (p *persister) enqueue(op persistOp) {
	if p == nil || p.closed {
		return
	}
	p.ops <- op
}

func (p *persister) set(key, value string) { p.enqueue(persistOp{key: key, value: value}) }

func (p *persister) setJSON(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		p.logger.Printf("warning: encode %s: %v", key, err)
		return
	}
	p.set(key, string(b))
}

func (p *persister) setInt(key string, n int) { p.set(key, strconv.Itoa(n)) }

func (p *persister) del(keys ...string) { p.enqueue(persistOp{del: keys}) }

func (p *persister) answers(st State) { p.setJSON(p.keys.answers, st.Answers) }
func (p *persister) marked(st State) { p.setJSON(p.keys.marked, st.MarkedIndices()) }

func (p *persister) deadline(t time.Time) { p.set(p.keys.deadline, strconv.FormatInt(t.UnixMilli(), 10)) }

// full writes every key for st.
func (p *persister) full(cfg exam.TestConfiguration, st State) {
	p.setJSON(p.keys.config, cfg)
	p.answers(st)
	p.marked(st)
	p.setInt(p.keys.index, st.CurrentIndex)
	p.setInt(p.keys.remaining, st.RemainingSeconds)
	p.setInt(p.keys.incidents, st.Incidents)
}

func (p *persister) clear() { p.del(p.keys.all()...) }

// flush returns a channel closed once every earlier write has been applied.
func (p *persister) flush() <-chan struct{} {
	ch := make(chan struct{})
	if p == nil || p.closed {
		close(ch)
		return ch
	}
	p.ops <- persistOp{flush: ch}
	return ch
}

// close drains pending writes and stops the loop.
func (p *persister) close() {
	if p == nil || p.closed {
		return
	}
	p.closed = true
	close(p.ops)
	<-p.done
}
