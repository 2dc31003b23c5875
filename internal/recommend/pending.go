package recommend

import (
	"context"
	"sync"

	"github.com/abhisek/examprep/internal/stats"
)

// Pending is a recommendation pass running in the background. Its
// consumer may go away before it completes; after Discard the result is
// dropped rather than delivered. The underlying call is not aborted.
type Pending struct {
	done chan struct{}

	mu        sync.Mutex
	result    Result
	discarded bool
}

// Start runs Generate in a new goroutine.
func (e *Engine) Start(ctx context.Context, a stats.Analysis) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		res := e.Generate(context.WithoutCancel(ctx), a)
		p.mu.Lock()
		if !p.discarded {
			p.result = res
		}
		p.mu.Unlock()
	}()
	return p
}

// Discard marks the result stale.
func (p *Pending) Discard() {
	p.mu.Lock()
	p.discarded = true
	p.result = Result{}
	p.mu.Unlock()
}

// Done is closed when the background call returns.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the result is ready or ctx ends. ok is false when the
// result was discarded or ctx ended first.
func (p *Pending) Wait(ctx context.Context) (res Result, ok bool) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return Result{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.discarded {
		return Result{}, false
	}
	return p.result, true
}
