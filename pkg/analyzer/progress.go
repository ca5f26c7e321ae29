package analyzer

import (
	"context"
	"sync/atomic"
)

// Step is reported once per completed file.
type Step struct {
	Done  int
	Total int
	Path  string
}

// ProgressFunc receives a Step each time a file finishes. It may be called
// from several goroutines at once.
type ProgressFunc func(Step)

// Tracker counts completed files against a running total.
// Safe for concurrent use.
type Tracker struct {
	total    atomic.Int64
	done     atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker. callback may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add grows the expected total by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int64(n))
}

// Tick marks path as finished, whether it succeeded or not.
func (t *Tracker) Tick(path string) {
	done := t.done.Add(1)
	if t.callback != nil {
		t.callback(Step{Done: int(done), Total: int(t.total.Load()), Path: path})
	}
}

type trackerKey struct{}

// WithTracker returns a context that carries t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker carried by ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
