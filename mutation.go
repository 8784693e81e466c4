package threadly

import (
	"context"
	"sync"
)

// MutationFunc computes the next optimistic value from the current one.
type MutationFunc[S any] func(S) S

// SendFunc performs the network request backing an optimistic mutation.
type SendFunc func(ctx context.Context) error

// SettleFunc observes the final value for a target once its in-flight
// mutation resolves. committed is false when the snapshot was restored.
type SettleFunc[S any] func(target string, value S, committed bool)

// MutationController applies speculative local updates ahead of their network
// request and rolls back on failure. Mutations are serialized per target: a
// trigger that arrives while one is in flight is dropped, not queued, so two
// near-simultaneous triggers can never interleave their rollback snapshots.
type MutationController[S any] struct {
	mu       sync.Mutex
	values   map[string]S
	inflight map[string]struct{}
	onSettle SettleFunc[S]
	logger   Logger
}

// MutationOption customizes controller construction.
type MutationOption[S any] func(*MutationController[S])

// WithMutationLogger overrides the default printf logger.
func WithMutationLogger[S any](logger Logger) MutationOption[S] {
	return func(c *MutationController[S]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSettleFunc registers a callback fired after each mutation resolves.
func WithSettleFunc[S any](fn SettleFunc[S]) MutationOption[S] {
	return func(c *MutationController[S]) {
		c.onSettle = fn
	}
}

func NewMutationController[S any](opts ...MutationOption[S]) *MutationController[S] {
	c := &MutationController[S]{
		values:   map[string]S{},
		inflight: map[string]struct{}{},
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Adopt installs an authoritative value supplied by a fresh read. Ignored
// while a mutation for the target is in flight; the optimistic value is not
// sticky once the target is idle again.
func (c *MutationController[S]) Adopt(target string, value S) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[target]; busy {
		return
	}
	c.values[target] = value
}

// Value returns the currently visible value for a target.
func (c *MutationController[S]) Value(target string) (S, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[target]
	return value, ok
}

// InFlight reports whether a mutation for the target is unresolved.
func (c *MutationController[S]) InFlight(target string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[target]
	return busy
}

// Apply captures the current value as the rollback snapshot, renders
// next(snapshot) immediately, and issues send in the background. On failure
// the snapshot is restored exactly; the caller sees no error beyond the
// revert. Returns false when a mutation for the target is already in flight
// and the trigger was dropped.
func (c *MutationController[S]) Apply(ctx context.Context, target string, next MutationFunc[S], send SendFunc) bool {
	c.mu.Lock()
	if _, busy := c.inflight[target]; busy {
		c.mu.Unlock()
		return false
	}

	snapshot, hadValue := c.values[target]
	updated := next(snapshot)
	c.values[target] = updated
	c.inflight[target] = struct{}{}
	c.mu.Unlock()

	go func() {
		err := send(ctx)

		c.mu.Lock()
		final := updated
		committed := err == nil
		if err != nil {
			// restore absence too: a never-adopted target must not end up
			// with a zero value that reads as authoritative
			if hadValue {
				c.values[target] = snapshot
			} else {
				delete(c.values, target)
			}
			final = snapshot
		}
		delete(c.inflight, target)
		settle := c.onSettle
		c.mu.Unlock()

		if err != nil {
			c.logger.Debug("optimistic mutation reverted for %s: %v", target, err)
		}
		if settle != nil {
			settle(target, final, committed)
		}
	}()

	return true
}
