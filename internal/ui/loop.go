// Package ui provides the headless user-interface primitives: a single
// threaded event loop, pages parsed from view templates, the container pages
// are mounted into, and user notifications.
package ui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Loop runs asynchronous work on background goroutines and hands every
// continuation back to the goroutine that calls Drain. UI state is only
// touched from continuations, so it needs no locking.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	signal  chan struct{}
	pending atomic.Int64
	logger  *zap.Logger
}

// NewLoop creates an empty loop.
func NewLoop(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{signal: make(chan struct{}, 1), logger: logger}
}

// Go starts op on its own goroutine. When op returns, done is queued with its
// error. done may be nil.
func (l *Loop) Go(ctx context.Context, op func(context.Context) error, done func(error)) {
	l.pending.Add(1)
	go func() {
		err := l.safely(ctx, op)
		l.push(func() {
			if done != nil {
				done(err)
			}
		})
	}()
}

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func()) {
	l.pending.Add(1)
	l.push(fn)
}

// Pending reports the number of operations and continuations not yet run.
func (l *Loop) Pending() int {
	return int(l.pending.Load())
}

// Drain runs continuations until nothing is pending or ctx is done.
// Continuations may start new work; Drain keeps going until that settles too.
func (l *Loop) Drain(ctx context.Context) error {
	for l.pending.Load() > 0 {
		fn, ok := l.pop()
		if !ok {
			select {
			case <-l.signal:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		l.run(fn)
	}
	return nil
}

func (l *Loop) push(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) run(fn func()) {
	defer l.pending.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Recovered panic in UI continuation", zap.Any("panic", r))
		}
	}()
	fn()
}

func (l *Loop) safely(ctx context.Context, op func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in async operation: %v", r)
		}
	}()
	return op(ctx)
}
