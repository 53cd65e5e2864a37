package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout matches store calls that ran past their deadline.
var ErrTimeout = errors.New("conversation store timeout")

// Error describes a failed store call.
type Error struct {
	Op  string // "get" or "put"
	ID  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("conversation store %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) match deadline overruns.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout && errors.Is(e.Err, context.DeadlineExceeded)
}

// Observer receives the duration and outcome of each call. metrics.Metrics'
// ObserveDependency has this shape.
type Observer func(dependency string, took time.Duration, err error)

type guardedStore struct {
	next    Store
	timeout time.Duration
	observe Observer
}

// WithTimeout bounds every call on store with timeout and wraps failures in
// *Error. A non-positive timeout leaves calls unbounded. observe may be nil.
func WithTimeout(store Store, timeout time.Duration, observe Observer) Store {
	return &guardedStore{next: store, timeout: timeout, observe: observe}
}

func (g *guardedStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *guardedStore) report(start time.Time, err error) {
	if g.observe != nil {
		g.observe("conversation_store", time.Since(start), err)
	}
}

func (g *guardedStore) Get(ctx context.Context, id string) (History, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	start := time.Now()
	history, err := g.next.Get(ctx, id)
	g.report(start, err)
	if err != nil {
		return nil, &Error{Op: "get", ID: id, Err: err}
	}
	if history == nil {
		history = History{}
	}
	return history, nil
}

func (g *guardedStore) Put(ctx context.Context, id string, history History) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	start := time.Now()
	err := g.next.Put(ctx, id, history)
	g.report(start, err)
	if err != nil {
		return &Error{Op: "put", ID: id, Err: err}
	}
	return nil
}
