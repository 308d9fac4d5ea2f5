package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ResultHandle is the write side of a pending operation. The first call to
// Success or Failure wins; later calls return false.
type ResultHandle[T any] interface {
	ID() string
	Success(value T) bool
	Failure(err error) bool
	Done() <-chan struct{}
}

// Pending is a single-assignment result cell with a completion signal.
type Pending[T any] struct {
	id    string
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func NewPending[T any]() *Pending[T] {
	return &Pending[T]{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

func (p *Pending[T]) ID() string {
	if p == nil {
		return ""
	}
	return p.id
}

func (p *Pending[T]) Success(value T) bool {
	return p.complete(value, nil)
}

func (p *Pending[T]) Failure(err error) bool {
	if err == nil {
		err = NewAuthenticationFailure("operation failed without an error", nil)
	}
	var zero T
	return p.complete(zero, err)
}

func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Result returns the recorded outcome. It must only be read after Done is
// closed.
func (p *Pending[T]) Result() (T, error) {
	if p.err != nil {
		var zero T
		return zero, p.err
	}
	return p.value, nil
}

func (p *Pending[T]) complete(value T, err error) bool {
	if p == nil {
		return false
	}
	completed := false
	p.once.Do(func() {
		p.value = value
		p.err = err
		completed = true
		close(p.done)
	})
	return completed
}

// RunBlocking starts op with a fresh pending cell and blocks until op records
// a result or ctx ends. A panic inside op is recorded as a failure.
// With context.Background there is no timeout.
func RunBlocking[T any](ctx context.Context, op func(ResultHandle[T])) (T, error) {
	var zero T
	if op == nil {
		return zero, NewInvalidArgument("op")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pending := NewPending[T]()

	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				pending.Failure(NewAuthenticationFailure(
					fmt.Sprintf("operation panicked: %v", recovered), nil,
				))
			}
		}()
		op(pending)
	}()

	select {
	case <-pending.Done():
		return pending.Result()
	case <-ctx.Done():
		// Close the cell so a late signal is discarded.
		cause := ctx.Err()
		if pending.Failure(NewAuthenticationFailure("operation cancelled before completion", cause)) {
			return zero, pending.err
		}
		return pending.Result()
	}
}
