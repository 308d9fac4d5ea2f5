package core

import (
	"errors"
	"fmt"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

var ErrUIOwnerClosed = errors.New("core: ui owner no longer accepts work")

// SubmittingUIOwner is a UIOwner that can refuse work. Login uses it to fail
// instead of waiting on work that will never run.
type SubmittingUIOwner interface {
	UIOwner
	TryRunOnUIThread(fn func()) bool
}

// InlineExecutor runs work on the calling goroutine.
type InlineExecutor struct{}

func (InlineExecutor) RunOnUIThread(fn func()) {
	if fn != nil {
		fn()
	}
}

type ExecutorFunc func(fn func())

func (f ExecutorFunc) RunOnUIThread(fn func()) {
	if f == nil || fn == nil {
		return
	}
	f(fn)
}

// SerialExecutor owns a single goroutine that drains queued work in order.
// It stands in for a UI thread in headless programs. Submitting never
// blocks, so queued work may submit more work.
type SerialExecutor struct {
	logger Logger

	mu      sync.Mutex
	ready   *sync.Cond
	queue   []func()
	closed  bool
	stopped chan struct{}
}

type SerialExecutorOption func(*SerialExecutor)

// WithExecutorLogger receives panics recovered from queued work.
func WithExecutorLogger(logger Logger) SerialExecutorOption {
	return func(e *SerialExecutor) {
		e.logger = logger
	}
}

// NewSerialExecutor starts the executor. capacity only sizes the initial
// queue.
func NewSerialExecutor(capacity int, opts ...SerialExecutorOption) *SerialExecutor {
	if capacity < 0 {
		capacity = 0
	}
	executor := &SerialExecutor{
		queue:   make([]func(), 0, capacity),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(executor)
		}
	}
	executor.logger = glog.Ensure(executor.logger)
	executor.ready = sync.NewCond(&executor.mu)
	go executor.loop()
	return executor
}

// RunOnUIThread queues fn. Work submitted after Close is dropped; use
// TryRunOnUIThread to observe that.
func (e *SerialExecutor) RunOnUIThread(fn func()) {
	_ = e.TryRunOnUIThread(fn)
}

func (e *SerialExecutor) TryRunOnUIThread(fn func()) bool {
	if e == nil {
		return false
	}
	if fn == nil {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.queue = append(e.queue, fn)
	e.ready.Signal()
	return true
}

// Close stops accepting work and waits until queued work has run. It must
// not be called from queued work.
func (e *SerialExecutor) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.closed = true
	e.ready.Broadcast()
	e.mu.Unlock()
	<-e.stopped
}

func (e *SerialExecutor) loop() {
	defer close(e.stopped)
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.ready.Wait()
		}
		if len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		fn := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()

		e.run(fn)
	}
}

func (e *SerialExecutor) run(fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.Error("ui work panicked", "error", fmt.Sprintf("%v", recovered))
		}
	}()
	fn()
}

var (
	_ UIOwner           = InlineExecutor{}
	_ UIOwner           = ExecutorFunc(nil)
	_ SubmittingUIOwner = (*SerialExecutor)(nil)
)
