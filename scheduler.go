// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package hybridwall

import (
	"context"
	"errors"
	"sync"
)

// SchedulerState is the state of a Scheduler's worker.
type SchedulerState int

const (
	// Idle means no pass is running.
	Idle SchedulerState = iota
	// Rendering means a pass is running with current inputs.
	Rendering
	// RescheduleRequested means inputs changed while a pass was running;
	// the running pass is abandoned and exactly one more pass follows.
	RescheduleRequested
)

// String returns the state name.
func (s SchedulerState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Rendering:
		return "Rendering"
	case RescheduleRequested:
		return "RescheduleRequested"
	default:
		return "SchedulerState(?)"
	}
}

// Dispatcher runs fn on the thread that owns the presentation, typically a
// UI event loop. The zero Dispatcher runs fn inline on the worker.
type Dispatcher func(fn func())

// SnapshotFunc captures the inputs of a pass. It is called on the worker at
// the start of every pass and returns false when there is nothing to render
// (for example an empty window).
type SnapshotFunc func() (Job, bool)

// Scheduler owns the single background render worker of a renderer.
//
// Invalidate starts a pass, or, while one runs, marks it stale. A stale pass
// is abandoned at its next checkpoint and followed by exactly one fresh
// pass, however many invalidations arrived. Only a pass that completes with
// current inputs is published.
//
// All methods are safe for concurrent use.
type Scheduler struct {
	comp     *Compositor
	snapshot SnapshotFunc
	publish  func(*Frame)
	dispatch Dispatcher

	mu         sync.Mutex
	state      SchedulerState
	stopping   bool
	closed     bool
	cancelPass context.CancelFunc
	idle       chan struct{}
	passes     int
	busy       []func(bool)
}

// NewScheduler creates an idle scheduler. Passes run on comp with inputs
// from snapshot; completed frames are handed to publish through dispatch.
func NewScheduler(comp *Compositor, snapshot SnapshotFunc, publish func(*Frame), dispatch Dispatcher) *Scheduler {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	idle := make(chan struct{})
	close(idle)
	return &Scheduler{
		comp:     comp,
		snapshot: snapshot,
		publish:  publish,
		dispatch: dispatch,
		idle:     idle,
	}
}

// State returns the current state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Passes returns the number of published passes.
func (s *Scheduler) Passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

// OnBusy registers fn to be told when the worker starts (true) and returns
// to Idle (false). fn runs with the scheduler locked, in transition order,
// and before Wait returns; it must not call back into the Scheduler.
func (s *Scheduler) OnBusy(fn func(busy bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = append(s.busy, fn)
}

// Invalidate requests a pass with the latest inputs. It never blocks on
// rendering.
func (s *Scheduler) Invalidate() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	switch s.state {
	case Rendering, RescheduleRequested:
		s.state = RescheduleRequested
		s.stopping = false
		if s.cancelPass != nil {
			s.cancelPass()
		}
		s.mu.Unlock()
		return
	}
	s.state = Rendering
	s.idle = make(chan struct{})
	for _, fn := range s.busy {
		fn(true)
	}
	s.mu.Unlock()

	go s.run()
}

// Cancel abandons the running pass without scheduling another. The
// published frame is left as it was.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return
	}
	s.stopping = true
	if s.cancelPass != nil {
		s.cancelPass()
	}
}

// Wait blocks until the scheduler is Idle.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	<-idle
}

// Close cancels any running pass, waits for the worker to exit and makes
// later Invalidate calls no-ops.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Cancel()
	s.Wait()
}

// stale reports whether the running pass should be abandoned.
func (s *Scheduler) stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == RescheduleRequested || s.stopping
}

// run is the worker loop. Exactly one run goroutine exists while the state
// is not Idle.
func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		s.state = Rendering
		ctx, cancel := context.WithCancel(context.Background())
		s.cancelPass = cancel
		s.mu.Unlock()

		frame, err := s.pass(ctx)
		cancel()

		if s.settle(frame, err) {
			return
		}
	}
}

// pass renders once from a fresh snapshot. Panics in the snapshot or the
// compositor are turned into errors so the worker always settles.
func (s *Scheduler) pass(ctx context.Context) (frame *Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame, err = nil, panicError{value: r}
		}
	}()
	job, ok := s.snapshot()
	if !ok {
		return nil, nil
	}
	job.Canceled = s.stale
	return s.comp.Render(ctx, job)
}

// settle decides what follows a pass and reports whether the worker is done.
func (s *Scheduler) settle(frame *Frame, err error) bool {
	s.mu.Lock()
	if s.state == RescheduleRequested && !s.stopping {
		s.mu.Unlock()
		s.comp.Recycle(frame)
		return false
	}
	stopping := s.stopping
	s.mu.Unlock()

	switch {
	case err != nil && !errors.Is(err, ErrCanceled):
		logFor(logScheduler).Warn("pass aborted, keeping last frame", "err", err)
	case frame != nil && !stopping:
		s.dispatch(func() { s.publish(frame) })
		s.mu.Lock()
		s.passes++
		n := s.passes
		s.mu.Unlock()
		logFor(logScheduler).Debug("frame published", "pass", n, "elapsed", frame.Elapsed)
	default:
		s.comp.Recycle(frame)
	}

	s.mu.Lock()
	if s.state == RescheduleRequested && !s.stopping {
		// Invalidated while publishing: one more pass.
		s.mu.Unlock()
		return false
	}
	s.state = Idle
	s.stopping = false
	s.cancelPass = nil
	for _, fn := range s.busy {
		fn(false)
	}
	close(s.idle)
	s.mu.Unlock()
	return true
}
