// Package scheduler runs the duty-cycle main loop.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"sensornode-go/services/session"
	"sensornode-go/types"
)

// Stack is the protocol stack's cooperative work queue.
type Stack interface {
	Process()
	Pending() bool
}

// Drivers is hardware driver housekeeping.
type Drivers interface {
	Process()
}

// Idler puts the CPU into its low-power wait until the next interrupt (or
// a kick on the host). It may return early; the loop re-checks.
type Idler interface {
	Idle(ctx context.Context)
}

type Stats struct {
	Iterations uint64
	IdleSpins  uint64
	Wakes      uint64
	Reconnects uint64
}

type Options struct {
	Context    *Context
	Stack      Stack
	Drivers    Drivers
	Idler      Idler
	Controller *session.Controller
	Queue      *session.Queue

	// Pace bounds how long Run waits for a kick between iterations that
	// found nothing to do while awake. Zero spins, as the firmware does.
	Pace time.Duration
}

type Scheduler struct {
	sctx    *Context
	stack   Stack
	drivers Drivers
	idler   Idler
	ctrl    *session.Controller
	queue   *session.Queue
	pace    time.Duration

	iterations atomic.Uint64
	idleSpins  atomic.Uint64
	wakes      atomic.Uint64
	reconnects atomic.Uint64
}

func New(o Options) *Scheduler {
	return &Scheduler{
		sctx:    o.Context,
		stack:   o.Stack,
		drivers: o.Drivers,
		idler:   o.Idler,
		ctrl:    o.Controller,
		queue:   o.Queue,
		pace:    o.Pace,
	}
}

func (s *Scheduler) pending() bool {
	if s.sctx.WorkPending() || s.queue.Pending() {
		return true
	}
	return s.stack != nil && s.stack.Pending()
}

// Step runs one loop iteration. It returns false if nothing happened.
func (s *Scheduler) Step(ctx context.Context) bool {
	s.iterations.Add(1)
	s.sctx.ConsumeWork()

	// 1. protocol work and the events it produced
	if s.stack != nil {
		s.stack.Process()
	}
	busy := s.ctrl.Drain(ctx, s.queue) > 0

	// 2. drivers
	if s.drivers != nil {
		s.drivers.Process()
	}

	// 3. the only low-power entry point
	if s.sctx.Sleeping() && !s.pending() {
		for s.sctx.Sleeping() && !s.pending() && ctx.Err() == nil {
			s.idler.Idle(ctx)
			s.idleSpins.Add(1)
		}
		busy = true
	}

	// 4. and 5. are checked on every iteration, idle or not.
	if !s.sctx.Sleeping() && s.ctrl.State() == types.SessionAsleep {
		s.sctx.AckWake()
		s.ctrl.Handle(ctx, session.Woken())
		s.wakes.Add(1)
		busy = true
	}
	if s.ctrl.State() == types.SessionLost {
		s.ctrl.Handle(ctx, session.Lost())
		s.reconnects.Add(1)
		busy = true
	}
	return busy
}

// Run loops Step until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Step(ctx) || s.pace <= 0 || s.pending() {
			continue
		}
		t := time.NewTimer(s.pace)
		select {
		case <-ctx.Done():
		case <-s.sctx.Kick():
		case <-t.C:
		}
		t.Stop()
	}
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		Iterations: s.iterations.Load(),
		IdleSpins:  s.idleSpins.Load(),
		Wakes:      s.wakes.Load(),
		Reconnects: s.reconnects.Load(),
	}
}
