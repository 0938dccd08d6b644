// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package runtime implements the cooperative, single-threaded actor
// scheduler of spec.md §4.H: a thread-safe inbound queue drained into a
// local FIFO, a platform Waker for cross-thread wakeups, and a timer wheel,
// composed so that the scan engine's filesystem I/O integrates with the
// rest of the message-driven architecture without its own goroutine-per-
// actor model.
//
// Each Scheduler is pinned to one goroutine for its Run loop, mirroring
// spec.md §5's "one OS thread per scheduler" model as closely as Go's
// runtime allows; Go does not let us pin a goroutine to a thread without
// runtime.LockOSThread, which Run calls for exactly this reason.
package runtime

import (
	stdruntime "runtime"
	"sync"
	"time"

	"github.com/foldersync/foldersync/internal/logger"
)

var l = logger.NewFacility("runtime", "the cooperative actor scheduler")

// Message is a unit of work delivered to a Scheduler. Address identifies
// the logical actor/mailbox the message targets, used only to establish
// per-sender FIFO ordering (spec.md §5 "Messages on a single address arrive
// in the order sent"); the scheduler itself does not route by address, it
// is up to the Handler to dispatch.
type Message struct {
	Address string
	Payload any
}

// Handler processes one message drained from the scheduler's local queue.
type Handler func(Message)

// Scheduler is the cooperative, single-threaded loop of spec.md §4.H.
type Scheduler struct {
	handler Handler
	waker   Waker
	timers  *TimerWheel

	mu      sync.Mutex
	inbound []Message

	local []Message

	// pollTimeout bounds the busy-spin wait before falling back to
	// wait_next_event's blocking wait, per spec.md §4.H pseudocode.
	pollTimeout time.Duration

	shutdown   chan struct{}
	shutdownWG sync.WaitGroup
	once       sync.Once
}

// New constructs a Scheduler. waker may be nil, in which case NewWaker()
// (the platform default) is used.
func New(handler Handler, waker Waker) *Scheduler {
	if waker == nil {
		waker = NewWaker()
	}
	return &Scheduler{
		handler:     handler,
		waker:       waker,
		timers:      NewTimerWheel(),
		pollTimeout: 0,
		shutdown:    make(chan struct{}),
	}
}

// WithPollTimeout sets the busy-spin budget before a scheduler tick falls
// back to blocking on the waker (spec.md §4.H: "if local_queue empty and
// poll_timeout_us > 0: spin_wait up to poll_timeout_us").
func (s *Scheduler) WithPollTimeout(d time.Duration) *Scheduler {
	s.pollTimeout = d
	return s
}

// Post enqueues msg for delivery and signals the scheduler's wake
// primitive. Safe to call from any goroutine, including the scheduler's
// own (spec.md §5: "a sender enqueues into the receiver's inbound queue and
// signals the receiver's wake primitive").
func (s *Scheduler) Post(msg Message) {
	s.mu.Lock()
	s.inbound = append(s.inbound, msg)
	s.mu.Unlock()
	s.waker.Wake()
}

// AfterFunc schedules fn to run on the scheduler's own goroutine once d has
// elapsed: Run calls fn when it advances the timer wheel past the deadline
// (spec.md §4.H "Timers"). It wakes the scheduler so the new deadline is
// taken into account, and returns a Timer that can be stopped before it
// fires.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) *Timer {
	t := s.timers.Schedule(time.Now().Add(d), fn)
	s.waker.Wake()
	return t
}

// Run drives the scheduler loop described by spec.md §4.H's pseudocode
// until Shutdown is called. It blocks the calling goroutine and should be
// invoked from the one goroutine this Scheduler is pinned to.
func (s *Scheduler) Run() {
	stdruntime.LockOSThread()
	defer stdruntime.UnlockOSThread()

	for {
		select {
		case <-s.shutdown:
			s.waker.Close()
			return
		default:
		}

		s.drainMessages()
		s.drainInbound()

		if len(s.local) == 0 && s.pollTimeout > 0 {
			s.spinWait()
		}

		if len(s.local) == 0 {
			deadline := s.nextDeadline()
			s.waker.WaitUntil(deadline)
		}

		s.timers.Advance(time.Now())
	}
}

// Shutdown stops Run after its current iteration. It is safe to call more
// than once and from any goroutine.
func (s *Scheduler) Shutdown() {
	s.once.Do(func() {
		close(s.shutdown)
		s.waker.Wake()
	})
}

// process_ready_messages() of spec.md §4.H's pseudocode: deliver whatever
// is already in the local queue, in order, before looking at the inbound
// queue again.
func (s *Scheduler) drainMessages() {
	for len(s.local) > 0 {
		msg := s.local[0]
		s.local = s.local[1:]
		s.handler(msg)
	}
}

func (s *Scheduler) drainInbound() {
	s.mu.Lock()
	if len(s.inbound) > 0 {
		s.local = append(s.local, s.inbound...)
		s.inbound = s.inbound[:0]
	}
	s.mu.Unlock()
	s.drainMessages()
}

// spinWait busy-polls the inbound queue and the timer wheel for up to
// pollTimeout before Run falls back to the blocking wait_next_event.
func (s *Scheduler) spinWait() {
	deadline := time.Now().Add(s.pollTimeout)
	for time.Now().Before(deadline) {
		s.drainInbound()
		if len(s.local) > 0 {
			return
		}
		if s.timers.Peek() != nil && !s.timers.Peek().After(time.Now()) {
			return
		}
		stdruntime.Gosched()
	}
}

// nextDeadline computes wait_next_event's sleep budget: min(1 minute,
// nearest timer deadline), per spec.md §4.H.
func (s *Scheduler) nextDeadline() time.Time {
	const maxWait = time.Minute
	ceiling := time.Now().Add(maxWait)
	if d := s.timers.Peek(); d != nil && d.Before(ceiling) {
		return *d
	}
	return ceiling
}
