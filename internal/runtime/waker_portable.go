// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build !linux

package runtime

import (
	"sync"
	"time"
)

// condWaker is spec.md §4.H's "portable fallback: condition variable +
// mutex; notify_one is the wake primitive," used on every platform without
// an epoll-based Waker.
type condWaker struct {
	mu     sync.Mutex
	cond   *sync.Cond
	dirty  bool
	closed bool
}

// NewWaker returns the platform-default Waker (condvar fallback).
func NewWaker() Waker {
	w := &condWaker{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *condWaker) Wake() {
	w.mu.Lock()
	w.dirty = true
	w.mu.Unlock()
	w.cond.Signal()
}

func (w *condWaker) WaitUntil(deadline time.Time) {
	done := make(chan struct{})
	timer := time.AfterFunc(time.Until(deadline), func() {
		w.mu.Lock()
		w.dirty = true
		w.mu.Unlock()
		w.cond.Signal()
	})
	defer timer.Stop()

	go func() {
		w.mu.Lock()
		for !w.dirty && !w.closed {
			w.cond.Wait()
		}
		w.mu.Unlock()
		close(done)
	}()

	<-done

	w.mu.Lock()
	w.dirty = false
	w.mu.Unlock()
}

func (w *condWaker) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cond.Broadcast()
}
