// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package runtime

import (
	"sync"
	"testing"
	"time"
)

func TestSchedulerDeliversPostedMessages(t *testing.T) {
	var mu sync.Mutex
	var got []string

	s := New(func(m Message) {
		mu.Lock()
		got = append(got, m.Address)
		mu.Unlock()
	}, nil)

	go s.Run()
	defer s.Shutdown()

	s.Post(Message{Address: "a"})
	s.Post(Message{Address: "b"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for messages, got %v", got)
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v, want [a b] (FIFO order)", got)
	}
}

func TestSchedulerFiresTimers(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := New(func(Message) {}, nil)

	go s.Run()
	defer s.Shutdown()

	s.AfterFunc(10*time.Millisecond, func() {
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimerStopPreventsFiring(t *testing.T) {
	w := NewTimerWheel()
	fired := false
	timer := w.Schedule(time.Now().Add(time.Hour), func() { fired = true })
	timer.Stop()

	w.Advance(time.Now().Add(2 * time.Hour))
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestTimerWheelFiresInDeadlineOrder(t *testing.T) {
	w := NewTimerWheel()
	var order []int

	base := time.Now()
	w.Schedule(base.Add(30*time.Millisecond), func() { order = append(order, 3) })
	w.Schedule(base.Add(10*time.Millisecond), func() { order = append(order, 1) })
	w.Schedule(base.Add(20*time.Millisecond), func() { order = append(order, 2) })

	w.Advance(base.Add(time.Hour))

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", order)
	}
}

func TestWakerCoalescesRepeatedWakes(t *testing.T) {
	w := NewWaker()
	defer w.Close()

	done := make(chan struct{})
	go func() {
		w.WaitUntil(time.Now().Add(2 * time.Second))
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	w.Wake()
	w.Wake()
	w.Wake()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitUntil did not return after Wake")
	}
}

func TestWakerWaitUntilRespectsDeadline(t *testing.T) {
	w := NewWaker()
	defer w.Close()

	start := time.Now()
	w.WaitUntil(start.Add(20 * time.Millisecond))
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("returned too early: %v", elapsed)
	}
}
