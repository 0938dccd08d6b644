// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package runtime

import (
	"context"
	"testing"
	"time"
)

func TestSchedulerServiceStopsOnContextCancel(t *testing.T) {
	s := New(func(Message) {}, nil)
	svc := &SchedulerService{Name: "test-scheduler", Scheduler: s}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("got err %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestSupervisorServesSchedulerUntilCancel(t *testing.T) {
	sup := NewSupervisor("test-supervisor")

	s := New(func(Message) {}, nil)
	svc := &SchedulerService{Name: "child", Scheduler: s}
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	go sup.Serve(ctx)

	time.Sleep(10 * time.Millisecond)
	cancel()
}
