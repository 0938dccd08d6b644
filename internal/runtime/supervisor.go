// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package runtime

import (
	"context"

	"github.com/thejerf/suture/v4"
)

// SchedulerService adapts a Scheduler to suture.Service so it can be
// supervised alongside the rest of the daemon's long-running components
// (spec.md §5: schedulers are restarted by their supervisor on panic, not
// torn down process-wide).
type SchedulerService struct {
	Name      string
	Scheduler *Scheduler
}

// Serve implements suture.Service. It runs the scheduler's loop on the
// goroutine suture calls Serve on, so a panic in the loop reaches the
// supervisor; when ctx is cancelled it asks the scheduler to shut down and
// returns once Run has returned.
func (s *SchedulerService) Serve(ctx context.Context) error {
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			s.Scheduler.Shutdown()
		case <-stopWatch:
		}
	}()
	s.Scheduler.Run()
	return ctx.Err()
}

// String satisfies suture's optional Stringer-based naming so log lines and
// panic reports identify which scheduler failed.
func (s *SchedulerService) String() string {
	return s.Name
}

// NewSupervisor builds a suture.Supervisor configured the way spec.md §5
// describes the daemon's top-level fault domain: a failing scheduler is
// restarted in place, with its siblings left running.
func NewSupervisor(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: func(ev suture.Event) {
			l.Warnf("runtime: supervisor %q event: %s", name, ev.String())
		},
	})
}
