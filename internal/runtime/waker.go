// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package runtime

import "time"

// Waker is the platform-abstracted external-event wake primitive of
// spec.md §4.H / Design Notes §9: "the cross-thread wake primitive
// (pipe/event/condvar) maps naturally to a platform-abstracted Waker with a
// single wake() method; the scheduler owns the read side." WaitUntil blocks
// the scheduler's own goroutine until either Wake is called or deadline
// passes, whichever is first.
type Waker interface {
	// Wake signals the scheduler that new work is available. Multiple
	// Wake calls between two WaitUntil calls coalesce into a single
	// wakeup (spec.md §9: "A self-pipe write must be edge-triggered: set
	// an atomic dirty flag before writing, clear after draining, so
	// repeated wakes don't overflow the pipe").
	Wake()

	// WaitUntil blocks until Wake is called or deadline is reached.
	WaitUntil(deadline time.Time)

	// Close releases the waker's underlying resources (file descriptors,
	// handles). Called once, from the scheduler's own goroutine, as Run
	// exits.
	Close()
}
