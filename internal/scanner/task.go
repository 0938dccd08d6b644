// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package scanner

import "os"

// TaskKind tags the payload a Task carries, dispatched by Engine.Step's
// switch (spec.md §4.G: "a std::visit-style dispatch" over "a stack of
// typed tasks").
type TaskKind int

const (
	TaskUnscannedDir TaskKind = iota
	TaskScanDir
	TaskUnexamined
	TaskHashExistingFile
	TaskHashNewFile
	TaskHashIncompleteFile
	TaskChildReady
	TaskRemovedDir
	TaskConfirmedDeleted
	TaskIncomplete
	TaskRehashedIncomplete
	TaskSuspendScan
	TaskUnsuspendScan
	TaskFatalError
	TaskCompleteScan
)

func (k TaskKind) String() string {
	switch k {
	case TaskUnscannedDir:
		return "unscanned_dir"
	case TaskScanDir:
		return "scan_dir"
	case TaskUnexamined:
		return "unexamined"
	case TaskHashExistingFile:
		return "hash_existing_file"
	case TaskHashNewFile:
		return "hash_new_file"
	case TaskHashIncompleteFile:
		return "hash_incomplete_file"
	case TaskChildReady:
		return "child_ready"
	case TaskRemovedDir:
		return "removed_dir"
	case TaskConfirmedDeleted:
		return "confirmed_deleted"
	case TaskIncomplete:
		return "incomplete"
	case TaskRehashedIncomplete:
		return "rehashed_incomplete"
	case TaskSuspendScan:
		return "suspend_scan"
	case TaskUnsuspendScan:
		return "unsuspend_scan"
	case TaskFatalError:
		return "fatal_error"
	case TaskCompleteScan:
		return "complete_scan"
	default:
		return "unknown"
	}
}

// Task is one stack entry. Exactly one of the payload fields below is
// meaningful for a given Kind; this mirrors the tagged-union approach
// internal/model/diff already uses for the same reason spec.md Design
// Notes §9 gives: flat dispatch over a class hierarchy.
type Task struct {
	Kind TaskKind

	Path string // relative to Config.Root

	// unscanned_dir / removed_dir
	Presence bool

	// unexamined
	ChildName string
	ChildInfo os.FileInfo

	// scan_dir result
	Entries []os.DirEntry

	// hash_* / child_ready
	Info   os.FileInfo
	Blocks []hashedBlock

	// incomplete / hash_incomplete_file
	IncompleteSize int64

	// suspend_scan / fatal_error
	Err error
}

func newTask(kind TaskKind) Task { return Task{Kind: kind} }
