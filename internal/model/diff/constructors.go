// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"time"

	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/protocol"
)

// NewScannedFile assembles the diff tree for a freshly scanned local file
// (spec.md §4.D: "new_file_t: children append_block/clone_block for each
// constituent block, applied before the parent attaches the FileInfo").
// newBlocks are blocks the scanner hashed and found nowhere in the content
// store; clonedBlocks are blocks it found already present (spec.md §4.B
// dedup). Both lists are in file-offset order; the resulting FileInfo's
// Blocks field must already reflect that order.
func NewScannedFile(folder model.FolderID, file protocol.FileInfo, newBlocks, clonedBlocks []BlockRecord) *Diff {
	all := make([]BlockRecord, 0, len(newBlocks)+len(clonedBlocks))
	all = append(all, newBlocks...)
	all = append(all, clonedBlocks...)
	root := New(KindNewFile, NewFilePayload{Folder: folder, File: file, Blocks: all})
	attachBlockChildren(root, newBlocks, clonedBlocks)
	return root
}

// LocalFileUpdated is NewScannedFile's counterpart for a file the cluster
// already knew about (spec.md §4.D "local_update_t: the same effect as
// new_file_t but for an already-known file").
func LocalFileUpdated(folder model.FolderID, previous, file protocol.FileInfo, newBlocks, clonedBlocks []BlockRecord) *Diff {
	all := make([]BlockRecord, 0, len(newBlocks)+len(clonedBlocks))
	all = append(all, newBlocks...)
	all = append(all, clonedBlocks...)
	root := New(KindLocalUpdate, LocalUpdatePayload{Folder: folder, Previous: previous, File: file, Blocks: all})
	attachBlockChildren(root, newBlocks, clonedBlocks)
	return root
}

func attachBlockChildren(root *Diff, newBlocks, clonedBlocks []BlockRecord) {
	var head, tail *Diff
	push := func(n *Diff) {
		if head == nil {
			head = n
			tail = n
			return
		}
		tail = tail.AssignSibling(n)
	}
	for _, b := range newBlocks {
		push(New(KindAppendBlock, AppendBlockPayload{Hash: b.Hash, Size: b.Size, WeakHash: b.WeakHash}))
	}
	for _, b := range clonedBlocks {
		push(New(KindCloneBlock, CloneBlockPayload{Hash: b.Hash}))
	}
	if head != nil {
		root.AssignChild(head)
	}
}

// Advance wraps an AdvanceAction decided by internal/resolver into a Diff,
// the shape internal/model/diff.Apply expects (spec.md §4.F/§4.D).
func Advance(folder model.FolderID, action AdvanceAction, peerFile protocol.FileInfo, peerDevice model.DeviceID, conflictAt time.Time) *Diff {
	return New(KindAdvance, AdvancePayload{
		Folder:     folder,
		Action:     action,
		PeerFile:   peerFile,
		PeerDevice: peerDevice,
		ConflictAt: conflictAt,
	})
}

// Aggregate groups several independent diff trees into one logical
// transaction (spec.md §4.D).
func Aggregate(diffs ...*Diff) *Diff {
	return New(KindAggregate, AggregatePayload{Diffs: diffs})
}
