// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/model"
)

func applyCreateFolder(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(CreateFolderPayload)
	return cluster.CreateFolder(p.Folder)
}

func applyUpsertFolder(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(UpsertFolderPayload)
	return cluster.UpsertFolder(p.Folder)
}

func applyUpsertFolderInfo(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(UpsertFolderInfoPayload)
	return cluster.UpsertFolderInfo(p.Folder, p.Device, p.IndexID, p.MaxSequence)
}

func applyRemoveFolder(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(RemoveFolderPayload)
	return cluster.RemoveFolder(p.Folder)
}

func applyShareFolder(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(ShareFolderPayload)
	return cluster.ShareFolder(p.Folder, p.Peer)
}

func applyUnshareFolder(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(UnshareFolderPayload)
	return cluster.UnshareFolder(p.Folder, p.Peer)
}

func applyUpdatePeer(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(UpdatePeerPayload)
	return cluster.UpdatePeer(p.Device)
}

func applyRemovePeer(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(RemovePeerPayload)
	return cluster.RemovePeer(p.Device)
}

func applyAddIgnoredDevice(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(AddIgnoredDevicePayload)
	return cluster.AddIgnoredDevice(p.Device)
}

func applyAddPendingDevice(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(AddPendingDevicePayload)
	return cluster.AddPendingDevice(p.Device)
}

func applyRemovePendingDevice(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(RemovePendingDevicePayload)
	return cluster.RemovePendingDevice(p.Device)
}

func applyAddUnknownDevice(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(AddUnknownDevicePayload)
	return cluster.AddUnknownDevice(p.Device, p.Name)
}

func applyRemoveUnknownDevice(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(RemoveUnknownDevicePayload)
	return cluster.RemoveUnknownDevice(p.Device)
}

// applyNewFile attaches the assembled FileInfo to the self device's
// FolderInfo. Its append_block/clone_block children (spec.md §4.D) have
// already run by the time this executes, since Diff.applyLocked visits
// child before self.
func applyNewFile(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(NewFilePayload)
	return cluster.PutSelfFile(p.Folder, p.File)
}

// applyLocalUpdate replaces an existing self-device file and releases any
// blocks the previous version referenced that the new version does not
// (spec.md §4.B dedup: a block survives only while some file still points
// at it).
func applyLocalUpdate(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(LocalUpdatePayload)
	if err := cluster.PutSelfFile(p.Folder, p.File); err != nil {
		return err
	}
	kept := make(map[string]bool, len(p.File.Blocks))
	for _, b := range p.File.Blocks {
		kept[string(blockstore.HashFromBytes(b.Hash))] = true
	}
	var released [][]byte
	for _, b := range p.Previous.Blocks {
		if !kept[string(blockstore.HashFromBytes(b.Hash))] {
			released = append(released, b.Hash)
		}
	}
	if len(released) > 0 {
		cluster.ReleaseBlocks(released)
	}
	return nil
}

func applyLockFile(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(LockFilePayload)
	return cluster.LockFile(p.Folder, p.Name, p.Locked)
}

func applyMarkReachable(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(MarkReachablePayload)
	return cluster.MarkReachable(p.Folder, p.Device, p.Reachable)
}

func applySuspendFolder(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(SuspendFolderPayload)
	return cluster.SuspendFolder(p.Folder, p.Reason)
}

// applyAppendBlock records a freshly hashed, previously-unseen block and
// gives it its first reference, on behalf of the new_file/local_update
// diff that will shortly attach the file referencing it.
func applyAppendBlock(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(AppendBlockPayload)
	h := blockstore.HashFromBytes(p.Hash)
	cluster.Blocks.Put(h, p.Size, p.WeakHash)
	cluster.Blocks.Ref(h)
	return nil
}

// applyCloneBlock adds a reference to a block already known to the store
// (spec.md §4.B dedup: identical content discovered in another file reuses
// the existing entry instead of hashing and storing it again).
func applyCloneBlock(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(CloneBlockPayload)
	h := blockstore.HashFromBytes(p.Hash)
	cluster.Blocks.Ref(h)
	return nil
}

// applyRemoveBlocks unrefs the given hashes and purges any that reach zero,
// the terminal step of orphaned_blocks.deduce() (spec.md §4.B).
func applyRemoveBlocks(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(RemoveBlocksPayload)
	cluster.ReleaseBlocks(p.Hashes)
	return nil
}

func applyUpdateContact(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(UpdateContactPayload)
	dev, ok := cluster.Device(p.Device)
	if !ok {
		return model.ErrNoSuchDevice
	}
	updated := *dev
	updated.ConnectionState = p.ConnectionState
	updated.ActiveEndpoint = p.ActiveEndpoint
	updated.LastSeen = p.LastSeen
	return cluster.UpdatePeer(updated)
}
