// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/protocol"
)

// This file is the cluster's sanctioned mutation surface. internal/model/diff
// is the only caller: every method here assumes the cluster's write lock is
// already held by the diff traversal (spec.md §4.D), so none of them take
// their own lock.

// --- loader entry points (internal/store's streaming replay; no validation,
// mirrors whatever was previously persisted) ---

func (c *Cluster) PutDeviceLoaded(d *Device)               { c.devices[d.ID] = d }
func (c *Cluster) PutPendingDeviceLoaded(d *PendingDevice) { c.pendingDevices[d.ID] = d }
func (c *Cluster) PutIgnoredDeviceLoaded(d *IgnoredDevice) { c.ignoredDevices[d.ID] = d }
func (c *Cluster) PutPendingFolderLoaded(f *PendingFolder) { c.pendingFolders[f.ID] = f }

func (c *Cluster) PutFolderLoaded(f *Folder) {
	if f.FolderInfos == nil {
		f.FolderInfos = make(map[DeviceID]*FolderInfo)
	}
	if f.LockedFiles == nil {
		f.LockedFiles = make(map[string]bool)
	}
	c.folders[f.ID] = f
}

// --- folders ---

func (c *Cluster) CreateFolder(f Folder) error {
	if _, exists := c.folders[f.ID]; exists {
		return ErrFolderAlreadyExists
	}
	if f.FolderInfos == nil {
		f.FolderInfos = make(map[DeviceID]*FolderInfo)
	}
	if f.LockedFiles == nil {
		f.LockedFiles = make(map[string]bool)
	}
	c.putFolder(&f)
	return nil
}

// UpsertFolder replaces a folder's settings, preserving any FolderInfos and
// LockedFiles already attached (spec.md §4.D: distinct from create_folder,
// which must fail if the folder already exists).
func (c *Cluster) UpsertFolder(f Folder) error {
	if existing, ok := c.folders[f.ID]; ok {
		f.FolderInfos = existing.FolderInfos
		f.LockedFiles = existing.LockedFiles
	} else {
		f.FolderInfos = make(map[DeviceID]*FolderInfo)
		f.LockedFiles = make(map[string]bool)
	}
	c.putFolder(&f)
	return nil
}

func (c *Cluster) UpsertFolderInfo(folder FolderID, device DeviceID, indexID uint64, maxSeq int64) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	fi, ok := f.FolderInfos[device]
	if !ok {
		fi = NewFolderInfo(folder, device, indexID)
		f.FolderInfos[device] = fi
	}
	fi.IndexID = indexID
	fi.MaxSequence = maxSeq
	return nil
}

func (c *Cluster) RemoveFolder(id FolderID) error {
	if _, ok := c.folders[id]; !ok {
		return ErrNoSuchFolder
	}
	c.removeFolder(id)
	return nil
}

// ShareFolder attaches an empty FolderInfo view for peer to folder, per
// spec.md §3 "Ownership": a shared folder gains a per-device view lazily
// populated by that device's index.
func (c *Cluster) ShareFolder(folder FolderID, peer DeviceID) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	if _, ok := c.devices[peer]; !ok {
		return ErrNoSuchDevice
	}
	if _, ok := f.FolderInfos[peer]; ok {
		return ErrFolderAlreadyShared
	}
	f.FolderInfos[peer] = NewFolderInfo(folder, peer, 0)
	return nil
}

func (c *Cluster) UnshareFolder(folder FolderID, peer DeviceID) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	fi, ok := f.FolderInfos[peer]
	if !ok {
		return nil
	}
	for _, file := range fi.Files {
		for _, blk := range file.Blocks {
			c.Blocks.Unref(blockstore.HashFromBytes(blk.Hash))
		}
	}
	delete(f.FolderInfos, peer)
	return nil
}

func (c *Cluster) LockFile(folder FolderID, name string, locked bool) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	if f.LockedFiles == nil {
		f.LockedFiles = make(map[string]bool)
	}
	if locked {
		f.LockedFiles[name] = true
	} else {
		delete(f.LockedFiles, name)
	}
	return nil
}

func (c *Cluster) IsLocked(folder FolderID, name string) bool {
	f, ok := c.folders[folder]
	if !ok {
		return false
	}
	return f.LockedFiles[name]
}

func (c *Cluster) MarkReachable(folder FolderID, device DeviceID, reachable bool) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	fi, ok := f.FolderInfos[device]
	if !ok {
		return ErrNoSuchDevice
	}
	fi.Reachable = reachable
	return nil
}

func (c *Cluster) SuspendFolder(folder FolderID, reason error) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	f.Suspended = true
	f.Paused = true
	if reason != nil {
		f.SuspendReason = reason.Error()
	}
	return nil
}

// --- devices ---

func (c *Cluster) UpdatePeer(d Device) error {
	c.putDevice(&d)
	return nil
}

func (c *Cluster) RemovePeer(id DeviceID) error {
	if _, ok := c.devices[id]; !ok {
		return ErrNoSuchDevice
	}
	c.removeDevice(id)
	return nil
}

func (c *Cluster) AddIgnoredDevice(d IgnoredDevice) error {
	if d.Since.IsZero() {
		d.Since = time.Now()
	}
	c.ignoredDevices[d.ID] = &d
	delete(c.pendingDevices, d.ID)
	return nil
}

func (c *Cluster) AddPendingDevice(d PendingDevice) error {
	if d.FirstSeen.IsZero() {
		d.FirstSeen = time.Now()
	}
	c.pendingDevices[d.ID] = &d
	return nil
}

func (c *Cluster) RemovePendingDevice(id DeviceID) error {
	delete(c.pendingDevices, id)
	return nil
}

func (c *Cluster) AddUnknownDevice(id DeviceID, name string) error {
	c.unknownDevices[id] = name
	return nil
}

func (c *Cluster) RemoveUnknownDevice(id DeviceID) error {
	delete(c.unknownDevices, id)
	return nil
}

func (c *Cluster) UnknownDevices() map[DeviceID]string {
	out := make(map[DeviceID]string, len(c.unknownDevices))
	for k, v := range c.unknownDevices {
		out[k] = v
	}
	return out
}

// --- files ---

// PutSelfFile installs file into folder's self-device FolderInfo,
// creating the FolderInfo if this is the first local file. Block
// refcounting is the caller's responsibility (internal/model/diff's
// append_block/clone_block/remove_blocks handlers, applied as children
// before the owning new_file/local_update diff), matching spec.md §4.D's
// composition: "new_file_t: children append_block/clone_block for each
// constituent block, applied before the parent attaches the FileInfo."
func (c *Cluster) PutSelfFile(folder FolderID, file protocol.FileInfo) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	fi, ok := f.FolderInfos[c.self]
	if !ok {
		fi = NewFolderInfo(folder, c.self, 0)
		f.FolderInfos[c.self] = fi
	}
	fi.Files[file.Name] = &file
	if file.Sequence > fi.MaxSequence {
		fi.MaxSequence = file.Sequence
	}
	return nil
}

// ReleaseBlocks unrefs every hash in hashes and deletes any that become
// orphaned, used by local_update to drop blocks no longer referenced by
// the updated file (spec.md §4.B "orphaned_blocks.deduce()").
func (c *Cluster) ReleaseBlocks(hashes [][]byte) {
	var orphaned []blockstore.Hash
	for _, h := range hashes {
		bh := blockstore.HashFromBytes(h)
		if c.Blocks.Unref(bh) {
			orphaned = append(orphaned, bh)
		}
	}
	if len(orphaned) > 0 {
		c.Blocks.RemoveBlocks(orphaned)
	}
}

// --- peer index application ---

// ApplyPeerFile installs a peer-reported file into that peer's FolderInfo,
// enforcing the monotonic-sequence invariant of spec.md §3 invariant 4.
func (c *Cluster) ApplyPeerFile(folder FolderID, peer DeviceID, file protocol.FileInfo) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	fi, ok := f.FolderInfos[peer]
	if !ok {
		return ErrNoSuchDevice
	}
	if existing, ok := fi.Files[file.Name]; ok && file.Sequence <= existing.Sequence && !file.Invalid {
		return ErrPeerFileRegression
	}
	if file.Sequence <= fi.MaxSequence {
		return ErrPeerSequenceRegression
	}
	fi.Files[file.Name] = &file
	fi.MaxSequence = file.Sequence
	return nil
}

// MarkPeerFileIgnored flags a peer's existing file record so it is not
// re-requested until that peer reports a newer version (spec.md §4.F
// resolve_local_win). Unlike ApplyPeerFile this bypasses the monotonic
// sequence check: it is not installing a new peer update, only annotating
// the one already on file.
func (c *Cluster) MarkPeerFileIgnored(folder FolderID, peer DeviceID, name string) error {
	f, ok := c.folders[folder]
	if !ok {
		return ErrNoSuchFolder
	}
	fi, ok := f.FolderInfos[peer]
	if !ok {
		return ErrNoSuchDevice
	}
	fc, ok := fi.Files[name]
	if !ok {
		return nil
	}
	fc.IgnoredLocal = true
	return nil
}

// LocalFile looks up the self device's current record for name, if any.
func (c *Cluster) LocalFile(folder FolderID, name string) (protocol.FileInfo, bool) {
	f, ok := c.folders[folder]
	if !ok {
		return protocol.FileInfo{}, false
	}
	fi, ok := f.FolderInfos[c.self]
	if !ok {
		return protocol.FileInfo{}, false
	}
	fc, ok := fi.Files[name]
	if !ok {
		return protocol.FileInfo{}, false
	}
	return *fc, true
}
