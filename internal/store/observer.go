// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
)

// Default batching limits, spec.md §4.E: "grouped into transactions of up
// to uncommitted_threshold diffs before flushing, never exceeding the
// store's upper_limit bytes."
const (
	DefaultUncommittedThreshold = 1000
	DefaultUpperLimitBytes      = 16 << 20
)

// DBObserver is the database observer of spec.md §4.E: a ClusterVisitor
// that converts every committed diff into store write operations. It runs
// after the diff has already been applied to cluster, so it can resolve any
// state the diff's own payload left implicit (e.g. the self device's
// folder-info after a new_file diff bumped its max-sequence).
type DBObserver struct {
	diff.BaseClusterVisitor

	store   *Store
	cluster *model.Cluster

	uncommittedThreshold int
	upperLimitBytes       int

	txn *Transaction
}

// NewDBObserver wires a DBObserver against store and cluster, using the
// default batching thresholds.
func NewDBObserver(s *Store, cluster *model.Cluster) *DBObserver {
	return &DBObserver{
		store:                 s,
		cluster:               cluster,
		uncommittedThreshold:  DefaultUncommittedThreshold,
		upperLimitBytes:       DefaultUpperLimitBytes,
		txn:                   s.NewTransaction(),
	}
}

// WithLimits overrides the batching thresholds, e.g. from internal/config's
// [database] section.
func (o *DBObserver) WithLimits(uncommittedThreshold, upperLimitBytes int) *DBObserver {
	o.uncommittedThreshold = uncommittedThreshold
	o.upperLimitBytes = upperLimitBytes
	return o
}

// Observe applies d to the visitor and flushes the pending transaction if
// either batching threshold has been reached. The caller is responsible for
// calling Flush at the end of a diff batch so tail writes are not left
// uncommitted.
func (o *DBObserver) Observe(d *diff.Diff) error {
	if err := d.AcceptCluster(o); err != nil {
		return err
	}
	if o.txn.Len() >= o.uncommittedThreshold || o.txn.Bytes() >= o.upperLimitBytes {
		return o.Flush()
	}
	return nil
}

// Flush commits whatever is pending, even if under threshold; callers call
// this at shutdown or after a diff batch with no more data coming.
func (o *DBObserver) Flush() error {
	return o.store.Commit(o.txn)
}

func (o *DBObserver) VisitCreateFolder(_ *diff.Diff, p diff.CreateFolderPayload) error {
	return o.writeFolder(p.Folder.ID)
}

func (o *DBObserver) VisitUpsertFolder(_ *diff.Diff, p diff.UpsertFolderPayload) error {
	return o.writeFolder(p.Folder.ID)
}

func (o *DBObserver) writeFolder(id model.FolderID) error {
	f, ok := o.cluster.Folder(id)
	if !ok {
		return nil
	}
	o.txn.Put(folderKey(id), encodeFolder(f))
	if fi, ok := f.FolderInfos[o.cluster.Self()]; ok {
		o.txn.Put(folderInfoKey(id, o.cluster.Self()), encodeFolderInfo(fi))
	}
	return nil
}

func (o *DBObserver) VisitRemoveFolder(_ *diff.Diff, p diff.RemoveFolderPayload) error {
	o.txn.Delete(folderKey(p.Folder))
	// Only the folder row is deleted; the folder's FolderInfo and FileInfo
	// rows stay in the store.
	return nil
}

func (o *DBObserver) VisitShareFolder(_ *diff.Diff, p diff.ShareFolderPayload) error {
	return o.writeFolderInfo(p.Folder, p.Peer)
}

func (o *DBObserver) VisitUpsertFolderInfo(_ *diff.Diff, p diff.UpsertFolderInfoPayload) error {
	return o.writeFolderInfo(p.Folder, p.Device)
}

func (o *DBObserver) writeFolderInfo(folder model.FolderID, device model.DeviceID) error {
	fi, ok := o.cluster.FolderInfo(folder, device)
	if !ok {
		return nil
	}
	o.txn.Put(folderInfoKey(folder, device), encodeFolderInfo(fi))
	return nil
}

func (o *DBObserver) VisitUnshareFolder(_ *diff.Diff, p diff.UnshareFolderPayload) error {
	o.txn.Delete(folderInfoKey(p.Folder, p.Peer))
	return nil
}

func (o *DBObserver) VisitUpdatePeer(_ *diff.Diff, p diff.UpdatePeerPayload) error {
	o.txn.Put(deviceKey(p.Device.ID), encodeDevice(&p.Device))
	return nil
}

func (o *DBObserver) VisitRemovePeer(_ *diff.Diff, p diff.RemovePeerPayload) error {
	o.txn.Delete(deviceKey(p.Device))
	return nil
}

func (o *DBObserver) VisitAddPendingDevice(_ *diff.Diff, p diff.AddPendingDevicePayload) error {
	o.txn.Put(pendingDeviceKey(p.Device.ID), encodePendingDevice(&p.Device))
	return nil
}

func (o *DBObserver) VisitRemovePendingDevice(_ *diff.Diff, p diff.RemovePendingDevicePayload) error {
	o.txn.Delete(pendingDeviceKey(p.Device))
	return nil
}

func (o *DBObserver) VisitAddIgnoredDevice(_ *diff.Diff, p diff.AddIgnoredDevicePayload) error {
	o.txn.Put(ignoredDeviceKey(p.Device.ID), encodeIgnoredDevice(&p.Device))
	o.txn.Delete(pendingDeviceKey(p.Device.ID))
	return nil
}

func (o *DBObserver) VisitNewFile(_ *diff.Diff, p diff.NewFilePayload) error {
	return o.writeSelfFile(p.Folder, p.File.Name)
}

func (o *DBObserver) VisitLocalUpdate(_ *diff.Diff, p diff.LocalUpdatePayload) error {
	return o.writeSelfFile(p.Folder, p.File.Name)
}

func (o *DBObserver) writeSelfFile(folder model.FolderID, name string) error {
	fc, ok := o.cluster.LocalFile(folder, name)
	if !ok {
		return nil
	}
	o.txn.Put(fileInfoKey(folder, o.cluster.Self(), name), encodeFileInfo(&fc))
	if fi, ok := o.cluster.FolderInfo(folder, o.cluster.Self()); ok {
		o.txn.Put(folderInfoKey(folder, o.cluster.Self()), encodeFolderInfo(fi))
	}
	return nil
}

func (o *DBObserver) VisitAppendBlock(_ *diff.Diff, p diff.AppendBlockPayload) error {
	return o.writeBlock(p.Hash)
}

func (o *DBObserver) VisitCloneBlock(_ *diff.Diff, p diff.CloneBlockPayload) error {
	return o.writeBlock(p.Hash)
}

func (o *DBObserver) writeBlock(hash []byte) error {
	h := blockstore.HashFromBytes(hash)
	e, ok := o.cluster.Blocks.Get(h)
	if !ok {
		return nil
	}
	o.txn.Put(blockInfoKey(h), encodeBlockInfo(hash, e.Size, e.WeakHash, e.RefCount))
	return nil
}

func (o *DBObserver) VisitRemoveBlocks(_ *diff.Diff, p diff.RemoveBlocksPayload) error {
	for _, hash := range p.Hashes {
		o.txn.Delete(blockInfoKey(blockstore.HashFromBytes(hash)))
	}
	return nil
}

func (o *DBObserver) VisitClusterUpdate(_ *diff.Diff, p diff.ClusterUpdatePayload) error {
	for _, cf := range p.Config.Folders {
		if err := o.writeFolderInfo(cf.ID, p.Peer); err != nil {
			return err
		}
	}
	return nil
}

func (o *DBObserver) VisitUpdateFolder(_ *diff.Diff, p diff.UpdateFolderPayload) error {
	fi, ok := o.cluster.FolderInfo(p.Folder, p.Peer)
	if !ok {
		return nil
	}
	for _, f := range p.Files {
		if fc, ok := fi.Files[f.Name]; ok {
			o.txn.Put(fileInfoKey(p.Folder, p.Peer, f.Name), encodeFileInfo(fc))
		}
	}
	o.txn.Put(folderInfoKey(p.Folder, p.Peer), encodeFolderInfo(fi))
	return nil
}

func (o *DBObserver) VisitAdvance(_ *diff.Diff, p diff.AdvancePayload) error {
	// advance's effects land on the self FolderInfo under whatever name the
	// resolver chose (the original name for remote_copy, the conflicting
	// name plus the original name for resolve_remote_win); writeSelfFile
	// for both is cheap and correct since FolderInfo carries every local
	// file's current record.
	fi, ok := o.cluster.FolderInfo(p.Folder, o.cluster.Self())
	if !ok {
		return nil
	}
	for _, fc := range fi.Files {
		o.txn.Put(fileInfoKey(p.Folder, o.cluster.Self(), fc.Name), encodeFileInfo(fc))
	}
	o.txn.Put(folderInfoKey(p.Folder, o.cluster.Self()), encodeFolderInfo(fi))
	return nil
}
