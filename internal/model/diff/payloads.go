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

// --- load group ---

type LoadClusterPayload struct{}

type BlocksPayload struct {
	Blocks []BlockRecord
}

type BlockRecord struct {
	Hash     []byte
	Size     int32
	WeakHash uint32
	RefCount int
}

type FileInfosPayload struct {
	Folder model.FolderID
	Device model.DeviceID
	Files  []protocol.FileInfo
}

type FoldersPayload struct {
	Folders []model.Folder
}

type PendingFoldersPayload struct {
	Folders []model.PendingFolder
}

type DevicesPayload struct {
	Devices []model.Device
}

type PendingDevicesPayload struct {
	Devices []model.PendingDevice
}

type IgnoredDevicesPayload struct {
	Devices []model.IgnoredDevice
}

// --- modify group ---

type CreateFolderPayload struct {
	Folder model.Folder
}

type UpsertFolderPayload struct {
	Folder model.Folder
}

type UpsertFolderInfoPayload struct {
	Folder      model.FolderID
	Device      model.DeviceID
	IndexID     uint64
	MaxSequence int64
}

type RemoveFolderPayload struct {
	Folder model.FolderID
}

type ShareFolderPayload struct {
	Folder model.FolderID
	Peer   model.DeviceID
}

type UnshareFolderPayload struct {
	Folder model.FolderID
	Peer   model.DeviceID
}

type UpdatePeerPayload struct {
	Device model.Device
}

type RemovePeerPayload struct {
	Device model.DeviceID
}

type AddIgnoredDevicePayload struct {
	Device model.IgnoredDevice
}

type AddPendingDevicePayload struct {
	Device model.PendingDevice
}

type RemovePendingDevicePayload struct {
	Device model.DeviceID
}

type AddUnknownDevicePayload struct {
	Device model.DeviceID
	Name   string
}

type RemoveUnknownDevicePayload struct {
	Device model.DeviceID
}

// NewFilePayload is the modify-group counterpart of spec.md §4.D's
// new_file_t: it creates or replaces a self-device file.
type NewFilePayload struct {
	Folder model.FolderID
	File   protocol.FileInfo
	Blocks []BlockRecord
}

// LocalUpdatePayload drives the modify-group "local content changed" use
// (spec.md §4.D: "local_update_t: the same effect as new_file_t but for an
// already-known file"). Its only producer is the scanner, through
// LocalFileUpdated; the advance group does not build one.
type LocalUpdatePayload struct {
	Folder   model.FolderID
	Previous protocol.FileInfo
	File     protocol.FileInfo
	Blocks   []BlockRecord
}

type LockFilePayload struct {
	Folder model.FolderID
	Name   string
	Locked bool
}

type MarkReachablePayload struct {
	Folder model.FolderID
	Device model.DeviceID
	Reachable bool
}

type SuspendFolderPayload struct {
	Folder model.FolderID
	Reason error
}

type AppendBlockPayload struct {
	Hash     []byte
	Size     int32
	WeakHash uint32
}

type CloneBlockPayload struct {
	Hash []byte
}

type RemoveBlocksPayload struct {
	Hashes [][]byte
}

type UpdateContactPayload struct {
	Device          model.DeviceID
	ConnectionState model.ConnectionState
	ActiveEndpoint  string
	LastSeen        time.Time
}

// --- peer group ---

type ClusterUpdatePayload struct {
	Peer    model.DeviceID
	Config  protocol.ClusterConfig
}

type UpdateFolderPayload struct {
	Peer   model.DeviceID
	Folder model.FolderID
	Files  []protocol.FileInfo
	// FullIndex distinguishes an Index message (full listing, may imply
	// deletions of anything not listed - left to the caller) from an
	// IndexUpdate (incremental).
	FullIndex bool
}

// --- advance group ---

type AdvanceAction int

const (
	ActionIgnore AdvanceAction = iota
	ActionRemoteCopy
	ActionResolveRemoteWin
	ActionResolveLocalWin
)

func (a AdvanceAction) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionRemoteCopy:
		return "remote_copy"
	case ActionResolveRemoteWin:
		return "resolve_remote_win"
	case ActionResolveLocalWin:
		return "resolve_local_win"
	default:
		return "unknown"
	}
}

type AdvancePayload struct {
	Folder     model.FolderID
	Action     AdvanceAction
	PeerFile   protocol.FileInfo
	PeerDevice model.DeviceID
	ConflictAt time.Time
}

// --- local group ---

type ScanStartPayload struct {
	Folder model.FolderID
}

type ScanFinishPayload struct {
	Folder model.FolderID
}

type ScanRequestPayload struct {
	Folder model.FolderID
	Subs   []string
}

type FileAvailabilityPayload struct {
	Folder model.FolderID
	Name   string
}

type BlocksAvailabilityPayload struct {
	Folder  model.FolderID
	Name    string
	Present []bool
}

type IoFailurePayload struct {
	Folder model.FolderID
	Name   string
	Err    error
}

// --- contact group ---

type ConnectRequestPayload struct {
	Device    model.DeviceID
	Address   string
}

type DialRequestPayload struct {
	Device  model.DeviceID
	Address string
}

type RelayConnectRequestPayload struct {
	Device model.DeviceID
	Relay  string
}

type PeerStatePayload struct {
	Device model.DeviceID
	State  model.ConnectionState
}

type IgnoredConnectedPayload struct {
	Device  model.DeviceID
	Address string
}

type UnknownConnectedPayload struct {
	Device  model.DeviceID
	Address string
}

// --- aggregate ---

type AggregatePayload struct {
	Diffs []*Diff
}
