// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package diff implements the typed, composable units of cluster mutation
// described in spec.md §4.D. Design Notes §9 recommends a tagged union
// over the source's deeply-inherited diff classes; that is what this
// package is: a single Kind enum, one apply switch, one visit switch, with
// child/sibling composition living on a wrapper independent of the tag.
package diff

// Kind identifies which payload a Diff carries and which apply/visit
// function handles it. The grouping below follows spec.md §4.D's table,
// except that update_contact sits only in the modify group.
type Kind int

const (
	// load group
	KindLoadCluster Kind = iota
	KindBlocks
	KindFileInfos
	KindFolders
	KindPendingFolders
	KindDevices
	KindPendingDevices
	KindIgnoredDevices

	// modify group
	KindCreateFolder
	KindUpsertFolder
	KindUpsertFolderInfo
	KindRemoveFolder
	KindShareFolder
	KindUnshareFolder
	KindUpdatePeer
	KindRemovePeer
	KindAddIgnoredDevice
	KindAddPendingDevice
	KindRemovePendingDevice
	KindAddUnknownDevice
	KindRemoveUnknownDevice
	KindNewFile
	KindLocalUpdate
	KindLockFile
	KindMarkReachable
	KindSuspendFolder
	KindAppendBlock
	KindCloneBlock
	KindRemoveBlocks
	KindUpdateContact

	// peer group
	KindClusterUpdate
	KindUpdateFolder

	// advance group (remote_copy / resolve_remote_win are the two
	// sub-actions of a single Advance kind; local_update is shared with
	// the modify group above)
	KindAdvance

	// local group
	KindScanStart
	KindScanFinish
	KindScanRequest
	KindFileAvailability
	KindBlocksAvailability
	KindIoFailure

	// contact group
	KindConnectRequest
	KindDialRequest
	KindRelayConnectRequest
	KindPeerState
	KindIgnoredConnected
	KindUnknownConnected

	// aggregate
	KindAggregate
)

// Family distinguishes the two dispatch targets of spec.md §4.D: cluster
// diffs go to a ClusterVisitor, contact diffs to a ContactVisitor.
type Family int

const (
	FamilyCluster Family = iota
	FamilyContact
)

func (k Kind) Family() Family {
	switch k {
	case KindConnectRequest, KindDialRequest, KindRelayConnectRequest,
		KindPeerState, KindIgnoredConnected, KindUnknownConnected:
		return FamilyContact
	default:
		return FamilyCluster
	}
}

func (k Kind) String() string {
	switch k {
	case KindLoadCluster:
		return "load_cluster"
	case KindBlocks:
		return "blocks"
	case KindFileInfos:
		return "file_infos"
	case KindFolders:
		return "folders"
	case KindPendingFolders:
		return "pending_folders"
	case KindDevices:
		return "devices"
	case KindPendingDevices:
		return "pending_devices"
	case KindIgnoredDevices:
		return "ignored_devices"
	case KindCreateFolder:
		return "create_folder"
	case KindUpsertFolder:
		return "upsert_folder"
	case KindUpsertFolderInfo:
		return "upsert_folder_info"
	case KindRemoveFolder:
		return "remove_folder"
	case KindShareFolder:
		return "share_folder"
	case KindUnshareFolder:
		return "unshare_folder"
	case KindUpdatePeer:
		return "update_peer"
	case KindRemovePeer:
		return "remove_peer"
	case KindAddIgnoredDevice:
		return "add_ignored_device"
	case KindAddPendingDevice:
		return "add_pending_device"
	case KindRemovePendingDevice:
		return "remove_pending_device"
	case KindAddUnknownDevice:
		return "add_unknown_device"
	case KindRemoveUnknownDevice:
		return "remove_unknown_device"
	case KindNewFile:
		return "new_file"
	case KindLocalUpdate:
		return "local_update"
	case KindLockFile:
		return "lock_file"
	case KindMarkReachable:
		return "mark_reachable"
	case KindSuspendFolder:
		return "suspend_folder"
	case KindAppendBlock:
		return "append_block"
	case KindCloneBlock:
		return "clone_block"
	case KindRemoveBlocks:
		return "remove_blocks"
	case KindUpdateContact:
		return "update_contact"
	case KindClusterUpdate:
		return "cluster_update"
	case KindUpdateFolder:
		return "update_folder"
	case KindAdvance:
		return "advance"
	case KindScanStart:
		return "scan_start"
	case KindScanFinish:
		return "scan_finish"
	case KindScanRequest:
		return "scan_request"
	case KindFileAvailability:
		return "file_availability"
	case KindBlocksAvailability:
		return "blocks_availability"
	case KindIoFailure:
		return "io_failure"
	case KindConnectRequest:
		return "connect_request"
	case KindDialRequest:
		return "dial_request"
	case KindRelayConnectRequest:
		return "relay_connect_request"
	case KindPeerState:
		return "peer_state"
	case KindIgnoredConnected:
		return "ignored_connected"
	case KindUnknownConnected:
		return "unknown_connected"
	case KindAggregate:
		return "aggregate_diff"
	default:
		return "unknown"
	}
}
