// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

// ClusterVisitor receives every cluster-family diff kind (spec.md §4.D),
// used by the persistence bridge (internal/store) to convert committed
// diffs into store writes, and available for a future UI refresh
// consumer. Embed BaseClusterVisitor to get no-op defaults and override
// only the kinds you care about.
type ClusterVisitor interface {
	VisitLoadCluster(*Diff, LoadClusterPayload) error
	VisitBlocks(*Diff, BlocksPayload) error
	VisitFileInfos(*Diff, FileInfosPayload) error
	VisitFolders(*Diff, FoldersPayload) error
	VisitPendingFolders(*Diff, PendingFoldersPayload) error
	VisitDevices(*Diff, DevicesPayload) error
	VisitPendingDevices(*Diff, PendingDevicesPayload) error
	VisitIgnoredDevices(*Diff, IgnoredDevicesPayload) error

	VisitCreateFolder(*Diff, CreateFolderPayload) error
	VisitUpsertFolder(*Diff, UpsertFolderPayload) error
	VisitUpsertFolderInfo(*Diff, UpsertFolderInfoPayload) error
	VisitRemoveFolder(*Diff, RemoveFolderPayload) error
	VisitShareFolder(*Diff, ShareFolderPayload) error
	VisitUnshareFolder(*Diff, UnshareFolderPayload) error
	VisitUpdatePeer(*Diff, UpdatePeerPayload) error
	VisitRemovePeer(*Diff, RemovePeerPayload) error
	VisitAddIgnoredDevice(*Diff, AddIgnoredDevicePayload) error
	VisitAddPendingDevice(*Diff, AddPendingDevicePayload) error
	VisitRemovePendingDevice(*Diff, RemovePendingDevicePayload) error
	VisitAddUnknownDevice(*Diff, AddUnknownDevicePayload) error
	VisitRemoveUnknownDevice(*Diff, RemoveUnknownDevicePayload) error
	VisitNewFile(*Diff, NewFilePayload) error
	VisitLocalUpdate(*Diff, LocalUpdatePayload) error
	VisitLockFile(*Diff, LockFilePayload) error
	VisitMarkReachable(*Diff, MarkReachablePayload) error
	VisitSuspendFolder(*Diff, SuspendFolderPayload) error
	VisitAppendBlock(*Diff, AppendBlockPayload) error
	VisitCloneBlock(*Diff, CloneBlockPayload) error
	VisitRemoveBlocks(*Diff, RemoveBlocksPayload) error
	VisitUpdateContact(*Diff, UpdateContactPayload) error

	VisitClusterUpdate(*Diff, ClusterUpdatePayload) error
	VisitUpdateFolder(*Diff, UpdateFolderPayload) error

	VisitAdvance(*Diff, AdvancePayload) error

	VisitScanStart(*Diff, ScanStartPayload) error
	VisitScanFinish(*Diff, ScanFinishPayload) error
	VisitScanRequest(*Diff, ScanRequestPayload) error
	VisitFileAvailability(*Diff, FileAvailabilityPayload) error
	VisitBlocksAvailability(*Diff, BlocksAvailabilityPayload) error
	VisitIoFailure(*Diff, IoFailurePayload) error

	VisitAggregate(*Diff, AggregatePayload) error
}

// BaseClusterVisitor implements ClusterVisitor with no-ops; embed it and
// override only the methods a given consumer cares about.
type BaseClusterVisitor struct{}

func (BaseClusterVisitor) VisitLoadCluster(*Diff, LoadClusterPayload) error         { return nil }
func (BaseClusterVisitor) VisitBlocks(*Diff, BlocksPayload) error                   { return nil }
func (BaseClusterVisitor) VisitFileInfos(*Diff, FileInfosPayload) error             { return nil }
func (BaseClusterVisitor) VisitFolders(*Diff, FoldersPayload) error                 { return nil }
func (BaseClusterVisitor) VisitPendingFolders(*Diff, PendingFoldersPayload) error   { return nil }
func (BaseClusterVisitor) VisitDevices(*Diff, DevicesPayload) error                 { return nil }
func (BaseClusterVisitor) VisitPendingDevices(*Diff, PendingDevicesPayload) error   { return nil }
func (BaseClusterVisitor) VisitIgnoredDevices(*Diff, IgnoredDevicesPayload) error   { return nil }
func (BaseClusterVisitor) VisitCreateFolder(*Diff, CreateFolderPayload) error       { return nil }
func (BaseClusterVisitor) VisitUpsertFolder(*Diff, UpsertFolderPayload) error       { return nil }
func (BaseClusterVisitor) VisitUpsertFolderInfo(*Diff, UpsertFolderInfoPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitRemoveFolder(*Diff, RemoveFolderPayload) error { return nil }
func (BaseClusterVisitor) VisitShareFolder(*Diff, ShareFolderPayload) error   { return nil }
func (BaseClusterVisitor) VisitUnshareFolder(*Diff, UnshareFolderPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitUpdatePeer(*Diff, UpdatePeerPayload) error { return nil }
func (BaseClusterVisitor) VisitRemovePeer(*Diff, RemovePeerPayload) error { return nil }
func (BaseClusterVisitor) VisitAddIgnoredDevice(*Diff, AddIgnoredDevicePayload) error {
	return nil
}
func (BaseClusterVisitor) VisitAddPendingDevice(*Diff, AddPendingDevicePayload) error {
	return nil
}
func (BaseClusterVisitor) VisitRemovePendingDevice(*Diff, RemovePendingDevicePayload) error {
	return nil
}
func (BaseClusterVisitor) VisitAddUnknownDevice(*Diff, AddUnknownDevicePayload) error {
	return nil
}
func (BaseClusterVisitor) VisitRemoveUnknownDevice(*Diff, RemoveUnknownDevicePayload) error {
	return nil
}
func (BaseClusterVisitor) VisitNewFile(*Diff, NewFilePayload) error         { return nil }
func (BaseClusterVisitor) VisitLocalUpdate(*Diff, LocalUpdatePayload) error { return nil }
func (BaseClusterVisitor) VisitLockFile(*Diff, LockFilePayload) error       { return nil }
func (BaseClusterVisitor) VisitMarkReachable(*Diff, MarkReachablePayload) error {
	return nil
}
func (BaseClusterVisitor) VisitSuspendFolder(*Diff, SuspendFolderPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitAppendBlock(*Diff, AppendBlockPayload) error { return nil }
func (BaseClusterVisitor) VisitCloneBlock(*Diff, CloneBlockPayload) error   { return nil }
func (BaseClusterVisitor) VisitRemoveBlocks(*Diff, RemoveBlocksPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitUpdateContact(*Diff, UpdateContactPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitClusterUpdate(*Diff, ClusterUpdatePayload) error {
	return nil
}
func (BaseClusterVisitor) VisitUpdateFolder(*Diff, UpdateFolderPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitAdvance(*Diff, AdvancePayload) error { return nil }
func (BaseClusterVisitor) VisitScanStart(*Diff, ScanStartPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitScanFinish(*Diff, ScanFinishPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitScanRequest(*Diff, ScanRequestPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitFileAvailability(*Diff, FileAvailabilityPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitBlocksAvailability(*Diff, BlocksAvailabilityPayload) error {
	return nil
}
func (BaseClusterVisitor) VisitIoFailure(*Diff, IoFailurePayload) error { return nil }
func (BaseClusterVisitor) VisitAggregate(*Diff, AggregatePayload) error { return nil }

// ContactVisitor receives transport-level events that never mutate the
// persisted model (spec.md §4.D).
type ContactVisitor interface {
	VisitConnectRequest(*Diff, ConnectRequestPayload) error
	VisitDialRequest(*Diff, DialRequestPayload) error
	VisitRelayConnectRequest(*Diff, RelayConnectRequestPayload) error
	VisitPeerState(*Diff, PeerStatePayload) error
	VisitIgnoredConnected(*Diff, IgnoredConnectedPayload) error
	VisitUnknownConnected(*Diff, UnknownConnectedPayload) error
}

type BaseContactVisitor struct{}

func (BaseContactVisitor) VisitConnectRequest(*Diff, ConnectRequestPayload) error { return nil }
func (BaseContactVisitor) VisitDialRequest(*Diff, DialRequestPayload) error       { return nil }
func (BaseContactVisitor) VisitRelayConnectRequest(*Diff, RelayConnectRequestPayload) error {
	return nil
}
func (BaseContactVisitor) VisitPeerState(*Diff, PeerStatePayload) error { return nil }
func (BaseContactVisitor) VisitIgnoredConnected(*Diff, IgnoredConnectedPayload) error {
	return nil
}
func (BaseContactVisitor) VisitUnknownConnected(*Diff, UnknownConnectedPayload) error {
	return nil
}

// AcceptCluster dispatches d (and, per the default generic visit, its
// child and sibling) to v's typed method. An error short-circuits
// traversal, matching spec.md §4.D.
func (d *Diff) AcceptCluster(v ClusterVisitor) error {
	if d == nil {
		return nil
	}
	if d.child != nil {
		if err := d.child.AcceptCluster(v); err != nil {
			return err
		}
	}
	if d.Kind.Family() == FamilyCluster {
		if err := dispatchCluster(d, v); err != nil {
			return err
		}
	}
	if d.sibling != nil {
		if err := d.sibling.AcceptCluster(v); err != nil {
			return err
		}
	}
	return nil
}

// AcceptContact is AcceptCluster's counterpart for contact-family kinds.
func (d *Diff) AcceptContact(v ContactVisitor) error {
	if d == nil {
		return nil
	}
	if d.child != nil {
		if err := d.child.AcceptContact(v); err != nil {
			return err
		}
	}
	if d.Kind.Family() == FamilyContact {
		if err := dispatchContact(d, v); err != nil {
			return err
		}
	}
	if d.sibling != nil {
		if err := d.sibling.AcceptContact(v); err != nil {
			return err
		}
	}
	return nil
}

func dispatchCluster(d *Diff, v ClusterVisitor) error {
	switch d.Kind {
	case KindLoadCluster:
		return v.VisitLoadCluster(d, d.Payload.(LoadClusterPayload))
	case KindBlocks:
		return v.VisitBlocks(d, d.Payload.(BlocksPayload))
	case KindFileInfos:
		return v.VisitFileInfos(d, d.Payload.(FileInfosPayload))
	case KindFolders:
		return v.VisitFolders(d, d.Payload.(FoldersPayload))
	case KindPendingFolders:
		return v.VisitPendingFolders(d, d.Payload.(PendingFoldersPayload))
	case KindDevices:
		return v.VisitDevices(d, d.Payload.(DevicesPayload))
	case KindPendingDevices:
		return v.VisitPendingDevices(d, d.Payload.(PendingDevicesPayload))
	case KindIgnoredDevices:
		return v.VisitIgnoredDevices(d, d.Payload.(IgnoredDevicesPayload))
	case KindCreateFolder:
		return v.VisitCreateFolder(d, d.Payload.(CreateFolderPayload))
	case KindUpsertFolder:
		return v.VisitUpsertFolder(d, d.Payload.(UpsertFolderPayload))
	case KindUpsertFolderInfo:
		return v.VisitUpsertFolderInfo(d, d.Payload.(UpsertFolderInfoPayload))
	case KindRemoveFolder:
		return v.VisitRemoveFolder(d, d.Payload.(RemoveFolderPayload))
	case KindShareFolder:
		return v.VisitShareFolder(d, d.Payload.(ShareFolderPayload))
	case KindUnshareFolder:
		return v.VisitUnshareFolder(d, d.Payload.(UnshareFolderPayload))
	case KindUpdatePeer:
		return v.VisitUpdatePeer(d, d.Payload.(UpdatePeerPayload))
	case KindRemovePeer:
		return v.VisitRemovePeer(d, d.Payload.(RemovePeerPayload))
	case KindAddIgnoredDevice:
		return v.VisitAddIgnoredDevice(d, d.Payload.(AddIgnoredDevicePayload))
	case KindAddPendingDevice:
		return v.VisitAddPendingDevice(d, d.Payload.(AddPendingDevicePayload))
	case KindRemovePendingDevice:
		return v.VisitRemovePendingDevice(d, d.Payload.(RemovePendingDevicePayload))
	case KindAddUnknownDevice:
		return v.VisitAddUnknownDevice(d, d.Payload.(AddUnknownDevicePayload))
	case KindRemoveUnknownDevice:
		return v.VisitRemoveUnknownDevice(d, d.Payload.(RemoveUnknownDevicePayload))
	case KindNewFile:
		return v.VisitNewFile(d, d.Payload.(NewFilePayload))
	case KindLocalUpdate:
		return v.VisitLocalUpdate(d, d.Payload.(LocalUpdatePayload))
	case KindLockFile:
		return v.VisitLockFile(d, d.Payload.(LockFilePayload))
	case KindMarkReachable:
		return v.VisitMarkReachable(d, d.Payload.(MarkReachablePayload))
	case KindSuspendFolder:
		return v.VisitSuspendFolder(d, d.Payload.(SuspendFolderPayload))
	case KindAppendBlock:
		return v.VisitAppendBlock(d, d.Payload.(AppendBlockPayload))
	case KindCloneBlock:
		return v.VisitCloneBlock(d, d.Payload.(CloneBlockPayload))
	case KindRemoveBlocks:
		return v.VisitRemoveBlocks(d, d.Payload.(RemoveBlocksPayload))
	case KindUpdateContact:
		return v.VisitUpdateContact(d, d.Payload.(UpdateContactPayload))
	case KindClusterUpdate:
		return v.VisitClusterUpdate(d, d.Payload.(ClusterUpdatePayload))
	case KindUpdateFolder:
		return v.VisitUpdateFolder(d, d.Payload.(UpdateFolderPayload))
	case KindAdvance:
		return v.VisitAdvance(d, d.Payload.(AdvancePayload))
	case KindScanStart:
		return v.VisitScanStart(d, d.Payload.(ScanStartPayload))
	case KindScanFinish:
		return v.VisitScanFinish(d, d.Payload.(ScanFinishPayload))
	case KindScanRequest:
		return v.VisitScanRequest(d, d.Payload.(ScanRequestPayload))
	case KindFileAvailability:
		return v.VisitFileAvailability(d, d.Payload.(FileAvailabilityPayload))
	case KindBlocksAvailability:
		return v.VisitBlocksAvailability(d, d.Payload.(BlocksAvailabilityPayload))
	case KindIoFailure:
		return v.VisitIoFailure(d, d.Payload.(IoFailurePayload))
	case KindAggregate:
		return v.VisitAggregate(d, d.Payload.(AggregatePayload))
	default:
		return nil
	}
}

func dispatchContact(d *Diff, v ContactVisitor) error {
	switch d.Kind {
	case KindConnectRequest:
		return v.VisitConnectRequest(d, d.Payload.(ConnectRequestPayload))
	case KindDialRequest:
		return v.VisitDialRequest(d, d.Payload.(DialRequestPayload))
	case KindRelayConnectRequest:
		return v.VisitRelayConnectRequest(d, d.Payload.(RelayConnectRequestPayload))
	case KindPeerState:
		return v.VisitPeerState(d, d.Payload.(PeerStatePayload))
	case KindIgnoredConnected:
		return v.VisitIgnoredConnected(d, d.Payload.(IgnoredConnectedPayload))
	case KindUnknownConnected:
		return v.VisitUnknownConnected(d, d.Payload.(UnknownConnectedPayload))
	default:
		return nil
	}
}
