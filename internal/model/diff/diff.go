// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"fmt"

	"github.com/foldersync/foldersync/internal/logger"
	"github.com/foldersync/foldersync/internal/model"
)

var l = logger.NewFacility("diff", "the cluster diff pipeline")

// Diff is a single node in the tree described by spec.md §4.D: an optional
// child (a prerequisite, applied first, inside the same logical
// transaction) and an optional sibling (an independent follow-up, applied
// after). Applying the root applies the whole tree in left-first
// depth-first order, aborting on the first error.
type Diff struct {
	Kind    Kind
	Payload any

	child   *Diff
	sibling *Diff
}

// New constructs a leaf diff of the given kind and payload.
func New(kind Kind, payload any) *Diff {
	return &Diff{Kind: kind, Payload: payload}
}

// AssignChild attaches d2 as d's child. Spec.md §4.D: asserted that no
// child already exists, since a child slot encodes exactly one
// prerequisite relationship.
func (d *Diff) AssignChild(d2 *Diff) {
	if d.child != nil {
		panic("diff: AssignChild called on a diff that already has a child")
	}
	d.child = d2
}

// AssignSibling appends d2 to the end of d's sibling chain and returns the
// new tail, so callers can chain further appends.
func (d *Diff) AssignSibling(d2 *Diff) *Diff {
	cur := d
	for cur.sibling != nil {
		cur = cur.sibling
	}
	cur.sibling = d2
	return d2
}

func (d *Diff) Child() *Diff   { return d.child }
func (d *Diff) Sibling() *Diff { return d.sibling }

// Apply applies the whole diff tree rooted at d to cluster, tainting the
// cluster on the first error encountered (spec.md §4.D "apply(cluster) of
// the base class calls the concrete apply_impl(cluster) and, if it fails,
// marks the cluster tainted").
func (d *Diff) Apply(cluster *model.Cluster) error {
	return d.ApplyWithController(cluster, DefaultController{})
}

// ApplyWithController is the variant that threads an ApplyController
// through the traversal (spec.md §4.D), letting higher layers interpose
// progress reporting or batching around selected kinds without modifying
// the diffs themselves.
func (d *Diff) ApplyWithController(cluster *model.Cluster, ctrl ApplyController) error {
	if d == nil {
		return nil
	}

	cluster.Lock()
	defer cluster.Unlock()

	return d.applyLocked(cluster, ctrl)
}

// applyLocked assumes cluster's write lock is already held; child/sibling
// recursion stays under the same critical section so the whole tree is one
// logical transaction, matching spec.md §4.D.
func (d *Diff) applyLocked(cluster *model.Cluster, ctrl ApplyController) error {
	if d.child != nil {
		if err := d.child.applyLocked(cluster, ctrl); err != nil {
			return err
		}
	}

	if err := ctrl.Apply(d, cluster); err != nil {
		cluster.TaintLocked(err)
		return fmt.Errorf("diff: apply %s: %w", d.Kind, err)
	}

	if d.sibling != nil {
		if err := d.sibling.applyLocked(cluster, ctrl); err != nil {
			return err
		}
	}
	return nil
}

// applyImpl is the concrete per-kind mutation, equivalent to the source's
// virtual apply_impl. It runs with cluster's write lock held by the
// caller.
func applyImpl(d *Diff, cluster *model.Cluster) error {
	switch d.Kind {
	case KindLoadCluster:
		return applyLoadCluster(d, cluster)
	case KindBlocks:
		return applyBlocks(d, cluster)
	case KindFileInfos:
		return applyFileInfos(d, cluster)
	case KindFolders:
		return applyFolders(d, cluster)
	case KindPendingFolders:
		return applyPendingFolders(d, cluster)
	case KindDevices:
		return applyDevices(d, cluster)
	case KindPendingDevices:
		return applyPendingDevices(d, cluster)
	case KindIgnoredDevices:
		return applyIgnoredDevices(d, cluster)

	case KindCreateFolder:
		return applyCreateFolder(d, cluster)
	case KindUpsertFolder:
		return applyUpsertFolder(d, cluster)
	case KindUpsertFolderInfo:
		return applyUpsertFolderInfo(d, cluster)
	case KindRemoveFolder:
		return applyRemoveFolder(d, cluster)
	case KindShareFolder:
		return applyShareFolder(d, cluster)
	case KindUnshareFolder:
		return applyUnshareFolder(d, cluster)
	case KindUpdatePeer:
		return applyUpdatePeer(d, cluster)
	case KindRemovePeer:
		return applyRemovePeer(d, cluster)
	case KindAddIgnoredDevice:
		return applyAddIgnoredDevice(d, cluster)
	case KindAddPendingDevice:
		return applyAddPendingDevice(d, cluster)
	case KindRemovePendingDevice:
		return applyRemovePendingDevice(d, cluster)
	case KindAddUnknownDevice:
		return applyAddUnknownDevice(d, cluster)
	case KindRemoveUnknownDevice:
		return applyRemoveUnknownDevice(d, cluster)
	case KindNewFile:
		return applyNewFile(d, cluster)
	case KindLocalUpdate:
		return applyLocalUpdate(d, cluster)
	case KindLockFile:
		return applyLockFile(d, cluster)
	case KindMarkReachable:
		return applyMarkReachable(d, cluster)
	case KindSuspendFolder:
		return applySuspendFolder(d, cluster)
	case KindAppendBlock:
		return applyAppendBlock(d, cluster)
	case KindCloneBlock:
		return applyCloneBlock(d, cluster)
	case KindRemoveBlocks:
		return applyRemoveBlocks(d, cluster)
	case KindUpdateContact:
		return applyUpdateContact(d, cluster)

	case KindClusterUpdate:
		return applyClusterUpdate(d, cluster)
	case KindUpdateFolder:
		return applyUpdateFolder(d, cluster)

	case KindAdvance:
		return applyAdvance(d, cluster)

	case KindScanStart, KindScanFinish, KindScanRequest,
		KindFileAvailability, KindBlocksAvailability, KindIoFailure:
		return applyLocalGroup(d, cluster)

	case KindConnectRequest, KindDialRequest, KindRelayConnectRequest,
		KindPeerState, KindIgnoredConnected, KindUnknownConnected:
		// Contact diffs do not mutate the persisted model (spec.md §4.D);
		// they only drive the networking layer via the ContactVisitor.
		// There is nothing to apply against the cluster itself.
		return nil

	case KindAggregate:
		return applyAggregate(d, cluster)

	default:
		return fmt.Errorf("diff: unknown kind %v", d.Kind)
	}
}
