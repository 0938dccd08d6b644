// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"github.com/foldersync/foldersync/internal/model"
)

// applyClusterUpdate folds an incoming ClusterConfig into the local
// bookkeeping: folders the peer advertises that are unknown locally become
// pending_folder records (spec.md §3 "PendingFolder"), matching the
// cluster_config handling described in spec.md §5.
func applyClusterUpdate(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(ClusterUpdatePayload)
	for _, fc := range p.Config.Folders {
		if _, ok := cluster.Folder(fc.ID); ok {
			continue
		}
		found := false
		for _, existing := range cluster.PendingFolders() {
			if existing.ID == fc.ID {
				found = true
				break
			}
		}
		if found {
			continue
		}
		cluster.PutPendingFolderLoaded(&model.PendingFolder{
			ID:        fc.ID,
			Label:     fc.Label,
			OfferedBy: p.Peer,
		})
	}
	return nil
}

// applyUpdateFolder installs a peer's index (full Index or incremental
// IndexUpdate) into that peer's FolderInfo, one file at a time, enforcing
// the monotonic-sequence invariant (spec.md §3 invariant 4).
func applyUpdateFolder(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(UpdateFolderPayload)
	for _, fc := range p.Files {
		if err := cluster.ApplyPeerFile(p.Folder, p.Peer, fc); err != nil {
			return err
		}
	}
	return nil
}
