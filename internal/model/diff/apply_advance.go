// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/protocol"
)

// conflictTimestampFormat matches spec.md §4.D's conflicting-name format:
// name.sync-conflict-YYYYMMDD-HHMMSS-<first 7 chars of winner device-ID>.ext
const conflictTimestampFormat = "20060102-150405"

// applyAdvance installs the outcome of the conflict resolver (internal/resolver,
// spec.md §4.F) onto the self device's FolderInfo. remote_copy and
// resolve_remote_win both end with the peer file installed under its
// original name; resolve_remote_win additionally preserves the displaced
// local content under a conflicting name first (spec.md §4.D
// advance_t::create).
func applyAdvance(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(AdvancePayload)

	switch p.Action {
	case ActionIgnore:
		return nil

	case ActionResolveLocalWin:
		// Local content wins; mark the peer's record so it is not
		// re-requested until that peer reports a newer version (spec.md
		// §4.F: "marks the peer file so it will not be re-requested until
		// the peer advances").
		return cluster.MarkPeerFileIgnored(p.Folder, p.PeerDevice, p.PeerFile.Name)

	case ActionRemoteCopy:
		return installPeerFile(cluster, p.Folder, p.PeerFile)

	case ActionResolveRemoteWin:
		if local, ok := cluster.LocalFile(p.Folder, p.PeerFile.Name); ok {
			conflictName := conflictingName(local.Name, p.ConflictAt, p.PeerDevice)
			local.Name = conflictName
			if err := cluster.PutSelfFile(p.Folder, local); err != nil {
				return err
			}
		}
		return installPeerFile(cluster, p.Folder, p.PeerFile)

	default:
		return fmt.Errorf("diff: unknown advance action %v", p.Action)
	}
}

// installPeerFile creates a pending local file mirroring the peer's file:
// same name, version, and block list, with every block marked not yet
// locally available (spec.md §4.D advance_t::create, remote_copy branch).
// It takes a reference on every block the peer file names, since the block
// table's refcount counts all referencing file entries, not only locally
// fetched ones (spec.md §8 property 2).
//
// The installed copy gets a fresh Sequence minted in the self-device's own
// FolderInfo sequence space (fi.MaxSequence+1, the same scheme
// internal/scanner's engine uses), not peerFile.Sequence: that value
// belongs to the peer's independent per-(folder,device) sequence space
// (spec.md §3 FolderInfo) and would otherwise corrupt the self FolderInfo's
// MaxSequence bookkeeping when PutSelfFile adopts it.
func installPeerFile(cluster *model.Cluster, folder model.FolderID, peerFile protocol.FileInfo) error {
	local := peerFile
	local.Sequence = nextSelfSequence(cluster, folder)
	local.LocallyAvailable = make([]bool, len(peerFile.Blocks))
	for _, b := range peerFile.Blocks {
		h := blockstore.HashFromBytes(b.Hash)
		cluster.Blocks.Put(h, b.Size, 0)
		cluster.Blocks.Ref(h)
	}
	return cluster.PutSelfFile(folder, local)
}

func nextSelfSequence(cluster *model.Cluster, folder model.FolderID) int64 {
	if fi, ok := cluster.FolderInfo(folder, cluster.Self()); ok {
		return fi.MaxSequence + 1
	}
	return 1
}

func conflictingName(name string, at time.Time, winner model.DeviceID) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s.sync-conflict-%s-%s%s", base, at.Format(conflictTimestampFormat), winner.Short(), ext)
}
