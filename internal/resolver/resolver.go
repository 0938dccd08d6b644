// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package resolver implements the conflict-resolution policy of spec.md
// §4.F: given a peer's file and the local file (if any) at the same name,
// decide the advance_action the diff pipeline should carry out.
package resolver

import (
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/protocol"
)

// Decision is the resolver's output: the action internal/model/diff.Advance
// builds the corresponding diff for.
type Decision struct {
	Action diff.AdvanceAction
}

// Resolve implements spec.md §4.F's table exactly (evaluated top-down,
// first match wins):
//
//	P.invalid or P.ignored_by_policy             -> ignore
//	L absent                                    -> remote_copy
//	L.version == P.version and L is locally
//	available                                    -> ignore
//	P.version strictly dominates L.version       -> remote_copy
//	L.version strictly dominates P.version       -> resolve_local_win
//	versions incomparable (concurrent)           -> compare (modified_s,
//	                                                 modifier_device)
//	                                                 lexicographically;
//	                                                 greater side wins;
//	                                                 ties -> remote wins
func Resolve(local *protocol.FileInfo, peer protocol.FileInfo) Decision {
	if peer.Invalid || peer.IgnoredLocal {
		return Decision{Action: diff.ActionIgnore}
	}
	if local == nil {
		return Decision{Action: diff.ActionRemoteCopy}
	}

	switch peer.Version.Compare(local.Version) {
	case protocol.Greater:
		return Decision{Action: diff.ActionRemoteCopy}
	case protocol.Lesser:
		return Decision{Action: diff.ActionResolveLocalWin}
	case protocol.Equal:
		if local.IsLocallyAvailable() {
			return Decision{Action: diff.ActionIgnore}
		}
		// Equal versions but an incomplete local copy (e.g. an
		// interrupted download): re-request rather than ignore forever.
		return Decision{Action: diff.ActionRemoteCopy}
	default: // ConcurrentGreater or ConcurrentLesser: versions are incomparable
		return resolveConcurrent(*local, peer)
	}
}

// resolveConcurrent breaks a tie between two incomparable versions by
// comparing (modified_s, modifier_device) lexicographically; the greater
// side wins, and an exact tie favors the remote side (spec.md §4.F).
func resolveConcurrent(local, peer protocol.FileInfo) Decision {
	switch {
	case peer.ModifiedS > local.ModifiedS:
		return Decision{Action: diff.ActionResolveRemoteWin}
	case peer.ModifiedS < local.ModifiedS:
		return Decision{Action: diff.ActionResolveLocalWin}
	case peer.ModifiedBy >= local.ModifiedBy:
		return Decision{Action: diff.ActionResolveRemoteWin}
	default:
		return Decision{Action: diff.ActionResolveLocalWin}
	}
}
