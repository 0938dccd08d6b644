// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package resolver

import (
	"testing"

	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/protocol"
)

func TestResolveLocalAbsent(t *testing.T) {
	got := Resolve(nil, protocol.FileInfo{Name: "x"})
	if got.Action != diff.ActionRemoteCopy {
		t.Errorf("Action = %v, want remote_copy", got.Action)
	}
}

func TestResolvePeerDominates(t *testing.T) {
	local := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 1}}}
	peer := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 2}}}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionRemoteCopy {
		t.Errorf("Action = %v, want remote_copy", got.Action)
	}
}

func TestResolveLocalDominates(t *testing.T) {
	local := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 2}}}
	peer := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 1}}}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionResolveLocalWin {
		t.Errorf("Action = %v, want resolve_local_win", got.Action)
	}
}

func TestResolveEqualVersionsIgnored(t *testing.T) {
	v := protocol.Vector{{ID: 1, Value: 1}}
	local := protocol.FileInfo{Version: v}
	peer := protocol.FileInfo{Version: append(protocol.Vector{}, v...)}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionIgnore {
		t.Errorf("Action = %v, want ignore", got.Action)
	}
}

func TestResolveInvalidPeerIgnored(t *testing.T) {
	local := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 1}}}
	peer := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 2}}, Invalid: true}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionIgnore {
		t.Errorf("Action = %v, want ignore for an invalid peer file", got.Action)
	}
}

func TestResolveIgnoredLocalPeerIgnored(t *testing.T) {
	local := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 1}}}
	peer := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 2}}, IgnoredLocal: true}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionIgnore {
		t.Errorf("Action = %v, want ignore for a policy-ignored peer file", got.Action)
	}
}

// An invalid/ignored peer file takes priority even over L absent.
func TestResolveInvalidPeerIgnoredEvenWithNoLocal(t *testing.T) {
	peer := protocol.FileInfo{Version: protocol.Vector{{ID: 1, Value: 1}}, Invalid: true}
	got := Resolve(nil, peer)
	if got.Action != diff.ActionIgnore {
		t.Errorf("Action = %v, want ignore", got.Action)
	}
}

// Equal versions but an incomplete local copy must be re-requested, not
// ignored forever.
func TestResolveEqualVersionsButLocallyUnavailableReCopies(t *testing.T) {
	v := protocol.Vector{{ID: 1, Value: 1}}
	local := protocol.FileInfo{
		Version:          v,
		Blocks:           []protocol.BlockInfo{{Size: 1}, {Size: 1}},
		LocallyAvailable: []bool{true, false},
	}
	peer := protocol.FileInfo{Version: append(protocol.Vector{}, v...)}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionRemoteCopy {
		t.Errorf("Action = %v, want remote_copy for an equal-but-incomplete local file", got.Action)
	}
}

// Scenario 6 from spec.md §8: concurrent edits, peer's modified time
// strictly greater -> resolve_remote_win.
func TestResolveConcurrentPeerNewer(t *testing.T) {
	local := protocol.FileInfo{
		ModifiedS:  100,
		ModifiedBy: 1,
		Version:    protocol.Vector{{ID: 1, Value: 1}},
	}
	peer := protocol.FileInfo{
		ModifiedS:  101,
		ModifiedBy: 2,
		Version:    protocol.Vector{{ID: 2, Value: 1}},
	}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionResolveRemoteWin {
		t.Errorf("Action = %v, want resolve_remote_win", got.Action)
	}
}

func TestResolveConcurrentLocalNewer(t *testing.T) {
	local := protocol.FileInfo{
		ModifiedS:  200,
		ModifiedBy: 1,
		Version:    protocol.Vector{{ID: 1, Value: 1}},
	}
	peer := protocol.FileInfo{
		ModifiedS:  150,
		ModifiedBy: 2,
		Version:    protocol.Vector{{ID: 2, Value: 1}},
	}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionResolveLocalWin {
		t.Errorf("Action = %v, want resolve_local_win", got.Action)
	}
}

// An exact tie on modified_s falls through to the modifier device; the
// peer's modifier (2) is greater than local's (1), so remote wins.
func TestResolveConcurrentTieFavorsRemote(t *testing.T) {
	local := protocol.FileInfo{
		ModifiedS:  100,
		ModifiedBy: 1,
		Version:    protocol.Vector{{ID: 1, Value: 1}},
	}
	peer := protocol.FileInfo{
		ModifiedS:  100,
		ModifiedBy: 2,
		Version:    protocol.Vector{{ID: 2, Value: 1}},
	}
	got := Resolve(&local, peer)
	if got.Action != diff.ActionResolveRemoteWin {
		t.Errorf("Action = %v, want resolve_remote_win on tie", got.Action)
	}
}
