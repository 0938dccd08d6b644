// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"strings"
	"testing"
	"time"

	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/identity"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/protocol"
)

func devID(b byte) model.DeviceID {
	raw := make([]byte, 32)
	raw[0] = b
	id, err := identity.DeviceIDFromBytes(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func newTestCluster(t *testing.T, self model.DeviceID, folderID string, peers ...model.DeviceID) *model.Cluster {
	t.Helper()
	c := model.New(self)
	if err := c.CreateFolder(model.Folder{ID: folderID}); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if err := c.UpdatePeer(model.Device{ID: self}); err != nil {
		t.Fatalf("UpdatePeer(self): %v", err)
	}
	for _, p := range peers {
		if err := c.UpdatePeer(model.Device{ID: p}); err != nil {
			t.Fatalf("UpdatePeer: %v", err)
		}
		if err := c.ShareFolder(folderID, p); err != nil {
			t.Fatalf("ShareFolder: %v", err)
		}
	}
	return c
}

// Scenario: a brand-new file is scanned locally and becomes visible in the
// self device's FolderInfo, with its sole block referenced exactly once in
// the block table (spec.md §8 property 2).
func TestNewScannedFileInstallsFileAndRefsBlock(t *testing.T) {
	self := devID(1)
	c := newTestCluster(t, self, "default")

	hash := []byte("0123456789abcdef0123456789abcdef")
	file := protocol.FileInfo{
		Name: "hello.txt",
		Type: protocol.FileInfoTypeFile,
		Size: 4,
		Blocks: []protocol.BlockInfo{
			{Offset: 0, Size: 4, Hash: hash},
		},
		LocallyAvailable: []bool{true},
	}
	d := NewScannedFile("default", file, []BlockRecord{{Hash: hash, Size: 4, WeakHash: 42}}, nil)

	if err := d.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, ok := c.LocalFile("default", "hello.txt")
	if !ok {
		t.Fatal("expected hello.txt to be installed")
	}
	if got.Size != 4 {
		t.Errorf("Size = %d, want 4", got.Size)
	}
	if rc := c.Blocks.RefCount(blockstore.HashFromBytes(hash)); rc != 1 {
		t.Errorf("block refcount = %d, want 1", rc)
	}
}

// Scenario: an existing file shrinks to empty; its block is released and
// the file becomes locally available per the empty-file boundary rule
// (spec.md §8 scenario, protocol.FileInfo.IsLocallyAvailable).
func TestLocalUpdateToEmptyReleasesBlock(t *testing.T) {
	self := devID(1)
	c := newTestCluster(t, self, "default")

	hash := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	original := protocol.FileInfo{
		Name:             "shrink.bin",
		Type:             protocol.FileInfoTypeFile,
		Size:             4,
		Blocks:           []protocol.BlockInfo{{Offset: 0, Size: 4, Hash: hash}},
		LocallyAvailable: []bool{true},
	}
	if err := NewScannedFile("default", original, []BlockRecord{{Hash: hash, Size: 4}}, nil).Apply(c); err != nil {
		t.Fatalf("initial Apply: %v", err)
	}
	if rc := c.Blocks.RefCount(blockstore.HashFromBytes(hash)); rc != 1 {
		t.Fatalf("precondition: refcount = %d, want 1", rc)
	}

	emptied := protocol.FileInfo{
		Name: "shrink.bin",
		Type: protocol.FileInfoTypeFile,
		Size: 0,
	}
	if err := LocalFileUpdated("default", original, emptied, nil, nil).Apply(c); err != nil {
		t.Fatalf("update Apply: %v", err)
	}

	if !emptied.IsLocallyAvailable() {
		t.Error("emptied file should be locally available per the boundary rule")
	}
	if rc := c.Blocks.RefCount(blockstore.HashFromBytes(hash)); rc != 0 {
		t.Errorf("block refcount after release = %d, want 0", rc)
	}
	if c.Blocks.Has(blockstore.HashFromBytes(hash)) {
		t.Error("orphaned block should have been removed from the store")
	}
}

// Scenario 6 from spec.md §8: local x at version {self:1} modified_s=100,
// peer x at version {peer:1} modified_s=101. The versions are incomparable
// and the peer's time is strictly greater, so the resolver's
// resolve_remote_win action must install the peer's content under the
// original name and preserve the local content under a conflicting name.
func TestAdvanceResolveRemoteWinRenamesLocal(t *testing.T) {
	self := devID(1)
	peer := devID(2)
	c := newTestCluster(t, self, "default", peer)

	localFile := protocol.FileInfo{
		Name:       "x",
		Type:       protocol.FileInfoTypeFile,
		ModifiedS:  100,
		ModifiedBy: protocol.ShortIDFromDeviceID(self),
		Version:    protocol.Vector{{ID: uint64(protocol.ShortIDFromDeviceID(self)), Value: 1}},
	}
	if err := NewScannedFile("default", localFile, nil, nil).Apply(c); err != nil {
		t.Fatalf("seed local file: %v", err)
	}

	peerFile := protocol.FileInfo{
		Name:       "x",
		Type:       protocol.FileInfoTypeFile,
		ModifiedS:  101,
		ModifiedBy: protocol.ShortIDFromDeviceID(peer),
		Version:    protocol.Vector{{ID: uint64(protocol.ShortIDFromDeviceID(peer)), Value: 1}},
	}
	at := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	d := Advance("default", ActionResolveRemoteWin, peerFile, peer, at)
	if err := d.Apply(c); err != nil {
		t.Fatalf("Apply advance: %v", err)
	}

	installed, ok := c.LocalFile("default", "x")
	if !ok {
		t.Fatal("expected x to exist with peer's content")
	}
	if installed.ModifiedS != 101 {
		t.Errorf("installed ModifiedS = %d, want 101", installed.ModifiedS)
	}

	f, _ := c.Folder("default")
	var conflictName string
	for name := range f.FolderInfos[self].Files {
		if strings.HasPrefix(name, "x.sync-conflict-") {
			conflictName = name
		}
	}
	if conflictName == "" {
		t.Fatal("expected a x.sync-conflict-* entry preserving local content")
	}
	conflicted := f.FolderInfos[self].Files[conflictName]
	if conflicted.ModifiedS != 100 {
		t.Errorf("conflicted ModifiedS = %d, want 100", conflicted.ModifiedS)
	}
	if !strings.Contains(conflictName, peer.Short()) {
		t.Errorf("conflict name %q should carry the winner's short device ID", conflictName)
	}
}

// resolve_local_win must leave the local file untouched and only annotate
// the peer's record (spec.md §4.F).
func TestAdvanceResolveLocalWinLeavesLocalUntouched(t *testing.T) {
	self := devID(1)
	peer := devID(2)
	c := newTestCluster(t, self, "default", peer)

	localFile := protocol.FileInfo{Name: "keep.txt", Type: protocol.FileInfoTypeFile, ModifiedS: 200}
	if err := NewScannedFile("default", localFile, nil, nil).Apply(c); err != nil {
		t.Fatalf("seed local file: %v", err)
	}
	peerFile := protocol.FileInfo{Name: "keep.txt", Type: protocol.FileInfoTypeFile, ModifiedS: 150, Sequence: 1}
	// Install the peer's record directly via an update_folder diff so
	// MarkPeerFileIgnored below has something to flag.
	uf := New(KindUpdateFolder, UpdateFolderPayload{Peer: peer, Folder: "default", Files: []protocol.FileInfo{peerFile}})
	if err := uf.Apply(c); err != nil {
		t.Fatalf("seed peer file: %v", err)
	}

	d := Advance("default", ActionResolveLocalWin, peerFile, peer, time.Now())
	if err := d.Apply(c); err != nil {
		t.Fatalf("Apply advance: %v", err)
	}

	local, ok := c.LocalFile("default", "keep.txt")
	if !ok || local.ModifiedS != 200 {
		t.Fatalf("local file should be untouched, got %+v ok=%v", local, ok)
	}
	f, _ := c.Folder("default")
	if !f.FolderInfos[peer].Files["keep.txt"].IgnoredLocal {
		t.Error("peer's record should be marked IgnoredLocal")
	}
}

// remote_copy must mint a fresh sequence in the self-device's own
// FolderInfo sequence space rather than reusing the peer's Sequence, which
// belongs to the peer's own independent per-(folder,device) sequence space
// (spec.md §3 FolderInfo).
func TestAdvanceRemoteCopyMintsFreshSelfSequence(t *testing.T) {
	self := devID(1)
	peer := devID(2)
	c := newTestCluster(t, self, "default", peer)

	existing := protocol.FileInfo{Name: "already-here.txt", Type: protocol.FileInfoTypeFile}
	if err := NewScannedFile("default", existing, nil, nil).Apply(c); err != nil {
		t.Fatalf("seed local file: %v", err)
	}
	f, _ := c.Folder("default")
	selfMaxBefore := f.FolderInfos[self].MaxSequence

	peerFile := protocol.FileInfo{Name: "new.txt", Type: protocol.FileInfoTypeFile, Sequence: 999999}
	d := Advance("default", ActionRemoteCopy, peerFile, peer, time.Now())
	if err := d.Apply(c); err != nil {
		t.Fatalf("Apply advance: %v", err)
	}

	installed, ok := c.LocalFile("default", "new.txt")
	if !ok {
		t.Fatal("expected new.txt to be installed")
	}
	if installed.Sequence == peerFile.Sequence {
		t.Errorf("installed Sequence = %d, must not reuse the peer's Sequence", installed.Sequence)
	}
	if installed.Sequence != selfMaxBefore+1 {
		t.Errorf("installed Sequence = %d, want %d (self MaxSequence+1)", installed.Sequence, selfMaxBefore+1)
	}
	if f.FolderInfos[self].MaxSequence != installed.Sequence {
		t.Errorf("self FolderInfo.MaxSequence = %d, want %d", f.FolderInfos[self].MaxSequence, installed.Sequence)
	}
}

// Aggregate must apply every constituent diff atomically, in order, within
// the single write lock acquired for the aggregate itself (spec.md §4.D).
func TestAggregateAppliesAllConstituents(t *testing.T) {
	self := devID(1)
	c := newTestCluster(t, self, "default")

	f1 := protocol.FileInfo{Name: "a.txt", Type: protocol.FileInfoTypeFile}
	f2 := protocol.FileInfo{Name: "b.txt", Type: protocol.FileInfoTypeFile}
	agg := Aggregate(
		NewScannedFile("default", f1, nil, nil),
		NewScannedFile("default", f2, nil, nil),
	)
	if err := agg.Apply(c); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := c.LocalFile("default", "a.txt"); !ok {
		t.Error("a.txt should have been installed")
	}
	if _, ok := c.LocalFile("default", "b.txt"); !ok {
		t.Error("b.txt should have been installed")
	}
}

// A failing apply taints the cluster exactly once (spec.md §4.C/§4.D).
func TestApplyFailureTaintsCluster(t *testing.T) {
	self := devID(1)
	c := newTestCluster(t, self, "default")

	bad := New(KindShareFolder, ShareFolderPayload{Folder: "does-not-exist", Peer: self})
	if err := bad.Apply(c); err == nil {
		t.Fatal("expected an error for a nonexistent folder")
	}
	if !c.IsTainted() {
		t.Error("cluster should be tainted after a failed apply")
	}
}
