// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"testing"

	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/protocol"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFolderRoundTrip(t *testing.T) {
	s := openTestStore(t)

	f := *model.NewFolder("1234-5678")
	f.Label = "Photos"
	f.Path = "/home/user/photos"
	f.Type = model.SendAndReceive

	txn := s.NewTransaction()
	txn.Put(folderKey(f.ID), encodeFolder(&f))
	if err := s.Commit(txn); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	v, ok, err := s.Get(folderKey(f.ID))
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	got, err := decodeFolder(v)
	if err != nil {
		t.Fatalf("decodeFolder: %v", err)
	}
	if got.ID != f.ID || got.Label != f.Label || got.Path != f.Path {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestFileInfoRoundTrip(t *testing.T) {
	var dev model.DeviceID
	dev[0] = 0x42

	fc := protocol.FileInfo{
		Name:      "a.txt",
		Type:      protocol.FileInfoTypeFile,
		Size:      5,
		BlockSize: 5,
		Version:   protocol.Vector{{ID: 1, Value: 1}},
		Sequence:  1,
		Blocks:    []protocol.BlockInfo{{Offset: 0, Size: 5, Hash: []byte("01234567890123456789012345678901")}},
	}

	b := encodeFileInfo(&fc)
	got, err := decodeFileInfo(b)
	if err != nil {
		t.Fatalf("decodeFileInfo: %v", err)
	}
	if got.Name != fc.Name || got.Size != fc.Size || len(got.Blocks) != 1 {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, fc)
	}
	if !got.Version.Equal(fc.Version) {
		t.Errorf("version mismatch: got %v, want %v", got.Version, fc.Version)
	}
}

// TestLoadReconstructsCluster exercises spec.md §8 property 1's replay
// invariant at the store layer: persisting a folder+device+file then
// loading into a fresh cluster reconstructs the same visible state.
func TestLoadReconstructsCluster(t *testing.T) {
	s := openTestStore(t)

	var self model.DeviceID
	self[0] = 0x01

	txn := s.NewTransaction()
	f := *model.NewFolder("1234-5678")
	txn.Put(folderKey(f.ID), encodeFolder(&f))
	fi := model.NewFolderInfo(f.ID, self, 42)
	fi.MaxSequence = 1
	txn.Put(folderInfoKey(f.ID, self), encodeFolderInfo(fi))
	fc := protocol.FileInfo{Name: "a.txt", Type: protocol.FileInfoTypeFile, Sequence: 1}
	txn.Put(fileInfoKey(f.ID, self, fc.Name), encodeFileInfo(&fc))
	if err := s.Commit(txn); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	root, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cluster := model.New(self)
	if err := root.Apply(cluster); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cluster.IsTainted() {
		t.Fatalf("cluster tainted after load")
	}

	got, ok := cluster.Folder(f.ID)
	if !ok {
		t.Fatalf("folder %s not loaded", f.ID)
	}
	loadedFI, ok := got.FolderInfos[self]
	if !ok {
		t.Fatalf("folder-info for self not loaded")
	}
	if loadedFI.IndexID != 42 || loadedFI.MaxSequence != 1 {
		t.Errorf("folder-info mismatch: got %+v", loadedFI)
	}
	if _, ok := loadedFI.Files["a.txt"]; !ok {
		t.Errorf("file a.txt not loaded")
	}
}

// TestDBObserverWritesNewFile exercises the steady-state path: applying a
// new_file diff to the cluster, then letting DBObserver persist it, then
// reloading into a fresh cluster should see the same file.
func TestDBObserverWritesNewFile(t *testing.T) {
	s := openTestStore(t)

	var self model.DeviceID
	self[0] = 0x07
	cluster := model.New(self)

	create := diff.New(diff.KindCreateFolder, diff.CreateFolderPayload{Folder: *model.NewFolder("abcd-1234")})
	if err := create.Apply(cluster); err != nil {
		t.Fatalf("create folder: %v", err)
	}

	hash := []byte("0123456789012345678901234567890a")
	nf := diff.NewScannedFile("abcd-1234", protocol.FileInfo{
		Name: "x.bin", Type: protocol.FileInfoTypeFile, Size: 5, BlockSize: 5,
		Blocks:           []protocol.BlockInfo{{Size: 5, Hash: hash}},
		LocallyAvailable: []bool{true},
		Sequence:         1,
	}, []diff.BlockRecord{{Hash: hash, Size: 5}}, nil)
	if err := nf.Apply(cluster); err != nil {
		t.Fatalf("new file: %v", err)
	}

	obs := NewDBObserver(s, cluster)
	if err := obs.Observe(create); err != nil {
		t.Fatalf("observe create: %v", err)
	}
	if err := obs.Observe(nf); err != nil {
		t.Fatalf("observe new file: %v", err)
	}
	if err := obs.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	root, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fresh := model.New(self)
	if err := root.Apply(fresh); err != nil {
		t.Fatalf("apply reload: %v", err)
	}
	fi, ok := fresh.FolderInfo("abcd-1234", self)
	if !ok {
		t.Fatalf("folder-info not reloaded")
	}
	got, ok := fi.Files["x.bin"]
	if !ok {
		t.Fatalf("file x.bin not reloaded")
	}
	if got.Size != 5 || len(got.Blocks) != 1 {
		t.Errorf("reloaded file mismatch: %+v", got)
	}
}
