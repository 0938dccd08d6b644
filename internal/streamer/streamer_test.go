// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package streamer

import (
	"testing"

	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/protocol"
)

func folderInfoWithFiles(names ...string) *model.FolderInfo {
	var self model.DeviceID
	fi := model.NewFolderInfo("1234-5678", self, 77)
	for i, n := range names {
		fi.Files[n] = &protocol.FileInfo{Name: n, Sequence: int64(i + 1)}
	}
	return fi
}

// TestMatchingIndexYieldsNewerOnly is spec.md §8 scenario 4.
func TestMatchingIndexYieldsNewerOnly(t *testing.T) {
	fi := folderInfoWithFiles("a.txt", "b.txt")
	s := New(fi)

	got := s.Collect(77, PeerState{IndexID: 77, MaxSequence: 1})
	if len(got) != 1 || got[0].Name != "b.txt" {
		t.Fatalf("got %v, want [b.txt]", names(got))
	}
}

// TestMismatchedIndexYieldsEverything is spec.md §8 scenario 5.
func TestMismatchedIndexYieldsEverything(t *testing.T) {
	fi := folderInfoWithFiles("a.txt", "b.txt")
	s := New(fi)

	got := s.Collect(77, PeerState{IndexID: 0, MaxSequence: 0})
	if len(got) != 2 || got[0].Name != "a.txt" || got[1].Name != "b.txt" {
		t.Fatalf("got %v, want [a.txt b.txt]", names(got))
	}
}

func TestOnUpdateInsertsInSequenceOrder(t *testing.T) {
	fi := folderInfoWithFiles("a.txt", "b.txt")
	s := New(fi)

	s.OnUpdate(&protocol.FileInfo{Name: "c.txt", Sequence: 3})
	got := s.Collect(77, PeerState{IndexID: 77, MaxSequence: 0})
	if len(got) != 3 || got[2].Name != "c.txt" {
		t.Fatalf("got %v, want last=c.txt", names(got))
	}
}

func TestOnUpdateRepositionsExistingFile(t *testing.T) {
	fi := folderInfoWithFiles("a.txt", "b.txt")
	s := New(fi)

	s.OnUpdate(&protocol.FileInfo{Name: "a.txt", Sequence: 5})
	got := s.Collect(77, PeerState{IndexID: 77, MaxSequence: 0})
	if len(got) != 2 || got[1].Name != "a.txt" {
		t.Fatalf("got %v, want last=a.txt after bump", names(got))
	}
}

func names(fs []*protocol.FileInfo) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}
