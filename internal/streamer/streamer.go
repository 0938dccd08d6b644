// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package streamer implements the updates streamer of spec.md §4.J: given a
// peer's remembered (index-ID, max-sequence) for a shared folder, it yields
// the local files the peer has not yet seen, in ascending sequence order.
package streamer

import (
	"sort"
	"sync"

	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/protocol"
)

// PeerState is what the streamer needs to know about a peer's last-known
// view of one local folder-info, spec.md §4.J: "looks up the peer's
// remembered (index_id, max_sequence) per shared folder."
type PeerState struct {
	IndexID     uint64
	MaxSequence int64
}

// Streamer keeps an ordered, by-sequence view of one local FolderInfo's
// files, refreshed incrementally by OnUpdate so that a newly committed
// local file becomes visible to Iterate without a full re-scan of the
// FolderInfo's map (spec.md §4.J: "Supports online updates").
type Streamer struct {
	mu    sync.RWMutex
	files []*protocol.FileInfo // kept sorted ascending by Sequence
}

// New builds a Streamer from a FolderInfo's current file set. Typically
// called once per (cluster, folder) at startup or when a folder is created;
// after that, OnUpdate maintains the ordering.
func New(fi *model.FolderInfo) *Streamer {
	s := &Streamer{}
	for _, f := range fi.Files {
		s.files = append(s.files, f)
	}
	sort.Slice(s.files, func(i, j int) bool { return s.files[i].Sequence < s.files[j].Sequence })
	return s
}

// OnUpdate inserts or repositions file in the streamer's ordered view, per
// spec.md §4.J: "when a new local file is committed, on_update(file)
// inserts it into the streamer's ordered view." Since a file's sequence
// only ever increases (spec.md §3 invariant 1), a known file is always
// moved toward the tail; this still does a linear scan to find any prior
// entry for the same name, which is the same cost the teacher's in-memory
// index pays for a single-file update.
func (s *Streamer) OnUpdate(file *protocol.FileInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.files {
		if f.Name == file.Name {
			s.files = append(s.files[:i], s.files[i+1:]...)
			break
		}
	}
	i := sort.Search(len(s.files), func(i int) bool { return s.files[i].Sequence >= file.Sequence })
	s.files = append(s.files, nil)
	copy(s.files[i+1:], s.files[i:])
	s.files[i] = file
}

// Iterate calls fn for every file peer should receive given its remembered
// state, per spec.md §4.J / §8 property 6: "If the peer's index-ID differs
// from the local folder-info's, the streamer yields all local files in
// ascending sequence order (full re-sync). Otherwise it yields files with
// sequence > peer.max_sequence." fn's bool return stops iteration early
// when false.
func (s *Streamer) Iterate(localIndexID uint64, peer PeerState, fn func(*protocol.FileInfo) bool) {
	s.mu.RLock()
	files := s.files
	s.mu.RUnlock()

	fullResync := peer.IndexID != localIndexID
	for _, f := range files {
		if !fullResync && f.Sequence <= peer.MaxSequence {
			continue
		}
		if !fn(f) {
			return
		}
	}
}

// Collect is Iterate's convenience form for callers (tests, small peers)
// that want the whole slice rather than a callback.
func (s *Streamer) Collect(localIndexID uint64, peer PeerState) []*protocol.FileInfo {
	var out []*protocol.FileInfo
	s.Iterate(localIndexID, peer, func(f *protocol.FileInfo) bool {
		out = append(out, f)
		return true
	})
	return out
}

// Len reports how many files the streamer currently tracks.
func (s *Streamer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
