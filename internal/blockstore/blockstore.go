// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package blockstore implements the content-addressed block table
// described in spec.md §4.B: a hash-keyed table of {size, weak hash,
// refcount}, mutated only through the diff pipeline so that persistence
// observes the same sequence of changes.
package blockstore

import (
	"encoding/hex"
	"sync"

	"github.com/greatroar/blobloom"
)

// Hash is a block's SHA-256 content address, stored as its hex string so
// it can key a plain Go map.
type Hash string

func HashFromBytes(b []byte) Hash { return Hash(hex.EncodeToString(b)) }

func (h Hash) Bytes() []byte {
	b, _ := hex.DecodeString(string(h))
	return b
}

// Entry is one block's record (spec.md §3 "Block").
type Entry struct {
	Size     int32
	WeakHash uint32
	RefCount int
}

// Store is the block table. All mutation happens through Put/Ref/Unref,
// called exclusively from diff apply_impl bodies (internal/model/diff) so
// the persistence bridge observes a faithful replay log.
type Store struct {
	mu      sync.RWMutex
	entries map[Hash]*Entry
	bloom   *blobloom.Filter
}

// New creates an empty content store. capacityHint sizes the bloom
// filter's false-positive budget; it need not be exact.
func New(capacityHint uint64) *Store {
	return &Store{
		entries: make(map[Hash]*Entry),
		bloom: blobloom.NewOptimized(blobloom.Config{
			Capacity: capacityHint,
			FPRate:   0.01,
		}),
	}
}

// MaybeHas is a fast, false-positive-tolerant pre-check the scan engine
// uses before taking the store lock to decide whether a freshly hashed
// block is probably already known (spec.md §4.G dedup fast path). A false
// result is authoritative; a true result must still be confirmed by Has.
func (s *Store) MaybeHas(h Hash) bool {
	return s.bloom.Has(bloomHash(h))
}

// Has reports authoritatively whether h is present with a non-zero
// refcount.
func (s *Store) Has(h Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[h]
	return ok && e.RefCount > 0
}

// Get returns the entry for h, if any.
func (s *Store) Get(h Hash) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[h]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Put inserts a block if new, or is a no-op (idempotent) if it already
// exists with the same size/weak hash, per spec.md §4.B. It does not by
// itself add a reference; callers pair Put with Ref for each file that
// references the block, mirroring the append_block / clone_block diff
// split in spec.md §4.D.
func (s *Store) Put(h Hash, size int32, weakHash uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[h]; ok {
		return
	}
	s.entries[h] = &Entry{Size: size, WeakHash: weakHash}
	s.bloom.Add(bloomHash(h))
}

// Ref increments h's refcount. The block must already have been Put.
func (s *Store) Ref(h Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[h]; ok {
		e.RefCount++
	}
}

// Unref decrements h's refcount and reports whether it reached zero
// (orphaned).
func (s *Store) Unref(h Hash) (orphaned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok || e.RefCount == 0 {
		return true
	}
	e.RefCount--
	return e.RefCount == 0
}

// RemoveBlocks deletes the given hashes unconditionally; called only by
// the remove_blocks diff after OrphanedBlocks().Deduce() (or an explicit
// peer-driven removal) has confirmed they are unreferenced.
func (s *Store) RemoveBlocks(hashes []Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range hashes {
		delete(s.entries, h)
	}
	// The bloom filter has no delete; stale positives just fall through to
	// the authoritative map check in Has, which is always consulted before
	// acting on a MaybeHas() hit.
}

// RefCount returns the reference count of h, used by the testable
// property in spec.md §8 ("block table's refcount for block h equals the
// total number of file entries referencing h").
func (s *Store) RefCount(h Hash) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[h]; ok {
		return e.RefCount
	}
	return 0
}

// Len reports the number of distinct blocks currently tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// OrphanedBlocks returns the set of hashes with a zero refcount, queued
// for a bulk remove_blocks diff (spec.md §4.B "orphaned_blocks.deduce()").
func (s *Store) OrphanedBlocks() []Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Hash
	for h, e := range s.entries {
		if e.RefCount == 0 {
			out = append(out, h)
		}
	}
	return out
}

func bloomHash(h Hash) uint64 {
	// The hex-encoded SHA-256 is already uniformly distributed; folding
	// its first 8 bytes gives blobloom a cheap, good-enough key without
	// re-hashing.
	b := h.Bytes()
	if len(b) < 8 {
		var v uint64
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
