// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sequencer provides the deterministic, seed-injectable UUID and
// integer generator used for new entity keys and fresh index-IDs (spec.md
// §4.I).
package sequencer

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// Sequencer generates process-unique UUIDs and uint64s. It is seeded at
// construction so that tests can inject a fixed seed and get reproducible
// sequences, per spec.md §4.I.
type Sequencer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Sequencer seeded from a real entropy source.
func New() *Sequencer {
	return NewWithSeed(uuid.New().ID() ^ uint32(rand.Int63()))
}

// NewWithSeed creates a Sequencer with a fixed seed, for deterministic
// tests.
func NewWithSeed(seed uint32) *Sequencer {
	return &Sequencer{rng: rand.New(rand.NewSource(int64(seed)))}
}

// NextUUID returns a new random (v4-shaped, deterministically derived from
// the sequencer's own RNG rather than crypto/rand) UUID.
func (s *Sequencer) NextUUID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u uuid.UUID
	_, _ = s.rng.Read(u[:])
	u[6] = (u[6] & 0x0f) | 0x40 // version 4
	u[8] = (u[8] & 0x3f) | 0x80 // RFC 4122 variant
	return u
}

// NextUint64 returns a new pseudo-random uint64, used for fresh index-IDs
// and similar 64-bit keys (spec.md §4.D create_folder, share_folder).
func (s *Sequencer) NextUint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64()
}
