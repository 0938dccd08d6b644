// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package sequencer

import "testing"

func TestDeterministicWithSameSeed(t *testing.T) {
	a := NewWithSeed(1234)
	b := NewWithSeed(1234)

	for i := 0; i < 10; i++ {
		if a.NextUUID() != b.NextUUID() {
			t.Fatalf("sequencers with the same seed diverged at step %d", i)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewWithSeed(1)
	b := NewWithSeed(2)
	if a.NextUint64() == b.NextUint64() {
		t.Fatal("different seeds should (overwhelmingly likely) diverge")
	}
}

func TestUUIDVersionBits(t *testing.T) {
	s := NewWithSeed(42)
	u := s.NextUUID()
	if u[6]&0xf0 != 0x40 {
		t.Fatalf("expected version 4, got %x", u[6])
	}
	if u[8]&0xc0 != 0x80 {
		t.Fatalf("expected RFC4122 variant, got %x", u[8])
	}
}
