// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package protocol holds the wire-adjacent value types the rest of the
// core operates on: device identifiers, version vectors, file metadata,
// and the (opaque, externally-framed) BEP message shapes. The transport
// and framing themselves are out of scope per spec.md §1; this package
// only carries the decoded structs the model consumes.
package protocol

import "github.com/foldersync/foldersync/internal/identity"

// DeviceID re-exports identity.DeviceID so that protocol consumers do not
// need to import internal/identity directly.
type DeviceID = identity.DeviceID

// Counter is one device's contribution to a Vector.
type Counter struct {
	ID    uint64 // short device ID, see ShortID
	Value uint64
}

// ShortID is the first 8 bytes of a DeviceID read big-endian (its
// high-order 64 bits), used as the compact key inside
// a Vector (spec.md §3: "version vector (list of (device-ID, counter)
// pairs)").
type ShortID uint64

func ShortIDFromDeviceID(id DeviceID) ShortID {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(id[i])
	}
	return ShortID(v)
}

// Vector is a version vector: at most one Counter per device, sorted by
// device ID ascending for deterministic comparison and serialization.
type Vector []Counter

type Ordering int

const (
	Equal Ordering = iota
	Greater
	Lesser
	ConcurrentGreater
	ConcurrentLesser
)

// Update bumps the counter for id to one more than the current maximum
// across the whole vector (matching the teacher's semantics exactly: a new
// local edit is stamped with a counter strictly greater than anything the
// vector has seen, not merely its own prior value plus one).
func (v Vector) Update(id ShortID) Vector {
	var maxVal uint64
	for _, c := range v {
		if c.Value > maxVal {
			maxVal = c.Value
		}
	}
	return v.updateTo(id, maxVal+1)
}

func (v Vector) updateTo(id ShortID, val uint64) Vector {
	for i := range v {
		if v[i].ID == uint64(id) {
			v[i].Value = val
			return v
		}
		if v[i].ID > uint64(id) {
			v = append(v, Counter{})
			copy(v[i+1:], v[i:])
			v[i] = Counter{ID: uint64(id), Value: val}
			return v
		}
	}
	return append(v, Counter{ID: uint64(id), Value: val})
}

// Copy returns an independent copy of the vector.
func (v Vector) Copy() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// CounterValue returns the counter value for id, or zero if absent (spec.md §3:
// "zero is the implied value for a missing Counter").
func (v Vector) CounterValue(id ShortID) uint64 {
	for _, c := range v {
		if c.ID == uint64(id) {
			return c.Value
		}
	}
	return 0
}

// Compare implements the total order described in spec.md §3: "A ≥ B iff
// every counter in B has a ≥ counterpart in A". When the vectors are
// concurrent (neither dominates), direction is broken by the first
// ascending device ID at which they differ, matching the teacher's
// deterministic tie-break.
func (v Vector) Compare(o Vector) Ordering {
	var gt, lt bool
	ids := mergedIDsAscending(v, o)
	var firstDiffGreater bool
	diffSeen := false
	for _, id := range ids {
		a := v.CounterValue(ShortID(id))
		b := o.CounterValue(ShortID(id))
		switch {
		case a > b:
			gt = true
			if !diffSeen {
				firstDiffGreater = true
				diffSeen = true
			}
		case a < b:
			lt = true
			if !diffSeen {
				firstDiffGreater = false
				diffSeen = true
			}
		}
	}
	switch {
	case gt && lt:
		if firstDiffGreater {
			return ConcurrentGreater
		}
		return ConcurrentLesser
	case gt:
		return Greater
	case lt:
		return Lesser
	default:
		return Equal
	}
}

func mergedIDsAscending(v, o Vector) []uint64 {
	set := map[uint64]struct{}{}
	for _, c := range v {
		set[c.ID] = struct{}{}
	}
	for _, c := range o {
		set[c.ID] = struct{}{}
	}
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortUint64s(ids)
	return ids
}

func sortUint64s(s []uint64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Concurrent reports whether v and o are concurrent (neither dominates).
func (v Vector) Concurrent(o Vector) bool {
	ord := v.Compare(o)
	return ord == ConcurrentGreater || ord == ConcurrentLesser
}

// Merge returns the pairwise-maximum vector of v and o.
func (v Vector) Merge(o Vector) Vector {
	out := v.Copy()
	for _, c := range o {
		if c.Value > out.CounterValue(ShortID(c.ID)) {
			out = out.updateTo(ShortID(c.ID), c.Value)
		}
	}
	return out
}

// Equal reports structural equality, used by the replay invariant (spec.md
// §8 property 1).
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}
