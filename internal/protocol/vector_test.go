// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package protocol

import "testing"

func TestVectorUpdate(t *testing.T) {
	var v Vector

	v = v.Update(42)
	if v.Compare(Vector{{42, 1}}) != Equal {
		t.Fatalf("got %+v", v)
	}

	v = v.Update(36)
	if v.Compare(Vector{{36, 2}, {42, 1}}) != Equal {
		t.Fatalf("got %+v", v)
	}

	v = v.Update(37)
	if v.Compare(Vector{{36, 2}, {37, 3}, {42, 1}}) != Equal {
		t.Fatalf("got %+v", v)
	}

	v = v.Update(37)
	if v.Compare(Vector{{36, 2}, {37, 4}, {42, 1}}) != Equal {
		t.Fatalf("got %+v", v)
	}
}

func TestVectorCopyIndependent(t *testing.T) {
	v0 := Vector{{42, 1}}
	v1 := v0.Copy()
	v1 = v1.Update(42)
	if v0.Compare(v1) != Lesser {
		t.Fatalf("copy should be independent: %+v should precede %+v", v0, v1)
	}
}

func TestVectorCompare(t *testing.T) {
	cases := []struct {
		a, b Vector
		want Ordering
	}{
		{Vector{}, Vector{}, Equal},
		{Vector{}, nil, Equal},
		{nil, Vector{{42, 0}}, Equal},
		{Vector{{42, 33}}, Vector{{42, 33}}, Equal},
		{Vector{{42, 1}}, nil, Greater},
		{Vector{{42, 1}}, Vector{{42, 0}}, Greater},
		{Vector{{42, 0}}, Vector{{42, 1}}, Lesser},
		{Vector{{42, 2}}, Vector{{43, 1}}, ConcurrentGreater},
		{Vector{{43, 1}}, Vector{{42, 2}}, ConcurrentLesser},
		{Vector{{22, 23}, {42, 1}}, Vector{{22, 22}, {42, 2}}, ConcurrentGreater},
		{Vector{{22, 21}, {42, 2}}, Vector{{22, 22}, {42, 1}}, ConcurrentLesser},
	}
	for i, tc := range cases {
		if got := tc.a.Compare(tc.b); got != tc.want {
			t.Errorf("%d: %+v.Compare(%+v) = %v, want %v", i, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestVectorMerge(t *testing.T) {
	a := Vector{{22, 1}, {42, 2}}
	b := Vector{{22, 2}, {42, 1}}
	m := a.Merge(b)
	want := Vector{{22, 2}, {42, 2}}
	if m.Compare(want) != Equal {
		t.Fatalf("Merge = %+v, want %+v", m, want)
	}
}

func TestVectorConcurrent(t *testing.T) {
	a := Vector{{1, 1}}
	b := Vector{{2, 1}}
	if !a.Concurrent(b) {
		t.Fatalf("expected concurrent")
	}
	c := a.Update(1)
	if c.Concurrent(a) {
		t.Fatalf("expected not concurrent (c dominates a)")
	}
}
