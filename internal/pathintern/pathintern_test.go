// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package pathintern

import "testing"

func TestInternSharesAndSplits(t *testing.T) {
	c := New()
	p1 := c.Intern("a/b/c.txt")
	p2 := c.Intern("a/b/c.txt")
	if p1 != p2 {
		t.Fatal("expected the same shared Path instance")
	}
	if p1.ParentName() != "a/b" {
		t.Fatalf("ParentName = %q", p1.ParentName())
	}
	if p1.OwnName() != "c.txt" {
		t.Fatalf("OwnName = %q", p1.OwnName())
	}
}

func TestInternTopLevel(t *testing.T) {
	c := New()
	p := c.Intern("c.txt")
	if p.ParentName() != "" {
		t.Fatalf("ParentName = %q, want empty", p.ParentName())
	}
	if p.OwnName() != "c.txt" {
		t.Fatalf("OwnName = %q", p.OwnName())
	}
}

func TestReleaseEvicts(t *testing.T) {
	c := New()
	p1 := c.Intern("x/y")
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	p1.Release()
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after release", c.Len())
	}

	p2 := c.Intern("x/y")
	p3 := c.Intern("x/y")
	p2.Release()
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (still referenced)", c.Len())
	}
	p3.Release()
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}
