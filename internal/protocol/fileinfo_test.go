// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package protocol

import "testing"

func TestBlockCount(t *testing.T) {
	cases := []struct {
		size, blockSize int64
		want            int
	}{
		{0, 128 << 10, 0},
		{1, 128 << 10, 1},
		{128 << 10, 128 << 10, 1},
		{128<<10 + 1, 128 << 10, 2},
		{5, 5, 1},
	}
	for _, tc := range cases {
		if got := BlockCount(tc.size, int32(tc.blockSize)); got != tc.want {
			t.Errorf("BlockCount(%d, %d) = %d, want %d", tc.size, tc.blockSize, got, tc.want)
		}
	}
}

func TestIsLocallyAvailable(t *testing.T) {
	empty := FileInfo{Type: FileInfoTypeFile, Size: 0}
	if !empty.IsLocallyAvailable() {
		t.Fatal("empty file should be locally available")
	}

	dir := FileInfo{Type: FileInfoTypeDirectory}
	if !dir.IsLocallyAvailable() {
		t.Fatal("directory should be locally available")
	}

	partial := FileInfo{
		Type:             FileInfoTypeFile,
		Size:             10,
		Blocks:           []BlockInfo{{}, {}},
		LocallyAvailable: []bool{true, false},
	}
	if partial.IsLocallyAvailable() {
		t.Fatal("partial file should not be locally available")
	}

	full := partial
	full.LocallyAvailable = []bool{true, true}
	if !full.IsLocallyAvailable() {
		t.Fatal("fully-present file should be locally available")
	}
}

func TestWinsConflict(t *testing.T) {
	var a, b DeviceID
	a[0] = 1
	b[0] = 2
	if WinsConflict(100, a, 101, b) >= 0 {
		t.Fatal("later modified_s should win")
	}
	if WinsConflict(100, a, 100, a) != 0 {
		t.Fatal("identical should tie")
	}
}
