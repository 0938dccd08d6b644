// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package scanner

import "github.com/gobwas/glob"

// TempPattern is the glob a scanned name is checked against to classify it
// as a partially-synced temporary file (spec.md §4.G: "if the name matches
// the temporary-file pattern, an incomplete task").
const TempPattern = ".*.fsync-tmp.*"

var tempGlob = glob.MustCompile(TempPattern)

// IsTemporary reports whether base (a single path element, not a full
// path) looks like a temp file left behind by an in-progress transfer.
func IsTemporary(base string) bool {
	return tempGlob.Match(base)
}
