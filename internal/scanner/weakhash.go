// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package scanner

import "github.com/chmduquesne/rollinghash/adler32"

// weakHash computes the rolling checksum carried alongside a block's
// strong hash (spec.md §3 "Block" weak_hash, computed during hashing per
// §4.G). It is a plain one-shot sum here; the rolling property only
// matters to the not-yet-built delta-copy fast path this core doesn't
// implement (spec.md Non-goals).
func weakHash(block []byte) uint32 {
	h := adler32.New()
	h.Write(block)
	return h.Sum32()
}
