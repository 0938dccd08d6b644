// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package blockstore

import "github.com/chmduquesne/rollinghash/adler32"

// WeakHash computes the rolling checksum carried alongside a block's
// strong SHA-256 hash (spec.md §3 Block.weak_hash). It lets the scan
// engine's rehash path (spec.md §4.G "rehashed_incomplete") cheaply
// compare candidate byte windows before committing to a full SHA-256.
func WeakHash(data []byte) uint32 {
	h := adler32.New()
	_, _ = h.Write(data)
	return h.Sum32()
}
