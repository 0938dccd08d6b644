// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package scanner

import (
	"io"

	"github.com/foldersync/foldersync/internal/identity"
)

// hashedBlock is one block's result from hashFile, offset in file-order.
type hashedBlock struct {
	Offset   int64
	Size     int32
	Hash     [32]byte
	WeakHash uint32
}

// hashFile reads path in blockSize chunks through the engine's fd cache,
// computing the strong and weak hash of each block (spec.md §4.G "Hash
// sub-task": "a segment_iterator task reads a configurable number of
// consecutive blocks from disk, streaming them into hasher workers"). This
// engine hashes synchronously on the scan goroutine rather than fanning out
// to separate hasher schedulers, since spec.md §5 leaves the hasher pool as
// a sibling scheduler this core does not yet stand up; concurrentHashesLeft
// still gates how many files may be mid-hash at once.
func (e *Engine) hashFile(path string, size int64) ([]hashedBlock, error) {
	f, err := e.fds.open(path)
	if err != nil {
		return nil, err
	}

	blockSize := int64(e.cfg.blockSize())
	n := (size + blockSize - 1) / blockSize
	blocks := make([]hashedBlock, 0, n)
	buf := make([]byte, blockSize)

	var offset int64
	for offset < size {
		want := blockSize
		if size-offset < want {
			want = size - offset
		}
		if _, err := io.ReadFull(io.NewSectionReader(f, offset, want), buf[:want]); err != nil {
			e.fds.forget(path)
			return nil, err
		}
		blocks = append(blocks, hashedBlock{
			Offset:   offset,
			Size:     int32(want),
			Hash:     identity.HashBlock(buf[:want]),
			WeakHash: weakHash(buf[:want]),
		})
		offset += want
	}
	return blocks, nil
}
