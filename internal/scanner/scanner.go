// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scanner implements the local scan/hash engine of spec.md §4.G: a
// stack-driven task machine that walks one folder's filesystem tree,
// reconciles what it finds against the cluster model, hashes changed file
// content under a global concurrency budget, and emits diffs describing
// what changed.
package scanner

import (
	"time"

	"github.com/foldersync/foldersync/internal/logger"
)

var l = logger.NewFacility("scanner", "the local scan and hash engine")

// DefaultBlockSize is the block size new folders hash at absent an
// explicit override, matching the teacher's own default.
const DefaultBlockSize int32 = 128 << 10

// Config configures one folder's Engine (spec.md §4.G and §5 "fs." knobs).
type Config struct {
	Folder string
	Root   string

	BlockSize int32

	// IgnorePerms disables permission-bit comparisons in child_ready
	// (spec.md §4.G: "honoring the ignore-permissions flag").
	IgnorePerms bool

	// AutoNormalize corrects scanned names that are valid UTF-8 but not
	// in NFC form before they enter the cluster model.
	AutoNormalize bool

	// ConcurrentHashes is the concurrent-hash budget (spec.md §4.G
	// concurrent_hashes_left). Hashing runs synchronously on the scan
	// goroutine; there is no separate hasher pool.
	ConcurrentHashes int

	// FilesScanIterationLimit and BytesScanIterationLimit bound how much
	// of the pending-I/O queue is drained into one outbound model_update
	// per tick (spec.md §4.G "Scheduling").
	FilesScanIterationLimit int
	BytesScanIterationLimit int64

	// TempLifetime is how long an unmatched temporary file is kept before
	// being removed outright.
	TempLifetime time.Duration

	// FDCacheSize bounds the MRU open-file-descriptor cache used while
	// hashing (spec.md §5 fs.mru_size).
	FDCacheSize int
}

func (c Config) blockSize() int32 {
	if c.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return c.BlockSize
}

func (c Config) concurrentHashes() int {
	if c.ConcurrentHashes <= 0 {
		return 2
	}
	return c.ConcurrentHashes
}

func (c Config) filesLimit() int {
	if c.FilesScanIterationLimit <= 0 {
		return 100
	}
	return c.FilesScanIterationLimit
}

func (c Config) bytesLimit() int64 {
	if c.BytesScanIterationLimit <= 0 {
		return 16 << 20
	}
	return c.BytesScanIterationLimit
}

func (c Config) fdCacheSize() int {
	if c.FDCacheSize <= 0 {
		return 64
	}
	return c.FDCacheSize
}
