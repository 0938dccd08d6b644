// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package scanner

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// fdCache is the bounded MRU open-file-descriptor cache of spec.md §5
// fs.mru_size: hashing many small files back-to-back would otherwise pay
// an open/close syscall pair per block batch.
type fdCache struct {
	cache *lru.Cache[string, *os.File]
}

func newFDCache(size int) *fdCache {
	c, err := lru.NewWithEvict[string, *os.File](size, func(_ string, f *os.File) {
		f.Close()
	})
	if err != nil {
		// size <= 0, which Config.fdCacheSize already guards against.
		panic("scanner: fdcache: " + err.Error())
	}
	return &fdCache{cache: c}
}

// open returns a cached, already-open *os.File for path, opening it if
// absent. The caller must not close the returned handle; it is owned by
// the cache until evicted or Close is called.
func (c *fdCache) open(path string) (*os.File, error) {
	if f, ok := c.cache.Get(path); ok {
		return f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, f)
	return f, nil
}

// forget evicts path's handle, if cached, closing it. hashFile calls it
// after a read error so the cache does not keep a failed descriptor.
func (c *fdCache) forget(path string) {
	c.cache.Remove(path)
}

// Close evicts every cached handle.
func (c *fdCache) Close() {
	c.cache.Purge()
}
