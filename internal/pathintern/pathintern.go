// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pathintern implements the process-wide, refcounted path cache
// described in spec.md §4.K. Paths are accessed from both the scan
// scheduler and the network scheduler (spec.md §9 "Path cache
// concurrency"), so the cache is backed by a sharded concurrent map
// (puzpuzpuz/xsync); interning and eviction still serialize on one mutex.
package pathintern

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Path is a shared, refcounted path object. Its parent and own-name are
// zero-copy substring views into the full path string.
type Path struct {
	full     string
	lastSlash int // index of the last '/' in full, or -1
	refs     int64
	cache    *Cache
}

// Full returns the complete path string.
func (p *Path) Full() string { return p.full }

// ParentName returns the portion of the path before the final separator,
// or "" for a top-level entry.
func (p *Path) ParentName() string {
	if p.lastSlash < 0 {
		return ""
	}
	return p.full[:p.lastSlash]
}

// OwnName returns the final path component.
func (p *Path) OwnName() string {
	if p.lastSlash < 0 {
		return p.full
	}
	return p.full[p.lastSlash+1:]
}

// Release decrements the refcount; at zero, the path is evicted from the
// cache.
func (p *Path) Release() {
	if atomic.AddInt64(&p.refs, -1) == 0 {
		p.cache.evict(p.full)
	}
}

// Retain increments the refcount and returns p, for callers sharing an
// already-held reference.
func (p *Path) Retain() *Path {
	atomic.AddInt64(&p.refs, 1)
	return p
}

// Cache is the process-wide path intern table.
type Cache struct {
	m    *xsync.MapOf[string, *Path]
	mu   sync.Mutex // guards the create-if-absent race on refs==0
}

func New() *Cache {
	return &Cache{m: xsync.NewMapOf[string, *Path]()}
}

// Intern returns the shared Path for full, creating and caching it if
// necessary, and increments its refcount. Directory entries must not end
// in "/" (spec.md §3 invariant 5); callers are expected to have already
// trimmed that.
func (c *Cache) Intern(full string) *Path {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.m.Load(full); ok {
		return p.Retain()
	}
	p := &Path{
		full:      full,
		lastSlash: strings.LastIndexByte(full, '/'),
		refs:      1,
		cache:     c,
	}
	c.m.Store(full, p)
	return p
}

func (c *Cache) evict(full string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.m.Load(full); ok && atomic.LoadInt64(&p.refs) == 0 {
		c.m.Delete(full)
	}
}

// Len reports the number of distinct interned paths, for diagnostics.
func (c *Cache) Len() int { return c.m.Size() }
