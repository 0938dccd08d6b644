// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package store is the persistence bridge of spec.md §4.E: it serializes
// model entities to and from the opaque transactional key-value store
// (spec.md §6's schema), and on startup emits a load_cluster diff tree that
// reconstructs the in-memory cluster. Steady-state writes are driven by
// DBObserver (observer.go), a diff.ClusterVisitor that converts each
// committed diff into store writes, batched into transactions.
//
// The store itself is goleveldb, the teacher's own embedded KV of choice
// (internal/db/olddb/backend/leveldb_backend.go); spec.md §1 places the KV
// store's own on-disk format out of scope and asks only for its
// transactional API, so this package wraps exactly that surface.
package store

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/foldersync/foldersync/internal/logger"
)

var l = logger.NewFacility("db", "the persistence bridge")

// Prefix is the one-byte key-space discriminator of spec.md §6.
type Prefix byte

const (
	PrefixFolder        Prefix = 0x01
	PrefixDevice        Prefix = 0x02
	PrefixFolderInfo    Prefix = 0x03
	PrefixFileInfo      Prefix = 0x04
	PrefixBlockInfo     Prefix = 0x05
	PrefixPendingDevice Prefix = 0x06
	PrefixIgnoredDevice Prefix = 0x07
	PrefixPendingFolder Prefix = 0x08
)

// Store wraps the embedded leveldb handle. Writes go through Transaction so
// that a caller can batch several record writes atomically, per spec.md §6
// "the core only demands atomic multi-put transactions"; Get and Iterate
// read the handle directly.
type Store struct {
	ldb      *leveldb.DB
	location string
}

// Open opens (creating if absent) the leveldb database at path.
func Open(path string) (*Store, error) {
	ldb, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{ldb: ldb, location: path}, nil
}

func (s *Store) Close() error {
	return s.ldb.Close()
}

func (s *Store) Location() string { return s.location }

// Get returns the raw value for key, or (nil, false) if absent.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	v, err := s.ldb.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Iterate calls fn for every key under prefix, in key order, stopping early
// if fn returns an error.
func (s *Store) Iterate(prefix Prefix, fn func(key, value []byte) error) error {
	it := s.ldb.NewIterator(util.BytesPrefix([]byte{byte(prefix)}), nil)
	defer it.Release()
	for it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

// Transaction batches a group of puts/deletes into one atomic leveldb
// write, matching spec.md §6's "atomic multi-put transactions" demand.
type Transaction struct {
	batch *leveldb.Batch
	n     int
	bytes int
}

// NewTransaction begins a new batch.
func (s *Store) NewTransaction() *Transaction {
	return &Transaction{batch: new(leveldb.Batch)}
}

func (t *Transaction) Put(key, value []byte) {
	t.batch.Put(key, value)
	t.n++
	t.bytes += len(key) + len(value)
}

func (t *Transaction) Delete(key []byte) {
	t.batch.Delete(key)
	t.n++
	t.bytes += len(key)
}

// Len reports the number of operations queued in the transaction so far
// (used by DBObserver against uncommitted_threshold).
func (t *Transaction) Len() int { return t.n }

// Bytes reports the queued payload size so far (used by DBObserver against
// upper_limit).
func (t *Transaction) Bytes() int { return t.bytes }

// Commit flushes the batch atomically.
func (s *Store) Commit(t *Transaction) error {
	if t.n == 0 {
		return nil
	}
	if err := s.ldb.Write(t.batch, nil); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	t.batch = new(leveldb.Batch)
	t.n = 0
	t.bytes = 0
	return nil
}
