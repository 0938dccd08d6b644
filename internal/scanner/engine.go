// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package scanner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/protocol"
)

// Engine is one folder's scan/hash state machine (spec.md §4.G): a stack
// of typed tasks, processed one per Step, against a read-only view of the
// cluster model and the shared content store.
type Engine struct {
	cfg     Config
	cluster *model.Cluster
	modBy   protocol.ShortID

	stack []Task
	fds   *fdCache
	nextSeq int64

	concurrentHashesLeft int

	outbound      []*diff.Diff
	outboundBytes int64

	suspended bool
	done      bool
	fatal     error
}

// New constructs an Engine for one folder scan. cluster (including its
// Blocks content store) is read during Step; the caller owns applying the
// diffs Drain returns back onto the cluster through the network scheduler
// (spec.md §5: "the cluster object is owned by and only mutated inside the
// network scheduler").
func New(cfg Config, cluster *model.Cluster, modifiedBy protocol.ShortID) *Engine {
	var nextSeq int64 = 1
	if fi, ok := cluster.FolderInfo(cfg.Folder, cluster.Self()); ok {
		nextSeq = fi.MaxSequence + 1
	}
	e := &Engine{
		cfg:                  cfg,
		cluster:              cluster,
		modBy:                modifiedBy,
		fds:                  newFDCache(cfg.fdCacheSize()),
		concurrentHashesLeft: cfg.concurrentHashes(),
		nextSeq:              nextSeq,
	}
	// complete_scan is pushed first so it sits at the bottom of the stack
	// and runs last (spec.md §4.G).
	e.push(newTask(TaskCompleteScan))
	e.push(Task{Kind: TaskUnscannedDir, Path: "."})
	e.emit(diff.New(diff.KindScanStart, diff.ScanStartPayload{Folder: cfg.Folder}))
	return e
}

func (e *Engine) push(t Task) { e.stack = append(e.stack, t) }

func (e *Engine) pop() (Task, bool) {
	if len(e.stack) == 0 {
		return Task{}, false
	}
	t := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return t, true
}

func (e *Engine) emit(d *diff.Diff) {
	e.outbound = append(e.outbound, d)
}

// Done reports whether the engine has processed complete_scan or hit a
// fatal error and has nothing left to do.
func (e *Engine) Done() bool { return e.done }

// Err returns the fatal error that stopped the engine, if any.
func (e *Engine) Err() error { return e.fatal }

// Drain returns and clears the diffs accumulated since the last Drain,
// wrapped in a single aggregate so the network scheduler applies them as
// one transaction (spec.md §4.G "batching into one model_update message
// per tick prevents flooding the cluster coordinator").
func (e *Engine) Drain() *diff.Diff {
	if len(e.outbound) == 0 {
		return nil
	}
	agg := diff.Aggregate(e.outbound...)
	e.outbound = nil
	e.outboundBytes = 0
	return agg
}

// Step processes the top of the stack once, per spec.md §4.G's "on each
// tick, the top of stack is processed by a std::visit-style dispatch."
// It returns false once the stack is empty or a fatal error was reached.
func (e *Engine) Step() bool {
	if e.done {
		return false
	}
	t, ok := e.pop()
	if !ok {
		e.done = true
		return false
	}

	switch t.Kind {
	case TaskUnscannedDir:
		e.stepUnscannedDir(t)
	case TaskScanDir:
		e.stepScanDir(t)
	case TaskUnexamined:
		e.stepUnexamined(t)
	case TaskHashNewFile, TaskHashExistingFile:
		e.stepHashFile(t)
	case TaskHashIncompleteFile:
		e.stepHashIncomplete(t)
	case TaskChildReady:
		e.stepChildReady(t)
	case TaskRemovedDir:
		e.stepRemovedDir(t)
	case TaskConfirmedDeleted:
		e.stepConfirmedDeleted(t)
	case TaskIncomplete:
		e.stepIncomplete(t)
	case TaskRehashedIncomplete:
		e.stepRehashedIncomplete(t)
	case TaskSuspendScan:
		e.suspended = true
		e.emit(diff.New(diff.KindSuspendFolder, diff.SuspendFolderPayload{Folder: e.cfg.Folder, Reason: t.Err}))
	case TaskUnsuspendScan:
		e.suspended = false
	case TaskFatalError:
		e.fatal = t.Err
		e.done = true
		l.Warnf("scanner: folder %q: fatal error scanning %q: %v", e.cfg.Folder, t.Path, t.Err)
		e.emit(diff.New(diff.KindIoFailure, diff.IoFailurePayload{Folder: e.cfg.Folder, Name: t.Path, Err: t.Err}))
	case TaskCompleteScan:
		e.fds.Close()
		e.done = true
		e.emit(diff.New(diff.KindScanFinish, diff.ScanFinishPayload{Folder: e.cfg.Folder}))
	}

	return !e.done
}

// Run drives Step until the engine finishes, respecting
// files_scan_iteration_limit / bytes_scan_iteration_limit by stopping
// early and returning the partial batch via Drain when either is
// exceeded (spec.md §4.G "Scheduling"). Call Run repeatedly (e.g. once per
// scheduler tick) until Done.
func (e *Engine) Run() *diff.Diff {
	files := 0
	for !e.done && e.concurrentHashesLeft > 0 {
		if files >= e.cfg.filesLimit() || e.outboundBytes >= e.cfg.bytesLimit() {
			break
		}
		if !e.Step() {
			break
		}
		files++
	}
	return e.Drain()
}

func (e *Engine) fullPath(rel string) string {
	return filepath.Join(e.cfg.Root, rel)
}

func (e *Engine) stepUnscannedDir(t Task) {
	entries, err := os.ReadDir(e.fullPath(t.Path))
	if err != nil {
		if t.Path == "." {
			e.push(Task{Kind: TaskFatalError, Path: t.Path, Err: err})
			return
		}
		e.emit(diff.New(diff.KindIoFailure, diff.IoFailurePayload{Folder: e.cfg.Folder, Name: t.Path, Err: err}))
		return
	}
	e.push(Task{Kind: TaskScanDir, Path: t.Path, Entries: entries})
}

func (e *Engine) stepScanDir(t Task) {
	// Pushed in reverse so the stack pops them in directory-listing order,
	// matching spec.md §5's "scan emits diffs for a single folder in the
	// order the filesystem was observed."
	for i := len(t.Entries) - 1; i >= 0; i-- {
		entry := t.Entries[i]
		name := entry.Name()
		rel := filepath.Join(t.Path, name)

		if e.cfg.AutoNormalize {
			if normalized, changed := normalizeName(name); changed {
				name = normalized
				rel = filepath.Join(t.Path, name)
			}
		}

		info, err := entry.Info()
		if err != nil {
			e.emit(diff.New(diff.KindIoFailure, diff.IoFailurePayload{Folder: e.cfg.Folder, Name: rel, Err: err}))
			continue
		}

		if !entry.IsDir() && IsTemporary(name) {
			e.push(Task{Kind: TaskIncomplete, Path: rel, IncompleteSize: info.Size()})
			continue
		}

		e.push(Task{Kind: TaskUnexamined, Path: rel, ChildName: name, ChildInfo: info})
	}
}

func (e *Engine) stepUnexamined(t Task) {
	info := t.ChildInfo
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		e.push(Task{Kind: TaskChildReady, Path: t.Path, Info: info})

	case info.IsDir():
		e.push(Task{Kind: TaskUnscannedDir, Path: t.Path})

	case info.Mode().IsRegular():
		if info.Size() == 0 {
			e.push(Task{Kind: TaskChildReady, Path: t.Path, Info: info})
			return
		}
		if _, known := e.cluster.LocalFile(e.cfg.Folder, t.Path); known {
			e.push(Task{Kind: TaskHashExistingFile, Path: t.Path, Info: info})
		} else {
			e.push(Task{Kind: TaskHashNewFile, Path: t.Path, Info: info})
		}
	}
}

func (e *Engine) stepHashFile(t Task) {
	e.concurrentHashesLeft--
	blocks, err := e.hashFile(e.fullPath(t.Path), t.Info.Size())
	e.concurrentHashesLeft++
	if err != nil {
		e.emit(diff.New(diff.KindIoFailure, diff.IoFailurePayload{Folder: e.cfg.Folder, Name: t.Path, Err: err}))
		return
	}
	e.push(Task{Kind: TaskChildReady, Path: t.Path, Info: t.Info, Blocks: blocks})
}

func (e *Engine) stepChildReady(t Task) {
	previous, existed := e.cluster.LocalFile(e.cfg.Folder, t.Path)

	file := e.buildFileInfo(t, previous, existed)

	if existed && e.unchanged(previous, file, t.Info) {
		return
	}

	file.Version = previous.Version.Copy().Update(e.modBy)
	if !existed {
		file.Version = protocol.Vector(nil).Update(e.modBy)
	}
	file.Sequence = e.nextSeq
	e.nextSeq++

	newBlocks, cloned := e.classifyBlocks(t.Blocks)
	e.outboundBytes += t.Info.Size()

	if existed {
		e.emit(diff.LocalFileUpdated(e.cfg.Folder, previous, file, newBlocks, cloned))
	} else {
		e.emit(diff.NewScannedFile(e.cfg.Folder, file, newBlocks, cloned))
	}
}

func (e *Engine) buildFileInfo(t Task, previous protocol.FileInfo, existed bool) protocol.FileInfo {
	info := t.Info
	file := protocol.FileInfo{
		Name:       t.Path,
		Size:       info.Size(),
		ModifiedS:  info.ModTime().Unix(),
		ModifiedNs: int32(info.ModTime().Nanosecond()),
		ModifiedBy: e.modBy,
		BlockSize:  e.cfg.blockSize(),
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		file.Type = protocol.FileInfoTypeSymlink
		target, err := os.Readlink(e.fullPath(t.Path))
		if err == nil {
			file.SymlinkTarget = target
		}
	case info.IsDir():
		file.Type = protocol.FileInfoTypeDirectory
	default:
		file.Type = protocol.FileInfoTypeFile
		if !e.cfg.IgnorePerms {
			file.Permissions = uint32(info.Mode().Perm())
		} else {
			file.NoPermissions = true
		}
	}

	blocks := make([]protocol.BlockInfo, len(t.Blocks))
	available := make([]bool, len(t.Blocks))
	for i, b := range t.Blocks {
		blocks[i] = protocol.BlockInfo{Offset: b.Offset, Size: b.Size, Hash: b.Hash[:]}
		available[i] = true
	}
	file.Blocks = blocks
	file.LocallyAvailable = available

	return file
}

// unchanged mirrors spec.md §4.G child_ready's "compare against the
// cluster model; if identical (mtime, size, permissions honoring the
// ignore-permissions flag, and symlink target), emit file_availability."
func (e *Engine) unchanged(previous, candidate protocol.FileInfo, info os.FileInfo) bool {
	if previous.Deleted || previous.Invalid {
		return false
	}
	if previous.Size != candidate.Size || previous.ModifiedS != candidate.ModifiedS {
		return false
	}
	if !e.cfg.IgnorePerms && previous.Permissions != candidate.Permissions {
		return false
	}
	if previous.Type != candidate.Type {
		return false
	}
	if previous.SymlinkTarget != candidate.SymlinkTarget {
		return false
	}
	e.emit(diff.New(diff.KindFileAvailability, diff.FileAvailabilityPayload{Folder: e.cfg.Folder, Name: candidate.Name}))
	return true
}

// classifyBlocks splits a file's freshly hashed blocks into ones genuinely
// new to the content store and ones already present elsewhere (spec.md
// §4.B dedup fast path via the bloom filter).
func (e *Engine) classifyBlocks(blocks []hashedBlock) (newBlocks, cloned []diff.BlockRecord) {
	for _, b := range blocks {
		hashBytes := append([]byte(nil), b.Hash[:]...)
		h := blockstore.HashFromBytes(hashBytes)
		rec := diff.BlockRecord{Hash: hashBytes, Size: b.Size, WeakHash: b.WeakHash}
		if e.cluster.Blocks.MaybeHas(h) && e.cluster.Blocks.Has(h) {
			cloned = append(cloned, rec)
		} else {
			newBlocks = append(newBlocks, rec)
		}
	}
	return newBlocks, cloned
}

func (e *Engine) stepRemovedDir(t Task) {
	e.push(Task{Kind: TaskConfirmedDeleted, Path: t.Path})
}

func (e *Engine) stepConfirmedDeleted(t Task) {
	fi, ok := e.cluster.FolderInfo(e.cfg.Folder, e.cluster.Self())
	if !ok {
		return
	}
	prefix := t.Path + string(filepath.Separator)
	for name, f := range fi.Files {
		if f.Deleted {
			continue
		}
		if name != t.Path && !hasPrefix(name, prefix) {
			continue
		}
		deleted := *f
		deleted.Deleted = true
		deleted.Version = f.Version.Copy().Update(e.modBy)
		deleted.Blocks = nil
		deleted.LocallyAvailable = nil
		deleted.Sequence = e.nextSeq
		e.nextSeq++
		e.emit(diff.LocalFileUpdated(e.cfg.Folder, *f, deleted, nil, nil))
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func (e *Engine) stepIncomplete(t Task) {
	info, err := os.Lstat(e.fullPath(t.Path))
	if err != nil {
		return
	}
	if time.Since(info.ModTime()) > e.cfg.TempLifetime && e.cfg.TempLifetime > 0 {
		os.Remove(e.fullPath(t.Path))
		return
	}
	e.push(Task{Kind: TaskHashIncompleteFile, Path: t.Path, Info: info, IncompleteSize: t.IncompleteSize})
}

func (e *Engine) stepHashIncomplete(t Task) {
	blocks, err := e.hashFile(e.fullPath(t.Path), t.Info.Size())
	if err != nil {
		os.Remove(e.fullPath(t.Path))
		return
	}
	e.push(Task{Kind: TaskRehashedIncomplete, Path: t.Path, Info: t.Info, Blocks: blocks})
}

// stepRehashedIncomplete reconciles a partial transfer against the final
// name's recorded blocks (spec.md §4.G "if all block hashes match the
// peer's, rename the temp file into place... if some match, emit
// blocks_availability... if none, remove"). The final name is the temp
// name with the transfer suffix stripped by the caller's naming
// convention; this engine does not itself track in-flight pull requests
// (the puller is out of scope), so it can only compare against whatever
// FileInfo the self device already has recorded for that name.
func (e *Engine) stepRehashedIncomplete(t Task) {
	finalName := stripTempSuffix(t.Path)
	target, ok := e.cluster.LocalFile(e.cfg.Folder, finalName)
	if !ok || len(target.Blocks) == 0 {
		os.Remove(e.fullPath(t.Path))
		return
	}

	present := make([]bool, len(target.Blocks))
	matches := 0
	for i, want := range target.Blocks {
		if i >= len(t.Blocks) {
			break
		}
		if string(t.Blocks[i].Hash[:]) == string(want.Hash) {
			present[i] = true
			matches++
		}
	}

	switch {
	case matches == len(target.Blocks):
		os.Rename(e.fullPath(t.Path), e.fullPath(finalName))
	case matches > 0:
		e.emit(diff.New(diff.KindBlocksAvailability, diff.BlocksAvailabilityPayload{Folder: e.cfg.Folder, Name: finalName, Present: present}))
	default:
		os.Remove(e.fullPath(t.Path))
	}
}

func stripTempSuffix(path string) string {
	const marker = ".fsync-tmp."
	dir, base := filepath.Split(path)
	if len(base) == 0 || base[0] != '.' {
		return path
	}
	for i := 2; i+len(marker) <= len(base); i++ {
		if base[i:i+len(marker)] == marker {
			return filepath.Join(dir, base[1:i])
		}
	}
	return path
}
