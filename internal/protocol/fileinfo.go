// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package protocol

// FileInfoType enumerates the kinds of directory entries tracked, per
// spec.md §3.
type FileInfoType int

const (
	FileInfoTypeFile FileInfoType = iota
	FileInfoTypeDirectory
	FileInfoTypeSymlink
)

func (t FileInfoType) String() string {
	switch t {
	case FileInfoTypeFile:
		return "FILE"
	case FileInfoTypeDirectory:
		return "DIRECTORY"
	case FileInfoTypeSymlink:
		return "SYMLINK"
	default:
		return "UNKNOWN"
	}
}

// BlockInfo is a single block reference carried by a FileInfo: offset
// within the file, size, and content hash. The authoritative block record
// (refcounted, with weak hash) lives in the content store
// (internal/blockstore); FileInfo only references it by hash.
type BlockInfo struct {
	Offset int64
	Size   int32
	Hash   []byte
}

// FileInfo is the per-(folder,device) record for one path, spec.md §3.
type FileInfo struct {
	Name          string
	Type          FileInfoType
	Size          int64
	Permissions   uint32
	NoPermissions bool
	ModifiedS     int64
	ModifiedNs    int32
	ModifiedBy    ShortID
	Deleted       bool
	Invalid       bool
	IgnoredLocal  bool // IgnoredByPolicy in spec's conflict table
	Version       Vector
	Sequence      int64
	Blocks        []BlockInfo
	SymlinkTarget string
	BlockSize     int32

	// LocallyAvailable marks, bit-per-block, which blocks are present on
	// disk. Only meaningful for the local (self-device) FolderInfo's
	// FileInfo records (spec.md §3 invariant 3).
	LocallyAvailable []bool
}

// IsEmpty reports whether the file has no content (directories, symlinks,
// and zero-length files).
func (f FileInfo) IsEmpty() bool {
	return f.Type != FileInfoTypeFile || f.Size == 0
}

// IsLocallyAvailable reports whether every block of the file is marked
// present, per spec.md boundary behavior: "Empty file... is_locally_available
// == true".
func (f FileInfo) IsLocallyAvailable() bool {
	if f.IsEmpty() {
		return true
	}
	if len(f.LocallyAvailable) != len(f.Blocks) {
		return false
	}
	for _, b := range f.LocallyAvailable {
		if !b {
			return false
		}
	}
	return true
}

// BlockCount returns ceil(size/blockSize) for a populated file, zero
// otherwise (spec.md §8 property 3).
func BlockCount(size int64, blockSize int32) int {
	if size <= 0 || blockSize <= 0 {
		return 0
	}
	n := size / int64(blockSize)
	if size%int64(blockSize) != 0 {
		n++
	}
	return int(n)
}

// WinsConflict implements the tie-break used by spec.md §4.F's last row:
// "compare (modified_s, modifier_device) lexicographically; greater side
// wins; ties -> remote wins".
func WinsConflict(aModifiedS int64, aBy DeviceID, bModifiedS int64, bBy DeviceID) int {
	switch {
	case aModifiedS > bModifiedS:
		return 1
	case aModifiedS < bModifiedS:
		return -1
	default:
		return aBy.Compare(bBy)
	}
}
