// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model holds the in-memory cluster graph described in spec.md §3
// and §4.C: devices, folders, per-(folder,device) folder-infos, files, and
// the pending/ignored bookkeeping records. All of it is owned by, and
// mutated only inside, the network scheduler (spec.md §5); mutation always
// goes through a diff from internal/model/diff.
package model

import (
	"time"

	"github.com/foldersync/foldersync/internal/protocol"
)

type DeviceID = protocol.DeviceID
type FolderID = string

type ConnectionState int

const (
	Offline ConnectionState = iota
	Discovering
	Connecting
	Online
)

func (s ConnectionState) String() string {
	switch s {
	case Offline:
		return "offline"
	case Discovering:
		return "discovering"
	case Connecting:
		return "connecting"
	case Online:
		return "online"
	default:
		return "unknown"
	}
}

// Device is a cluster peer (spec.md §3 "Device"). Exactly one Device per
// process is the self device (Cluster.Self).
type Device struct {
	ID                DeviceID
	Name              string
	ClientName        string
	ClientVersion     string
	Compression       protocol.CompressionPreference
	Addresses         []string
	Introducer        bool
	AutoAccept        bool
	Paused            bool
	ConnectionState   ConnectionState
	LastSeen          time.Time
	ActiveEndpoint    string
}

// FolderType mirrors spec.md §3's enumeration.
type FolderType int

const (
	SendAndReceive FolderType = iota
	SendOnly
	ReceiveOnly
)

type PullOrder int

const (
	PullRandom PullOrder = iota
	PullAlphabetic
	PullSmallestFirst
	PullLargestFirst
	PullOldestFirst
	PullNewestFirst
)

// Folder is identified by a user-chosen folder-ID, globally unique (spec.md
// §3 "Folder").
type Folder struct {
	ID                   FolderID
	Label                string
	Path                 string
	Type                 FolderType
	PullOrder            PullOrder
	RescanIntervalS      int
	ReadOnly             bool
	IgnorePermissions    bool
	IgnoreDelete         bool
	DisableTempIndexes   bool
	Paused               bool
	Scheduled            bool

	// FolderInfos is keyed by device ID; it is the folder's ownership of
	// its per-device views (spec.md §3 "Ownership").
	FolderInfos map[DeviceID]*FolderInfo

	// LockedFiles marks names that must not be pulled or advanced until
	// unlocked (spec.md §4.D lock_file_t), e.g. while a rename is pending.
	LockedFiles map[string]bool

	Suspended     bool
	SuspendReason string
}

// FolderInfo is the per-(folder,device) record: spec.md §3. It owns the
// FileInfos belonging to that (folder,device) view.
type FolderInfo struct {
	Folder      FolderID
	Device      DeviceID
	IndexID     uint64
	MaxSequence int64

	// Files is keyed by file name; unique within this FolderInfo (spec.md
	// §3 invariant 5).
	Files map[string]*protocol.FileInfo

	// Reachable tracks whether this device's view of the folder is
	// currently considered live, set by mark_reachable_t (spec.md §4.D).
	Reachable bool
}

// PendingDevice records a peer that connected without being pre-approved
// (spec.md §3).
type PendingDevice struct {
	ID       DeviceID
	Name     string
	Address  string
	FirstSeen time.Time
}

// IgnoredDevice records a peer explicitly rejected by the operator.
type IgnoredDevice struct {
	ID     DeviceID
	Name   string
	Since  time.Time
}

// PendingFolder is advertised by a peer but not yet accepted locally.
type PendingFolder struct {
	ID          FolderID
	Label       string
	OfferedBy   DeviceID
	ReceiveEnc  bool
}

func NewFolderInfo(folder FolderID, device DeviceID, indexID uint64) *FolderInfo {
	return &FolderInfo{
		Folder:  folder,
		Device:  device,
		IndexID: indexID,
		Files:   make(map[string]*protocol.FileInfo),
	}
}

func NewFolder(id FolderID) *Folder {
	return &Folder{
		ID:          id,
		FolderInfos: make(map[DeviceID]*FolderInfo),
		LockedFiles: make(map[string]bool),
	}
}
