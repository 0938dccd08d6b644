// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/protocol"
)

// Every entity round-trips through a plain DTO and encoding/gob. No
// ecosystem serialization library in the retrieval pack fits an internal,
// schema-evolving record format the way a length-prefixed self-describing
// encoder does (the pack's protobuf deps are BEP wire-codegen tooling,
// explicitly out of scope per spec.md §1); gob is the stdlib's own answer
// to exactly this problem and is what this component is justified on in
// DESIGN.md.

type folderDTO struct {
	ID                 string
	Label              string
	Path               string
	Type               int
	PullOrder          int
	RescanIntervalS    int
	ReadOnly           bool
	IgnorePermissions  bool
	IgnoreDelete       bool
	DisableTempIndexes bool
	Paused             bool
	Scheduled          bool
}

func encodeFolder(f *model.Folder) []byte {
	return mustEncode(folderDTO{
		ID: f.ID, Label: f.Label, Path: f.Path,
		Type: int(f.Type), PullOrder: int(f.PullOrder),
		RescanIntervalS: f.RescanIntervalS, ReadOnly: f.ReadOnly,
		IgnorePermissions: f.IgnorePermissions, IgnoreDelete: f.IgnoreDelete,
		DisableTempIndexes: f.DisableTempIndexes, Paused: f.Paused,
		Scheduled: f.Scheduled,
	})
}

func decodeFolder(b []byte) (model.Folder, error) {
	var dto folderDTO
	if err := decode(b, &dto); err != nil {
		return model.Folder{}, err
	}
	f := *model.NewFolder(dto.ID)
	f.Label, f.Path = dto.Label, dto.Path
	f.Type = model.FolderType(dto.Type)
	f.PullOrder = model.PullOrder(dto.PullOrder)
	f.RescanIntervalS = dto.RescanIntervalS
	f.ReadOnly, f.IgnorePermissions = dto.ReadOnly, dto.IgnorePermissions
	f.IgnoreDelete, f.DisableTempIndexes = dto.IgnoreDelete, dto.DisableTempIndexes
	f.Paused, f.Scheduled = dto.Paused, dto.Scheduled
	return f, nil
}

type deviceDTO struct {
	ID              model.DeviceID
	Name            string
	ClientName      string
	ClientVersion   string
	Compression     int
	Addresses       []string
	Introducer      bool
	AutoAccept      bool
	Paused          bool
	ConnectionState int
	LastSeen        time.Time
	ActiveEndpoint  string
}

func encodeDevice(d *model.Device) []byte {
	return mustEncode(deviceDTO{
		ID: d.ID, Name: d.Name, ClientName: d.ClientName, ClientVersion: d.ClientVersion,
		Compression: int(d.Compression), Addresses: d.Addresses, Introducer: d.Introducer,
		AutoAccept: d.AutoAccept, Paused: d.Paused, ConnectionState: int(d.ConnectionState),
		LastSeen: d.LastSeen, ActiveEndpoint: d.ActiveEndpoint,
	})
}

func decodeDevice(b []byte) (model.Device, error) {
	var dto deviceDTO
	if err := decode(b, &dto); err != nil {
		return model.Device{}, err
	}
	return model.Device{
		ID: dto.ID, Name: dto.Name, ClientName: dto.ClientName, ClientVersion: dto.ClientVersion,
		Compression: protocol.CompressionPreference(dto.Compression), Addresses: dto.Addresses,
		Introducer: dto.Introducer, AutoAccept: dto.AutoAccept, Paused: dto.Paused,
		ConnectionState: model.ConnectionState(dto.ConnectionState), LastSeen: dto.LastSeen,
		ActiveEndpoint: dto.ActiveEndpoint,
	}, nil
}

type folderInfoDTO struct {
	Folder      string
	Device      model.DeviceID
	IndexID     uint64
	MaxSequence int64
	Reachable   bool
}

func encodeFolderInfo(fi *model.FolderInfo) []byte {
	return mustEncode(folderInfoDTO{
		Folder: fi.Folder, Device: fi.Device, IndexID: fi.IndexID,
		MaxSequence: fi.MaxSequence, Reachable: fi.Reachable,
	})
}

func decodeFolderInfo(b []byte) (folderInfoDTO, error) {
	var dto folderInfoDTO
	err := decode(b, &dto)
	return dto, err
}

type blockInfoRefDTO struct {
	Offset int64
	Size   int32
	Hash   []byte
}

type fileInfoDTO struct {
	Name             string
	Type             int
	Size             int64
	Permissions      uint32
	NoPermissions    bool
	ModifiedS        int64
	ModifiedNs       int32
	ModifiedBy       uint64
	Deleted          bool
	Invalid          bool
	IgnoredLocal     bool
	Version          []protocol.Counter
	Sequence         int64
	Blocks           []blockInfoRefDTO
	SymlinkTarget    string
	BlockSize        int32
	LocallyAvailable []bool
}

func encodeFileInfo(f *protocol.FileInfo) []byte {
	blocks := make([]blockInfoRefDTO, len(f.Blocks))
	for i, b := range f.Blocks {
		blocks[i] = blockInfoRefDTO{Offset: b.Offset, Size: b.Size, Hash: b.Hash}
	}
	return mustEncode(fileInfoDTO{
		Name: f.Name, Type: int(f.Type), Size: f.Size, Permissions: f.Permissions,
		NoPermissions: f.NoPermissions, ModifiedS: f.ModifiedS, ModifiedNs: f.ModifiedNs,
		ModifiedBy: uint64(f.ModifiedBy), Deleted: f.Deleted, Invalid: f.Invalid,
		IgnoredLocal: f.IgnoredLocal, Version: []protocol.Counter(f.Version), Sequence: f.Sequence,
		Blocks: blocks, SymlinkTarget: f.SymlinkTarget, BlockSize: f.BlockSize,
		LocallyAvailable: f.LocallyAvailable,
	})
}

func decodeFileInfo(b []byte) (protocol.FileInfo, error) {
	var dto fileInfoDTO
	if err := decode(b, &dto); err != nil {
		return protocol.FileInfo{}, err
	}
	blocks := make([]protocol.BlockInfo, len(dto.Blocks))
	for i, b := range dto.Blocks {
		blocks[i] = protocol.BlockInfo{Offset: b.Offset, Size: b.Size, Hash: b.Hash}
	}
	return protocol.FileInfo{
		Name: dto.Name, Type: protocol.FileInfoType(dto.Type), Size: dto.Size,
		Permissions: dto.Permissions, NoPermissions: dto.NoPermissions,
		ModifiedS: dto.ModifiedS, ModifiedNs: dto.ModifiedNs, ModifiedBy: protocol.ShortID(dto.ModifiedBy),
		Deleted: dto.Deleted, Invalid: dto.Invalid, IgnoredLocal: dto.IgnoredLocal,
		Version: protocol.Vector(dto.Version), Sequence: dto.Sequence, Blocks: blocks,
		SymlinkTarget: dto.SymlinkTarget, BlockSize: dto.BlockSize, LocallyAvailable: dto.LocallyAvailable,
	}, nil
}

type blockInfoDTO struct {
	Hash     []byte
	Size     int32
	WeakHash uint32
	RefCount int
}

func encodeBlockInfo(hash []byte, size int32, weakHash uint32, refCount int) []byte {
	return mustEncode(blockInfoDTO{Hash: hash, Size: size, WeakHash: weakHash, RefCount: refCount})
}

func decodeBlockInfo(b []byte) (blockInfoDTO, error) {
	var dto blockInfoDTO
	err := decode(b, &dto)
	return dto, err
}

type pendingDeviceDTO struct {
	ID        model.DeviceID
	Name      string
	Address   string
	FirstSeen time.Time
}

func encodePendingDevice(d *model.PendingDevice) []byte {
	return mustEncode(pendingDeviceDTO{ID: d.ID, Name: d.Name, Address: d.Address, FirstSeen: d.FirstSeen})
}

func decodePendingDevice(b []byte) (model.PendingDevice, error) {
	var dto pendingDeviceDTO
	if err := decode(b, &dto); err != nil {
		return model.PendingDevice{}, err
	}
	return model.PendingDevice{ID: dto.ID, Name: dto.Name, Address: dto.Address, FirstSeen: dto.FirstSeen}, nil
}

type ignoredDeviceDTO struct {
	ID    model.DeviceID
	Name  string
	Since time.Time
}

func encodeIgnoredDevice(d *model.IgnoredDevice) []byte {
	return mustEncode(ignoredDeviceDTO{ID: d.ID, Name: d.Name, Since: d.Since})
}

func decodeIgnoredDevice(b []byte) (model.IgnoredDevice, error) {
	var dto ignoredDeviceDTO
	if err := decode(b, &dto); err != nil {
		return model.IgnoredDevice{}, err
	}
	return model.IgnoredDevice{ID: dto.ID, Name: dto.Name, Since: dto.Since}, nil
}

type pendingFolderDTO struct {
	ID         string
	Label      string
	OfferedBy  model.DeviceID
	ReceiveEnc bool
}

func encodePendingFolder(f *model.PendingFolder) []byte {
	return mustEncode(pendingFolderDTO{ID: f.ID, Label: f.Label, OfferedBy: f.OfferedBy, ReceiveEnc: f.ReceiveEnc})
}

func decodePendingFolder(b []byte) (model.PendingFolder, error) {
	var dto pendingFolderDTO
	if err := decode(b, &dto); err != nil {
		return model.PendingFolder{}, err
	}
	return model.PendingFolder{ID: dto.ID, Label: dto.Label, OfferedBy: dto.OfferedBy, ReceiveEnc: dto.ReceiveEnc}, nil
}

func mustEncode(v any) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		// Every DTO here is a plain value type gob can always encode;
		// a failure means a programming error, not a runtime condition.
		panic(fmt.Sprintf("store: encode %T: %v", v, err))
	}
	return buf.Bytes()
}

func decode(b []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(v); err != nil {
		return fmt.Errorf("store: decode %T: %w", v, err)
	}
	return nil
}
