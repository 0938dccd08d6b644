// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"fmt"

	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/protocol"
)

// Batch sizes for the streamed load, spec.md §4.E: "blocks (N per batch),
// file_infos (M per batch)". Chosen generously; there is no correctness
// dependency on the exact value, only on batches being emitted in this
// order so the apply-controller's progress reporting is monotonic.
const (
	blocksBatchSize    = 1000
	fileInfosBatchSize = 500
)

// Load reads every persisted record out of s and assembles the load_cluster
// diff tree spec.md §4.E describes: a single load_cluster_t root whose
// children are streaming batches, applied in this order so that folders and
// devices exist before the file-info batches that reference them.
func (s *Store) Load() (*diff.Diff, error) {
	root := diff.New(diff.KindLoadCluster, diff.LoadClusterPayload{})

	var head, tail *diff.Diff
	push := func(d *diff.Diff) {
		if d == nil {
			return
		}
		if head == nil {
			head, tail = d, d
			return
		}
		tail = tail.AssignSibling(d)
	}

	blockBatches, err := s.loadBlockBatches()
	if err != nil {
		return nil, err
	}
	for _, b := range blockBatches {
		push(diff.New(diff.KindBlocks, b))
	}

	folders, err := s.loadFolders()
	if err != nil {
		return nil, err
	}
	push(diff.New(diff.KindFolders, diff.FoldersPayload{Folders: folders}))

	pendingFolders, err := s.loadPendingFolders()
	if err != nil {
		return nil, err
	}
	push(diff.New(diff.KindPendingFolders, diff.PendingFoldersPayload{Folders: pendingFolders}))

	devices, err := s.loadDevices()
	if err != nil {
		return nil, err
	}
	push(diff.New(diff.KindDevices, diff.DevicesPayload{Devices: devices}))

	pendingDevices, err := s.loadPendingDevices()
	if err != nil {
		return nil, err
	}
	push(diff.New(diff.KindPendingDevices, diff.PendingDevicesPayload{Devices: pendingDevices}))

	ignoredDevices, err := s.loadIgnoredDevices()
	if err != nil {
		return nil, err
	}
	push(diff.New(diff.KindIgnoredDevices, diff.IgnoredDevicesPayload{Devices: ignoredDevices}))

	// folder-infos carry a composite key over (folder,device); they are
	// distinct from the Folder record itself but reuse the same
	// upsert_folder_info apply path, so they ride along as UpsertFolderInfo
	// leaf diffs rather than their own load-group kind.
	folderInfos, err := s.loadFolderInfos()
	if err != nil {
		return nil, err
	}
	for _, fi := range folderInfos {
		push(diff.New(diff.KindUpsertFolderInfo, diff.UpsertFolderInfoPayload{
			Folder: fi.Folder, Device: fi.Device, IndexID: fi.IndexID, MaxSequence: fi.MaxSequence,
		}))
	}

	fileBatches, err := s.loadFileInfoBatches()
	if err != nil {
		return nil, err
	}
	for _, b := range fileBatches {
		push(diff.New(diff.KindFileInfos, b))
	}

	if head != nil {
		root.AssignChild(head)
	}
	return root, nil
}

func (s *Store) loadBlockBatches() ([]diff.BlocksPayload, error) {
	var cur diff.BlocksPayload
	var out []diff.BlocksPayload
	err := s.Iterate(PrefixBlockInfo, func(_, v []byte) error {
		dto, err := decodeBlockInfo(v)
		if err != nil {
			return fmt.Errorf("store: load block: %w", err)
		}
		cur.Blocks = append(cur.Blocks, diff.BlockRecord{
			Hash: dto.Hash, Size: dto.Size, WeakHash: dto.WeakHash, RefCount: dto.RefCount,
		})
		if len(cur.Blocks) >= blocksBatchSize {
			out = append(out, cur)
			cur = diff.BlocksPayload{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(cur.Blocks) > 0 {
		out = append(out, cur)
	}
	return out, nil
}

func (s *Store) loadFolders() ([]model.Folder, error) {
	var out []model.Folder
	err := s.Iterate(PrefixFolder, func(_, v []byte) error {
		f, err := decodeFolder(v)
		if err != nil {
			return fmt.Errorf("store: load folder: %w", err)
		}
		out = append(out, f)
		return nil
	})
	return out, err
}

func (s *Store) loadPendingFolders() ([]model.PendingFolder, error) {
	var out []model.PendingFolder
	err := s.Iterate(PrefixPendingFolder, func(_, v []byte) error {
		f, err := decodePendingFolder(v)
		if err != nil {
			return fmt.Errorf("store: load pending folder: %w", err)
		}
		out = append(out, f)
		return nil
	})
	return out, err
}

func (s *Store) loadDevices() ([]model.Device, error) {
	var out []model.Device
	err := s.Iterate(PrefixDevice, func(_, v []byte) error {
		d, err := decodeDevice(v)
		if err != nil {
			return fmt.Errorf("store: load device: %w", err)
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

func (s *Store) loadPendingDevices() ([]model.PendingDevice, error) {
	var out []model.PendingDevice
	err := s.Iterate(PrefixPendingDevice, func(_, v []byte) error {
		d, err := decodePendingDevice(v)
		if err != nil {
			return fmt.Errorf("store: load pending device: %w", err)
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

func (s *Store) loadIgnoredDevices() ([]model.IgnoredDevice, error) {
	var out []model.IgnoredDevice
	err := s.Iterate(PrefixIgnoredDevice, func(_, v []byte) error {
		d, err := decodeIgnoredDevice(v)
		if err != nil {
			return fmt.Errorf("store: load ignored device: %w", err)
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

func (s *Store) loadFolderInfos() ([]folderInfoDTO, error) {
	var out []folderInfoDTO
	err := s.Iterate(PrefixFolderInfo, func(_, v []byte) error {
		dto, err := decodeFolderInfo(v)
		if err != nil {
			return fmt.Errorf("store: load folder-info: %w", err)
		}
		out = append(out, dto)
		return nil
	})
	return out, err
}

// loadFileInfoBatches groups persisted file records by (folder,device),
// since FileInfosPayload (and applyFileInfos) operates on one FolderInfo at
// a time.
func (s *Store) loadFileInfoBatches() ([]diff.FileInfosPayload, error) {
	type key struct {
		folder model.FolderID
		device model.DeviceID
	}
	grouped := map[key][]protocol.FileInfo{}
	var order []key

	err := s.Iterate(PrefixFileInfo, func(k, v []byte) error {
		folder, device, ok := parseFileInfoKey(k)
		if !ok {
			return fmt.Errorf("store: malformed file-info key")
		}
		fc, err := decodeFileInfo(v)
		if err != nil {
			return fmt.Errorf("store: load file-info: %w", err)
		}
		kk := key{folder, device}
		if _, seen := grouped[kk]; !seen {
			order = append(order, kk)
		}
		grouped[kk] = append(grouped[kk], fc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []diff.FileInfosPayload
	for _, kk := range order {
		files := grouped[kk]
		for i := 0; i < len(files); i += fileInfosBatchSize {
			end := i + fileInfosBatchSize
			if end > len(files) {
				end = len(files)
			}
			out = append(out, diff.FileInfosPayload{Folder: kk.folder, Device: kk.device, Files: files[i:end]})
		}
	}
	return out, nil
}

// parseFileInfoKey reverses fileInfoKey's layout: prefix, folder length,
// folder bytes, a fixed-width device ID, then the file name (unused here).
func parseFileInfoKey(k []byte) (model.FolderID, model.DeviceID, bool) {
	var dev model.DeviceID
	if len(k) < 1+1+len(dev) {
		return "", dev, false
	}
	flen := int(k[1])
	if len(k) < 2+flen+len(dev) {
		return "", dev, false
	}
	folder := model.FolderID(k[2 : 2+flen])
	copy(dev[:], k[2+flen:2+flen+len(dev)])
	return folder, dev, true
}
