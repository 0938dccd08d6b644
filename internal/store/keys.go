// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/model"
)

// Key layout decision (spec.md §6 leaves "or folder-ID/device-ID for
// natural-keyed entities" as the alternative to a 16-byte UUID): every
// entity this core persists already has a stable natural key (folder ID,
// device ID, a (folder,device,name) triple, or a block's content hash), so
// this implementation always uses the natural key rather than minting a
// UUID indirection the loader would then have to resolve back to one.

func folderKey(id model.FolderID) []byte {
	return append([]byte{byte(PrefixFolder)}, []byte(id)...)
}

func deviceKey(id model.DeviceID) []byte {
	return append([]byte{byte(PrefixDevice)}, id[:]...)
}

func folderInfoKey(folder model.FolderID, device model.DeviceID) []byte {
	k := []byte{byte(PrefixFolderInfo)}
	k = append(k, byte(len(folder)))
	k = append(k, []byte(folder)...)
	k = append(k, device[:]...)
	return k
}

func fileInfoKey(folder model.FolderID, device model.DeviceID, name string) []byte {
	k := []byte{byte(PrefixFileInfo)}
	k = append(k, byte(len(folder)))
	k = append(k, []byte(folder)...)
	k = append(k, device[:]...)
	k = append(k, []byte(name)...)
	return k
}

func blockInfoKey(h blockstore.Hash) []byte {
	return append([]byte{byte(PrefixBlockInfo)}, h.Bytes()...)
}

func pendingDeviceKey(id model.DeviceID) []byte {
	return append([]byte{byte(PrefixPendingDevice)}, id[:]...)
}

func ignoredDeviceKey(id model.DeviceID) []byte {
	return append([]byte{byte(PrefixIgnoredDevice)}, id[:]...)
}

func pendingFolderKey(id model.FolderID) []byte {
	return append([]byte{byte(PrefixPendingFolder)}, []byte(id)...)
}
