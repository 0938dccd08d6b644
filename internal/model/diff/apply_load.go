// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/model"
)

// applyLoadCluster is a no-op marker; internal/store's loader issues it as
// the root of a streamed load and relies on ProgressController to report
// progress, not on any mutation here.
func applyLoadCluster(d *Diff, cluster *model.Cluster) error {
	return nil
}

func applyBlocks(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(BlocksPayload)
	for _, b := range p.Blocks {
		h := blockstore.HashFromBytes(b.Hash)
		cluster.Blocks.Put(h, b.Size, b.WeakHash)
		for i := 0; i < b.RefCount; i++ {
			cluster.Blocks.Ref(h)
		}
	}
	return nil
}

func applyFileInfos(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(FileInfosPayload)
	f, ok := cluster.Folder(p.Folder)
	if !ok {
		return model.ErrNoSuchFolder
	}
	fi, ok := f.FolderInfos[p.Device]
	if !ok {
		return model.ErrNoSuchDevice
	}
	for i := range p.Files {
		fc := p.Files[i]
		fi.Files[fc.Name] = &fc
	}
	return nil
}

func applyFolders(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(FoldersPayload)
	for i := range p.Folders {
		fc := p.Folders[i]
		if fc.FolderInfos == nil {
			fc.FolderInfos = make(map[model.DeviceID]*model.FolderInfo)
		}
		cluster.PutFolderLoaded(&fc)
	}
	return nil
}

func applyPendingFolders(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(PendingFoldersPayload)
	for i := range p.Folders {
		pf := p.Folders[i]
		cluster.PutPendingFolderLoaded(&pf)
	}
	return nil
}

func applyDevices(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(DevicesPayload)
	for i := range p.Devices {
		dev := p.Devices[i]
		cluster.PutDeviceLoaded(&dev)
	}
	return nil
}

func applyPendingDevices(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(PendingDevicesPayload)
	for i := range p.Devices {
		pd := p.Devices[i]
		cluster.PutPendingDeviceLoaded(&pd)
	}
	return nil
}

func applyIgnoredDevices(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(IgnoredDevicesPayload)
	for i := range p.Devices {
		id := p.Devices[i]
		cluster.PutIgnoredDeviceLoaded(&id)
	}
	return nil
}
