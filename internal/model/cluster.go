// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"sync"

	"github.com/getsentry/raven-go"

	"github.com/foldersync/foldersync/internal/blockstore"
	"github.com/foldersync/foldersync/internal/logger"
	"github.com/foldersync/foldersync/internal/pathintern"
)

var l = logger.NewFacility("model", "the in-memory cluster graph")

// Cluster is the in-memory graph described in spec.md §4.C. It is owned by
// and mutated only inside the network scheduler (spec.md §5); every
// mutation is expressed as a diff (internal/model/diff).
type Cluster struct {
	mut sync.RWMutex

	self DeviceID

	devices         map[DeviceID]*Device
	folders         map[FolderID]*Folder
	pendingDevices  map[DeviceID]*PendingDevice
	ignoredDevices  map[DeviceID]*IgnoredDevice
	pendingFolders  map[FolderID]*PendingFolder
	unknownDevices  map[DeviceID]string

	Blocks *blockstore.Store
	Paths  *pathintern.Cache

	tainted bool

	// sentryClient, if set through SetSentryClient, reports taint events
	// upstream (spec.md §7 "Fatal to process"). It is nil by default, and
	// cmd/foldersyncd does not set it.
	sentryClient *raven.Client
}

// New creates an empty cluster for the given self device.
func New(self DeviceID) *Cluster {
	return &Cluster{
		self:           self,
		devices:        make(map[DeviceID]*Device),
		folders:        make(map[FolderID]*Folder),
		pendingDevices: make(map[DeviceID]*PendingDevice),
		ignoredDevices: make(map[DeviceID]*IgnoredDevice),
		pendingFolders: make(map[FolderID]*PendingFolder),
		unknownDevices: make(map[DeviceID]string),
		Blocks:         blockstore.New(1 << 16),
		Paths:          pathintern.New(),
	}
}

// SetSentryClient wires an error-reporting client used only to report that
// the cluster became tainted; it never receives ordinary operational
// events. The cluster's self device is immutable after construction
// (spec.md §4.C), but the sentry client is an observability hook and may
// be attached after construction.
func (c *Cluster) SetSentryClient(client *raven.Client) {
	c.mut.Lock()
	defer c.mut.Unlock()
	c.sentryClient = client
}

func (c *Cluster) Self() DeviceID {
	return c.self
}

// Taint marks the cluster unsafe to persist further (spec.md §4.C, §7). It
// is called exactly once, by the first diff whose apply_impl fails;
// subsequent calls are no-ops.
func (c *Cluster) Taint(cause error) {
	c.mut.Lock()
	already := c.tainted
	c.tainted = true
	client := c.sentryClient
	c.mut.Unlock()

	reportTaint(cause, already, client)
}

// TaintLocked is Taint's variant for callers that already hold the
// cluster's write lock (the diff package's apply traversal), so tainting a
// cluster mid-transaction never attempts to re-acquire it.
func (c *Cluster) TaintLocked(cause error) {
	already := c.tainted
	c.tainted = true
	client := c.sentryClient

	reportTaint(cause, already, client)
}

func reportTaint(cause error, already bool, client *raven.Client) {
	if already {
		return
	}
	l.Warnf("cluster tainted: %v", cause)
	if client != nil {
		client.CaptureError(cause, map[string]string{"component": "model.Cluster"})
	}
}

func (c *Cluster) IsTainted() bool {
	c.mut.RLock()
	defer c.mut.RUnlock()
	return c.tainted
}

// --- Devices ---

func (c *Cluster) Device(id DeviceID) (*Device, bool) {
	c.mut.RLock()
	defer c.mut.RUnlock()
	d, ok := c.devices[id]
	return d, ok
}

func (c *Cluster) Devices() []*Device {
	c.mut.RLock()
	defer c.mut.RUnlock()
	out := make([]*Device, 0, len(c.devices))
	for _, d := range c.devices {
		out = append(out, d)
	}
	return out
}

func (c *Cluster) putDevice(d *Device) { c.devices[d.ID] = d }
func (c *Cluster) removeDevice(id DeviceID) { delete(c.devices, id) }

// --- Folders ---

func (c *Cluster) Folder(id FolderID) (*Folder, bool) {
	c.mut.RLock()
	defer c.mut.RUnlock()
	f, ok := c.folders[id]
	return f, ok
}

func (c *Cluster) Folders() []*Folder {
	c.mut.RLock()
	defer c.mut.RUnlock()
	out := make([]*Folder, 0, len(c.folders))
	for _, f := range c.folders {
		out = append(out, f)
	}
	return out
}

func (c *Cluster) putFolder(f *Folder) { c.folders[f.ID] = f }
func (c *Cluster) removeFolder(id FolderID) {
	f, ok := c.folders[id]
	if !ok {
		return
	}
	for _, fi := range f.FolderInfos {
		for _, file := range fi.Files {
			for _, blk := range file.Blocks {
				h := blockstore.HashFromBytes(blk.Hash)
				c.Blocks.Unref(h)
			}
		}
	}
	delete(c.folders, id)
}

// FolderInfo looks up the per-(folder,device) record.
func (c *Cluster) FolderInfo(folder FolderID, device DeviceID) (*FolderInfo, bool) {
	c.mut.RLock()
	defer c.mut.RUnlock()
	f, ok := c.folders[folder]
	if !ok {
		return nil, false
	}
	fi, ok := f.FolderInfos[device]
	return fi, ok
}

// --- Pending / ignored ---

func (c *Cluster) PendingDevices() []*PendingDevice {
	c.mut.RLock()
	defer c.mut.RUnlock()
	out := make([]*PendingDevice, 0, len(c.pendingDevices))
	for _, d := range c.pendingDevices {
		out = append(out, d)
	}
	return out
}

func (c *Cluster) IgnoredDevices() []*IgnoredDevice {
	c.mut.RLock()
	defer c.mut.RUnlock()
	out := make([]*IgnoredDevice, 0, len(c.ignoredDevices))
	for _, d := range c.ignoredDevices {
		out = append(out, d)
	}
	return out
}

func (c *Cluster) PendingFolders() []*PendingFolder {
	c.mut.RLock()
	defer c.mut.RUnlock()
	out := make([]*PendingFolder, 0, len(c.pendingFolders))
	for _, f := range c.pendingFolders {
		out = append(out, f)
	}
	return out
}

// Lock/Unlock expose the cluster's single writer lock to the diff package,
// which must hold it across an entire apply_impl (including its children)
// so that concurrent readers (e.g. the UI scheduler) never observe a
// partially-applied diff tree.
func (c *Cluster) Lock()    { c.mut.Lock() }
func (c *Cluster) Unlock()  { c.mut.Unlock() }
func (c *Cluster) RLock()   { c.mut.RLock() }
func (c *Cluster) RUnlock() { c.mut.RUnlock() }
