// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "errors"

// Model consistency errors, spec.md §7.
var (
	ErrDeviceAlreadyExists   = errors.New("model: device already exists")
	ErrNoSuchDevice          = errors.New("model: no such device")
	ErrFolderAlreadyExists   = errors.New("model: folder already exists")
	ErrFolderAlreadyShared   = errors.New("model: folder already shared")
	ErrNoSuchFolder          = errors.New("model: no such folder")
	ErrPeerSequenceRegression = errors.New("model: peer sequence regression")
	ErrPeerFileRegression    = errors.New("model: peer file regression")
	ErrInvalidDeviceID       = errors.New("model: invalid device id")
	ErrClusterTainted        = errors.New("model: cluster is tainted")
)
