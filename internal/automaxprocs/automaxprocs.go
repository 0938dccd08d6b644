// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package automaxprocs sets GOMAXPROCS from the process's cgroup CPU quota
// on import. The hasher_threads=0 auto sizing does not use GOMAXPROCS; it
// counts physical cores instead.
package automaxprocs

import (
	"go.uber.org/automaxprocs/maxprocs"
)

func init() {
	maxprocs.Set()
}
