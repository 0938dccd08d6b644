// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import (
	"github.com/foldersync/foldersync/internal/model"
)

// applyLocalGroup handles the scan-lifecycle and I/O-observation kinds
// (spec.md §4.D "local group"). None of them mutate the cluster graph
// directly; scan_start/scan_finish/scan_request/file_availability/
// blocks_availability/io_failure carry scan and I/O events to visitors
// without the scanner reaching into the cluster itself; no visitor in this
// module acts on them (BaseClusterVisitor's methods for them are no-ops).
// suspend_folder is the one
// local-group-adjacent kind that does mutate state, and has its own
// handler in apply_modify.go per Design Notes §9's "prefer distinct
// kinds... to keep apply functions narrow".
func applyLocalGroup(d *Diff, cluster *model.Cluster) error {
	return nil
}
