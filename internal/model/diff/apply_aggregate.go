// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import "github.com/foldersync/foldersync/internal/model"

// applyAggregate applies each constituent diff tree, in order, within the
// write lock already held for the aggregate itself (spec.md §4.D: a single
// aggregate_diff groups several otherwise-independent diffs into one
// logical transaction, e.g. a batch of new_file diffs from one scan pass).
// It calls applyImpl directly rather than re-entering applyLocked, since
// the aggregate's own children/siblings (if any) are handled by the outer
// traversal and recursing through applyLocked here would re-acquire
// nothing but would duplicate that child/sibling walk.
func applyAggregate(d *Diff, cluster *model.Cluster) error {
	p := d.Payload.(AggregatePayload)
	for _, sub := range p.Diffs {
		if err := applySubtree(sub, cluster); err != nil {
			return err
		}
	}
	return nil
}

// applySubtree walks sub's own child/sibling structure and applies each
// node via applyImpl, assuming the caller already holds the cluster's
// write lock.
func applySubtree(d *Diff, cluster *model.Cluster) error {
	if d == nil {
		return nil
	}
	if d.child != nil {
		if err := applySubtree(d.child, cluster); err != nil {
			return err
		}
	}
	if err := applyImpl(d, cluster); err != nil {
		return err
	}
	if d.sibling != nil {
		if err := applySubtree(d.sibling, cluster); err != nil {
			return err
		}
	}
	return nil
}
