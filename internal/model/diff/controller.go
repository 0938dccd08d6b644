// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package diff

import "github.com/foldersync/foldersync/internal/model"

// ApplyController is the indirection spec.md §4.D describes: "an interface
// with overrideable apply(diff, cluster) methods so that higher layers
// (UI, loader) can interpose progress reporting or batching around
// selected diff kinds without modifying the diffs themselves."
//
// Most callers use DefaultController, which simply invokes applyImpl.
// cmd/foldersyncd replays Store.Load()'s tree through a ProgressController
// to count replayed record groups; a UI layer could override Apply for
// batching model-refresh notifications.
type ApplyController interface {
	Apply(d *Diff, cluster *model.Cluster) error
}

// DefaultController applies every kind directly via applyImpl, with no
// interposition.
type DefaultController struct{}

func (DefaultController) Apply(d *Diff, cluster *model.Cluster) error {
	return applyImpl(d, cluster)
}

// FuncController adapts a plain function to ApplyController, for ad hoc
// interposition (e.g. counting applied diffs in a test).
type FuncController func(d *Diff, cluster *model.Cluster) error

func (f FuncController) Apply(d *Diff, cluster *model.Cluster) error { return f(d, cluster) }

// ProgressController wraps DefaultController and additionally reports
// progress for a chosen subset of kinds (the load group, during startup
// streaming — spec.md §4.E "reported through the apply-controller so the
// UI shows loading progress").
type ProgressController struct {
	Inner    ApplyController
	OnApply  func(kind Kind)
}

func (p ProgressController) Apply(d *Diff, cluster *model.Cluster) error {
	inner := p.Inner
	if inner == nil {
		inner = DefaultController{}
	}
	err := inner.Apply(d, cluster)
	if err == nil && p.OnApply != nil {
		p.OnApply(d.Kind)
	}
	return err
}
