// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics

import (
	"errors"
	"testing"

	"github.com/foldersync/foldersync/internal/identity"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// applyLatencyCount returns the sample count of the apply-latency histogram
// for kind, read from the default registry.
func applyLatencyCount(t *testing.T, kind string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "foldersync_model_diff_apply_latency_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "kind" && lp.GetValue() == kind {
					return m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return 0
}

func devID(b byte) model.DeviceID {
	raw := make([]byte, 32)
	raw[0] = b
	id, err := identity.DeviceIDFromBytes(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func TestInstrumentControllerRecordsSuccess(t *testing.T) {
	self := devID(1)
	c := model.New(self)

	before := applyLatencyCount(t, "create_folder")

	ctrl := InstrumentController(diff.DefaultController{})
	d := diff.New(diff.KindCreateFolder, diff.CreateFolderPayload{Folder: model.Folder{ID: "f1"}})
	if err := ctrl.Apply(d, c); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	after := applyLatencyCount(t, "create_folder")
	if after <= before {
		t.Fatalf("latency histogram count did not increase: before=%v after=%v", before, after)
	}
}

func TestInstrumentControllerRecordsFailure(t *testing.T) {
	self := devID(1)
	c := model.New(self)

	before := testutil.ToFloat64(DiffApplyFailuresTotal.WithLabelValues("remove_folder"))

	ctrl := InstrumentController(diff.FuncController(func(*diff.Diff, *model.Cluster) error {
		return errors.New("boom")
	}))
	d := diff.New(diff.KindRemoveFolder, diff.RemoveFolderPayload{Folder: "missing"})
	if err := ctrl.Apply(d, c); err == nil {
		t.Fatal("expected error to propagate")
	}

	after := testutil.ToFloat64(DiffApplyFailuresTotal.WithLabelValues("remove_folder"))
	if after != before+1 {
		t.Fatalf("got failures_total %v, want %v", after, before+1)
	}
}
