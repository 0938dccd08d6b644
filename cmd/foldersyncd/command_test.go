// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"testing"
	"time"

	"github.com/foldersync/foldersync/internal/identity"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/sequencer"
)

func devID(b byte) model.DeviceID {
	raw := make([]byte, 32)
	raw[0] = b
	id, err := identity.DeviceIDFromBytes(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func TestSplitCommandFieldsQuotedLabel(t *testing.T) {
	fields, err := splitCommandFields(`add_folder:label="My Folder":path=/srv/data`)
	if err != nil {
		t.Fatalf("splitCommandFields: %v", err)
	}
	want := []string{"add_folder", "label=My Folder", "path=/srv/data"}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d: %v", len(fields), len(want), fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d: got %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestSplitCommandFieldsUnquoted(t *testing.T) {
	fields, err := splitCommandFields("add_peer:laptop:" + devID(1).String())
	if err != nil {
		t.Fatalf("splitCommandFields: %v", err)
	}
	if len(fields) != 3 || fields[0] != "add_peer" || fields[1] != "laptop" {
		t.Fatalf("unexpected split: %v", fields)
	}
}

func TestExecCommandAddPeer(t *testing.T) {
	c := model.New(devID(1))
	seq := sequencer.New()
	raw := "add_peer:laptop:" + devID(2).String()

	if _, err := execCommand(raw, c, seq, diff.DefaultController{}); err != nil {
		t.Fatalf("execCommand: %v", err)
	}
	pending := c.PendingDevices()
	if len(pending) != 1 || pending[0].Name != "laptop" {
		t.Fatalf("pending devices = %+v", pending)
	}
}

func TestExecCommandAddFolderGeneratesID(t *testing.T) {
	c := model.New(devID(1))
	seq := sequencer.New()

	if _, err := execCommand("add_folder:label=Pictures:path=/srv/pictures", c, seq, diff.DefaultController{}); err != nil {
		t.Fatalf("execCommand: %v", err)
	}
	folders := c.Folders()
	if len(folders) != 1 {
		t.Fatalf("got %d folders, want 1", len(folders))
	}
	if folders[0].ID == "" {
		t.Fatal("expected a generated folder ID")
	}
	if folders[0].Label != "Pictures" || folders[0].Path != "/srv/pictures" {
		t.Fatalf("folder = %+v", folders[0])
	}
}

func TestExecCommandAddFolderMissingPath(t *testing.T) {
	c := model.New(devID(1))
	seq := sequencer.New()
	if _, err := execCommand("add_folder:label=Pictures", c, seq, diff.DefaultController{}); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestExecCommandShareByLabel(t *testing.T) {
	c := model.New(devID(1))
	seq := sequencer.New()
	ctrl := diff.DefaultController{}

	if _, err := execCommand("add_folder:label=Pictures:id=f1:path=/srv/pictures", c, seq, ctrl); err != nil {
		t.Fatalf("add_folder: %v", err)
	}
	peer := devID(2)
	if _, err := execCommand("add_peer:laptop:"+peer.String(), c, seq, ctrl); err != nil {
		t.Fatalf("add_peer: %v", err)
	}
	d := diff.New(diff.KindUpdatePeer, diff.UpdatePeerPayload{Device: model.Device{ID: peer, Name: "laptop"}})
	if err := d.Apply(c); err != nil {
		t.Fatalf("UpdatePeer: %v", err)
	}

	if _, err := execCommand("share:folder=Pictures:device=laptop", c, seq, ctrl); err != nil {
		t.Fatalf("share: %v", err)
	}
	fi, ok := c.FolderInfo("f1", peer)
	if !ok {
		t.Fatal("expected folder-info for shared peer")
	}
	_ = fi
}

func TestExecCommandShareUnknownFolder(t *testing.T) {
	c := model.New(devID(1))
	seq := sequencer.New()
	if _, err := execCommand("share:folder=missing:device=laptop", c, seq, diff.DefaultController{}); err == nil {
		t.Fatal("expected an error for an unknown folder")
	}
}

func TestExecCommandInactivate(t *testing.T) {
	c := model.New(devID(1))
	seq := sequencer.New()
	wait, err := execCommand("inactivate:30", c, seq, diff.DefaultController{})
	if err != nil {
		t.Fatalf("execCommand: %v", err)
	}
	if wait != 30*time.Second {
		t.Fatalf("got wait %v, want 30s", wait)
	}
}

func TestExecCommandUnknown(t *testing.T) {
	c := model.New(devID(1))
	seq := sequencer.New()
	if _, err := execCommand("bogus:1:2", c, seq, diff.DefaultController{}); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}
