// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/foldersync/foldersync/internal/identity"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/sequencer"
)

// splitCommandFields splits one --command argument on ':' the way spec.md
// §6 describes (add_folder:label=<l>:id=<id>:path=<p>), except inside a
// quoted field, where go-shellquote strips the quotes so a label containing
// a literal colon or space can be written as label="My Folder:2026".
func splitCommandFields(raw string) ([]string, error) {
	var rawFields []string
	var buf strings.Builder
	var quote rune
	for _, r := range raw {
		switch {
		case quote != 0:
			buf.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			buf.WriteRune(r)
		case r == ':':
			rawFields = append(rawFields, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	rawFields = append(rawFields, buf.String())

	fields := make([]string, len(rawFields))
	for i, f := range rawFields {
		words, err := shellquote.Split(f)
		if err != nil {
			return nil, fmt.Errorf("command: field %q: %w", f, err)
		}
		fields[i] = strings.Join(words, " ")
	}
	return fields, nil
}

// execCommand runs one --command argument against cluster, per spec.md §6
// "CLI (daemon variant)". For inactivate it returns the duration the daemon
// runs before exiting, or zero for every other command. The daemon exits
// once that duration has passed, whether or not the cluster saw activity in
// the meantime; activity does not restart the wait.
func execCommand(raw string, cluster *model.Cluster, seq *sequencer.Sequencer, ctrl diff.ApplyController) (time.Duration, error) {
	fields, err := splitCommandFields(raw)
	if err != nil {
		return 0, err
	}
	if len(fields) == 0 || fields[0] == "" {
		return 0, fmt.Errorf("command: empty --command value")
	}

	switch fields[0] {
	case "add_peer":
		return 0, execAddPeer(fields[1:], cluster, ctrl)
	case "add_folder":
		return 0, execAddFolder(fields[1:], cluster, seq, ctrl)
	case "share":
		return 0, execShare(fields[1:], cluster, ctrl)
	case "inactivate":
		return execInactivate(fields[1:])
	default:
		return 0, fmt.Errorf("command: unknown command %q", fields[0])
	}
}

// execAddPeer implements add_peer:<label>:<device-id>.
func execAddPeer(args []string, cluster *model.Cluster, ctrl diff.ApplyController) error {
	if len(args) != 2 {
		return fmt.Errorf("command: add_peer wants <label>:<device-id>, got %d field(s)", len(args))
	}
	var id identity.DeviceID
	if err := id.UnmarshalText([]byte(args[1])); err != nil {
		return fmt.Errorf("command: add_peer: %w", err)
	}
	d := diff.New(diff.KindAddPendingDevice, diff.AddPendingDevicePayload{
		Device: model.PendingDevice{ID: id, Name: args[0], FirstSeen: time.Now()},
	})
	return d.ApplyWithController(cluster, ctrl)
}

// execAddFolder implements add_folder:label=<l>:id=<id>:path=<p>.
func execAddFolder(args []string, cluster *model.Cluster, seq *sequencer.Sequencer, ctrl diff.ApplyController) error {
	kv, err := parseKeyValueFields(args)
	if err != nil {
		return fmt.Errorf("command: add_folder: %w", err)
	}
	path, ok := kv["path"]
	if !ok || path == "" {
		return fmt.Errorf("command: add_folder requires path=<p>")
	}
	id := kv["id"]
	if id == "" {
		id = seq.NextUUID().String()
	}
	folder := model.Folder{
		ID:    id,
		Label: kv["label"],
		Path:  path,
	}
	d := diff.New(diff.KindCreateFolder, diff.CreateFolderPayload{Folder: folder})
	return d.ApplyWithController(cluster, ctrl)
}

// execShare implements share:folder=<label-or-id>:device=<short-or-name>.
func execShare(args []string, cluster *model.Cluster, ctrl diff.ApplyController) error {
	kv, err := parseKeyValueFields(args)
	if err != nil {
		return fmt.Errorf("command: share: %w", err)
	}
	folderKey := kv["folder"]
	deviceKey := kv["device"]
	if folderKey == "" || deviceKey == "" {
		return fmt.Errorf("command: share requires folder=<label-or-id>:device=<short-or-name>")
	}

	folderID, ok := resolveFolder(cluster, folderKey)
	if !ok {
		return fmt.Errorf("command: share: no such folder %q", folderKey)
	}
	deviceID, ok := resolveDevice(cluster, deviceKey)
	if !ok {
		return fmt.Errorf("command: share: no such device %q", deviceKey)
	}

	d := diff.New(diff.KindShareFolder, diff.ShareFolderPayload{Folder: folderID, Peer: deviceID})
	return d.ApplyWithController(cluster, ctrl)
}

// execInactivate implements inactivate:<seconds>.
func execInactivate(args []string) (time.Duration, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("command: inactivate wants <seconds>, got %d field(s)", len(args))
	}
	secs, err := strconv.Atoi(args[0])
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("command: inactivate: invalid seconds %q", args[0])
	}
	return time.Duration(secs) * time.Second, nil
}

func parseKeyValueFields(args []string) (map[string]string, error) {
	kv := make(map[string]string, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("field %q is not key=value", a)
		}
		kv[key] = value
	}
	return kv, nil
}

// resolveFolder matches a folder by ID first, then by label (spec.md §6
// "folder=<label-or-id>").
func resolveFolder(cluster *model.Cluster, key string) (model.FolderID, bool) {
	if _, ok := cluster.Folder(key); ok {
		return key, true
	}
	for _, f := range cluster.Folders() {
		if f.Label == key {
			return f.ID, true
		}
	}
	return "", false
}

// resolveDevice matches a device by its short ID (the first 7 characters
// of its canonical form) or its name (spec.md §6 "device=<short-or-name>").
func resolveDevice(cluster *model.Cluster, key string) (model.DeviceID, bool) {
	for _, d := range cluster.Devices() {
		if d.Name == key || d.ID.Short() == key {
			return d.ID, true
		}
	}
	for _, d := range cluster.PendingDevices() {
		if d.Name == key || d.ID.Short() == key {
			return d.ID, true
		}
	}
	return model.DeviceID{}, false
}
