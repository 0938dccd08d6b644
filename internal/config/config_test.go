// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/d4l3k/messagediff"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaultsToUnsetFields(t *testing.T) {
	path := writeTemp(t, `
device_name = "laptop"
cert_file = "cert.pem"
key_file = "key.pem"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DeviceName != "laptop" {
		t.Errorf("got device_name %q", cfg.DeviceName)
	}
	if cfg.BEP.RequestsMax != Default().BEP.RequestsMax {
		t.Errorf("unset bep.requests_max should fall back to default, got %d", cfg.BEP.RequestsMax)
	}
	if cfg.FS.MRUSize != Default().FS.MRUSize {
		t.Errorf("unset fs.mru_size should fall back to default, got %d", cfg.FS.MRUSize)
	}
}

func TestLoadOverridesExplicitFields(t *testing.T) {
	path := writeTemp(t, `
cert_file = "cert.pem"
key_file = "key.pem"

[fs]
mru_size = 128
concurrent_hashes = 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FS.MRUSize != 128 {
		t.Errorf("got fs.mru_size %d, want 128", cfg.FS.MRUSize)
	}
	if cfg.FS.ConcurrentHashes != 4 {
		t.Errorf("got fs.concurrent_hashes %d, want 4", cfg.FS.ConcurrentHashes)
	}
}

func TestLoadRejectsNonPositiveNumericOption(t *testing.T) {
	path := writeTemp(t, `
cert_file = "cert.pem"
key_file = "key.pem"

[fs]
mru_size = 0
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for fs.mru_size = 0")
	}
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("got %v, want wrapped ErrInvalidValue", err)
	}
}

func TestLoadRequiresCertAndKeyPaths(t *testing.T) {
	path := writeTemp(t, `device_name = "laptop"`)
	_, err := Load(path)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("got %v, want ErrInvalidValue for missing cert/key", err)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadAppliesDefaultsToUnsetFieldsFull(t *testing.T) {
	path := writeTemp(t, `
cert_file = "cert.pem"
key_file = "key.pem"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.CertFile, want.KeyFile = "cert.pem", "key.pem"
	if d, equal := messagediff.PrettyDiff(want, cfg); !equal {
		t.Errorf("a config file setting only cert/key should be identical to Default() otherwise. Diff:\n%s", d)
	}
}

func TestDefaultPassesValidation(t *testing.T) {
	cfg := Default()
	cfg.CertFile = "cert.pem"
	cfg.KeyFile = "key.pem"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() + cert/key should validate, got %v", err)
	}
}
