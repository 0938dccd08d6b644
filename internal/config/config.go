// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config loads the TOML configuration file described in spec.md §6:
// sections for BEP, the database, the dialer, the filesystem, discovery,
// relaying, UPnP and logging, plus a handful of top-level keys. Load
// validates the numeric options as Validate describes.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root of the TOML document (spec.md §6 "Configuration file").
type Config struct {
	// Timeout is the default network operation timeout.
	Timeout time.Duration `toml:"timeout"`
	// DeviceName is this process's advertised device name.
	DeviceName string `toml:"device_name"`
	// HasherThreads bounds how many blocks may hash concurrently; 0 means
	// "auto" (cmd/foldersyncd uses gopsutil's physical-core count at
	// startup, falling back to fs.concurrent_hashes).
	HasherThreads int `toml:"hasher_threads"`
	// DefaultLocation is decoded and kept but not consulted: the CLI
	// add_folder command requires an explicit path.
	DefaultLocation string `toml:"default_location"`
	CertFile        string `toml:"cert_file"`
	KeyFile         string `toml:"key_file"`
	// MetricsListen is the address the Prometheus handler binds to; empty
	// disables it.
	MetricsListen string `toml:"metrics_listen"`

	BEP       BEP       `toml:"bep"`
	Database  Database  `toml:"database"`
	Dialer    Dialer    `toml:"dialer"`
	FS        FS        `toml:"fs"`
	Discovery Discovery `toml:"discovery"`
	Relay     Relay     `toml:"relay"`
	UPnP      UPnP      `toml:"upnp"`
	Logging   Logging   `toml:"logging"`
}

// BEP configures the Block Exchange Protocol transport (spec.md §6 "Wire
// protocol").
type BEP struct {
	ListenAddress    string        `toml:"listen_address"`
	RequestsMax      int           `toml:"requests_max"`
	RescanIntervalS  int           `toml:"rescan_interval_s"`
	ReconnectTimeout time.Duration `toml:"reconnect_timeout"`
}

// Database configures the persistence bridge (spec.md §4.E, §6 "Persistent
// store schema").
type Database struct {
	Path           string `toml:"path"`
	MaxOpenFiles   int    `toml:"max_open_files"`
	WriteBufferMiB int    `toml:"write_buffer_mib"`
}

// Dialer configures outbound connection attempts to known peer addresses.
type Dialer struct {
	RedialTimeout time.Duration `toml:"redial_timeout"`
	MaxRetries    int           `toml:"max_retries"`
}

// FS configures the scan engine's filesystem interaction (spec.md §4.G,
// §5 "fs." knobs).
type FS struct {
	MRUSize                 int           `toml:"mru_size"`
	TempLifetime            time.Duration `toml:"temp_lifetime"`
	ConcurrentHashes        int           `toml:"concurrent_hashes"`
	FilesScanIterationLimit int           `toml:"files_scan_iteration_limit"`
	BytesScanIterationLimit int64         `toml:"bytes_scan_iteration_limit"`
}

// Discovery configures the global and local peer discovery subsystems,
// both out of this core's scope (spec.md Non-goals) but kept as config
// surface so a discovery component can be slotted in without a schema
// change.
type Discovery struct {
	Global DiscoveryGlobal `toml:"global"`
	Local  DiscoveryLocal  `toml:"local"`
}

type DiscoveryGlobal struct {
	Enabled bool   `toml:"enabled"`
	Server  string `toml:"server"`
}

type DiscoveryLocal struct {
	Enabled       bool          `toml:"enabled"`
	BroadcastPort int           `toml:"broadcast_port"`
	Interval      time.Duration `toml:"interval"`
}

// Relay configures relay fallback, also out of this core's scope.
type Relay struct {
	Enabled bool     `toml:"enabled"`
	Servers []string `toml:"servers"`
}

// UPnP configures automatic port-forwarding, also out of this core's scope.
type UPnP struct {
	Enabled  bool          `toml:"enabled"`
	Lease    time.Duration `toml:"lease"`
	RenewalS int           `toml:"renewal_s"`
}

// Logging configures internal/logger's sinks and level.
type Logging struct {
	Level       string `toml:"level"`
	ConsoleSink bool   `toml:"console_sink"`
	File        string `toml:"file"`
}

// Default returns a Config populated with the same defaults spec.md's
// numeric-validation discipline assumes a fresh install ships with.
func Default() Config {
	return Config{
		Timeout:       60 * time.Second,
		HasherThreads: 0,
		MetricsListen: "127.0.0.1:8082",
		BEP: BEP{
			ListenAddress:    "0.0.0.0:22000",
			RequestsMax:      16,
			RescanIntervalS:  3600,
			ReconnectTimeout: 60 * time.Second,
		},
		Database: Database{
			MaxOpenFiles:   100,
			WriteBufferMiB: 16,
		},
		Dialer: Dialer{
			RedialTimeout: 60 * time.Second,
			MaxRetries:    0,
		},
		FS: FS{
			MRUSize:                 64,
			TempLifetime:            12 * time.Hour,
			ConcurrentHashes:        2,
			FilesScanIterationLimit: 100,
			BytesScanIterationLimit: 16 << 20,
		},
		Discovery: Discovery{
			Global: DiscoveryGlobal{Enabled: true, Server: "https://discovery.example.org"},
			Local:  DiscoveryLocal{Enabled: true, BroadcastPort: 21027, Interval: 30 * time.Second},
		},
		UPnP: UPnP{Enabled: true, Lease: time.Hour, RenewalS: 1800},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads and validates the TOML configuration file at path, starting
// from Default() so a partial file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate requires timeout, the bep.*, database.* and fs.* numeric options
// and dialer.redial_timeout to be strictly positive, hasher_threads to be
// non-negative (0 means auto), discovery.local.broadcast_port to be positive
// when local discovery is enabled, and cert_file/key_file to be set.
// dialer.max_retries, discovery.local.interval, upnp.lease and
// upnp.renewal_s are not checked.
func (c Config) Validate() error {
	type check struct {
		name string
		ok   bool
	}
	checks := []check{
		{"timeout", c.Timeout > 0},
		{"bep.requests_max", c.BEP.RequestsMax > 0},
		{"bep.rescan_interval_s", c.BEP.RescanIntervalS > 0},
		{"bep.reconnect_timeout", c.BEP.ReconnectTimeout > 0},
		{"database.max_open_files", c.Database.MaxOpenFiles > 0},
		{"database.write_buffer_mib", c.Database.WriteBufferMiB > 0},
		{"dialer.redial_timeout", c.Dialer.RedialTimeout > 0},
		{"fs.mru_size", c.FS.MRUSize > 0},
		{"fs.concurrent_hashes", c.FS.ConcurrentHashes > 0},
		{"fs.files_scan_iteration_limit", c.FS.FilesScanIterationLimit > 0},
		{"fs.bytes_scan_iteration_limit", c.FS.BytesScanIterationLimit > 0},
	}
	if c.HasherThreads < 0 {
		return fmt.Errorf("config: hasher_threads must be >= 0 (0 means auto): %w", ErrInvalidValue)
	}
	if c.Discovery.Local.Enabled && c.Discovery.Local.BroadcastPort <= 0 {
		return fmt.Errorf("config: discovery.local.broadcast_port must be positive when enabled: %w", ErrInvalidValue)
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("config: %s must be strictly positive: %w", chk.name, ErrInvalidValue)
		}
	}
	if c.CertFile == "" || c.KeyFile == "" {
		return fmt.Errorf("config: cert_file and key_file are required: %w", ErrInvalidValue)
	}
	return nil
}

// ErrInvalidValue is the sentinel wrapped by every Validate failure.
var ErrInvalidValue = errors.New("config: invalid value")
