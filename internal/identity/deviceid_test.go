// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package identity

import (
	"encoding/base32"
	"strings"
	"testing"
)

func TestDeviceIDRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair("test-device")
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	id := kp.DeviceID()

	s := id.String()
	var id2 DeviceID
	if err := id2.UnmarshalText([]byte(s)); err != nil {
		t.Fatalf("UnmarshalText(%q): %v", s, err)
	}
	if id != id2 {
		t.Fatalf("round trip mismatch: %v != %v", id, id2)
	}
}

func TestDeviceIDShortOldStyle(t *testing.T) {
	// 52-char (no check digits) and 56-char (with check digits) forms of
	// the same ID must parse to the same value.
	kp, err := GenerateKeyPair("test-device-2")
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	id := kp.DeviceID()
	full := id.String()

	var reparsed DeviceID
	if err := reparsed.UnmarshalText([]byte(full)); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if reparsed != id {
		t.Fatalf("mismatch")
	}

	unchecked := strings.TrimRight(base32.StdEncoding.EncodeToString(id[:]), "=")
	var fromUnchecked DeviceID
	if err := fromUnchecked.UnmarshalText([]byte(unchecked)); err != nil {
		t.Fatalf("UnmarshalText(%q): %v", unchecked, err)
	}
	if fromUnchecked != id {
		t.Fatalf("52-char form parsed to %v, want %v", fromUnchecked, id)
	}
	if got := reparsed.Short(); len(got) != 7 {
		t.Fatalf("Short() = %q, want length 7", got)
	}
}

func TestDeviceIDEmpty(t *testing.T) {
	var id DeviceID
	if err := id.UnmarshalText(nil); err != nil {
		t.Fatalf("empty device ID should be valid: %v", err)
	}
	if id != (DeviceID{}) {
		t.Fatalf("expected zero device ID")
	}
}

func TestDeviceIDInvalidChecksum(t *testing.T) {
	kp, err := GenerateKeyPair("test-device-3")
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	s := []byte(kp.DeviceID().String())
	// Corrupt a data character (not a dash) near the start; the check
	// digit for that group will then fail to verify.
	if s[0] == 'A' {
		s[0] = 'B'
	} else {
		s[0] = 'A'
	}
	var id DeviceID
	if err := id.UnmarshalText(s); err == nil {
		t.Fatalf("expected checksum error")
	}
}

func TestHashBlockDeterministic(t *testing.T) {
	a := HashBlock([]byte("12345"))
	b := HashBlock([]byte("12345"))
	if a != b {
		t.Fatalf("HashBlock not deterministic")
	}
	c := HashBlock([]byte("54321"))
	if a == c {
		t.Fatalf("HashBlock collided on different input")
	}
}
