// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package identity derives device identities from X.509 certificates and
// computes block content hashes (spec component A).
package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
)

// DeviceID is the SHA-256 digest of a device's certificate.
type DeviceID [32]byte

var LocalDeviceID = DeviceID{}

// DeviceIDFromCert computes the canonical device ID of a raw DER
// certificate.
func DeviceIDFromCert(rawCert []byte) DeviceID {
	return DeviceID(sha256.Sum256(rawCert))
}

func DeviceIDFromBytes(bs []byte) (DeviceID, error) {
	var n DeviceID
	if len(bs) != len(n) {
		return n, errors.New("identity: incorrect length for device ID bytes")
	}
	copy(n[:], bs)
	return n, nil
}

func (n DeviceID) Compare(other DeviceID) int { return bytes.Compare(n[:], other[:]) }
func (n DeviceID) Equals(other DeviceID) bool { return n == other }

// String renders the canonical 52-character-payload, luhn-checked,
// dash-grouped device ID form described in spec.md §4.A.
func (n DeviceID) String() string {
	id := base32.StdEncoding.EncodeToString(n[:])
	id = strings.TrimRight(id, "=")
	id, err := luhnify(id)
	if err != nil {
		panic(err)
	}
	return chunkify(id)
}

func (n DeviceID) Short() string { return n.String()[:7] }

func (n DeviceID) GoString() string { return n.String() }

func (n *DeviceID) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

func (n *DeviceID) UnmarshalText(bs []byte) error {
	id := strings.ToUpper(string(bs))
	id = strings.Trim(id, "=")
	id = untypeoify(id)
	id = unchunkify(id)

	switch len(id) {
	case 56:
		var err error
		id, err = unluhnify(id)
		if err != nil {
			return err
		}
		fallthrough
	case 52:
		dec, err := base32.StdEncoding.DecodeString(id + "====")
		if err != nil {
			return err
		}
		copy(n[:], dec)
		return nil
	case 0:
		*n = DeviceID{}
		return nil
	default:
		return fmt.Errorf("identity: device ID invalid: incorrect length %d", len(id))
	}
}

// luhnify appends a base32 Luhn check digit to each of the four 13-character
// groups of a 52-character unchecked device ID.
func luhnify(s string) (string, error) {
	if len(s) != 52 {
		return "", fmt.Errorf("identity: unsupported string length %d", len(s))
	}
	var b strings.Builder
	for i := 0; i < 4; i++ {
		part := s[i*13 : (i+1)*13]
		check, err := luhnBase32(part)
		if err != nil {
			return "", err
		}
		b.WriteString(part)
		b.WriteByte(check)
	}
	return b.String(), nil
}

func unluhnify(s string) (string, error) {
	if len(s) != 56 {
		return "", fmt.Errorf("identity: unsupported string length %d", len(s))
	}
	var b strings.Builder
	for i := 0; i < 4; i++ {
		part := s[i*14 : (i+1)*14-1]
		check, err := luhnBase32(part)
		if err != nil {
			return "", err
		}
		if got := s[(i+1)*14-1]; got != check {
			return "", errors.New("identity: device ID check digit incorrect")
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

func chunkify(s string) string {
	var chunks []string
	for len(s) > 0 {
		n := 7
		if n > len(s) {
			n = len(s)
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return strings.Join(chunks, "-")
}

func unchunkify(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}

func untypeoify(s string) string {
	return strings.NewReplacer("0", "O", "1", "I", "8", "B").Replace(s)
}

const luhnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// luhnBase32 computes a Verhoeff/Luhn-style mod-32 check character over a
// base32 alphabet string.
func luhnBase32(s string) (byte, error) {
	factor := 1
	sum := 0
	n := len(luhnAlphabet)
	for i := len(s) - 1; i >= 0; i-- {
		codepoint := strings.IndexByte(luhnAlphabet, s[i])
		if codepoint < 0 {
			return 0, fmt.Errorf("identity: invalid character %q in device ID", s[i])
		}
		addend := factor * codepoint
		if factor == 2 {
			factor = 1
		} else {
			factor = 2
		}
		addend = (addend / n) + (addend % n)
		sum += addend
	}
	remainder := sum % n
	checkCodepoint := (n - remainder) % n
	return luhnAlphabet[checkCodepoint], nil
}
