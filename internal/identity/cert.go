// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	xcrypto "golang.org/x/crypto/blake2b"
)

// KeyPair is a self-signed certificate and its private key, as generated
// for the self device at first run.
type KeyPair struct {
	Certificate tls.Certificate
}

// GenerateKeyPair creates a long-lived, self-signed Ed25519 certificate for
// the given issuer/common name. The certificate's SHA-256 digest is the
// canonical device ID (DeviceIDFromCert).
func GenerateKeyPair(issuer string) (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: generate serial: %w", err)
	}

	notBefore := time.Now().Add(-time.Hour)
	notAfter := notBefore.AddDate(20, 0, 0)

	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: issuer, Organization: []string{"foldersync"}},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, pub, priv)
	if err != nil {
		return KeyPair{}, fmt.Errorf("identity: create certificate: %w", err)
	}

	return KeyPair{
		Certificate: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  priv,
			Leaf:        &template,
		},
	}, nil
}

// DeviceID returns the device ID derived from the leaf certificate's raw
// bytes.
func (k KeyPair) DeviceID() DeviceID {
	return DeviceIDFromCert(k.Certificate.Certificate[0])
}

// FingerprintBlake2b is an auxiliary, non-canonical fingerprint sometimes
// used by out-of-band verification tooling (e.g. printed QR payloads in the
// excluded GUI shell); it is not the device ID.
func FingerprintBlake2b(rawCert []byte) ([32]byte, error) {
	return xcrypto.Sum256(rawCert), nil
}

// HashBlock computes the canonical content-address of a block's raw bytes
// (spec.md §4.A: "plain SHA-256 over the raw block bytes").
func HashBlock(data []byte) [32]byte {
	return sha256.Sum256(data)
}
