// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package identity

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// LoadOrGenerateKeyPair loads the PEM-encoded certificate/key pair at
// certFile/keyFile, generating and persisting a fresh self-signed pair (for
// the given issuer name) if either file is absent. This mirrors the
// teacher's own cmd/syncthing/tls.go loadCert/newCertificate split, adapted
// to the Ed25519 keys GenerateKeyPair produces instead of the teacher's RSA.
func LoadOrGenerateKeyPair(certFile, keyFile, issuer string) (KeyPair, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err == nil {
		return KeyPair{Certificate: cert}, nil
	}
	if !os.IsNotExist(err) {
		return KeyPair{}, fmt.Errorf("identity: load key pair: %w", err)
	}

	kp, err := GenerateKeyPair(issuer)
	if err != nil {
		return KeyPair{}, err
	}
	if err := kp.save(certFile, keyFile); err != nil {
		return KeyPair{}, err
	}
	return kp, nil
}

func (k KeyPair) save(certFile, keyFile string) error {
	certOut, err := os.Create(certFile)
	if err != nil {
		return fmt.Errorf("identity: save cert: %w", err)
	}
	defer certOut.Close()
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: k.Certificate.Certificate[0]}); err != nil {
		return fmt.Errorf("identity: save cert: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(k.Certificate.PrivateKey)
	if err != nil {
		return fmt.Errorf("identity: marshal key: %w", err)
	}
	keyOut, err := os.OpenFile(keyFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("identity: save key: %w", err)
	}
	defer keyOut.Close()
	if err := pem.Encode(keyOut, &pem.Block{Type: "PRIVATE KEY", Bytes: der}); err != nil {
		return fmt.Errorf("identity: save key: %w", err)
	}
	return nil
}
