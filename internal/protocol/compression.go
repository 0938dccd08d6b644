// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package protocol

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// CompressBlock compresses a Response/Request payload according to a
// peer's negotiated Device.Compression preference (spec.md §3). Metadata
// messages (Index, ClusterConfig, ...) are never compressed here;
// CompressionMetadata only affects those frames, which live below the
// core's boundary, so this helper only implements CompressionAlways /
// CompressionNever for block payloads.
func CompressBlock(data []byte, pref CompressionPreference) ([]byte, bool, error) {
	if pref != CompressionAlways || len(data) == 0 {
		return data, false, nil
	}
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, false, fmt.Errorf("protocol: lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, false, fmt.Errorf("protocol: lz4 compress: %w", err)
	}
	if buf.Len() >= len(data) {
		// Not worth it; send raw.
		return data, false, nil
	}
	return buf.Bytes(), true, nil
}

// DecompressBlock reverses CompressBlock.
func DecompressBlock(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}
	r := lz4.NewReader(bytes.NewReader(data))
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("protocol: lz4 decompress: %w", err)
	}
	return out.Bytes(), nil
}
