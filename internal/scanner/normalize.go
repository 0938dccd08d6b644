// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package scanner

import "golang.org/x/text/unicode/norm"

// normalizeName returns name in NFC form and whether it differed from the
// input, used by Config.AutoNormalize to correct names that are valid
// UTF-8 but in a denormalized form before they enter the cluster model.
func normalizeName(name string) (string, bool) {
	normalized := norm.NFC.String(name)
	return normalized, normalized != name
}
