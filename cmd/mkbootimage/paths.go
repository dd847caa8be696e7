// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "strings"

// deriveFile swaps the extension of the last path element for newExt.
// A name without an extension just gets newExt appended. The directory
// part is kept as is.
func deriveFile(src, newExt string) string {
	base := src
	if i := strings.LastIndexAny(src, `/\`); i >= 0 {
		base = src[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return src[:len(src)-len(base)+i] + newExt
	}
	return src + newExt
}
