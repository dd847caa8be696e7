// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package payload

import (
	"fmt"
	"os"

	"github.com/marcinbor85/gohex"
)

// readHex flattens the data segments of an Intel HEX file.
func readHex(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var segs []segment
	for _, s := range mem.GetDataSegments() {
		segs = append(segs, segment{addr: uint64(s.Address), data: s.Data})
	}
	return flatten(name, segs)
}
