// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package payload

import (
	"debug/elf"
	"fmt"
	"io"
)

// readELF flattens the PT_LOAD segments of an ELF program into a single
// image, lowest physical address first, gaps zero-filled.
func readELF(name string) ([]byte, error) {
	f, err := elf.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer f.Close()
	var segs []segment
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Filesz == 0 {
			continue
		}
		data := make([]byte, p.Filesz)
		if _, err := io.ReadFull(p.Open(), data); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		segs = append(segs, segment{addr: p.Paddr, data: data})
	}
	return flatten(name, segs)
}
