// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package payload reads partition payloads. The file extension selects
// the reader: ELF programs are flattened to their load segments, Intel
// HEX files to their data segments, Xilinx bitstreams are stripped of
// their informational header; everything else is embedded verbatim.
package payload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoData = errors.New("no payload data")

// Read returns the payload bytes for the named file.
func Read(name string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".elf":
		return readELF(name)
	case ".hex":
		return readHex(name)
	case ".bit":
		return readBit(name)
	}
	return os.ReadFile(name)
}

// Size returns the payload length in bytes without keeping the data.
// Raw binaries are measured with a stat; the structured formats have to
// be read in full because their payload length is not the file length.
func Size(name string) (int, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".elf", ".hex", ".bit":
		data, err := Read(name)
		if err != nil {
			return 0, err
		}
		return len(data), nil
	}
	fi, err := os.Stat(name)
	if err != nil {
		return 0, err
	}
	return int(fi.Size()), nil
}

type segment struct {
	addr uint64
	data []byte
}

// flatten joins segments into one contiguous byte slice ordered by
// address, zero-filling the gaps. Overlapping segments are an error.
func flatten(name string, segs []segment) ([]byte, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoData)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].addr < segs[j].addr })
	end := segs[0].addr
	size := 0
	for _, s := range segs {
		if s.addr < end {
			return nil, fmt.Errorf("%s: overlapping segments at %#x", name, s.addr)
		}
		end = s.addr + uint64(len(s.data))
		size = int(end - segs[0].addr)
	}
	buf := make([]byte, size)
	for _, s := range segs {
		copy(buf[s.addr-segs[0].addr:], s.data)
	}
	return buf, nil
}
