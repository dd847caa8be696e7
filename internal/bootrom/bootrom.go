// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bootrom lays boot partitions out in memory and synthesizes
// the header structures the Zynq and ZynqMP boot ROMs walk at power-on:
// boot header, image header table and partition header table, followed
// by the partition payloads at their resolved offsets.
package bootrom

import (
	"github.com/zynqtools/mkbootimage/internal/bif"
)

// Magic words shared by both boot ROM generations.
const (
	widthDetect = 0xaa995566 // bus width detection word at 0x20
	imageID     = 0x584c4e58 // "XNLX" at 0x24
)

// Fixed word offsets shared by both boot headers.
const (
	bhChecksumRangeLo = 8  // 0x20, first word covered by the checksum
	bhChecksumWord    = 18 // 0x48
	bhIHTOffWord      = 38 // 0x98, image header table byte offset
	bhPHTOffWord      = 39 // 0x9c, partition header table byte offset

	ihtWordOff = 0x8c0 / 4 // image header table position
	ihtWords   = 16        // image header table size incl. padding
	phWords    = 16        // one partition header
	regInitCnt = 256       // register init address/value pairs
)

// Ops supplies the architecture-specific constants and encoders driving
// the otherwise architecture-agnostic image composition. Exactly two
// implementations exist, ZynqOps and ZynqMPOps, selected once per run.
type Ops interface {
	Arch() bif.Arch

	// MaxPartitions is the partition count the boot ROM supports.
	MaxPartitions() int

	// Alignment is the byte granularity for default payload placement.
	Alignment() int

	// DefaultLoad returns the load address applied when the source does
	// not specify one, by partition role.
	DefaultLoad(bootloader bool) uint64

	// PartitionAttrs validates the node's architecture attributes and
	// encodes them into the partition header attribute word.
	PartitionAttrs(n *bif.Node) (uint32, error)

	// EncodeBootHeader fills the boot header region hdr (everything
	// before the image header table) except the checksum slot.
	EncodeBootHeader(hdr []uint32, lay *Layout)

	// EncodePartitionHeader fills the 16-word partition header of
	// lay.Parts[i] except the checksum slot.
	EncodePartitionHeader(dst []uint32, i int, lay *Layout)

	// Checksum computes the boot ROM header checksum over words.
	Checksum(words []uint32) uint32
}

// invSum is the inverted arithmetic sum both boot ROM generations use
// for their header checksums.
func invSum(words []uint32) uint32 {
	var sum uint32
	for _, w := range words {
		sum += w
	}
	return ^sum
}

// regInit fills a register initialization table with the unused marker
// pairs (address 0xffffffff, value 0).
func regInit(hdr []uint32, word int) {
	for i := 0; i < regInitCnt; i++ {
		hdr[word+2*i] = 0xffffffff
		hdr[word+2*i+1] = 0
	}
}

// padFF fills hdr[from:ihtWordOff] with the flash erase value.
func padFF(hdr []uint32, from int) {
	for i := from; i < ihtWordOff; i++ {
		hdr[i] = 0xffffffff
	}
}
