// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"fmt"

	"github.com/zynqtools/mkbootimage/internal/bif"
)

// ZynqMPOps targets the Zynq UltraScale+ (ZynqMP) boot ROM.
var ZynqMPOps Ops = zynqmpOps{}

type zynqmpOps struct{}

// ZynqMP boot header word offsets past the shared magic words.
const (
	zmpVectorWord  = 0x14000000 // AArch64 "b ." filling the vector table
	zmpFsblExec    = 11         // 0x2c, FSBL execution address
	zmpSrcOffWord  = 12         // 0x30, FSBL byte offset
	zmpPMULenWord  = 13         // 0x34, PMU firmware length
	zmpPMUTotWord  = 14         // 0x38, total PMU firmware length
	zmpImgLenWord  = 15         // 0x3c, FSBL image length
	zmpTotalWord   = 16         // 0x40, total FSBL length
	zmpAttrsWord   = 17         // 0x44, FSBL image attributes
	zmpRegInitWord = 46         // 0xb8, register init table

	zmpFsblLoad = 0xfffc0000 // bottom of the OCM seen by the boot ROM
)

// Partition attribute word bit assignments.
const (
	zmpAttrTZSecure = 1 << 3 // trustzone secure partition

	zmpDevShift   = 4 // destination device
	zmpDevPS      = 1
	zmpDevPL      = 2
	zmpCPUShift   = 8 // destination cpu
	zmpELShift    = 1 // exception level
	zmpOwnerShift = 16
)

var zmpCPUs = map[string]uint32{
	"a53-0":       1,
	"a53-1":       2,
	"a53-2":       3,
	"a53-3":       4,
	"r5-0":        5,
	"r5-1":        6,
	"r5-lockstep": 7,
	"pmu":         8,
}

var zmpDevices = map[string]uint32{
	"ps": zmpDevPS,
	"pl": zmpDevPL,
}

var zmpOwners = map[string]uint32{
	"fsbl":  0,
	"uboot": 1,
}

var zmpELs = map[string]uint32{
	"el0": 0,
	"el1": 1,
	"el2": 2,
	"el3": 3,
}

func (zynqmpOps) Arch() bif.Arch     { return bif.ArchZynqMP }
func (zynqmpOps) MaxPartitions() int { return 32 }
func (zynqmpOps) Alignment() int     { return 64 }

func (zynqmpOps) DefaultLoad(bootloader bool) uint64 {
	if bootloader {
		return zmpFsblLoad
	}
	return 0
}

func (zynqmpOps) PartitionAttrs(n *bif.Node) (uint32, error) {
	attrs := uint32(zmpDevPS) << zmpDevShift
	for _, a := range n.Extra {
		switch a.Key {
		case "destination_cpu":
			cpu, ok := zmpCPUs[a.Value]
			if !ok {
				return 0, fmt.Errorf("destination_cpu %q: %w", a.Value, ErrUnsupportedAttr)
			}
			attrs = attrs&^(0xf<<zmpCPUShift) | cpu<<zmpCPUShift
		case "destination_device":
			dev, ok := zmpDevices[a.Value]
			if !ok {
				return 0, fmt.Errorf("destination_device %q: %w", a.Value, ErrUnsupportedAttr)
			}
			attrs = attrs&^(0x3<<zmpDevShift) | dev<<zmpDevShift
		case "exception_level":
			el, ok := zmpELs[a.Value]
			if !ok {
				return 0, fmt.Errorf("exception_level %q: %w", a.Value, ErrUnsupportedAttr)
			}
			attrs |= el << zmpELShift
		case "partition_owner":
			owner, ok := zmpOwners[a.Value]
			if !ok {
				return 0, fmt.Errorf("partition_owner %q: %w", a.Value, ErrUnsupportedAttr)
			}
			attrs |= owner << zmpOwnerShift
		case "trustzone":
			attrs |= zmpAttrTZSecure
		default:
			return 0, fmt.Errorf("%q: %w", a.Key, ErrUnsupportedAttr)
		}
	}
	return attrs, nil
}

func (zynqmpOps) EncodeBootHeader(hdr []uint32, lay *Layout) {
	for i := 0; i < 8; i++ {
		hdr[i] = zmpVectorWord
	}
	hdr[bhChecksumRangeLo] = widthDetect
	hdr[bhChecksumRangeLo+1] = imageID
	hdr[bhChecksumRangeLo+2] = 0 // not encrypted
	if bl := lay.Bootloader(); bl != nil {
		hdr[zmpFsblExec] = uint32(bl.Exec)
		hdr[zmpSrcOffWord] = uint32(bl.ByteOff)
		hdr[zmpImgLenWord] = uint32(bl.Size)
		hdr[zmpTotalWord] = uint32(bl.Size)
		hdr[zmpAttrsWord] = fsblCPUAttr(bl.Node)
	}
	// PMU firmware is not bundled, obfuscated key and IVs stay zero.
	hdr[bhIHTOffWord] = uint32(ihtWordOff * 4)
	hdr[bhPHTOffWord] = uint32(lay.PHTBase * 4)
	regInit(hdr, zmpRegInitWord)
	padFF(hdr, zmpRegInitWord+2*regInitCnt)
}

// fsblCPUAttr encodes which processor the boot ROM hands the FSBL to.
func fsblCPUAttr(n *bif.Node) uint32 {
	const (
		a53x64 = 0 << 10
		r5     = 2 << 10
		r5Lock = 3 << 10
	)
	switch v, _ := n.Attr("destination_cpu"); v {
	case "r5-0", "r5-1":
		return r5
	case "r5-lockstep":
		return r5Lock
	}
	return a53x64
}

// ZynqMP partition header, 16 words:
// encrypted, unencrypted and total word lengths, the link to the next
// partition header, 64-bit execution and load address pairs, payload
// word offset, attribute word, section count, checksum/header/
// certificate word offsets, reserved word and the header checksum.
func (zynqmpOps) EncodePartitionHeader(dst []uint32, i int, lay *Layout) {
	p := lay.Parts[i]
	dst[0] = uint32(p.Words)
	dst[1] = uint32(p.Words)
	dst[2] = uint32(p.Words)
	if i+1 < len(lay.Parts) {
		dst[3] = uint32(lay.Parts[i+1].HdrWord)
	}
	dst[4] = uint32(p.Exec)
	dst[5] = uint32(p.Exec >> 32)
	dst[6] = uint32(p.Load)
	dst[7] = uint32(p.Load >> 32)
	dst[8] = uint32(p.ByteOff / 4)
	dst[9] = p.Attrs
	dst[10] = 1 // section count
	dst[11] = 0
	dst[12] = uint32(p.ImgHdrWord)
	dst[13] = 0
}

func (zynqmpOps) Checksum(words []uint32) uint32 { return invSum(words) }
