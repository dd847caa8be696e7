// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"fmt"
	"math"

	"github.com/zynqtools/mkbootimage/internal/bif"
)

// ZynqOps targets the Zynq-7000 boot ROM.
var ZynqOps Ops = zynqOps{}

type zynqOps struct{}

// Zynq boot header word offsets past the shared magic words.
const (
	zqVectorWord  = 0xeafffffe // ARM "b ." filling the vector table
	zqVersionWord = 11         // 0x2c, header version
	zqSrcOffWord  = 12         // 0x30, bootloader byte offset
	zqImgLenWord  = 13         // 0x34, bootloader image length
	zqLoadWord    = 14         // 0x38, bootloader load address
	zqExecWord    = 15         // 0x3c, start of execution
	zqTotalWord   = 16         // 0x40, total bootloader length
	zqQSPIWord    = 17         // 0x44, QSPI config word
	zqRegInitWord = 40         // 0xa0, register init table
)

func (zynqOps) Arch() bif.Arch     { return bif.ArchZynq }
func (zynqOps) MaxPartitions() int { return 14 }
func (zynqOps) Alignment() int     { return 64 }

// The boot ROM copies the FSBL to the bottom of the OCM; applications
// carry their own addresses or stay in place.
func (zynqOps) DefaultLoad(bootloader bool) uint64 { return 0 }

func (zynqOps) PartitionAttrs(n *bif.Node) (uint32, error) {
	if len(n.Extra) != 0 {
		return 0, fmt.Errorf("%q: %w", n.Extra[0].Key, ErrUnsupportedAttr)
	}
	if n.Load > math.MaxUint32 {
		return 0, fmt.Errorf("load address %#x exceeds the 32-bit address space: %w",
			n.Load, ErrUnsupportedAttr)
	}
	if n.Offset > math.MaxUint32 {
		return 0, fmt.Errorf("offset %#x exceeds the 32-bit address space: %w",
			n.Offset, ErrUnsupportedAttr)
	}
	return 0, nil
}

func (zynqOps) EncodeBootHeader(hdr []uint32, lay *Layout) {
	for i := 0; i < 8; i++ {
		hdr[i] = zqVectorWord
	}
	hdr[bhChecksumRangeLo] = widthDetect
	hdr[bhChecksumRangeLo+1] = imageID
	hdr[bhChecksumRangeLo+2] = 0 // not encrypted
	hdr[zqVersionWord] = 0x01010000
	hdr[zqQSPIWord] = 0x00000001
	if bl := lay.Bootloader(); bl != nil {
		hdr[zqSrcOffWord] = uint32(bl.ByteOff)
		hdr[zqImgLenWord] = uint32(bl.Size)
		hdr[zqLoadWord] = uint32(bl.Load)
		hdr[zqExecWord] = uint32(bl.Exec)
		hdr[zqTotalWord] = uint32(bl.Size)
	}
	hdr[bhIHTOffWord] = uint32(ihtWordOff * 4)
	hdr[bhPHTOffWord] = uint32(lay.PHTBase * 4)
	regInit(hdr, zqRegInitWord)
	padFF(hdr, zqRegInitWord+2*regInitCnt)
}

// Zynq partition header, 16 words:
// encrypted, unencrypted and total word lengths, 32-bit load and
// execution addresses, payload word offset, attribute word, section
// count, checksum/header/certificate word offsets, reserved words and
// the header checksum.
func (zynqOps) EncodePartitionHeader(dst []uint32, i int, lay *Layout) {
	p := lay.Parts[i]
	dst[0] = uint32(p.Words)
	dst[1] = uint32(p.Words)
	dst[2] = uint32(p.Words)
	dst[3] = uint32(p.Load)
	dst[4] = uint32(p.Exec)
	dst[5] = uint32(p.ByteOff / 4)
	dst[6] = p.Attrs
	dst[7] = 1 // section count
	dst[8] = 0
	dst[9] = uint32(p.ImgHdrWord)
	dst[10] = 0
}

func (zynqOps) Checksum(words []uint32) uint32 { return invSum(words) }
