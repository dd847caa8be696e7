// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zynqtools/mkbootimage/internal/bif"
	"github.com/zynqtools/mkbootimage/internal/payload"
)

// Compose writes the complete boot image for cfg into img, which must
// hold at least plan.Words elements, and returns the exact number of
// words used. Words past that count are left undefined and must not be
// written out. The buffer stores one little-endian image word per
// element. Every payload is read again and must still be as long as it
// was when plan was estimated; any length drift is ErrFileChanged.
func Compose(img []uint32, cfg *bif.Config, ops Ops, plan *Plan) (int, error) {
	if cfg == nil || len(cfg.Nodes) == 0 {
		return 0, ErrNoPartitions
	}
	if plan == nil || len(plan.sizes) != len(cfg.Nodes) {
		return 0, errors.New("estimation plan does not match the configuration")
	}
	data := make([][]byte, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		d, err := payload.Read(n.Path)
		if err != nil {
			return 0, err
		}
		if len(d) != plan.sizes[i] {
			return 0, fmt.Errorf("%s: payload is %d bytes, was %d at estimation: %w",
				n.Path, len(d), plan.sizes[i], ErrFileChanged)
		}
		data[i] = d
	}
	lay, err := planLayout(cfg, ops, plan.sizes)
	if err != nil {
		return 0, err
	}
	if lay.TotalWords > len(img) {
		return 0, fmt.Errorf("image needs %d words but the buffer holds %d: %w",
			lay.TotalWords, len(img), ErrShortBuffer)
	}
	clear(img[:lay.TotalWords])

	ops.EncodeBootHeader(img[:ihtWordOff], lay)
	encodeImageHeaders(img, ops, lay)
	for i, p := range lay.Parts {
		ops.EncodePartitionHeader(img[p.HdrWord:p.HdrWord+phWords], i, lay)
	}
	for i, p := range lay.Parts {
		copyPayload(img, p.ByteOff, data[i])
	}

	// Checksums go in last, once every covered field is final.
	img[bhChecksumWord] = ops.Checksum(img[bhChecksumRangeLo:bhChecksumWord])
	for _, p := range lay.Parts {
		img[p.HdrWord+phWords-1] = ops.Checksum(img[p.HdrWord : p.HdrWord+phWords-1])
	}
	sentinel := lay.PHTBase + phWords*len(lay.Parts)
	img[sentinel+phWords-1] = ops.Checksum(img[sentinel : sentinel+phWords-1])

	return lay.TotalWords, nil
}

// encodeImageHeaders writes the image header table and the per-partition
// image headers the boot ROM walks to find the partition headers.
func encodeImageHeaders(img []uint32, ops Ops, lay *Layout) {
	iht := img[ihtWordOff:]
	iht[0] = ihtVersion(ops.Arch())
	iht[1] = uint32(len(lay.Parts))
	iht[2] = uint32(lay.PHTBase)
	iht[3] = uint32(lay.ImgHdrBase)
	iht[4] = 0 // no header authentication

	for i, p := range lay.Parts {
		ih := img[p.ImgHdrWord:]
		if i+1 < len(lay.Parts) {
			ih[0] = uint32(lay.Parts[i+1].ImgHdrWord)
		}
		ih[1] = uint32(p.HdrWord)
		ih[2] = 0
		ih[3] = 1 // data section count
		w := encodeName(ih[4:], imgHdrName(p.Node))
		ih[4+w] = 0xffffffff
	}
}

func ihtVersion(arch bif.Arch) uint32 {
	if arch == bif.ArchZynqMP {
		return 0x01020000
	}
	return 0x01010000
}

// encodeName packs a partition name the way the boot ROM expects it:
// NUL-padded to a word boundary with the bytes of every word reversed.
// It returns the number of words written.
func encodeName(dst []uint32, name string) int {
	b := make([]byte, alignUp(len(name)+1, 4))
	copy(b, name)
	for i := range b {
		dst[i/4] |= uint32(b[i]) << (8 * (3 - i%4))
	}
	return len(b) / 4
}

// copyPayload packs payload bytes into the image, little-endian within
// each word. byteOff is word-aligned by layout construction.
func copyPayload(img []uint32, byteOff int, data []byte) {
	w := byteOff / 4
	for len(data) >= 4 {
		img[w] = binary.LittleEndian.Uint32(data)
		data = data[4:]
		w++
	}
	if len(data) > 0 {
		var last [4]byte
		copy(last[:], data)
		img[w] = binary.LittleEndian.Uint32(last[:])
	}
}
