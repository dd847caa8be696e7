// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"fmt"
	"path/filepath"

	"github.com/zynqtools/mkbootimage/internal/bif"
)

// Placement is one partition with all addresses resolved.
type Placement struct {
	Node  *bif.Node
	Attrs uint32 // architecture attribute word
	Load  uint64 // resolved load address
	Exec  uint64 // resolved execution address

	ByteOff int // payload start, bytes from image start
	Size    int // payload length in bytes
	Words   int // payload length in words, rounded up

	HdrWord    int // word offset of this partition's header
	ImgHdrWord int // word offset of this partition's image header
}

// Layout is the resolved placement of every header region and payload.
// All offsets are in 32-bit words unless named otherwise.
type Layout struct {
	Parts      []*Placement
	ImgHdrBase int // first image header
	PHTBase    int // first partition header
	TotalWords int // true image length
}

// Bootloader returns the placement flagged as bootloader, or nil.
func (l *Layout) Bootloader() *Placement {
	for _, p := range l.Parts {
		if p.Node.Bootloader {
			return p
		}
	}
	return nil
}

// imgHdrName returns the partition name stored in its image header:
// the payload's base file name.
func imgHdrName(n *bif.Node) string {
	return filepath.Base(n.Path)
}

// imgHdrWords returns the size of one image header in words: link word,
// partition header offset, reserved word, section count, the name padded
// to a word boundary, a terminator word, all padded to a 16-word
// boundary as the boot ROM table walk expects.
func imgHdrWords(n *bif.Node) int {
	nameWords := (len(imgHdrName(n)) + 4) / 4 // NUL-padded
	return alignUp(4+nameWords+1, phWords)
}

func alignUp(v, align int) int {
	return (v + align - 1) / align * align
}

// maxImageBytes caps the planned image size. Boot images live in QSPI
// or NAND flash or on an SD card; a plan past 1 GiB is a mistyped
// offset, not a real image, and would otherwise ask the caller for an
// allocation of that size.
const maxImageBytes = 1 << 30

// planLayout resolves every partition placement for the given payload
// sizes. Partitions keep their source order; an explicit offset pins a
// payload, everything else goes to the next free aligned position.
func planLayout(cfg *bif.Config, ops Ops, sizes []int) (*Layout, error) {
	n := len(cfg.Nodes)
	if n == 0 {
		return nil, ErrNoPartitions
	}
	if n > ops.MaxPartitions() {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyPartitions, n, ops.MaxPartitions())
	}
	lay := &Layout{ImgHdrBase: ihtWordOff + ihtWords}
	ihw := 0
	for _, node := range cfg.Nodes {
		ihw += imgHdrWords(node)
	}
	lay.PHTBase = lay.ImgHdrBase + ihw
	// One sentinel partition header terminates the table.
	payloadBase := alignUp(lay.PHTBase+phWords*(n+1), ops.Alignment()/4) * 4

	cursor := payloadBase
	ihWord := lay.ImgHdrBase
	for i, node := range cfg.Nodes {
		attrs, err := ops.PartitionAttrs(node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Path, err)
		}
		p := &Placement{
			Node:       node,
			Attrs:      attrs,
			Size:       sizes[i],
			Words:      (sizes[i] + 3) / 4,
			HdrWord:    lay.PHTBase + phWords*i,
			ImgHdrWord: ihWord,
		}
		ihWord += imgHdrWords(node)
		p.Load = node.Load
		if p.Load == 0 {
			p.Load = ops.DefaultLoad(node.Bootloader)
		}
		p.Exec = p.Load
		if node.Offset != 0 {
			if node.Offset%4 != 0 {
				return nil, fmt.Errorf("%s: offset %#x: %w", node.Path, node.Offset, ErrBadOffset)
			}
			if node.Offset > maxImageBytes {
				return nil, fmt.Errorf("%s: offset %#x: %w", node.Path, node.Offset, ErrImageTooLarge)
			}
			off := int(node.Offset)
			if off < payloadBase {
				return nil, fmt.Errorf(
					"%s: offset %#x overlaps the header regions ending at %#x: %w",
					node.Path, off, payloadBase, ErrOffsetCollision)
			}
			p.ByteOff = off
		} else {
			p.ByteOff = alignUp(cursor, ops.Alignment())
		}
		for _, q := range lay.Parts {
			if p.ByteOff < q.ByteOff+q.Size && q.ByteOff < p.ByteOff+p.Size {
				return nil, fmt.Errorf("%s: offset %#x overlaps %s at %#x: %w",
					node.Path, p.ByteOff, q.Node.Path, q.ByteOff, ErrOffsetCollision)
			}
		}
		if end := p.ByteOff + p.Size; end > cursor {
			cursor = end
		}
		lay.Parts = append(lay.Parts, p)
	}
	if cursor > maxImageBytes {
		return nil, fmt.Errorf("image spans %d bytes: %w", cursor, ErrImageTooLarge)
	}
	lay.TotalWords = (cursor + 3) / 4
	return lay, nil
}
