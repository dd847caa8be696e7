// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"testing"

	"github.com/zynqtools/mkbootimage/internal/bif"
)

// imageBytes decodes n bytes of the word buffer starting at byte
// offset off, the way they would appear in the output file.
func imageBytes(img []uint32, off, n int) []byte {
	buf := make([]byte, (n+3)/4*4)
	for i := 0; i < len(buf); i += 4 {
		binary.LittleEndian.PutUint32(buf[i:], img[(off+i)/4])
	}
	return buf[:n]
}

// composeImage builds cfg into a buffer of exactly the estimated size.
func composeImage(t *testing.T, cfg *bif.Config, ops Ops) ([]uint32, int, *Layout) {
	t.Helper()
	plan, err := Estimate(cfg, ops)
	if err != nil {
		t.Fatal(err)
	}
	img := make([]uint32, plan.Words)
	n, err := Compose(img, cfg, ops, plan)
	if err != nil {
		t.Fatal(err)
	}
	if n > plan.Words {
		t.Fatalf("Compose used %d words, estimate was %d", n, plan.Words)
	}
	sizes, err := payloadSizes(cfg)
	if err != nil {
		t.Fatal(err)
	}
	lay, err := planLayout(cfg, ops, sizes)
	if err != nil {
		t.Fatal(err)
	}
	return img, n, lay
}

func TestComposeRoundTrip(t *testing.T) {
	for _, ops := range []Ops{ZynqOps, ZynqMPOps} {
		t.Run(ops.Arch().String(), func(t *testing.T) {
			dir := t.TempDir()
			fsbl := pattern(1001) // deliberately not word sized
			app := pattern(300)
			cfg := &bif.Config{
				Arch: ops.Arch(),
				Nodes: []*bif.Node{
					{Path: writePayload(t, dir, "fsbl.bin", fsbl), Bootloader: true},
					{Path: writePayload(t, dir, "app.bin", app), Load: 0x4000000},
				},
			}
			img, n, lay := composeImage(t, cfg, ops)
			if n != lay.TotalWords {
				t.Errorf("Compose returned %d words, layout says %d", n, lay.TotalWords)
			}

			// Boot header magic.
			if img[8] != widthDetect {
				t.Errorf("width detection word = %#x, want %#x", img[8], uint32(widthDetect))
			}
			if img[9] != imageID {
				t.Errorf("image id = %#x, want %#x", img[9], uint32(imageID))
			}
			if img[bhIHTOffWord] != uint32(ihtWordOff*4) {
				t.Errorf("image header table offset = %#x, want %#x",
					img[bhIHTOffWord], ihtWordOff*4)
			}

			// The bootloader payload sits right after the header
			// regions and is embedded verbatim.
			bl := lay.Parts[0]
			if bl.ByteOff < lay.PHTBase*4 || bl.ByteOff%ops.Alignment() != 0 {
				t.Errorf("bootloader at %#x, want aligned past %#x", bl.ByteOff, lay.PHTBase*4)
			}
			if got := imageBytes(img, bl.ByteOff, len(fsbl)); !bytes.Equal(got, fsbl) {
				t.Error("bootloader payload not embedded verbatim")
			}
			if got := imageBytes(img, lay.Parts[1].ByteOff, len(app)); !bytes.Equal(got, app) {
				t.Error("application payload not embedded verbatim")
			}
			if lay.Parts[1].ByteOff < bl.ByteOff+len(fsbl) {
				t.Error("second partition overlaps the first")
			}

			// Boot header points at the bootloader.
			if img[12] != uint32(bl.ByteOff) {
				t.Errorf("source offset = %#x, want %#x", img[12], bl.ByteOff)
			}
			imgLen := img[13] // 0x34 on Zynq
			if ops.Arch() == bif.ArchZynqMP {
				imgLen = img[15] // 0x3c on ZynqMP
			}
			if imgLen != uint32(len(fsbl)) {
				t.Errorf("image length = %d, want %d", imgLen, len(fsbl))
			}
		})
	}
}

func TestComposeChecksums(t *testing.T) {
	for _, ops := range []Ops{ZynqOps, ZynqMPOps} {
		t.Run(ops.Arch().String(), func(t *testing.T) {
			dir := t.TempDir()
			cfg := &bif.Config{
				Arch: ops.Arch(),
				Nodes: []*bif.Node{
					{Path: writePayload(t, dir, "fsbl.bin", pattern(512)), Bootloader: true},
					{Path: writePayload(t, dir, "app.bin", pattern(64))},
				},
			}
			img, _, lay := composeImage(t, cfg, ops)

			// Recompute every checksum independently over the final
			// buffer: inverted arithmetic sum of the covered words.
			var sum uint32
			for _, w := range img[8:18] {
				sum += w
			}
			if img[18] != ^sum {
				t.Errorf("boot header checksum = %#x, want %#x", img[18], ^sum)
			}
			for i, p := range lay.Parts {
				sum = 0
				for _, w := range img[p.HdrWord : p.HdrWord+15] {
					sum += w
				}
				if img[p.HdrWord+15] != ^sum {
					t.Errorf("partition %d header checksum = %#x, want %#x",
						i, img[p.HdrWord+15], ^sum)
				}
			}
			// The all-zero sentinel header checksums to ^0.
			sentinel := lay.PHTBase + phWords*len(lay.Parts)
			if img[sentinel+15] != 0xffffffff {
				t.Errorf("sentinel checksum = %#x, want 0xffffffff", img[sentinel+15])
			}
		})
	}
}

func TestComposeExplicitOffset(t *testing.T) {
	dir := t.TempDir()
	app := pattern(256)
	cfg := &bif.Config{
		Arch: bif.ArchZynq,
		Nodes: []*bif.Node{
			{Path: writePayload(t, dir, "fsbl.bin", pattern(128)), Bootloader: true},
			{Path: writePayload(t, dir, "app.bin", app), Offset: 0x8000},
		},
	}
	img, n, lay := composeImage(t, cfg, ZynqOps)
	if lay.Parts[1].ByteOff != 0x8000 {
		t.Fatalf("partition at %#x, want 0x8000", lay.Parts[1].ByteOff)
	}
	if got := imageBytes(img, 0x8000, len(app)); !bytes.Equal(got, app) {
		t.Error("payload not at its pinned offset")
	}
	if want := (0x8000 + len(app)) / 4; n != want {
		t.Errorf("image is %d words, want %d", n, want)
	}
}

func TestComposeOffsetCollisions(t *testing.T) {
	dir := t.TempDir()
	a := writePayload(t, dir, "a.bin", pattern(256))
	b := writePayload(t, dir, "b.bin", pattern(256))
	tests := []struct {
		name  string
		nodes []*bif.Node
		want  error
	}{
		{"inside header region",
			[]*bif.Node{{Path: a, Offset: 0x100}},
			ErrOffsetCollision},
		{"overlapping partitions",
			[]*bif.Node{{Path: a, Offset: 0x8000}, {Path: b, Offset: 0x8080}},
			ErrOffsetCollision},
		{"unaligned offset",
			[]*bif.Node{{Path: a, Offset: 0x8002}},
			ErrBadOffset},
		{"offset past any real image",
			[]*bif.Node{{Path: a, Offset: 0x7fffff00}},
			ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &bif.Config{Arch: bif.ArchZynq, Nodes: tt.nodes}
			img := make([]uint32, 1<<16)
			plan := &Plan{Words: len(img), sizes: make([]int, len(tt.nodes))}
			for i := range plan.sizes {
				plan.sizes[i] = 256
			}
			if _, err := Compose(img, cfg, ZynqOps, plan); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComposeNoPartitions(t *testing.T) {
	img := make([]uint32, 16)
	_, err := Compose(img, &bif.Config{Arch: bif.ArchZynq}, ZynqOps, &Plan{})
	if !errors.Is(err, ErrNoPartitions) {
		t.Errorf("got %v, want ErrNoPartitions", err)
	}
}

func TestComposeFileChangedSinceEstimate(t *testing.T) {
	tests := []struct {
		name string
		size int // length the payload is rewritten to
	}{
		{"grown", 256},
		{"shrunk", 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writePayload(t, dir, "app.bin", pattern(128))
			cfg := &bif.Config{Arch: bif.ArchZynq, Nodes: []*bif.Node{{Path: path}}}
			plan, err := Estimate(cfg, ZynqOps)
			if err != nil {
				t.Fatal(err)
			}
			// The payload is rewritten between estimation and
			// composition. The buffer is roomy enough for either
			// length, so only the length check can catch this.
			if err := os.WriteFile(path, pattern(tt.size), 0o644); err != nil {
				t.Fatal(err)
			}
			img := make([]uint32, 2*plan.Words)
			if _, err := Compose(img, cfg, ZynqOps, plan); !errors.Is(err, ErrFileChanged) {
				t.Errorf("got %v, want ErrFileChanged", err)
			}
		})
	}
}

func TestComposeShortBuffer(t *testing.T) {
	dir := t.TempDir()
	cfg := &bif.Config{
		Arch:  bif.ArchZynq,
		Nodes: []*bif.Node{{Path: writePayload(t, dir, "app.bin", pattern(128))}},
	}
	plan, err := Estimate(cfg, ZynqOps)
	if err != nil {
		t.Fatal(err)
	}
	img := make([]uint32, plan.Words-1)
	_, err = Compose(img, cfg, ZynqOps, plan)
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("got %v, want ErrShortBuffer", err)
	}
	if errors.Is(err, ErrFileChanged) {
		t.Error("undersized buffer misreported as a file change")
	}
}

func TestComposeWithoutBootloader(t *testing.T) {
	// bit2bin images carry a single unflagged partition; the boot
	// header then describes no bootloader at all.
	dir := t.TempDir()
	cfg := &bif.Config{
		Arch:  bif.ArchZynq,
		Nodes: []*bif.Node{{Path: writePayload(t, dir, "design.bin", pattern(512))}},
	}
	img, _, _ := composeImage(t, cfg, ZynqOps)
	if img[12] != 0 || img[13] != 0 {
		t.Errorf("bootloader fields = %#x/%#x, want zero", img[12], img[13])
	}
}

func TestArchSwitchKeepsPayloads(t *testing.T) {
	dir := t.TempDir()
	fsbl := pattern(700)
	app := pattern(260)
	nodes := func() []*bif.Node {
		return []*bif.Node{
			{Path: writePayload(t, dir, "fsbl.bin", fsbl), Bootloader: true},
			{Path: writePayload(t, dir, "app.bin", app)},
		}
	}
	zq, _, zqLay := composeImage(t, &bif.Config{Arch: bif.ArchZynq, Nodes: nodes()}, ZynqOps)
	mp, _, mpLay := composeImage(t, &bif.Config{Arch: bif.ArchZynqMP, Nodes: nodes()}, ZynqMPOps)

	for i := range zqLay.Parts {
		zp, mpp := zqLay.Parts[i], mpLay.Parts[i]
		if zp.Size != mpp.Size {
			t.Fatalf("partition %d sizes differ: %d vs %d", i, zp.Size, mpp.Size)
		}
		if !bytes.Equal(imageBytes(zq, zp.ByteOff, zp.Size), imageBytes(mp, mpp.ByteOff, mpp.Size)) {
			t.Errorf("partition %d payload bytes differ between architectures", i)
		}
	}
	if (zqLay.Parts[0].ByteOff < zqLay.Parts[1].ByteOff) !=
		(mpLay.Parts[0].ByteOff < mpLay.Parts[1].ByteOff) {
		t.Error("partition ordering differs between architectures")
	}
	// The header regions are expected to differ.
	if bytes.Equal(imageBytes(zq, 0, ihtWordOff*4), imageBytes(mp, 0, ihtWordOff*4)) {
		t.Error("boot headers identical across architectures")
	}
}

func TestImageHeaderNameEncoding(t *testing.T) {
	var dst [4]uint32
	n := encodeName(dst[:], "fsbl.elf")
	want := [4]uint32{0x6673626c, 0x2e656c66, 0, 0}
	if n != 3 || dst != want {
		t.Errorf("encodeName = %d words %#x, want 3 words %#x", n, dst, want)
	}
}
