// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import (
	"fmt"

	"github.com/zynqtools/mkbootimage/internal/bif"
	"github.com/zynqtools/mkbootimage/internal/payload"
)

// A Plan is the outcome of size estimation: the number of 32-bit words
// the output buffer must hold and the payload lengths that number was
// computed from. Compose checks those lengths again, so a partition
// file changing after estimation fails instead of silently composing a
// different image.
type Plan struct {
	Words int // buffer size Compose requires

	sizes []int // payload length per node, bytes
}

// Estimate measures the boot image for cfg: every header region plus
// every payload at its resolved, aligned offset. Compose never needs a
// buffer larger than the returned word count. A configuration without
// partitions estimates to zero words.
func Estimate(cfg *bif.Config, ops Ops) (*Plan, error) {
	if cfg == nil || len(cfg.Nodes) == 0 {
		return &Plan{}, nil
	}
	sizes, err := payloadSizes(cfg)
	if err != nil {
		return nil, err
	}
	lay, err := planLayout(cfg, ops, sizes)
	if err != nil {
		return nil, err
	}
	return &Plan{Words: lay.TotalWords, sizes: sizes}, nil
}

func payloadSizes(cfg *bif.Config) ([]int, error) {
	sizes := make([]int, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		size, err := payload.Size(n.Path)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return nil, fmt.Errorf("%s: %w", n.Path, ErrEmptyFile)
		}
		sizes[i] = size
	}
	return sizes, nil
}
