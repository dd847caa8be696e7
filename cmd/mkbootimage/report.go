// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/zynqtools/mkbootimage/internal/bif"
)

// printReport lists the parsed partitions the way the boot ROM will see
// them, for human inspection only.
func printReport(w io.Writer, input string, cfg *bif.Config) {
	fmt.Fprintf(w, "Nodes found in the %s file:\n", input)
	for _, n := range cfg.Nodes {
		if n.Bootloader {
			fmt.Fprintf(w, " %s (bootloader)\n", n.Path)
		} else {
			fmt.Fprintf(w, " %s\n", n.Path)
		}
		if n.Load != 0 {
			fmt.Fprintf(w, "  load:   %08x\n", n.Load)
		}
		if n.Offset != 0 {
			fmt.Fprintf(w, "  offset: %08x\n", n.Offset)
		}
	}
}

type nodeReport struct {
	Path       string `json:"path"`
	Bootloader bool   `json:"bootloader,omitempty"`
	Load       string `json:"load,omitempty"`
	Offset     string `json:"offset,omitempty"`
}

func printJSONReport(w io.Writer, cfg *bif.Config) error {
	nodes := make([]nodeReport, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		nodes[i] = nodeReport{Path: n.Path, Bootloader: n.Bootloader}
		if n.Load != 0 {
			nodes[i].Load = fmt.Sprintf("%#08x", n.Load)
		}
		if n.Offset != 0 {
			nodes[i].Offset = fmt.Sprintf("%#08x", n.Offset)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Arch  string       `json:"arch"`
		Nodes []nodeReport `json:"nodes"`
	}{cfg.Arch.String(), nodes})
}
