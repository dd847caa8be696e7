// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bif parses Boot Image Format (BIF) descriptions into a
// configuration consumed by the bootrom image generator.
package bif

// Arch selects the target boot ROM family. It must be set before parsing
// begins as it restricts the attribute vocabulary.
type Arch int

const (
	ArchZynq Arch = iota
	ArchZynqMP
)

func (a Arch) String() string {
	switch a {
	case ArchZynq:
		return "zynq"
	case ArchZynqMP:
		return "zynqmp"
	}
	return "unknown"
}

// Attr is one architecture-specific partition attribute. The model keeps
// these opaque; the selected architecture interprets them at image
// generation time.
type Attr struct {
	Key   string
	Value string
}

// Node describes one boot partition. A zero Load or Offset means the
// address was not specified in the source.
type Node struct {
	Path       string
	Load       uint64
	Offset     uint64
	Bootloader bool
	Extra      []Attr
}

// Attr returns the value of an architecture-specific attribute and
// whether it was present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Extra {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Config is a parsed BIF description. Nodes keep the order they appear
// in the source, which also is the boot partition order.
type Config struct {
	Arch  Arch
	Nodes []*Node
}

// Bootloader returns the node flagged as bootloader, or nil.
func (c *Config) Bootloader() *Node {
	for _, n := range c.Nodes {
		if n.Bootloader {
			return n
		}
	}
	return nil
}
