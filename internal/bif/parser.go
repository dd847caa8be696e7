// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bif

import "strconv"

// Attribute keys understood by every architecture.
const (
	attrLoad       = "load"
	attrOffset     = "offset"
	attrBootloader = "bootloader"
)

// Architecture-specific attribute vocabulary. The parser only checks
// that a key belongs to the selected architecture; value validation is
// left to the architecture operations.
var zynqmpAttrs = map[string]bool{
	"destination_cpu":    true, // valued
	"destination_device": true, // valued
	"exception_level":    true, // valued
	"partition_owner":    true, // valued
	"trustzone":          false,
}

type parser struct {
	lex           *lexer
	tok           token
	cfg           *Config
	sawBootloader bool
}

// Parse turns BIF source text into a Config for the given architecture.
// The origin label is used in error locations only; the parser never
// touches the filesystem. On failure the returned error is a *ParseError.
func Parse(src []byte, origin string, arch Arch) (*Config, error) {
	p := &parser{
		lex: newLexer(src, origin),
		cfg: &Config{Arch: arch},
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	sawAll := false
	for p.tok.kind != tokEOF {
		if err := p.parseBlock(&sawAll); err != nil {
			return nil, err
		}
	}
	if !sawAll {
		return nil, p.errorf("missing 'all' block")
	}
	return p.cfg, nil
}

func (p *parser) next() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return p.lex.errorf(p.tok.line, p.tok.col, format, args...)
}

func (p *parser) parseBlock(sawAll *bool) error {
	if p.tok.kind != tokWord {
		return p.errorf("expected block name, got %s", p.tok.kind)
	}
	name := p.tok
	if err := p.next(); err != nil {
		return err
	}
	if name.text != "all" {
		return p.lex.errorf(name.line, name.col, "unsupported block %q", name.text)
	}
	if *sawAll {
		return p.lex.errorf(name.line, name.col, "duplicate 'all' block")
	}
	*sawAll = true
	if p.tok.kind == tokColon {
		if err := p.next(); err != nil {
			return err
		}
	}
	if p.tok.kind != tokLBrace {
		return p.errorf("expected '{', got %s", p.tok.kind)
	}
	open := p.tok
	if err := p.next(); err != nil {
		return err
	}
	for p.tok.kind != tokRBrace {
		if p.tok.kind == tokEOF {
			return p.errorf("unexpected end of input, '{' at %d:%d is not closed",
				open.line, open.col)
		}
		if err := p.parseNode(); err != nil {
			return err
		}
	}
	if len(p.cfg.Nodes) == 0 {
		return p.errorf("empty 'all' block")
	}
	return p.next()
}

func (p *parser) parseNode() error {
	if p.tok.kind != tokWord {
		return p.errorf("expected file path, got %s", p.tok.kind)
	}
	n := &Node{Path: p.tok.text}
	if err := p.next(); err != nil {
		return err
	}
	if p.tok.kind == tokLParen {
		if err := p.parseAttrs(n); err != nil {
			return err
		}
	}
	p.cfg.Nodes = append(p.cfg.Nodes, n)
	return nil
}

func (p *parser) parseAttrs(n *Node) error {
	if err := p.next(); err != nil { // consume '('
		return err
	}
	seen := make(map[string]bool)
	for {
		if p.tok.kind != tokWord {
			return p.errorf("expected attribute name, got %s", p.tok.kind)
		}
		key := p.tok
		if err := p.next(); err != nil {
			return err
		}
		var val string
		hasVal := false
		if p.tok.kind == tokEq {
			if err := p.next(); err != nil {
				return err
			}
			if p.tok.kind != tokWord {
				return p.errorf("expected value for attribute %q, got %s",
					key.text, p.tok.kind)
			}
			val = p.tok.text
			hasVal = true
			if err := p.next(); err != nil {
				return err
			}
		}
		if seen[key.text] {
			return p.lex.errorf(key.line, key.col, "duplicate attribute %q", key.text)
		}
		seen[key.text] = true
		if err := p.applyAttr(n, key, val, hasVal); err != nil {
			return err
		}
		switch p.tok.kind {
		case tokComma:
			if err := p.next(); err != nil {
				return err
			}
		case tokRParen:
			return p.next()
		default:
			return p.errorf("expected ',' or ')', got %s", p.tok.kind)
		}
	}
}

func (p *parser) applyAttr(n *Node, key token, val string, hasVal bool) error {
	fail := func(format string, args ...any) *ParseError {
		return p.lex.errorf(key.line, key.col, format, args...)
	}
	switch key.text {
	case attrBootloader:
		if hasVal {
			return fail("attribute %q takes no value", key.text)
		}
		if p.sawBootloader {
			return fail("more than one partition marked as bootloader")
		}
		n.Bootloader = true
		p.sawBootloader = true
		return nil
	case attrLoad, attrOffset:
		if !hasVal {
			return fail("attribute %q requires an address value", key.text)
		}
		addr, err := strconv.ParseUint(val, 0, 64)
		if err != nil {
			return fail("bad address %q for attribute %q", val, key.text)
		}
		if key.text == attrLoad {
			n.Load = addr
		} else {
			n.Offset = addr
		}
		return nil
	}
	valued, known := zynqmpAttrs[key.text]
	if !known {
		return fail("unknown attribute %q", key.text)
	}
	if p.cfg.Arch != ArchZynqMP {
		return fail("attribute %q is not supported on %s", key.text, p.cfg.Arch)
	}
	if valued != hasVal {
		if valued {
			return fail("attribute %q requires a value", key.text)
		}
		return fail("attribute %q takes no value", key.text)
	}
	n.Extra = append(n.Extra, Attr{Key: key.text, Value: val})
	return nil
}
