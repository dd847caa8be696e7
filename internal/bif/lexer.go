// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bif

import "fmt"

// ParseError describes a BIF syntax or attribute error with its source
// location. Line and Col are 1-based.
type ParseError struct {
	Origin string
	Line   int
	Col    int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Origin, e.Line, e.Col, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokColon
	tokComma
	tokEq
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokWord:
		return "word"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokColon:
		return "':'"
	case tokComma:
		return "','"
	case tokEq:
		return "'='"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

type lexer struct {
	src    []byte
	origin string
	pos    int
	line   int
	col    int
}

func newLexer(src []byte, origin string) *lexer {
	return &lexer{src: src, origin: origin, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...any) *ParseError {
	return &ParseError{
		Origin: l.origin,
		Line:   line,
		Col:    col,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (l *lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

// skipSpace consumes whitespace and comments. Both '//' line comments
// and '/* */' block comments are recognized, but only between tokens,
// so slashes inside a file path stay part of the path.
func (l *lexer) skipSpace() error {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				if l.pos+1 >= len(l.src) {
					return l.errorf(line, col, "unterminated comment")
				}
				if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '{', '}', '(', ')', ':', ',', '=':
		return true
	}
	return false
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpace(); err != nil {
		return token{}, err
	}
	t := token{line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		t.kind = tokEOF
		return t, nil
	}
	switch l.src[l.pos] {
	case '{':
		t.kind = tokLBrace
	case '}':
		t.kind = tokRBrace
	case '(':
		t.kind = tokLParen
	case ')':
		t.kind = tokRParen
	case ':':
		t.kind = tokColon
	case ',':
		t.kind = tokComma
	case '=':
		t.kind = tokEq
	default:
		start := l.pos
		for l.pos < len(l.src) && !isDelim(l.src[l.pos]) {
			l.advance()
		}
		t.kind = tokWord
		t.text = string(l.src[start:l.pos])
		return t, nil
	}
	l.advance()
	return t, nil
}
