// Package token defines the tokens produced by a scanner and the position
// types used to report them.
//
package token

import "fmt"

// Pos represents a token's position within a source buffer.
//
type Pos struct {
	Offset int // byte offset, starts at 0
	Line   int // starts at 1
	Col    int // starts at 1, counted in runes
}

// IsValid returns true if p is a valid position.
//
func (p Pos) IsValid() bool {
	return p.Line > 0 && p.Col > 0 && p.Offset >= 0
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token represents a scanned token. A Token is created fresh for every call to
// the scanner and is owned by the caller.
//
type Token struct {
	Type  string // rule name, or keyword type
	Text  string // matched source text
	Value string // Text after the rule's value transform
	Pos
	LineBreaks int // number of line breaks in Text
}

func (t *Token) String() string {
	return fmt.Sprintf("%d:%d: %s %q", t.Line, t.Col, t.Type, t.Text)
}

// End returns the position immediately following the token.
//
func (t *Token) End() Pos {
	p := Pos{Offset: t.Offset + len(t.Text), Line: t.Line + t.LineBreaks}
	if t.LineBreaks == 0 {
		p.Col = t.Col + runeCount(t.Text)
		return p
	}
	p.Col = 1
	for i := len(t.Text) - 1; i >= 0 && t.Text[i] != '\n'; i-- {
		if t.Text[i]&0xC0 != 0x80 {
			p.Col++
		}
	}
	return p
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
