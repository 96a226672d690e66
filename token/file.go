// Copyright 2017-2020 Denis Bernard <db047h@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package token

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// ErrLine is returned when looking up a line that does not exist.
var ErrLine = errors.New("invalid line number")

// Position describes an arbitrary source position including the file, line, and column location.
//
type Position struct {
	Filename string
	Offset   int // byte offset in the file
	Line     int // 1-based line number
	Column   int // 1-based column number (rune index)
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// A File represents a named, in-memory source buffer. It handles file offset to
// line/column conversion.
//
type File struct {
	name  string
	src   string
	lines []int // 0-based line offsets
}

// NewFile returns a new File for the given source text.
//
func NewFile(name, src string) *File {
	f := &File{name: name, src: src, lines: []int{0}}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// Name returns the file name.
//
func (f *File) Name() string {
	return f.name
}

// Source returns the file contents.
//
func (f *File) Source() string {
	return f.src
}

// LineCount returns the number of lines in the file.
//
func (f *File) LineCount() int {
	return len(f.lines)
}

// Position returns the 1-based line and column for a given byte offset.
//
func (f *File) Position(offset int) Position {
	i, j := 0, len(f.lines)
	for i < j {
		h := int(uint(i+j) >> 1)
		if !(f.lines[h] > offset) {
			i = h + 1
		} else {
			j = h
		}
	}
	start := f.lines[i-1]
	if offset > len(f.src) {
		offset = len(f.src)
	}
	return Position{f.name, offset, i, utf8.RuneCountInString(f.src[start:offset]) + 1}
}

// Line returns the text of the given 1-based line, without its line break.
//
func (f *File) Line(line int) (string, error) {
	if line < 1 || line > len(f.lines) {
		return "", ErrLine
	}
	l := f.src[f.lines[line-1]:]
	if i := strings.IndexByte(l, '\n'); i >= 0 {
		l = l[:i]
	}
	return l, nil
}

// Excerpt returns the source line where t starts followed by a line with a
// caret at the token's column:
//
//	  source line where the token starts
//	              ^
//
// Both lines are indented by two spaces.
//
func Excerpt(src string, t *Token) string {
	start := strings.LastIndexByte(src[:min(t.Offset, len(src))], '\n') + 1
	l := src[start:]
	if i := strings.IndexByte(l, '\n'); i >= 0 {
		l = l[:i]
	}
	b := 0
	for c := 1; c < t.Col && b < len(l); c++ {
		_, sz := utf8.DecodeRuneInString(l[b:])
		b += sz
	}
	return "  " + l + "\n  " + strings.Repeat(" ", Width(l[:b])) + "^"
}

// Width computes the width in text cells of a given string (supposing
// rendering with a UTF-8 locale and monospaced font).
//
func Width(s string) int {
	w := 0
	for _, r := range s {
		if !unicode.IsGraphic(r) {
			if r == '\t' {
				w++
			}
			continue
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianFullwidth, width.EastAsianWide:
			w += 2
		default:
			// EastAsianAmbiguous depends on user locale: 2 if CJK, 1 otherwise.
			w++
		}
	}
	return w
}
