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

// Package scanner implements a stateful scanner driven by a compiled rule
// table.
//
// A Scanner produces one token per call to Next. Scanners are cheap to create
// and not safe for concurrent use; the rules.Table they read from is
// immutable and can be shared.
//
package scanner

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/db47h/texdown/rules"
	"github.com/db47h/texdown/token"
)

// ErrSyntax is the error wrapped by every SyntaxError.
var ErrSyntax = errors.New("invalid syntax")

// SyntaxError is returned by Next when a throwing rule matches.
//
type SyntaxError struct {
	Token *token.Token
	Msg   string
}

func (e *SyntaxError) Error() string { return e.Msg }

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// pending is a token held back behind a fallback token. If throw is set, the
// token raises a SyntaxError when dequeued instead of being returned.
//
type pending struct {
	tok   *token.Token
	throw bool
}

// A Scanner holds the scanner internal state while processing a given text.
//
type Scanner struct {
	t     *rules.Table
	st    *rules.State
	stack []string

	buf   string
	runes []rune
	cur   int // rune index of the next token
	pos   token.Pos

	pending pending
}

// New returns a scanner for the given table, reset to an empty buffer.
//
func New(t *rules.Table) *Scanner {
	s := &Scanner{t: t}
	s.Reset("")
	return s
}

// Reset readies the scanner to scan text from its start, in the table's start
// state, with no pending token. Invalid UTF-8 sequences in text are replaced
// with U+FFFD.
//
func (s *Scanner) Reset(text string) {
	s.ResetAt(text, Snapshot{})
}

// Snapshot is the resumable part of a scanner's state.
//
type Snapshot struct {
	Line, Col int
	State     string
	Stack     []string
	Pending   *token.Token
	Throw     bool
}

// Save returns a snapshot of the current line, column, state stack and pending
// token. Feeding it to ResetAt along with the remaining text resumes scanning
// as if the text had never been split.
//
func (s *Scanner) Save() Snapshot {
	return Snapshot{
		Line:    s.pos.Line,
		Col:     s.pos.Col,
		State:   s.st.Name(),
		Stack:   append([]string(nil), s.stack...),
		Pending: s.pending.tok,
		Throw:   s.pending.throw,
	}
}

// ResetAt is like Reset but restores the position and state saved in snap.
// Zero fields in snap take their default values.
//
func (s *Scanner) ResetAt(text string, snap Snapshot) {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	s.buf = text
	s.runes = []rune(text)
	s.cur = 0
	s.pos = token.Pos{Offset: 0, Line: max(snap.Line, 1), Col: max(snap.Col, 1)}
	s.pending = pending{snap.Pending, snap.Throw}
	s.stack = append(s.stack[:0], snap.Stack...)
	state := snap.State
	if state == "" || s.t.State(state) == nil {
		state = s.t.Start()
	}
	s.st = s.t.State(state)
}

// Pos returns the position of the next token.
//
func (s *Scanner) Pos() token.Pos {
	return s.pos
}

// State returns the name of the current state.
//
func (s *Scanner) State() string {
	return s.st.Name()
}

// Next returns the next token. At the end of the buffer, it returns io.EOF.
// If a throwing rule matches, it returns a *SyntaxError; the offending text
// is consumed, so scanning can continue with the following call.
//
func (s *Scanner) Next() (*token.Token, error) {
	if p := s.pending; p.tok != nil {
		s.pending = pending{}
		if p.throw {
			return nil, s.syntaxError(p.tok)
		}
		return p.tok, nil
	}
	if s.cur == len(s.runes) {
		return nil, io.EOF
	}

	var (
		g        *rules.Group
		n        = 1
		fallback *token.Token
	)
	if g = s.st.Fast(s.runes[s.cur]); g == nil {
		m, i, l, err := s.st.Match(s.runes, s.cur)
		if err != nil {
			return nil, err
		}
		if m == nil {
			i = len(s.runes)
		}
		if e := s.st.Error(); (e.Fallback && i != s.cur) || m == nil {
			fallback = s.emit(e, i-s.cur)
			if m == nil {
				if e.ShouldThrow {
					return nil, s.syntaxError(fallback)
				}
				return fallback, nil
			}
		}
		g, n = m, l
	}
	tok := s.emit(g, n)

	if fallback != nil {
		s.pending = pending{tok, g.ShouldThrow}
	} else if g.ShouldThrow {
		return nil, s.syntaxError(tok)
	}

	switch {
	case g.Pop != 0:
		if l := len(s.stack); l > 0 {
			s.setState(s.stack[l-1])
			s.stack = s.stack[:l-1]
		}
	case g.Push != "":
		s.stack = append(s.stack, s.st.Name())
		s.setState(g.Push)
	case g.Next != "":
		s.setState(g.Next)
	}

	if fallback != nil {
		return fallback, nil
	}
	return tok, nil
}

// Tokens returns an iterator over the remaining tokens. Iteration stops after
// the first error.
//
func (s *Scanner) Tokens() iter.Seq2[*token.Token, error] {
	return func(yield func(*token.Token, error) bool) {
		for {
			tok, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// FormatError returns msg followed by the position of t and a caret-annotated
// excerpt of the line where t starts.
//
func (s *Scanner) FormatError(t *token.Token, msg string) string {
	return fmt.Sprintf("%s at line %d col %d:\n\n%s", msg, t.Line, t.Col, token.Excerpt(s.buf, t))
}

func (s *Scanner) syntaxError(t *token.Token) error {
	return &SyntaxError{Token: t, Msg: s.FormatError(t, "invalid syntax")}
}

func (s *Scanner) setState(name string) {
	if st := s.t.State(name); st != nil {
		s.st = st
	}
}

// emit builds a token for the next n runes matched by g and advances the
// cursor past them.
//
func (s *Scanner) emit(g *rules.Group, n int) *token.Token {
	end := s.pos.Offset
	for _, r := range s.runes[s.cur : s.cur+n] {
		end += utf8.RuneLen(r)
	}
	text := s.buf[s.pos.Offset:end]
	tok := &token.Token{
		Type:  g.Type(text),
		Text:  text,
		Value: g.Transform(text),
		Pos:   s.pos,
	}
	if g.LineBreaks {
		if text == "\n" {
			tok.LineBreaks = 1
		} else {
			tok.LineBreaks = strings.Count(text, "\n")
		}
	}
	s.cur += n
	s.pos.Offset = end
	s.pos.Line += tok.LineBreaks
	if tok.LineBreaks != 0 {
		s.pos.Col = utf8.RuneCountInString(text[strings.LastIndexByte(text, '\n')+1:]) + 1
	} else {
		s.pos.Col += n
	}
	return tok
}
