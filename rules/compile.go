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

// Package rules compiles declarative lexical rules into immutable tables
// driving a scanner.
//
// A rule list is compiled into a State: a combined regular expression with
// one capture group per rule, a fast map from single-rune literals to their
// rule, and the state's error or fallback rule. A Table holds one or more
// states and is safe for concurrent use by any number of scanners.
//
package rules

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// DefaultState is the name of the single state of a table built by Compile.
const DefaultState = "start"

// ErrDuplicateState is returned by CompileStates when two states share a name.
var ErrDuplicateState = errors.New("duplicate state")

var errNoGroup = errors.New("cannot find token type for matched text")

// Group is a compiled rule.
//
type Group struct {
	Rule
	keywords keywordTable
}

// Type returns the token type for text matched by g.
//
func (g *Group) Type(text string) string {
	if typ, ok := g.keywords.lookup(text); ok {
		return typ
	}
	return g.Name
}

// Transform returns the token value for text matched by g.
//
func (g *Group) Transform(text string) string {
	if g.Value != nil {
		return g.Value(text)
	}
	return text
}

func (g *Group) hasType(typ string) bool {
	if g.Name == typ {
		return true
	}
	for _, m := range g.keywords {
		for _, t := range m {
			if t == typ {
				return true
			}
		}
	}
	return false
}

// State is a compiled rule list.
//
type State struct {
	name   string
	re     *regexp2.Regexp
	groups []*Group
	fast   map[rune]*Group
	err    *Group
	all    []*Group // every group, including fast-only ones, in priority order
}

// Name returns the state name.
//
func (s *State) Name() string { return s.name }

// Fast returns the rule matching the single rune r, or nil if r is not in the
// fast map.
//
func (s *State) Fast(r rune) *Group { return s.fast[r] }

// Error returns the state's error or fallback rule.
//
func (s *State) Error() *Group { return s.err }

// Expr returns the source of the combined regular expression.
//
func (s *State) Expr() string { return s.re.String() }

// Match runs the combined expression on buf from rune index at. If the state
// has a fallback rule, the expression searches forward from at; otherwise it
// only matches at exactly at. Index and length are in runes; g is nil if no
// rule matched.
//
func (s *State) Match(buf []rune, at int) (g *Group, index, length int, err error) {
	m, err := s.re.FindRunesMatchStartingAt(buf, at)
	// zero-width matches never produce a token
	for err == nil && m != nil && m.Length == 0 {
		if !s.err.Fallback {
			return nil, -1, 0, nil
		}
		m, err = s.re.FindNextMatch(m)
	}
	if err != nil || m == nil {
		return nil, -1, 0, err
	}
	for i, g := range s.groups {
		if c := m.GroupByNumber(i + 1); c != nil && len(c.Captures) > 0 {
			return g, m.Index, m.Length, nil
		}
	}
	return nil, -1, 0, errNoGroup
}

func (s *State) has(typ string) bool {
	for _, g := range s.all {
		if g.hasType(typ) {
			return true
		}
	}
	return s.err.hasType(typ)
}

func defaultErrorGroup() *Group {
	return &Group{Rule: Rule{Name: "error", LineBreaks: true, ShouldThrow: true}}
}

func compileRules(name string, rs []Rule, hasStates bool) (*State, error) {
	st := &State{name: name, fast: make(map[rune]*Group)}
	// A fallback state searches forward with the combined expression, so
	// every rule must be part of it.
	fastAllowed := true
	for i := range rs {
		if rs[i].Fallback {
			fastAllowed = false
		}
	}
	var parts []string
	for i := range rs {
		r := options(rs[i])
		if r.Name == "" {
			return nil, fmt.Errorf("%w (rule #%d of state %q)", ErrNoName, i, name)
		}
		kw, err := newKeywordTable(r.Keywords)
		if err != nil {
			return nil, fmt.Errorf("%w (for token %q of state %q)", err, r.Name, name)
		}
		g := &Group{Rule: r, keywords: kw}

		if r.Error || r.Fallback {
			if st.err != nil {
				switch {
				case r.Fallback != st.err.Fallback:
					err = ErrErrorAndFallback
				case r.Fallback:
					err = ErrMultipleFallback
				default:
					err = ErrMultipleError
				}
				return nil, fmt.Errorf("%w (for token %q of state %q)", err, r.Name, name)
			}
			st.err = g
		}

		if r.switchesState() {
			if !hasStates {
				return nil, fmt.Errorf("%w (for token %q)", ErrStateless, r.Name)
			}
			if r.Fallback {
				return nil, fmt.Errorf("%w (for token %q of state %q)", ErrFallbackSwitch, r.Name, name)
			}
		}

		match := r.Match
		if fastAllowed {
			for len(match) > 0 && !match[0].Pattern && utf8.RuneCountInString(match[0].Text) == 1 {
				c, _ := utf8.DecodeRuneInString(match[0].Text)
				if c == '\n' && !r.LineBreaks {
					return nil, fmt.Errorf("%w (for token %q of state %q)", ErrLineBreaks, r.Name, name)
				}
				// the first rule claiming a rune keeps it
				if _, ok := st.fast[c]; !ok {
					st.fast[c] = g
				}
				match = match[1:]
			}
		}
		st.all = append(st.all, g)
		if len(match) == 0 {
			continue
		}
		fastAllowed = false

		pat, err := validate(&r, match)
		if err != nil {
			return nil, fmt.Errorf("%w (for token %q of state %q)", err, r.Name, name)
		}
		st.groups = append(st.groups, g)
		parts = append(parts, "("+pat+")")
	}

	union := "(?!)"
	if len(parts) > 0 {
		union = strings.Join(parts, "|")
	}
	if st.err == nil {
		st.err = defaultErrorGroup()
	}
	expr := `\G(?:` + union + `)`
	if st.err.Fallback {
		expr = `(?:` + union + `)`
	}
	re, err := regexp2.Compile(expr, regexp2.Multiline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (in state %q)", ErrBadPattern, err, name)
	}
	st.re = re
	return st, nil
}

// sampleText puts patterns in context: word boundaries, lookarounds and line
// breaks surrounded by text. Matches against it catch most zero-width
// patterns and patterns spanning lines.
const sampleText = "a\nb 0_x\t#.-\n\n\"'(z)\r\n$\\{}[]*/ \u00e9"

// anySample reports whether fn returns true for any match of re in sampleText.
func anySample(re *regexp2.Regexp, fn func(m *regexp2.Match) bool) bool {
	m, err := re.FindStringMatch(sampleText)
	for err == nil && m != nil {
		if fn(m) {
			return true
		}
		m, err = re.FindNextMatch(m)
	}
	return false
}

// validate checks that the union of alternatives in match is a valid
// expression that never matches the empty string, has no capture group, and
// only matches line breaks if r declares it. It returns the union.
func validate(r *Rule, match []Alt) (string, error) {
	xs := make([]string, len(match))
	for i, a := range match {
		xs[i] = "(?:" + a.expr() + ")"
	}
	pat := "(?:" + strings.Join(xs, "|") + ")"
	re, err := regexp2.Compile(pat, regexp2.Multiline)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	if ok, _ := re.MatchString(""); ok || anySample(re, func(m *regexp2.Match) bool { return m.Length == 0 }) {
		return "", fmt.Errorf("%w: %s", ErrEmptyMatch, pat)
	}
	if n := len(re.GetGroupNumbers()) - 1; n > 0 {
		return "", fmt.Errorf("%w: %s", ErrCaptureGroup, pat)
	}
	if !r.LineBreaks {
		if ok, _ := re.MatchString("\n"); ok || anySample(re, func(m *regexp2.Match) bool { return strings.ContainsRune(m.String(), '\n') }) {
			return "", fmt.Errorf("%w: %s", ErrLineBreaks, pat)
		}
	}
	return pat, nil
}

// Table is an immutable set of compiled states.
//
type Table struct {
	states map[string]*State
	names  []string
	start  string
}

// StateRules is a named rule list for CompileStates.
//
type StateRules struct {
	Name  string
	Rules []Rule
}

// Compile compiles a stateless rule list. Rules must not carry any state
// stack directive.
//
func Compile(rs []Rule) (*Table, error) {
	st, err := compileRules(DefaultState, rs, false)
	if err != nil {
		return nil, err
	}
	return &Table{
		states: map[string]*State{DefaultState: st},
		names:  []string{DefaultState},
		start:  DefaultState,
	}, nil
}

// CompileStates compiles a multi-state table. If start is empty, the first
// state is the start state.
//
func CompileStates(states []StateRules, start string) (*Table, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	t := &Table{states: make(map[string]*State, len(states)), start: start}
	if t.start == "" {
		t.start = states[0].Name
	}
	for _, s := range states {
		if _, ok := t.states[s.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, s.Name)
		}
		st, err := compileRules(s.Name, s.Rules, true)
		if err != nil {
			return nil, err
		}
		t.states[s.Name] = st
		t.names = append(t.names, s.Name)
	}
	if _, ok := t.states[t.start]; !ok {
		return nil, fmt.Errorf("%w %q (start state)", ErrMissingState, t.start)
	}
	for _, name := range t.names {
		for _, g := range t.states[name].all {
			if err := t.checkGroup(g, name); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (t *Table) checkGroup(g *Group, state string) error {
	target := g.Push
	if target == "" {
		target = g.Next
	}
	if target != "" {
		if _, ok := t.states[target]; !ok {
			return fmt.Errorf("%w %q (in token %q of state %q)", ErrMissingState, target, g.Name, state)
		}
	}
	if g.Pop != 0 && g.Pop != 1 {
		return fmt.Errorf("%w (in token %q of state %q)", ErrPopDepth, g.Name, state)
	}
	return nil
}

// Start returns the name of the start state.
//
func (t *Table) Start() string { return t.start }

// States returns the state names in declaration order.
//
func (t *Table) States() []string {
	return append([]string(nil), t.names...)
}

// State returns the named state or nil.
//
func (t *Table) State(name string) *State { return t.states[name] }

// Has returns true if any state of t can produce tokens of the given type.
//
func (t *Table) Has(tokenType string) bool {
	for _, name := range t.names {
		if t.states[name].has(tokenType) {
			return true
		}
	}
	return false
}
