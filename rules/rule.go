package rules

import (
	"sort"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Alt is a single match alternative of a rule: either a literal string or a
// regular expression in the syntax of github.com/dlclark/regexp2. Expressions
// are always compiled in multiline mode; they must not contain capture groups.
//
type Alt struct {
	Text    string
	Pattern bool
}

// Lit returns a literal alternative.
//
func Lit(s string) Alt { return Alt{Text: s} }

// Pat returns a regular expression alternative.
//
func Pat(expr string) Alt { return Alt{Text: expr, Pattern: true} }

func (a Alt) expr() string {
	if a.Pattern {
		return a.Text
	}
	return regexp2.Escape(a.Text)
}

func (a Alt) def() {}

// Rule describes a token type: its name, the ordered list of alternatives
// that match it and its options.
//
type Rule struct {
	Name  string
	Match []Alt

	// LineBreaks must be set if the rule can match a line break. Compile
	// tries patterns on sample text, so it may miss exotic ones.
	LineBreaks bool

	// State stack directives. At most one of them fires per token, checked
	// in this order.
	Pop  int    // pop the state stack; must be 1
	Push string // push the current state and switch to Push
	Next string // switch to Next without saving the current state

	// Error marks the rule used for unmatched input. Fallback marks the rule
	// used for unmatched spans followed by a match. Both imply LineBreaks.
	Error    bool
	Fallback bool

	// ShouldThrow makes the scanner fail with a syntax error when this rule
	// matches.
	ShouldThrow bool

	// Value transforms the matched text into the token value.
	Value func(string) string

	// Keywords maps token types to words. A token matched by this rule whose
	// text is exactly one of the words gets that token type instead.
	Keywords map[string][]string
}

func (r Rule) def() {}

func (r *Rule) switchesState() bool {
	return r.Pop != 0 || r.Push != "" || r.Next != ""
}

// Def is an entry in a Map definition: either an Alt or a Rule carrying
// options.
//
type Def interface {
	def()
}

// MapEntry associates a token type with its definitions.
//
type MapEntry struct {
	Name string
	Defs []Def
}

// Map is the mapping form of a rule list: token type names mapped to one or
// more definitions. Entries are kept in declaration order since order
// determines match priority.
//
type Map []MapEntry

// Rules normalizes m into a list of rules. Consecutive plain alternatives of
// an entry are grouped into a single rule; a Rule definition ends the current
// group and is added as a rule of its own, with the entry's name.
//
func (m Map) Rules() []Rule {
	var rs []Rule
	for _, e := range m {
		var match []Alt
		for _, d := range e.Defs {
			switch d := d.(type) {
			case Alt:
				match = append(match, d)
			case Rule:
				if len(match) > 0 {
					rs = append(rs, Rule{Name: e.Name, Match: match})
					match = nil
				}
				d.Name = e.Name
				rs = append(rs, d)
			}
		}
		if len(match) > 0 {
			rs = append(rs, Rule{Name: e.Name, Match: match})
		}
	}
	return rs
}

// options returns a normalized copy of r: defaults applied and alternatives
// sorted so that literals come first, longest first, followed by patterns in
// declaration order.
//
func options(r Rule) Rule {
	if r.Error || r.Fallback {
		r.LineBreaks = true
	}
	m := make([]Alt, len(r.Match))
	copy(m, r.Match)
	sort.SliceStable(m, func(i, j int) bool {
		a, b := m[i], m[j]
		if a.Pattern || b.Pattern {
			return !a.Pattern && b.Pattern
		}
		return utf8.RuneCountInString(a.Text) > utf8.RuneCountInString(b.Text)
	})
	r.Match = m
	return r
}
