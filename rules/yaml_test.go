package rules_test

import (
	"errors"
	"testing"

	"github.com/db47h/texdown/rules"
)

func TestLoadYAML(t *testing.T) {
	tab, err := rules.LoadYAML([]byte(`
start: main
states:
  main:
    open: {match: '(', push: paren}
    ws: {re: '[ \t]+'}
    id:
      match: {re: '[a-z]+'}
      keywords:
        kw: [if, else]
  paren:
    num: {re: '\d+'}
    close: {match: ')', pop: 1}
    nl: {match: {re: '\n'}, lineBreaks: true}
`))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Start() != "main" {
		t.Errorf("start = %q", tab.Start())
	}
	for _, typ := range []string{"ws", "id", "kw", "open", "num", "close", "nl"} {
		if !tab.Has(typ) {
			t.Errorf("Has(%q) = false", typ)
		}
	}
	if g := tab.State("main").Fast('('); g == nil || g.Push != "paren" {
		t.Errorf("Fast('(') = %v", g)
	}
}

func TestLoadYAML_rules(t *testing.T) {
	tab, err := rules.LoadYAML([]byte(`
rules:
  b: ['**', '*']
  word: {re: '\w+'}
  blank: {match: {re: '^\n'}, lineBreaks: true}
  eol: {match: {re: '\n'}, lineBreaks: true}
`))
	if err != nil {
		t.Fatal(err)
	}
	st := tab.State(rules.DefaultState)
	g, _, n, err := st.Match([]rune("**x"), 0)
	if err != nil || g == nil || g.Name != "b" || n != 2 {
		t.Errorf("Match = %v, %d, %v", g, n, err)
	}
}

func TestLoadYAML_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", "", rules.ErrRuleFile},
		{"unknown key", "foo: 1", rules.ErrRuleFile},
		{"no rules", "start: main", rules.ErrRuleFile},
		{"both", "rules: {a: x}\nstates: {s: {b: y}}", rules.ErrRuleFile},
		{"start without states", "start: s\nrules: {a: x}", rules.ErrRuleFile},
		{"rules not a mapping", "rules: [a, b]", rules.ErrRuleFile},
		{"bad option", "rules: {a: {match: x, color: red}}", rules.ErrRuleFile},
		{"bad lineBreaks", "rules: {a: {match: x, lineBreaks: maybe}}", rules.ErrRuleFile},
		{"bad pop", "states: {s: {a: {match: x, pop: one}}}", rules.ErrRuleFile},
		{"compile error", "rules: {a: {re: 'x*'}}", rules.ErrEmptyMatch},
		{"missing state", "states: {s: {a: {match: x, next: t}}}", rules.ErrMissingState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.LoadYAML([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Got:\n\t%v\nWant:\n\t%v", err, tt.want)
			}
		})
	}
}
