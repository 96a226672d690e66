package rules_test

import (
	"errors"
	"testing"

	"github.com/db47h/texdown/rules"
)

func TestCompile_defaultErrorRule(t *testing.T) {
	tab, err := rules.Compile([]rules.Rule{
		{Name: "word", Match: []rules.Alt{rules.Pat(`[a-z]+`)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	e := tab.State(rules.DefaultState).Error()
	if e == nil {
		t.Fatal("no error rule")
	}
	if e.Name != "error" || !e.ShouldThrow || !e.LineBreaks {
		t.Errorf("default error rule = %+v", e.Rule)
	}
	if !tab.Has("error") || !tab.Has("word") || tab.Has("number") {
		t.Error("Has mismatch")
	}
}

func TestCompile_errors(t *testing.T) {
	pat := func(name, expr string) rules.Rule {
		return rules.Rule{Name: name, Match: []rules.Alt{rules.Pat(expr)}}
	}
	tests := []struct {
		name  string
		rules []rules.Rule
		want  error
	}{
		{"no name", []rules.Rule{{Match: []rules.Alt{rules.Lit("x")}}}, rules.ErrNoName},
		{"empty match", []rules.Rule{pat("ws", `[ ]*`)}, rules.ErrEmptyMatch},
		{"capture group", []rules.Rule{pat("call", `f(x)`)}, rules.ErrCaptureGroup},
		{"named group", []rules.Rule{pat("call", `f(?<arg>x)`)}, rules.ErrCaptureGroup},
		{"word boundary", []rules.Rule{pat("edge", `\b`)}, rules.ErrEmptyMatch},
		{"lookahead", []rules.Rule{pat("ahead", `(?=a)`)}, rules.ErrEmptyMatch},
		{"lookbehind", []rules.Rule{pat("behind", `(?<=x)`)}, rules.ErrEmptyMatch},
		{"optional in context", []rules.Rule{pat("opt", `a?(?=\n)`)}, rules.ErrEmptyMatch},
		{"line breaks", []rules.Rule{pat("ws", `\s+`)}, rules.ErrLineBreaks},
		{"embedded line break", []rules.Rule{pat("ab", "a\nb")}, rules.ErrLineBreaks},
		{"line break in class", []rules.Rule{pat("any", `a[^x]b`)}, rules.ErrLineBreaks},
		{"fast line break", []rules.Rule{{Name: "nl", Match: []rules.Alt{rules.Lit("\n")}}}, rules.ErrLineBreaks},
		{"bad pattern", []rules.Rule{pat("x", `[a-`)}, rules.ErrBadPattern},
		{"two errors", []rules.Rule{{Name: "e1", Error: true}, {Name: "e2", Error: true}}, rules.ErrMultipleError},
		{"two fallbacks", []rules.Rule{{Name: "f1", Fallback: true}, {Name: "f2", Fallback: true}}, rules.ErrMultipleFallback},
		{"error and fallback", []rules.Rule{{Name: "e", Error: true}, {Name: "f", Fallback: true}}, rules.ErrErrorAndFallback},
		{"stateless push", []rules.Rule{{Name: "x", Match: []rules.Alt{rules.Lit("(")}, Push: "p"}}, rules.ErrStateless},
		{"stateless pop", []rules.Rule{{Name: "x", Match: []rules.Alt{rules.Lit(")")}, Pop: 1}}, rules.ErrStateless},
		{"duplicate keyword", []rules.Rule{{
			Name:     "id",
			Match:    []rules.Alt{rules.Pat(`[a-z]+`)},
			Keywords: map[string][]string{"a": {"if"}, "b": {"if"}},
		}}, rules.ErrKeyword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.Compile(tt.rules)
			if !errors.Is(err, tt.want) {
				t.Errorf("Got:\n\t%v\nWant:\n\t%v", err, tt.want)
			}
		})
	}
}

func TestCompileStates_errors(t *testing.T) {
	lit := func(s string) []rules.Alt { return []rules.Alt{rules.Lit(s)} }
	tests := []struct {
		name   string
		states []rules.StateRules
		start  string
		want   error
	}{
		{"no states", nil, "", rules.ErrNoStates},
		{"missing push target", []rules.StateRules{
			{Name: "main", Rules: []rules.Rule{{Name: "open", Match: lit("("), Push: "paren"}}},
		}, "", rules.ErrMissingState},
		{"missing next target", []rules.StateRules{
			{Name: "main", Rules: []rules.Rule{{Name: "q", Match: lit(`"`), Next: "str"}}},
		}, "", rules.ErrMissingState},
		{"missing start", []rules.StateRules{
			{Name: "main", Rules: []rules.Rule{{Name: "x", Match: lit("x")}}},
		}, "other", rules.ErrMissingState},
		{"pop depth", []rules.StateRules{
			{Name: "main", Rules: []rules.Rule{{Name: "close", Match: lit(")"), Pop: 2}}},
		}, "", rules.ErrPopDepth},
		{"fallback switch", []rules.StateRules{
			{Name: "main", Rules: []rules.Rule{{Name: "text", Fallback: true, Next: "main"}}},
		}, "", rules.ErrFallbackSwitch},
		{"duplicate state", []rules.StateRules{
			{Name: "main", Rules: []rules.Rule{{Name: "x", Match: lit("x")}}},
			{Name: "main", Rules: []rules.Rule{{Name: "y", Match: lit("y")}}},
		}, "", rules.ErrDuplicateState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.CompileStates(tt.states, tt.start)
			if !errors.Is(err, tt.want) {
				t.Errorf("Got:\n\t%v\nWant:\n\t%v", err, tt.want)
			}
		})
	}
}

func TestCompileStates(t *testing.T) {
	tab, err := rules.CompileStates([]rules.StateRules{
		{Name: "main", Rules: []rules.Rule{
			{Name: "word", Match: []rules.Alt{rules.Pat(`[a-z]+`)}},
			{Name: "open", Match: []rules.Alt{rules.Lit("(")}, Push: "paren"},
		}},
		{Name: "paren", Rules: []rules.Rule{
			{Name: "num", Match: []rules.Alt{rules.Pat(`\d+`)}},
			{Name: "close", Match: []rules.Alt{rules.Lit(")")}, Pop: 1},
		}},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	if tab.Start() != "main" {
		t.Errorf("start state = %q, want %q", tab.Start(), "main")
	}
	if got := tab.States(); len(got) != 2 || got[0] != "main" || got[1] != "paren" {
		t.Errorf("States() = %v", got)
	}
	for _, typ := range []string{"word", "open", "num", "close", "error"} {
		if !tab.Has(typ) {
			t.Errorf("Has(%q) = false", typ)
		}
	}
}

func TestState_fastMap(t *testing.T) {
	tab, err := rules.Compile([]rules.Rule{
		{Name: "plus", Match: []rules.Alt{rules.Lit("+")}},
		{Name: "minus", Match: []rules.Alt{rules.Lit("-"), rules.Lit("->")}},
		{Name: "sign", Match: []rules.Alt{rules.Lit("+")}},
		{Name: "star", Match: []rules.Alt{rules.Lit("*")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	st := tab.State(rules.DefaultState)
	if g := st.Fast('+'); g == nil || g.Name != "plus" {
		t.Errorf("Fast('+') = %v, want plus", g)
	}
	// "->" sorts before "-" so minus contributes a regexp part first and
	// stops fast map extraction.
	for _, r := range "-*" {
		if g := st.Fast(r); g != nil {
			t.Errorf("Fast(%q) = %s, want nil", r, g.Name)
		}
	}
	g, i, n, err := st.Match([]rune("a*"), 1)
	if err != nil || g == nil || g.Name != "star" || i != 1 || n != 1 {
		t.Errorf("Match = %v, %d, %d, %v", g, i, n, err)
	}
}

func TestState_Match(t *testing.T) {
	tab, err := rules.Compile([]rules.Rule{
		{Name: "op", Match: []rules.Alt{rules.Lit("="), rules.Lit("==")}},
		{Name: "id", Match: []rules.Alt{rules.Pat(`[a-z]+`)}, Keywords: map[string][]string{"kw": {"if", "else"}}},
		{Name: "bol", Match: []rules.Alt{rules.Pat(`^#`)}},
		{Name: "hash", Match: []rules.Alt{rules.Lit("#")}},
		{Name: "nl", Match: []rules.Alt{rules.Pat(`\n`)}, LineBreaks: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	st := tab.State(rules.DefaultState)
	buf := []rune("a==b\n#if#")
	tests := []struct {
		at      int
		name    string
		index   int
		length  int
		tokType string
	}{
		{0, "id", 0, 1, "id"},
		{1, "op", 1, 2, "op"},
		{4, "nl", 4, 1, "nl"},
		{5, "bol", 5, 1, "bol"},
		{6, "id", 6, 2, "kw"},
		{8, "hash", 8, 1, "hash"},
	}
	for _, tt := range tests {
		g, i, n, err := st.Match(buf, tt.at)
		if err != nil {
			t.Fatal(err)
		}
		if g == nil || g.Name != tt.name || i != tt.index || n != tt.length {
			t.Errorf("Match at %d: got %v, %d, %d; want %s, %d, %d", tt.at, g, i, n, tt.name, tt.index, tt.length)
			continue
		}
		if typ := g.Type(string(buf[i : i+n])); typ != tt.tokType {
			t.Errorf("Type at %d = %q, want %q", tt.at, typ, tt.tokType)
		}
	}
	// anchored: no match at the cursor means no match at all.
	if g, i, _, _ := st.Match([]rune("!!a"), 0); g != nil || i != -1 {
		t.Errorf("anchored Match found %v at %d", g, i)
	}
	if !tab.Has("kw") {
		t.Error("Has must report keyword types")
	}
}

func TestState_MatchFallback(t *testing.T) {
	tab, err := rules.Compile([]rules.Rule{
		{Name: "text", Fallback: true},
		{Name: "open", Match: []rules.Alt{rules.Lit("{{")}},
	})
	if err != nil {
		t.Fatal(err)
	}
	g, i, n, err := tab.State(rules.DefaultState).Match([]rune("abc{{"), 0)
	if err != nil || g == nil || g.Name != "open" || i != 3 || n != 2 {
		t.Errorf("Match = %v, %d, %d, %v", g, i, n, err)
	}
}

func TestCompile_emptyUnion(t *testing.T) {
	tab, err := rules.Compile(nil)
	if err != nil {
		t.Fatal(err)
	}
	g, i, _, err := tab.State(rules.DefaultState).Match([]rune("x"), 0)
	if err != nil || g != nil || i != -1 {
		t.Errorf("Match = %v, %d, %v", g, i, err)
	}
}
