package scanner_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/db47h/texdown/rules"
	"github.com/db47h/texdown/scanner"
	"github.com/db47h/texdown/token"
)

func lit(s ...string) []rules.Alt {
	as := make([]rules.Alt, len(s))
	for i := range s {
		as[i] = rules.Lit(s[i])
	}
	return as
}

func pat(s string) []rules.Alt { return []rules.Alt{rules.Pat(s)} }

func mustCompile(t *testing.T, rs []rules.Rule) *rules.Table {
	t.Helper()
	tab, err := rules.Compile(rs)
	if err != nil {
		t.Fatal(err)
	}
	return tab
}

// scanAll returns the string representation of all tokens in input, and of
// the error that stopped the scan, if not io.EOF.
//
func scanAll(s *scanner.Scanner, input string) []string {
	var res []string
	s.Reset(input)
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return res
		}
		if err != nil {
			var se *scanner.SyntaxError
			if errors.As(err, &se) {
				res = append(res, "error "+se.Token.String())
				continue
			}
			return append(res, err.Error())
		}
		res = append(res, tok.String())
	}
}

func checkTokens(t *testing.T, got, want []string) {
	t.Helper()
	for i := 0; i < len(got) && i < len(want); i++ {
		if got[i] != want[i] {
			t.Errorf("Got:\n\t%s\nWant:\n\t%s", got[i], want[i])
		}
	}
	for i := len(got); i < len(want); i++ {
		t.Errorf("Missing token:\n\t%s", want[i])
	}
	for i := len(want); i < len(got); i++ {
		t.Errorf("Extra token:\n\t%s", got[i])
	}
}

var exprRules = []rules.Rule{
	{Name: "ws", Match: pat(`[ \t]+`)},
	{Name: "op", Match: lit("=", "==", "=>")},
	{Name: "id", Match: pat(`[a-zA-Zé]+`), Keywords: map[string][]string{"kw": {"if", "then"}}},
	{Name: "num", Match: pat(`\d+`), Value: func(s string) string { return strings.TrimLeft(s, "0") }},
	{Name: "str", Match: pat(`"(?:\\"|[^"])*"`), LineBreaks: true},
	{Name: "nl", Match: pat(`\n`), LineBreaks: true},
}

func TestScanner_Next(t *testing.T) {
	s := scanner.New(mustCompile(t, exprRules))
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"identifier", "foo", []string{`1:1: id "foo"`}},
		{"keyword", "if x then", []string{
			`1:1: kw "if"`, `1:3: ws " "`, `1:4: id "x"`, `1:5: ws " "`, `1:6: kw "then"`,
		}},
		{"longest literal", "a==b=>c=d", []string{
			`1:1: id "a"`, `1:2: op "=="`, `1:4: id "b"`, `1:5: op "=>"`, `1:7: id "c"`, `1:8: op "="`, `1:9: id "d"`,
		}},
		{"columns in runes", "été = 1", []string{
			`1:1: id "été"`, `1:4: ws " "`, `1:5: op "="`, `1:6: ws " "`, `1:7: num "1"`,
		}},
		{"lines", "a\nb\n\nc", []string{
			`1:1: id "a"`, `1:2: nl "\n"`, `2:1: id "b"`, `2:2: nl "\n"`, `3:1: nl "\n"`, `4:1: id "c"`,
		}},
		{"multi-line token", "\"a\nbc\" d", []string{
			`1:1: str "\"a\nbc\""`, `2:4: ws " "`, `2:5: id "d"`,
		}},
		{"default error", "a $b\nc", []string{
			`1:1: id "a"`, `1:2: ws " "`, `error 1:3: error "$b\nc"`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, scanAll(s, tt.input), tt.want)
		})
	}
}

func TestScanner_value(t *testing.T) {
	s := scanner.New(mustCompile(t, exprRules))
	s.Reset("007")
	tok, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Text != "007" || tok.Value != "7" {
		t.Errorf("text, value = %q, %q", tok.Text, tok.Value)
	}
	if tok.Offset != 0 || s.Pos().Offset != 3 {
		t.Errorf("offsets = %d, %d", tok.Offset, s.Pos().Offset)
	}
}

func TestScanner_errorRule(t *testing.T) {
	s := scanner.New(mustCompile(t, []rules.Rule{
		{Name: "word", Match: pat(`\w+`)},
		{Name: "junk", Error: true},
	}))
	checkTokens(t, scanAll(s, "ab?cd"), []string{`1:1: word "ab"`, `1:3: junk "?cd"`})
}

func TestScanner_fallback(t *testing.T) {
	s := scanner.New(mustCompile(t, []rules.Rule{
		{Name: "text", Fallback: true},
		{Name: "open", Match: lit("{{")},
		{Name: "close", Match: lit("}}")},
	}))
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"fallback only", "ab\ncd", []string{`1:1: text "ab\ncd"`}},
		{"leading", "{{x}}", []string{`1:1: open "{{"`, `1:3: text "x"`, `1:4: close "}}"`}},
		{"queued", "ab{{\nc}}d", []string{
			`1:1: text "ab"`, `1:3: open "{{"`, `1:5: text "\nc"`, `2:2: close "}}"`, `2:4: text "d"`,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkTokens(t, scanAll(s, tt.input), tt.want)
		})
	}
}

// Zero-width patterns that escape compile-time validation must not stall the
// scanner.
func TestScanner_zeroWidth(t *testing.T) {
	edge := rules.Rule{Name: "edge", Match: pat(`(?<=q)`)}
	word := rules.Rule{Name: "word", Match: pat(`[a-z]+`)}
	tests := []struct {
		name  string
		rules []rules.Rule
		want  []string
	}{
		{"anchored", []rules.Rule{edge, word, {Name: "ws", Match: lit(" ")}},
			[]string{`1:1: word "q"`, `error 1:2: error " a"`}},
		{"search", []rules.Rule{edge, word, {Name: "text", Fallback: true}},
			[]string{`1:1: word "q"`, `1:2: text " "`, `1:3: word "a"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scanner.New(mustCompile(t, tt.rules))
			checkTokens(t, scanAll(s, "q a"), tt.want)
			if got := s.Pos(); got.Offset != 3 {
				t.Errorf("scanner stopped at offset %d, want 3", got.Offset)
			}
		})
	}
}

func TestScanner_fallbackThrow(t *testing.T) {
	s := scanner.New(mustCompile(t, []rules.Rule{
		{Name: "text", Fallback: true},
		{Name: "bad", Match: lit("!!"), ShouldThrow: true},
	}))
	s.Reset("ab!!cd")
	tok, err := s.Next()
	if err != nil || tok.String() != `1:1: text "ab"` {
		t.Fatalf("first token: %v, %v", tok, err)
	}
	_, err = s.Next()
	var se *scanner.SyntaxError
	if !errors.As(err, &se) || !errors.Is(err, scanner.ErrSyntax) {
		t.Fatalf("queued throw: got %v", err)
	}
	if se.Token.String() != `1:3: bad "!!"` {
		t.Errorf("error token: %s", se.Token)
	}
	want := "invalid syntax at line 1 col 3:\n\n  ab!!cd\n    ^"
	if se.Error() != want {
		t.Errorf("Got:\n\t%q\nWant:\n\t%q", se.Error(), want)
	}
	tok, err = s.Next()
	if err != nil || tok.String() != `1:5: text "cd"` {
		t.Fatalf("resume after throw: %v, %v", tok, err)
	}
	if _, err = s.Next(); err != io.EOF {
		t.Fatalf("got %v, want EOF", err)
	}

	// Without a preceding span, the throwing rule raises immediately.
	s.Reset("!!x")
	if _, err = s.Next(); !errors.Is(err, scanner.ErrSyntax) {
		t.Fatalf("immediate throw: got %v", err)
	}
}

func TestScanner_syntaxErrorMessage(t *testing.T) {
	s := scanner.New(mustCompile(t, exprRules))
	s.Reset("x = 1\n\"世界\" $ y")
	var err error
	for err == nil {
		_, err = s.Next()
	}
	want := "invalid syntax at line 2 col 6:\n\n  \"世界\" $ y\n         ^"
	if err.Error() != want {
		t.Errorf("Got:\n\t%q\nWant:\n\t%q", err.Error(), want)
	}
}

var stateTable = []rules.StateRules{
	{Name: "main", Rules: []rules.Rule{
		{Name: "open", Match: lit("("), Push: "paren"},
		{Name: "quote", Match: lit(`"`), Next: "str"},
		{Name: "word", Match: pat(`[a-z]+`)},
	}},
	{Name: "paren", Rules: []rules.Rule{
		{Name: "open", Match: lit("("), Push: "paren"},
		{Name: "close", Match: lit(")"), Pop: 1},
		{Name: "num", Match: pat(`\d+`)},
	}},
	{Name: "str", Rules: []rules.Rule{
		{Name: "end", Match: lit(`"`), Next: "main"},
		{Name: "chars", Fallback: true},
	}},
}

func TestScanner_states(t *testing.T) {
	tab, err := rules.CompileStates(stateTable, "")
	if err != nil {
		t.Fatal(err)
	}
	s := scanner.New(tab)
	checkTokens(t, scanAll(s, `a(1(2))"x(y"b`), []string{
		`1:1: word "a"`,
		`1:2: open "("`,
		`1:3: num "1"`,
		`1:4: open "("`,
		`1:5: num "2"`,
		`1:6: close ")"`,
		`1:7: close ")"`,
		`1:8: quote "\""`,
		`1:9: chars "x(y"`,
		`1:12: end "\""`,
		`1:13: word "b"`,
	})
	if s.State() != "main" {
		t.Errorf("final state = %q", s.State())
	}
}

func TestScanner_saveResume(t *testing.T) {
	tab, err := rules.CompileStates(stateTable, "")
	if err != nil {
		t.Fatal(err)
	}
	s := scanner.New(tab)
	s.Reset("a((1")
	for range 3 {
		if _, err := s.Next(); err != nil {
			t.Fatal(err)
		}
	}
	snap := s.Save()
	if snap.State != "paren" || len(snap.Stack) != 2 || snap.Col != 4 {
		t.Fatalf("snapshot = %+v", snap)
	}
	s2 := scanner.New(tab)
	s2.ResetAt("1))b", snap)
	checkTokens(t, scanAll2(s2), []string{`1:4: num "1"`, `1:5: close ")"`, `1:6: close ")"`, `1:7: word "b"`})

	// Reset discards the snapshot state.
	s2.Reset("b")
	if s2.State() != "main" || s2.Pos() != (token.Pos{Offset: 0, Line: 1, Col: 1}) {
		t.Errorf("after Reset: state %q, pos %v", s2.State(), s2.Pos())
	}
}

// scanAll2 is scanAll without a Reset.
func scanAll2(s *scanner.Scanner) []string {
	var res []string
	for tok, err := range s.Tokens() {
		if err != nil {
			return append(res, err.Error())
		}
		res = append(res, tok.String())
	}
	return res
}

func TestScanner_Tokens(t *testing.T) {
	s := scanner.New(mustCompile(t, exprRules))
	s.Reset("a b $ c")
	var n int
	var last error
	for _, err := range s.Tokens() {
		n++
		last = err
	}
	if n != 5 || !errors.Is(last, scanner.ErrSyntax) {
		t.Errorf("got %d tokens, last error %v", n, last)
	}
}

func TestScanner_invalidUTF8(t *testing.T) {
	s := scanner.New(mustCompile(t, []rules.Rule{
		{Name: "any", Match: pat(`[^\n]+`)},
	}))
	checkTokens(t, scanAll(s, "a\xffb"), []string{"1:1: any \"a�b\""})
}

// Fast map dispatch must yield the same tokens as the combined expression.
// The twin table starts with a pattern that never matches, which stops fast
// map extraction without changing priorities.
func TestScanner_fastMapAgreement(t *testing.T) {
	rs := []rules.Rule{
		{Name: "lparen", Match: lit("(")},
		{Name: "rparen", Match: lit(")")},
		{Name: "star", Match: lit("*", "+")},
		{Name: "nl", Match: lit("\n"), LineBreaks: true},
		{Name: "word", Match: pat(`[a-z]+`)},
	}
	fast := mustCompile(t, rs)
	slow := mustCompile(t, append([]rules.Rule{{Name: "never", Match: pat(`(?!)`)}}, rs...))
	for _, r := range "()*+\n" {
		if fast.State(rules.DefaultState).Fast(r) == nil {
			t.Fatalf("%q not in fast map", r)
		}
		if slow.State(rules.DefaultState).Fast(r) != nil {
			t.Fatalf("%q in twin fast map", r)
		}
	}
	input := "(a*b)+\n(c)"
	want := scanAll(scanner.New(slow), input)
	if len(want) != 10 {
		t.Fatalf("got %d tokens, want 10", len(want))
	}
	checkTokens(t, scanAll(scanner.New(fast), input), want)
}
