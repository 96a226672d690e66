package parser

import (
	"testing"

	"github.com/db47h/texdown/grammar"
	"github.com/db47h/texdown/token"
)

type counter struct {
	start, end, leaves int
}

func (c *counter) StartElement(*Element, int)  { c.start++ }
func (c *counter) EndElement(*Element)         { c.end++ }
func (c *counter) StartEnv(string)             { c.leaves++ }
func (c *counter) EndEnv(string)               { c.leaves++ }
func (c *counter) Link(string, string, int)    { c.leaves++ }
func (c *counter) Image(string, string, int)   { c.leaves++ }
func (c *counter) BlockFormula(string, int)    { c.leaves++ }
func (c *counter) InlineFormula(string, int)   { c.leaves++ }
func (c *counter) Diagram(string, int)         { c.leaves++ }
func (c *counter) Command(string, string)      { c.leaves++ }
func (c *counter) Rule()                       { c.leaves++ }
func (c *counter) Escape(rune)                 { c.leaves++ }
func (c *counter) Text(string)                 { c.leaves++ }
func (c *counter) LineBreak()                  { c.leaves++ }
func (c *counter) Blank()                      { c.leaves++ }
func (c *counter) Done()                       {}

var sampleText = map[grammar.Kind]string{
	grammar.H6:            "###### ",
	grammar.H5:            "##### ",
	grammar.H4:            "#### ",
	grammar.H3:            "### ",
	grammar.H2:            "## ",
	grammar.H1:            "# ",
	grammar.Escape:        "//",
	grammar.Bold:          "*",
	grammar.Italic:        "/",
	grammar.Underline:     "_",
	grammar.UList:         "- ",
	grammar.OList:         "1. ",
	grammar.Link:          "[a](b)",
	grammar.Image:         "![a](b)",
	grammar.BlockFormula:  "$$\nx\n$$",
	grammar.InlineFormula: "$x$",
	grammar.Diagram:       "\\begin{tikzpicture}\n\\end{tikzpicture}",
	grammar.Command:       `\a{b}`,
	grammar.Env:           `\a`,
	grammar.Rule:          "--",
	grammar.Text:          "t",
	grammar.Blank:         "\n",
	grammar.EOL:           "\n",
}

// every kind has an action, and any sequence of actions keeps the stack
// balanced once finalized.
func TestDispatch_allKinds(t *testing.T) {
	if len(sampleText) != grammar.NumKinds {
		t.Fatalf("sampleText has %d entries, want %d", len(sampleText), grammar.NumKinds)
	}
	var c counter
	p := New()
	p.rs = []Renderer{&c}
	for _, k := range grammar.Kinds() {
		for _, k2 := range grammar.Kinds() {
			for i, kk := range []grammar.Kind{k, k2} {
				p.id = i + 1
				p.tok = &token.Token{Type: kk.String(), Text: sampleText[kk]}
				func() {
					defer func() {
						if r := recover(); r != nil {
							t.Fatalf("%s then %s: %v", k, k2, r)
						}
					}()
					p.dispatch(kk)
				}()
			}
		}
	}
	p.clearElements()
	p.clearEnvs()
	if c.start != c.end {
		t.Errorf("%d elements started, %d ended", c.start, c.end)
	}
	if c.leaves == 0 {
		t.Error("no leaf events")
	}
}

func TestListDepth(t *testing.T) {
	tests := []struct {
		marker string
		want   int
	}{
		{"- ", 2},
		{"    - ", 6},
		{"1. ", 2},
		{"123. ", 2},
		{"  10. ", 4},
		{"1", 0},
	}
	for _, tt := range tests {
		if got := listDepth(tt.marker); got != tt.want {
			t.Errorf("listDepth(%q): Got: %d, Want: %d", tt.marker, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		f            func(string) (string, string)
		in, one, two string
	}{
		{splitLink, "[a b](http://x/y?z)", "a b", "http://x/y?z"},
		{splitLink, "![](img.png)", "", "img.png"},
		{splitLink, "[x]()", "x", ""},
		{splitCommand, `\title{Some title}`, "title", "Some title"},
		{splitCommand, `\title{}`, "title", ""},
		{splitCommand, `\title`, "title", ""},
	}
	for _, tt := range tests {
		one, two := tt.f(tt.in)
		if one != tt.one || two != tt.two {
			t.Errorf("split %q: Got: %q, %q, Want: %q, %q", tt.in, one, two, tt.one, tt.two)
		}
	}
}
