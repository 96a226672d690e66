package grammar

import (
	_ "embed"
	"sync"

	"github.com/db47h/texdown/rules"
)

// YAML is the texdown grammar as a rule file for rules.LoadYAML.
//
//go:embed texdown.yaml
var YAML []byte

type def struct {
	kind       Kind
	match      []rules.Alt
	lineBreaks bool
}

func lit(s ...string) []rules.Alt {
	as := make([]rules.Alt, len(s))
	for i := range s {
		as[i] = rules.Lit(s[i])
	}
	return as
}

func pat(expr string) []rules.Alt {
	return []rules.Alt{rules.Pat(expr)}
}

// defs lists the grammar in priority order. Headings and block constructs are
// anchored at line starts; $ anchors at line ends.
var defs = [...]def{
	{kind: H6, match: pat(`^###### `)},
	{kind: H5, match: pat(`^##### `)},
	{kind: H4, match: pat(`^#### `)},
	{kind: H3, match: pat(`^### `)},
	{kind: H2, match: pat(`^## `)},
	{kind: H1, match: pat(`^# `)},
	{kind: Escape, match: lit("//", "__")},
	{kind: Bold, match: lit("**", "*")},
	{kind: Italic, match: lit("/")},
	{kind: Underline, match: lit("_")},
	{kind: UList, match: pat(`^[ ]*- `)},
	{kind: OList, match: pat(`^[ ]*[0-9]+\. `)},
	{kind: Link, match: pat(`\[[^\]\n]*\]\([^)\n]*\)`)},
	{kind: Image, match: pat(`!\[[^\]\n]*\]\([^)\n]*\)`)},
	{kind: BlockFormula, match: pat(`^\$\$$(?:\\\$|[^$])+^\$\$$`), lineBreaks: true},
	{kind: InlineFormula, match: pat(`\$(?:\\\$|[^\n$])+\$`)},
	{kind: Diagram, match: pat(`^\\begin\{tikzpicture\}[\s\S]*?^\\end\{tikzpicture\}`), lineBreaks: true},
	{kind: Command, match: pat(`^\\\w+\{[^}\n]*\}$`)},
	{kind: Env, match: pat(`^\\\w+$`)},
	{kind: Rule, match: pat(`^--$`)},
	{kind: Text, match: pat(`[^/!\n*_$\\\[\]]+|[!*_$\\/\[\]]`)},
	{kind: Blank, match: pat(`^\n`), lineBreaks: true},
	{kind: EOL, match: pat(`\n`), lineBreaks: true},
}

// every Kind has exactly one definition.
var _ [numKinds]def = defs

// Rules returns the texdown grammar as a rule list.
//
func Rules() []rules.Rule {
	rs := make([]rules.Rule, len(defs))
	for i, d := range defs {
		rs[i] = rules.Rule{Name: d.kind.String(), Match: d.match, LineBreaks: d.lineBreaks}
	}
	return rs
}

// Map returns the texdown grammar in mapping form.
//
func Map() rules.Map {
	m := make(rules.Map, len(defs))
	for i, d := range defs {
		e := rules.MapEntry{Name: d.kind.String()}
		if d.lineBreaks {
			e.Defs = []rules.Def{rules.Rule{Match: d.match, LineBreaks: true}}
		} else {
			for _, a := range d.match {
				e.Defs = append(e.Defs, a)
			}
		}
		m[i] = e
	}
	return m
}

var compiled = sync.OnceValues(func() (*rules.Table, error) {
	return rules.Compile(Rules())
})

// Table returns the compiled texdown grammar. It is compiled on first use and
// shared by all callers.
//
func Table() *rules.Table {
	t, err := compiled()
	if err != nil {
		panic("grammar: " + err.Error())
	}
	return t
}
