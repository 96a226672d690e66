package scanner_test

import (
	"fmt"

	"github.com/db47h/texdown/rules"
	"github.com/db47h/texdown/scanner"
)

// Idiomatic usage
func ExampleScanner() {
	main := append(rules.Number("int", "float"),
		rules.QuotedString("string"),
		rules.Rule{Name: "ws", Match: []rules.Alt{rules.Pat(`[ \t]+`)}},
		rules.Rule{Name: "nl", Match: []rules.Alt{rules.Lit("\n")}, LineBreaks: true},
		rules.Rule{Name: "ident", Match: []rules.Alt{rules.Pat(`[a-z]+`)},
			Keywords: map[string][]string{"kw": {"let"}}},
		rules.Rule{Name: "op", Match: []rules.Alt{rules.Lit("="), rules.Lit("+")}},
		rules.Rule{Name: "comment", Match: []rules.Alt{rules.Lit("/*")}, Push: "comment"},
	)
	tab, err := rules.CompileStates([]rules.StateRules{
		{Name: "main", Rules: main},
		{Name: "comment", Rules: []rules.Rule{
			{Name: "end", Match: []rules.Alt{rules.Lit("*/")}, Pop: 1},
			{Name: "text", Fallback: true},
		}},
	}, "main")
	if err != nil {
		fmt.Println(err)
		return
	}

	s := scanner.New(tab)
	s.Reset("let x = 0x10 + \"a\" /* note */\n")
	for tok, err := range s.Tokens() {
		if err != nil {
			fmt.Println(err)
			return
		}
		if tok.Type != "ws" {
			fmt.Printf("%s %s %q\n", tok.Pos, tok.Type, tok.Value)
		}
	}

	// Output:
	// 1:1 kw "let"
	// 1:5 ident "x"
	// 1:7 op "="
	// 1:9 int "16"
	// 1:14 op "+"
	// 1:16 string "a"
	// 1:20 comment "/*"
	// 1:22 text " note "
	// 1:28 end "*/"
	// 1:30 nl "\n"
}
