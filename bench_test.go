package texdown_test

import (
	"strings"
	"testing"

	"github.com/db47h/texdown"
	"github.com/db47h/texdown/grammar"
	"github.com/db47h/texdown/parser"
	"github.com/db47h/texdown/render"
	"github.com/db47h/texdown/scanner"
)

const benchDoc = `# Title

Some **bold** and /italic/ text with a formula $x^2$ and a [link](http://example.com).

1. first
   1. nested _underlined_
2. second

\note
$$
\int_0^1 f(x) dx
$$
\note
--
`

func benchSource() string {
	return strings.Repeat(benchDoc, 64)
}

func BenchmarkScanner(b *testing.B) {
	src := benchSource()
	s := scanner.New(grammar.Table())
	b.SetBytes(int64(len(src)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s.Reset(src)
		for _, err := range s.Tokens() {
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkParser(b *testing.B) {
	src := benchSource()
	p := parser.New()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := p.Run(src, render.Nop{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHTML(b *testing.B) {
	src := benchSource()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := texdown.HTML(src); err != nil {
			b.Fatal(err)
		}
	}
}
