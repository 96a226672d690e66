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

/*
Package texdown parses texdown documents, a lightweight markup mixing Markdown
style formatting with TeX math, TikZ diagrams and LaTeX-like commands.

The package is a thin layer over its sub-packages:

	rules    compiles lexical rule sets into immutable tables
	scanner  produces tokens from a table and a text buffer
	grammar  defines the texdown rule set
	parser   turns texdown tokens into structural events
	render   receives those events (HTML, terminal, tree, recorder)

Rule tables

A rule set is an ordered list of named rules. Each rule matches one or more
alternatives, either literal strings or regular expressions, and the order of
the rules determines match priority. Rules compile into a single combined
expression anchored at the scanning position, plus a fast map from single
characters to rules for literal one-rune tokens:

	t, err := rules.Compile([]rules.Rule{
		{Name: "word", Match: []rules.Alt{rules.Pat(`\w+`)}},
		{Name: "space", Match: []rules.Alt{rules.Lit(" ")}},
	})

Rules can carry a value transform, a keyword map that reclassifies exact
matches, and state stack directives (push, pop, next) for multi-state tables
compiled with rules.CompileStates. Rule sets can also be loaded from YAML with
rules.LoadYAML; grammar.YAML is the texdown grammar in that format.

Compilation validates every rule: a pattern must not match the empty string,
must not contain capture groups and must declare LineBreaks if it can match a
newline. Compilation errors wrap the sentinel errors of the rules package.

Scanning

A Scanner is created for a table and reset with a text buffer. Next returns
one token at a time with its 1-based line and column, and io.EOF at the end of
the buffer:

	s := scanner.New(t)
	s.Reset(src)
	for tok, err := range s.Tokens() {
		...
	}

Text that no rule matches is handled by the state's error or fallback rule. A
fallback rule turns the unmatched span into a token. An error rule either
returns it as a token or, by default, fails with a *scanner.SyntaxError whose
message embeds a caret-annotated excerpt of the offending line.

Parsing and rendering

A parser.Parser drives a Scanner over a document and maintains a stack of open
elements (paragraphs, headings, formatting toggles, lists) and a set of open
environments. Each token triggers exactly one action which in turn emits
events to every registered parser.Renderer. The parser never fails on
structure: unbalanced markup degrades into well-formed event sequences, and
everything still open at the end of the document is closed before Done.

Render, HTML, Parse and Tokens in this package run that pipeline with the
texdown grammar after normalizing line endings.

*/
package texdown
