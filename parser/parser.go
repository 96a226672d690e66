// Package parser turns a texdown token stream into structural rendering
// events.
//
// A Parser keeps a stack of open elements (paragraphs, headings, formatting
// toggles, lists and list items) and a set of open named environments. Every
// token kind has exactly one action; the parser never fails on structure and
// degrades unbalanced or partial markup into some well-formed event sequence.
//
package parser

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/db47h/texdown/grammar"
	"github.com/db47h/texdown/internal/logging"
	"github.com/db47h/texdown/internal/logging/logfields"
	"github.com/db47h/texdown/rules"
	"github.com/db47h/texdown/scanner"
	"github.com/db47h/texdown/token"
)

// An Option configures a Parser.
//
type Option func(*Parser)

// WithTable sets the rule table used to scan documents. Token types unknown
// to the texdown grammar are handled as plain text.
//
func WithTable(t *rules.Table) Option {
	return func(p *Parser) { p.t = t }
}

// WithLogger sets the logger.
//
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Parser) { p.log = l }
}

// Parser is a document parser. A Parser can be reused sequentially but is not
// safe for concurrent use.
//
type Parser struct {
	t   *rules.Table
	log logrus.FieldLogger
	s   *scanner.Scanner

	rs    []Renderer
	stack []*Element
	envs  []string // open environments, in opening order
	id    int
	tok   *token.Token

	unknown map[string]bool // token types outside the grammar, seen this run
}

// New returns a new parser. By default it uses the texdown grammar.
//
func New(opts ...Option) *Parser {
	p := &Parser{
		t:       grammar.Table(),
		log:     logging.DefaultLogger.WithField(logfields.LogSubsys, "parser"),
		unknown: make(map[string]bool),
	}
	for _, o := range opts {
		o(p)
	}
	p.s = scanner.New(p.t)
	return p
}

// Run parses src and delivers events to every renderer, in order. When the
// token stream is exhausted, open elements are closed deepest first, open
// environments most recently opened first, and every renderer receives Done.
//
// Run only fails on lexical errors, which can only happen with a custom rule
// table. In that case the events for the text scanned so far are finalized as
// above before the error is returned.
//
func (p *Parser) Run(src string, rs ...Renderer) error {
	p.rs = rs
	p.stack = p.stack[:0]
	p.envs = p.envs[:0]
	p.id = 0
	clear(p.unknown)
	p.s.Reset(src)

	var err error
	for {
		p.id++
		tok, e := p.s.Next()
		if e == io.EOF {
			break
		}
		if e != nil {
			err = e
			break
		}
		p.tok = tok
		p.dispatch(p.kindOf(tok.Type))
	}
	p.clearElements()
	p.clearEnvs()
	for _, r := range p.rs {
		r.Done()
	}
	p.tok = nil
	p.rs = nil

	l := p.log.WithField(logfields.Tokens, p.id-1)
	if err != nil {
		l.WithError(err).Debug("Parse aborted")
	} else {
		l.Debug("Parse complete")
	}
	return err
}

// kindOf maps a token type to its grammar kind. Types unknown to the
// grammar, which only custom tables produce, are handled as text.
//
func (p *Parser) kindOf(typ string) grammar.Kind {
	if k, ok := grammar.KindOf(typ); ok {
		return k
	}
	if !p.unknown[typ] {
		p.unknown[typ] = true
		p.log.WithField(logfields.TokenType, typ).Debug("Unknown token type handled as text")
	}
	return grammar.Text
}

func (p *Parser) dispatch(k grammar.Kind) {
	text := p.tok.Text
	switch k {
	case grammar.H1, grammar.H2, grammar.H3, grammar.H4, grammar.H5, grammar.H6:
		p.clearElements()
		p.push(&Element{Type: Heading(k.Level()), Token: text})
	case grammar.Bold:
		p.format(B)
	case grammar.Italic:
		p.format(I)
	case grammar.Underline:
		p.format(U)
	case grammar.UList:
		p.listItem(UL)
	case grammar.OList:
		p.listItem(OL)
	case grammar.Link:
		p.pushParIfEmpty()
		label, target := splitLink(text)
		for _, r := range p.rs {
			r.Link(label, target, p.id)
		}
	case grammar.Image:
		p.pushParIfEmpty()
		label, target := splitLink(text)
		for _, r := range p.rs {
			r.Image(label, target, p.id)
		}
	case grammar.BlockFormula:
		p.clearElements()
		tex := strip(text, "$$", "$$")
		for _, r := range p.rs {
			r.BlockFormula(tex, p.id)
		}
	case grammar.InlineFormula:
		p.pushParIfEmpty()
		tex := strip(text, "$", "$")
		for _, r := range p.rs {
			r.InlineFormula(tex, p.id)
		}
	case grammar.Diagram:
		p.clearElements()
		src := strip(text, `\begin{tikzpicture}`, `\end{tikzpicture}`)
		for _, r := range p.rs {
			r.Diagram(src, p.id)
		}
	case grammar.Command:
		p.clearElements()
		name, arg := splitCommand(text)
		for _, r := range p.rs {
			r.Command(name, arg)
		}
	case grammar.Env:
		p.clearElements()
		p.toggleEnv(strings.TrimPrefix(text, `\`))
	case grammar.Rule:
		p.clearElements()
		for _, r := range p.rs {
			r.Rule()
		}
	case grammar.Escape:
		ch, _ := utf8.DecodeRuneInString(text)
		for _, r := range p.rs {
			r.Escape(ch)
		}
	case grammar.Text:
		p.pushParIfEmpty()
		for _, r := range p.rs {
			r.Text(text)
		}
	case grammar.Blank:
		p.clearElements()
		for _, r := range p.rs {
			r.Blank()
		}
	case grammar.EOL:
		for len(p.stack) > 0 && !p.top().Type.multiline() {
			p.pop()
		}
		if len(p.stack) > 0 {
			for _, r := range p.rs {
				r.LineBreak()
			}
		}
	default:
		panic("parser: unhandled token kind " + k.String())
	}
}

func (p *Parser) top() *Element {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(e *Element) {
	p.stack = append(p.stack, e)
	for _, r := range p.rs {
		r.StartElement(e, p.id)
	}
}

func (p *Parser) pop() {
	e := p.stack[len(p.stack)-1]
	p.stack[len(p.stack)-1] = nil
	p.stack = p.stack[:len(p.stack)-1]
	for _, r := range p.rs {
		r.EndElement(e)
	}
}

func (p *Parser) clearElements() {
	for len(p.stack) > 0 {
		p.pop()
	}
}

func (p *Parser) pushParIfEmpty() {
	if len(p.stack) == 0 {
		p.push(&Element{Type: P})
	}
}

// format toggles a formatting element. Only a matching innermost toggle is
// closed; anything else opens a new one.
//
func (p *Parser) format(typ ElementType) {
	if top := p.top(); top != nil && top.Type == typ {
		p.pop()
		return
	}
	p.pushParIfEmpty()
	p.push(&Element{Type: typ, Token: p.tok.Text})
}

// listItem opens a list item at the depth given by the marker's width.
// Shallower or foreign elements are closed until a list of the same type at
// a lower or equal depth, or an item of a shallower list, is on top. An open
// item of a shallower list receives the new list as a child.
//
func (p *Parser) listItem(typ ElementType) {
	depth := listDepth(p.tok.Text)
	for len(p.stack) > 0 {
		top := p.top()
		if top.Type == LI && top.Depth < depth {
			break
		}
		if top.Type == typ && top.Depth <= depth {
			break
		}
		p.pop()
	}
	if top := p.top(); top == nil || top.Type != typ || top.Depth < depth {
		p.push(&Element{Type: typ, Depth: depth})
	}
	p.push(&Element{Type: LI, Token: p.tok.Text, Depth: depth})
}

// listDepth returns the length of marker once its first run of digits is
// removed, so that "1. " and "12. " have the same depth.
//
func listDepth(marker string) int {
	i := strings.IndexFunc(marker, isDigit)
	if i < 0 {
		return len(marker)
	}
	j := strings.IndexFunc(marker[i:], func(r rune) bool { return !isDigit(r) })
	if j < 0 {
		return i
	}
	return len(marker) - j
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func (p *Parser) toggleEnv(name string) {
	for i, e := range p.envs {
		if e == name {
			p.envs = append(p.envs[:i], p.envs[i+1:]...)
			for _, r := range p.rs {
				r.EndEnv(name)
			}
			return
		}
	}
	p.envs = append(p.envs, name)
	for _, r := range p.rs {
		r.StartEnv(name)
	}
}

func (p *Parser) clearEnvs() {
	for i := len(p.envs) - 1; i >= 0; i-- {
		for _, r := range p.rs {
			r.EndEnv(p.envs[i])
		}
	}
	p.envs = p.envs[:0]
}

func strip(s, prefix, suffix string) string {
	s = strings.TrimPrefix(s, prefix)
	return strings.TrimSuffix(s, suffix)
}

// splitLink splits "[label](target)" or "![label](target)".
//
func splitLink(s string) (label, target string) {
	s = strip(strings.TrimPrefix(s, "!"), "[", ")")
	label, target, _ = strings.Cut(s, "](")
	return label, target
}

// splitCommand splits `\name{arg}`.
//
func splitCommand(s string) (name, arg string) {
	s = strings.TrimPrefix(s, `\`)
	name, arg, ok := strings.Cut(s, "{")
	if ok {
		arg = strings.TrimSuffix(arg, "}")
	}
	return name, arg
}
