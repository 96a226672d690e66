package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/util"

	"github.com/db47h/texdown/parser"
)

// HTML renders a document as an HTML fragment. Environments become div
// elements with the environment name as class; formulas are left in TeX
// notation for client side typesetting and diagrams are wrapped in a
// text/tikz script element.
//
// Output accumulates in an internal buffer; it is not reset by Done.
//
type HTML struct {
	buf bytes.Buffer
	hl  *highlighter
	err error
}

var _ parser.Renderer = (*HTML)(nil)

// HTMLOption configures an HTML renderer.
//
type HTMLOption func(*HTML) error

// WithHighlight adds a syntax highlighted listing of the TeX source after each
// diagram, using the named chroma style.
//
func WithHighlight(style string) HTMLOption {
	return func(h *HTML) error {
		hl, err := newHighlighter(style)
		if err != nil {
			return err
		}
		h.hl = hl
		return nil
	}
}

// NewHTML returns a new HTML renderer.
//
func NewHTML(opts ...HTMLOption) (*HTML, error) {
	h := new(HTML)
	for _, o := range opts {
		if err := o(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Bytes returns the rendered HTML.
//
func (h *HTML) Bytes() []byte { return h.buf.Bytes() }

func (h *HTML) String() string { return h.buf.String() }

// WriteTo writes the rendered HTML to w and empties the buffer.
//
func (h *HTML) WriteTo(w io.Writer) (int64, error) { return h.buf.WriteTo(w) }

// Reset discards rendered output and any highlighting error.
//
func (h *HTML) Reset() {
	h.buf.Reset()
	h.err = nil
}

// Err returns the first highlighting error. Diagrams that failed to highlight
// are still rendered.
//
func (h *HTML) Err() error { return h.err }

func (h *HTML) escape(s string) {
	h.buf.Write(util.EscapeHTML([]byte(s)))
}

func (h *HTML) StartElement(e *parser.Element, _ int) {
	fmt.Fprintf(&h.buf, "<%s>", e.Type)
}

func (h *HTML) EndElement(e *parser.Element) {
	fmt.Fprintf(&h.buf, "</%s>", e.Type)
}

func (h *HTML) StartEnv(name string) {
	h.buf.WriteString(`<div class="`)
	h.escape(name)
	h.buf.WriteString(`">`)
}

func (h *HTML) EndEnv(string) { h.buf.WriteString("</div>") }

func (h *HTML) Link(label, target string, _ int) {
	if label == "" {
		label = target
	}
	h.buf.WriteString(`<a href="`)
	h.buf.Write(util.EscapeHTML(util.URLEscape([]byte(target), false)))
	h.buf.WriteString(`">`)
	h.escape(label)
	h.buf.WriteString("</a>")
}

func (h *HTML) Image(label, target string, _ int) {
	h.buf.WriteString(`<img title="`)
	h.escape(label)
	h.buf.WriteString(`" src="`)
	h.buf.Write(util.EscapeHTML(util.URLEscape([]byte(target), false)))
	h.buf.WriteString(`" />`)
}

func (h *HTML) BlockFormula(tex string, _ int) {
	h.buf.WriteString("<span>$$ ")
	h.escape(tex)
	h.buf.WriteString(" $$</span>")
}

func (h *HTML) InlineFormula(tex string, _ int) {
	h.buf.WriteString("<span>$ ")
	h.escape(tex)
	h.buf.WriteString(" $</span>")
}

func (h *HTML) Diagram(src string, _ int) {
	src = `\begin{tikzpicture}` + src + `\end{tikzpicture}`
	h.buf.WriteString(`<script type="text/tikz">`)
	h.buf.WriteString(strings.ReplaceAll(src, "</", `<\/`))
	h.buf.WriteString("</script>")
	if h.hl == nil {
		return
	}
	if err := h.hl.format(&h.buf, src); err != nil && h.err == nil {
		h.err = err
	}
}

func (h *HTML) Command(name, arg string) {
	h.buf.WriteByte('\\')
	h.escape(name)
	h.buf.WriteByte('{')
	h.escape(arg)
	h.buf.WriteByte('}')
}

func (h *HTML) Rule() { h.buf.WriteString("<hr />") }

func (h *HTML) Escape(ch rune) { h.escape(string(ch)) }

func (h *HTML) Text(s string) { h.escape(s) }

func (h *HTML) LineBreak() { h.buf.WriteByte('\n') }

func (h *HTML) Blank() {}

func (h *HTML) Done() {}

type highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
	f     *chtml.Formatter
}

func newHighlighter(style string) (*highlighter, error) {
	l := lexers.Get("tex")
	if l == nil {
		return nil, fmt.Errorf("render: no TeX lexer available")
	}
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	return &highlighter{
		lexer: chroma.Coalesce(l),
		style: s,
		f:     chtml.New(chtml.WithClasses(false), chtml.TabWidth(4)),
	}, nil
}

func (hl *highlighter) format(w io.Writer, src string) error {
	it, err := hl.lexer.Tokenise(nil, src)
	if err != nil {
		return fmt.Errorf("render: highlight diagram: %w", err)
	}
	if err = hl.f.Format(w, hl.style, it); err != nil {
		return fmt.Errorf("render: highlight diagram: %w", err)
	}
	return nil
}
