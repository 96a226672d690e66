package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/db47h/texdown/parser"
)

// Theme holds the colors used by a Terminal renderer.
//
type Theme struct {
	Heading lipgloss.Color
	Link    lipgloss.Color
	Math    lipgloss.Color
	Muted   lipgloss.Color
}

// DefaultTheme is the default terminal theme.
var DefaultTheme = Theme{
	Heading: lipgloss.Color("#83a598"),
	Link:    lipgloss.Color("#b8bb26"),
	Math:    lipgloss.Color("#d3869b"),
	Muted:   lipgloss.Color("#928374"),
}

// TerminalOption configures a Terminal renderer.
//
type TerminalOption func(*Terminal)

// WithWidth sets the wrapping width. Zero or less disables wrapping.
//
func WithWidth(w int) TerminalOption {
	return func(t *Terminal) { t.width = w }
}

// WithColorProfile forces the color profile instead of detecting it from the
// output.
//
func WithColorProfile(p termenv.Profile) TerminalOption {
	return func(t *Terminal) { t.r.SetColorProfile(p) }
}

// WithTheme sets the color theme.
//
func WithTheme(th Theme) TerminalOption {
	return func(t *Terminal) { t.theme = th }
}

// WithDiagramHighlight highlights diagram sources with the named chroma
// style.
//
func WithDiagramHighlight(style string) TerminalOption {
	return func(t *Terminal) {
		t.hlStyle = styles.Get(style)
		if t.hlStyle == nil {
			t.hlStyle = styles.Fallback
		}
	}
}

type fragment struct {
	s  string
	st lipgloss.Style
}

type word struct {
	frags []fragment
	width int
}

type listState struct {
	ordered bool
	n       int
	indent  int
}

// Terminal renders a document as styled, word wrapped text for display in a
// terminal. Output is written to the underlying writer on Done.
//
type Terminal struct {
	w       io.Writer
	r       *lipgloss.Renderer
	width   int
	theme   Theme
	hlStyle *chroma.Style

	bold, italic, underline int
	heading                 bool

	words  []word
	cur    word
	lists  []listState
	prefix string
	indent int

	out bytes.Buffer
	err error
}

var _ parser.Renderer = (*Terminal)(nil)

// NewTerminal returns a Terminal renderer writing to w.
//
func NewTerminal(w io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		w:     w,
		r:     lipgloss.NewRenderer(w),
		width: 80,
		theme: DefaultTheme,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Err returns the first error encountered while writing output.
//
func (t *Terminal) Err() error { return t.err }

func (t *Terminal) style() lipgloss.Style {
	st := t.r.NewStyle()
	if t.bold > 0 || t.heading {
		st = st.Bold(true)
	}
	if t.italic > 0 {
		st = st.Italic(true)
	}
	if t.underline > 0 {
		st = st.Underline(true)
	}
	if t.heading {
		st = st.Foreground(t.theme.Heading)
	}
	return st
}

func (t *Terminal) muted() lipgloss.Style { return t.r.NewStyle().Foreground(t.theme.Muted) }

// addText splits s into words at white space.
func (t *Terminal) addText(s string, st lipgloss.Style) {
	for len(s) > 0 {
		i := strings.IndexAny(s, " \t\n")
		if i < 0 {
			t.addFrag(s, st)
			return
		}
		if i > 0 {
			t.addFrag(s[:i], st)
		}
		t.endWord()
		s = s[i+1:]
	}
}

func (t *Terminal) addFrag(s string, st lipgloss.Style) {
	t.cur.frags = append(t.cur.frags, fragment{s, st})
	t.cur.width += runewidth.StringWidth(s)
}

func (t *Terminal) endWord() {
	if len(t.cur.frags) > 0 {
		t.words = append(t.words, t.cur)
		t.cur = word{}
	}
}

// flush writes pending words, wrapped at the configured width.
func (t *Terminal) flush() {
	t.endWord()
	if len(t.words) == 0 {
		return
	}
	pad := strings.Repeat(" ", t.indent)
	first := t.prefix
	if w := runewidth.StringWidth(first); w < t.indent {
		first += strings.Repeat(" ", t.indent-w)
	}
	avail := t.width - t.indent
	if t.width > 0 && avail < 10 {
		avail = 10
	}
	t.out.WriteString(first)
	n := 0
	for _, w := range t.words {
		if n > 0 {
			if t.width > 0 && n+1+w.width > avail {
				t.out.WriteByte('\n')
				t.out.WriteString(pad)
				n = 0
			} else {
				t.out.WriteByte(' ')
				n++
			}
		}
		for _, f := range w.frags {
			t.out.WriteString(f.st.Render(f.s))
		}
		n += w.width
	}
	t.out.WriteByte('\n')
	t.words = t.words[:0]
	t.prefix = ""
}

// block flushes pending text and separates the next block from previous
// output with an empty line.
func (t *Terminal) block() {
	t.flush()
	if b := t.out.Bytes(); len(b) > 0 && !bytes.HasSuffix(b, []byte("\n\n")) {
		t.out.WriteByte('\n')
	}
}

func (t *Terminal) line(s string, st lipgloss.Style) {
	for _, l := range strings.Split(s, "\n") {
		t.out.WriteString(strings.Repeat(" ", t.indent))
		t.out.WriteString(st.Render(l))
		t.out.WriteByte('\n')
	}
}

func (t *Terminal) StartElement(e *parser.Element, _ int) {
	switch e.Type {
	case parser.P:
		t.block()
	case parser.H1, parser.H2, parser.H3, parser.H4, parser.H5, parser.H6:
		t.block()
		t.heading = true
	case parser.B:
		t.bold++
	case parser.I:
		t.italic++
	case parser.U:
		t.underline++
	case parser.UL, parser.OL:
		if len(t.lists) == 0 {
			t.block()
		} else {
			t.flush()
		}
		t.lists = append(t.lists, listState{ordered: e.Type == parser.OL, indent: t.indent})
	case parser.LI:
		t.flush()
		l := &t.lists[len(t.lists)-1]
		l.n++
		marker := "- "
		if l.ordered {
			marker = fmt.Sprintf("%d. ", l.n)
		}
		lead := 0
		if len(t.lists) > 1 {
			lead = t.lists[len(t.lists)-2].indent
			if lead == 0 {
				lead = 2
			}
		}
		t.prefix = strings.Repeat(" ", lead) + marker
		t.indent = runewidth.StringWidth(t.prefix)
		l.indent = t.indent
	}
}

func (t *Terminal) EndElement(e *parser.Element) {
	switch e.Type {
	case parser.P, parser.LI:
		t.flush()
	case parser.H1, parser.H2, parser.H3, parser.H4, parser.H5, parser.H6:
		t.flush()
		t.heading = false
	case parser.B:
		t.bold--
	case parser.I:
		t.italic--
	case parser.U:
		t.underline--
	case parser.UL, parser.OL:
		t.flush()
		t.lists = t.lists[:len(t.lists)-1]
		t.indent = 0
		if n := len(t.lists); n > 0 {
			t.indent = t.lists[n-1].indent
		}
	}
}

func (t *Terminal) StartEnv(name string) {
	t.block()
	t.line("┌ "+name, t.muted())
}

func (t *Terminal) EndEnv(name string) {
	t.flush()
	t.line("└ "+name, t.muted())
}

func (t *Terminal) Link(label, target string, _ int) {
	if label != "" {
		t.addText(label, t.style().Foreground(t.theme.Link).Underline(true))
		t.endWord()
	}
	t.addFrag("<"+target+">", t.muted())
}

func (t *Terminal) Image(label, target string, _ int) {
	if label == "" {
		label = target
	}
	t.addText("[image: "+label+"]", t.muted())
}

func (t *Terminal) BlockFormula(tex string, _ int) {
	t.block()
	t.line("$$"+tex+"$$", t.r.NewStyle().Foreground(t.theme.Math))
}

func (t *Terminal) InlineFormula(tex string, _ int) {
	t.addText("$"+tex+"$", t.r.NewStyle().Foreground(t.theme.Math))
}

func (t *Terminal) Diagram(src string, _ int) {
	t.block()
	src = strings.Trim(src, "\n")
	if t.hlStyle != nil && t.highlight(src) {
		return
	}
	t.line(src, t.muted())
}

func (t *Terminal) highlight(src string) bool {
	l := lexers.Get("tex")
	if l == nil {
		return false
	}
	it, err := chroma.Coalesce(l).Tokenise(nil, src)
	if err != nil {
		return false
	}
	var buf bytes.Buffer
	if err := formatters.TTY256.Format(&buf, t.hlStyle, it); err != nil {
		return false
	}
	t.out.Write(buf.Bytes())
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.out.WriteByte('\n')
	}
	return true
}

func (t *Terminal) Command(name, arg string) {
	t.block()
	t.line(`\`+name+"{"+arg+"}", t.muted())
}

func (t *Terminal) Rule() {
	t.block()
	w := t.width
	if w <= 0 {
		w = 40
	}
	t.line(strings.Repeat("─", w), t.muted())
}

func (t *Terminal) Escape(ch rune) { t.addFrag(string(ch), t.style()) }

func (t *Terminal) Text(s string) { t.addText(s, t.style()) }

// LineBreak is a soft break; text is reflowed.
func (t *Terminal) LineBreak() { t.endWord() }

func (t *Terminal) Blank() {}

func (t *Terminal) Done() {
	t.flush()
	if _, err := t.out.WriteTo(t.w); err != nil && t.err == nil {
		t.err = err
	}
	t.out.Reset()
	t.bold, t.italic, t.underline = 0, 0, 0
	t.heading = false
	t.lists = t.lists[:0]
	t.prefix, t.indent = "", 0
}
