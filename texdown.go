package texdown

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/db47h/texdown/grammar"
	"github.com/db47h/texdown/parser"
	"github.com/db47h/texdown/render"
	"github.com/db47h/texdown/scanner"
	"github.com/db47h/texdown/token"
)

// MaxSourceSize is the largest document accepted by ReadSource.
const MaxSourceSize = 8 << 20

// ErrTooLarge is returned by ReadSource for documents over MaxSourceSize.
var ErrTooLarge = errors.New("document too large")

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize converts CRLF and CR line endings to LF. Documents must be
// normalized before scanning: the grammar only recognizes LF line breaks.
//
func Normalize(src string) string {
	if strings.IndexByte(src, '\r') < 0 {
		return src
	}
	return lineEndings.Replace(src)
}

// ReadSource reads a document from r and normalizes it.
//
func ReadSource(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxSourceSize+1))
	if err != nil {
		return "", err
	}
	if len(b) > MaxSourceSize {
		return "", fmt.Errorf("%w: over %d bytes", ErrTooLarge, MaxSourceSize)
	}
	return Normalize(string(b)), nil
}

// Render normalizes src, parses it with the texdown grammar and sends the
// resulting events to rs.
//
func Render(src string, rs ...parser.Renderer) error {
	return parser.New().Run(Normalize(src), rs...)
}

// HTML renders src as an HTML fragment.
//
func HTML(src string) (string, error) {
	h, err := render.NewHTML()
	if err != nil {
		return "", err
	}
	if err = Render(src, h); err != nil {
		return "", err
	}
	return h.String(), nil
}

// Parse returns the document tree for src.
//
func Parse(src string) (*render.Node, error) {
	var t render.Tree
	if err := Render(src, &t); err != nil {
		return nil, err
	}
	return t.Root, nil
}

// Tokens returns an iterator over the tokens of src in the texdown grammar.
//
func Tokens(src string) iter.Seq2[*token.Token, error] {
	s := scanner.New(grammar.Table())
	s.Reset(Normalize(src))
	return s.Tokens()
}
