package parser

import "fmt"

// ElementType is the type of a structural element.
//
type ElementType int

// Element types.
//
const (
	P ElementType = iota
	H1
	H2
	H3
	H4
	H5
	H6
	B
	I
	U
	UL
	OL
	LI
	numElementTypes
)

var elementNames = [...]string{
	P:  "p",
	H1: "h1",
	H2: "h2",
	H3: "h3",
	H4: "h4",
	H5: "h5",
	H6: "h6",
	B:  "b",
	I:  "i",
	U:  "u",
	UL: "ul",
	OL: "ol",
	LI: "li",
}

var _ [numElementTypes]string = elementNames

// String returns the element's tag name.
//
func (t ElementType) String() string {
	if t < 0 || t >= numElementTypes {
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
	return elementNames[t]
}

// Heading returns the heading element type for the given level in [1, 6].
//
func Heading(level int) ElementType {
	if level < 1 || level > 6 {
		panic(fmt.Sprintf("parser: invalid heading level %d", level))
	}
	return H1 + ElementType(level-1)
}

// IsList reports whether t is an ordered or unordered list.
//
func (t ElementType) IsList() bool { return t == UL || t == OL }

// multiline reports whether an element of type t survives an end of line.
func (t ElementType) multiline() bool { return t == P || t == LI }

// An Element is a structural node on the parser's stack. Token is the source
// text that opened it, empty for implicit paragraphs and lists. Depth is the
// indentation of lists and list items.
//
type Element struct {
	Type  ElementType
	Token string
	Depth int
}

func (e *Element) String() string {
	if e.Type.IsList() || e.Type == LI {
		return fmt.Sprintf("%s(%d)", e.Type, e.Depth)
	}
	return e.Type.String()
}

// Renderer receives structural events from a Parser. Events are delivered
// synchronously in source order. A Renderer must not retain the *Element
// passed to StartElement beyond the matching EndElement call.
//
// The id passed to StartElement and leaf events is the index of the token
// that triggered the event, starting at 1. It lets renderers correlate output
// with source positions.
//
type Renderer interface {
	StartElement(e *Element, id int)
	EndElement(e *Element)
	StartEnv(name string)
	EndEnv(name string)
	Link(label, target string, id int)
	Image(label, target string, id int)
	BlockFormula(tex string, id int)
	InlineFormula(tex string, id int)
	Diagram(src string, id int)
	Command(name, arg string)
	Rule()
	Escape(ch rune)
	Text(s string)
	LineBreak()
	Blank()
	Done()
}
