package render

import (
	"fmt"
	"strings"

	"github.com/db47h/texdown/parser"
)

// Op identifies a renderer event.
//
type Op int

// Event operations, one per parser.Renderer method.
//
const (
	OpStartElement Op = iota
	OpEndElement
	OpStartEnv
	OpEndEnv
	OpLink
	OpImage
	OpBlockFormula
	OpInlineFormula
	OpDiagram
	OpCommand
	OpRule
	OpEscape
	OpText
	OpLineBreak
	OpBlank
	OpDone
	numOps
)

var opNames = [...]string{
	OpStartElement:  "start",
	OpEndElement:    "end",
	OpStartEnv:      "startEnv",
	OpEndEnv:        "endEnv",
	OpLink:          "link",
	OpImage:         "image",
	OpBlockFormula:  "mathblock",
	OpInlineFormula: "math",
	OpDiagram:       "diagram",
	OpCommand:       "command",
	OpRule:          "hr",
	OpEscape:        "escape",
	OpText:          "text",
	OpLineBreak:     "br",
	OpBlank:         "blank",
	OpDone:          "done",
}

var _ [numOps]string = opNames

func (o Op) String() string {
	if o < 0 || o >= numOps {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Event is a recorded renderer call. Only the fields relevant to Op are set:
// Element for element events, Name for environments, commands and link
// labels, Text for leaf content, command arguments and link targets, and Rune
// for escapes. ID is set for events that carry a token id.
//
type Event struct {
	Op      Op
	Element parser.Element
	Name    string
	Text    string
	Rune    rune
	ID      int
}

// String returns a compact single-line form of e.
//
func (e Event) String() string {
	switch e.Op {
	case OpStartElement:
		return fmt.Sprintf("%s %s #%d", e.Op, &e.Element, e.ID)
	case OpEndElement:
		return fmt.Sprintf("%s %s", e.Op, &e.Element)
	case OpStartEnv, OpEndEnv:
		return fmt.Sprintf("%s %s", e.Op, e.Name)
	case OpLink, OpImage:
		return fmt.Sprintf("%s %q %q #%d", e.Op, e.Name, e.Text, e.ID)
	case OpBlockFormula, OpInlineFormula, OpDiagram:
		return fmt.Sprintf("%s %q #%d", e.Op, e.Text, e.ID)
	case OpCommand:
		return fmt.Sprintf("%s %s %q", e.Op, e.Name, e.Text)
	case OpEscape:
		return fmt.Sprintf("%s %q", e.Op, e.Rune)
	case OpText:
		return fmt.Sprintf("%s %q", e.Op, e.Text)
	default:
		return e.Op.String()
	}
}

// Recorder is a parser.Renderer that records events in order.
//
type Recorder struct {
	Events []Event
}

var _ parser.Renderer = (*Recorder)(nil)

func (r *Recorder) add(e Event) { r.Events = append(r.Events, e) }

// Strings returns the String form of every recorded event.
//
func (r *Recorder) Strings() []string {
	s := make([]string, len(r.Events))
	for i := range r.Events {
		s[i] = r.Events[i].String()
	}
	return s
}

// String returns all events, one per line.
//
func (r *Recorder) String() string {
	return strings.Join(r.Strings(), "\n")
}

// Reset discards recorded events.
//
func (r *Recorder) Reset() { r.Events = r.Events[:0] }

func (r *Recorder) StartElement(e *parser.Element, id int) {
	r.add(Event{Op: OpStartElement, Element: *e, ID: id})
}

func (r *Recorder) EndElement(e *parser.Element) {
	r.add(Event{Op: OpEndElement, Element: *e})
}

func (r *Recorder) StartEnv(name string) { r.add(Event{Op: OpStartEnv, Name: name}) }
func (r *Recorder) EndEnv(name string)   { r.add(Event{Op: OpEndEnv, Name: name}) }

func (r *Recorder) Link(label, target string, id int) {
	r.add(Event{Op: OpLink, Name: label, Text: target, ID: id})
}

func (r *Recorder) Image(label, target string, id int) {
	r.add(Event{Op: OpImage, Name: label, Text: target, ID: id})
}

func (r *Recorder) BlockFormula(tex string, id int) {
	r.add(Event{Op: OpBlockFormula, Text: tex, ID: id})
}

func (r *Recorder) InlineFormula(tex string, id int) {
	r.add(Event{Op: OpInlineFormula, Text: tex, ID: id})
}

func (r *Recorder) Diagram(src string, id int) {
	r.add(Event{Op: OpDiagram, Text: src, ID: id})
}

func (r *Recorder) Command(name, arg string) {
	r.add(Event{Op: OpCommand, Name: name, Text: arg})
}

func (r *Recorder) Rule()          { r.add(Event{Op: OpRule}) }
func (r *Recorder) Escape(ch rune) { r.add(Event{Op: OpEscape, Rune: ch}) }
func (r *Recorder) Text(s string)  { r.add(Event{Op: OpText, Text: s}) }
func (r *Recorder) LineBreak()     { r.add(Event{Op: OpLineBreak}) }
func (r *Recorder) Blank()         { r.add(Event{Op: OpBlank}) }
func (r *Recorder) Done()          { r.add(Event{Op: OpDone}) }

// Replay sends the recorded events to rs, in order.
//
func (r *Recorder) Replay(rs ...parser.Renderer) {
	for i := range r.Events {
		e := &r.Events[i]
		for _, x := range rs {
			replay(x, e)
		}
	}
}

func replay(x parser.Renderer, e *Event) {
	switch e.Op {
	case OpStartElement:
		x.StartElement(&e.Element, e.ID)
	case OpEndElement:
		x.EndElement(&e.Element)
	case OpStartEnv:
		x.StartEnv(e.Name)
	case OpEndEnv:
		x.EndEnv(e.Name)
	case OpLink:
		x.Link(e.Name, e.Text, e.ID)
	case OpImage:
		x.Image(e.Name, e.Text, e.ID)
	case OpBlockFormula:
		x.BlockFormula(e.Text, e.ID)
	case OpInlineFormula:
		x.InlineFormula(e.Text, e.ID)
	case OpDiagram:
		x.Diagram(e.Text, e.ID)
	case OpCommand:
		x.Command(e.Name, e.Text)
	case OpRule:
		x.Rule()
	case OpEscape:
		x.Escape(e.Rune)
	case OpText:
		x.Text(e.Text)
	case OpLineBreak:
		x.LineBreak()
	case OpBlank:
		x.Blank()
	case OpDone:
		x.Done()
	default:
		panic("render: invalid op " + e.Op.String())
	}
}
