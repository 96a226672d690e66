// Package render provides implementations of parser.Renderer.
//
package render

import "github.com/db47h/texdown/parser"

// Nop is a parser.Renderer that ignores all events. Embed it to implement
// only a subset of the interface.
//
type Nop struct{}

var _ parser.Renderer = Nop{}

func (Nop) StartElement(*parser.Element, int) {}
func (Nop) EndElement(*parser.Element)        {}
func (Nop) StartEnv(string)                   {}
func (Nop) EndEnv(string)                     {}
func (Nop) Link(string, string, int)          {}
func (Nop) Image(string, string, int)         {}
func (Nop) BlockFormula(string, int)          {}
func (Nop) InlineFormula(string, int)         {}
func (Nop) Diagram(string, int)               {}
func (Nop) Command(string, string)            {}
func (Nop) Rule()                             {}
func (Nop) Escape(rune)                       {}
func (Nop) Text(string)                       {}
func (Nop) LineBreak()                        {}
func (Nop) Blank()                            {}
func (Nop) Done()                             {}
