package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/db47h/texdown/parser"
)

// Node is a node of a document tree built by Tree. Elements and environments
// are inner nodes; every other event becomes a leaf. The root node has Op
// OpDone.
//
type Node struct {
	Event
	Children []*Node
}

func (n *Node) label() string {
	switch n.Op {
	case OpStartElement:
		return n.Element.String()
	case OpStartEnv:
		return "env " + n.Name
	case OpDone:
		return "document"
	default:
		return n.Event.String()
	}
}

// String returns an indented dump of the subtree rooted at n, one node per
// line.
//
func (n *Node) String() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	fmt.Fprintf(sb, "%s%s\n", strings.Repeat("  ", depth), n.label())
	for _, c := range n.Children {
		c.dump(sb, depth+1)
	}
}

// Tree is a parser.Renderer that builds a document tree. Element ids are
// recorded in the ID field of element nodes. An environment still open when
// an enclosing one ends continues in a new node. The zero value is ready to
// use.
//
type Tree struct {
	Root  *Node
	stack []*Node
	done  bool
}

var _ parser.Renderer = (*Tree)(nil)

// NewTree returns a new, empty Tree.
//
func NewTree() *Tree {
	t := new(Tree)
	t.reset()
	return t
}

func (t *Tree) reset() {
	t.Root = &Node{Event: Event{Op: OpDone}}
	t.stack = append(t.stack[:0], t.Root)
	t.done = false
}

func (t *Tree) top() *Node { return t.stack[len(t.stack)-1] }

func (t *Tree) leaf(e Event) {
	if t.done || t.Root == nil {
		t.reset()
	}
	n := t.top()
	n.Children = append(n.Children, &Node{Event: e})
}

func (t *Tree) open(e Event) {
	t.leaf(e)
	n := t.top()
	t.stack = append(t.stack, n.Children[len(n.Children)-1])
}

func (t *Tree) close() {
	if len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// closeEnv closes the innermost open environment called name. Nodes opened
// after it stay open and continue in new nodes under its parent.
func (t *Tree) closeEnv(name string) {
	i := len(t.stack) - 1
	for i > 0 && (t.stack[i].Op != OpStartEnv || t.stack[i].Name != name) {
		i--
	}
	if i == 0 {
		return
	}
	above := slices.Clone(t.stack[i+1:])
	t.stack = t.stack[:i]
	for _, n := range above {
		t.open(n.Event)
	}
}

func (t *Tree) StartElement(e *parser.Element, id int) {
	t.open(Event{Op: OpStartElement, Element: *e, ID: id})
}

func (t *Tree) EndElement(*parser.Element) { t.close() }
func (t *Tree) StartEnv(name string)       { t.open(Event{Op: OpStartEnv, Name: name}) }
func (t *Tree) EndEnv(name string)         { t.closeEnv(name) }

func (t *Tree) Link(label, target string, id int) {
	t.leaf(Event{Op: OpLink, Name: label, Text: target, ID: id})
}

func (t *Tree) Image(label, target string, id int) {
	t.leaf(Event{Op: OpImage, Name: label, Text: target, ID: id})
}

func (t *Tree) BlockFormula(tex string, id int) {
	t.leaf(Event{Op: OpBlockFormula, Text: tex, ID: id})
}

func (t *Tree) InlineFormula(tex string, id int) {
	t.leaf(Event{Op: OpInlineFormula, Text: tex, ID: id})
}

func (t *Tree) Diagram(src string, id int) { t.leaf(Event{Op: OpDiagram, Text: src, ID: id}) }
func (t *Tree) Command(name, arg string)  { t.leaf(Event{Op: OpCommand, Name: name, Text: arg}) }
func (t *Tree) Rule()                     { t.leaf(Event{Op: OpRule}) }
func (t *Tree) Escape(ch rune)            { t.leaf(Event{Op: OpEscape, Rune: ch}) }
func (t *Tree) Text(s string)             { t.leaf(Event{Op: OpText, Text: s}) }
func (t *Tree) LineBreak()                { t.leaf(Event{Op: OpLineBreak}) }

// Blank is not part of the tree; paragraphs already end at blank lines.
func (t *Tree) Blank() {}

// Done marks the tree complete. The next event starts a new tree.
//
func (t *Tree) Done() {
	if t.Root == nil {
		t.reset()
	}
	t.stack = t.stack[:1]
	t.done = true
}
