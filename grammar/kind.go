// Package grammar defines the lexical grammar of texdown documents.
//
// The grammar is available as a rule list (Rules), as a mapping (Map) and as
// a YAML rule file (YAML); all three compile to tables producing identical
// token streams. Table returns the shared compiled table.
//
package grammar

// Kind identifies a texdown token type.
//
type Kind int

// Token kinds, in match priority order.
//
const (
	H6 Kind = iota
	H5
	H4
	H3
	H2
	H1
	Escape        // doubled delimiter: // or __
	Bold          // ** or *
	Italic        // /
	Underline     // _
	UList         // unordered list item marker
	OList         // ordered list item marker
	Link          // [label](target)
	Image         // ![label](target)
	BlockFormula  // $$ ... $$ on their own lines
	InlineFormula // $...$
	Diagram       // \begin{tikzpicture} ... \end{tikzpicture}
	Command       // \name{arg} on its own line
	Env           // \name on its own line
	Rule          // -- on its own line
	Text
	Blank // empty line
	EOL
	numKinds
)

// NumKinds is the number of token kinds.
const NumKinds = int(numKinds)

var kindNames = [...]string{
	H6:            "h6",
	H5:            "h5",
	H4:            "h4",
	H3:            "h3",
	H2:            "h2",
	H1:            "h1",
	Escape:        "escape",
	Bold:          "bold",
	Italic:        "italic",
	Underline:     "underline",
	UList:         "ulist",
	OList:         "olist",
	Link:          "link",
	Image:         "image",
	BlockFormula:  "mathblock",
	InlineFormula: "math",
	Diagram:       "diagram",
	Command:       "command",
	Env:           "env",
	Rule:          "hr",
	Text:          "text",
	Blank:         "blank",
	EOL:           "eol",
}

// adding a Kind without a name fails to compile.
var _ [numKinds]string = kindNames

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = Kind(k)
	}
	return m
}()

// String returns the token type name of k.
//
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "Kind(?)"
	}
	return kindNames[k]
}

// KindOf returns the kind for the given token type name.
//
func KindOf(tokenType string) (Kind, bool) {
	k, ok := kindByName[tokenType]
	return k, ok
}

// Kinds returns all kinds in priority order.
//
func Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// Level returns the heading level of k, or 0 if k is not a heading.
//
func (k Kind) Level() int {
	if k >= H6 && k <= H1 {
		return 6 - int(k-H6)
	}
	return 0
}
