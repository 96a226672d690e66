package rules

import "fmt"

// keywordTable is a static lookup from matched text to token type, keyed by
// text length first so that most lookups end with a single integer compare.
//
type keywordTable map[int]map[string]string

func newKeywordTable(kw map[string][]string) (keywordTable, error) {
	if len(kw) == 0 {
		return nil, nil
	}
	t := make(keywordTable)
	for typ, words := range kw {
		for _, w := range words {
			if w == "" {
				return nil, fmt.Errorf("%w: empty keyword (in keyword %q)", ErrKeyword, typ)
			}
			m := t[len(w)]
			if m == nil {
				m = make(map[string]string)
				t[len(w)] = m
			}
			if prev, ok := m[w]; ok && prev != typ {
				return nil, fmt.Errorf("%w: %q listed for both %q and %q", ErrKeyword, w, prev, typ)
			}
			m[w] = typ
		}
	}
	return t, nil
}

func (t keywordTable) lookup(text string) (string, bool) {
	typ, ok := t[len(text)][text]
	return typ, ok
}
