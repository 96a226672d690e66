package rules

import (
	"errors"
	"fmt"

	"github.com/db47h/texdown/internal/yamlutil"
)

// ErrRuleFile is returned by LoadYAML for malformed rule files.
var ErrRuleFile = errors.New("invalid rule file")

// LoadYAML compiles a YAML rule file. The document holds either a rules
// mapping, compiled with Compile, or a states mapping of state names to rule
// mappings, compiled with CompileStates:
//
//	start: main        # optional
//	states:
//	  main:
//	    word: {re: '[a-z]+'}
//	    open: {match: '(', push: paren}
//	  paren:
//	    close: {match: ')', pop: 1}
//
// In a rule mapping, a bare string is a literal, a mapping with the single key
// "re" is a regular expression, and any other mapping carries rule options:
// match, lineBreaks, pop, push, next, error, fallback, shouldThrow and
// keywords. A list mixes any of these, as with Map.
//
func LoadYAML(data []byte) (*Table, error) {
	var doc yamlutil.MapSlice
	if err := yamlutil.UnmarshalOrdered(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuleFile, err)
	}
	var (
		start  string
		flat   Map
		states []StateRules
		err    error
	)
	for _, it := range doc {
		switch it.Key {
		case "start":
			if start, err = str(it.Value, "start"); err != nil {
				return nil, err
			}
		case "rules":
			if flat, err = toMap(it.Value); err != nil {
				return nil, err
			}
		case "states":
			ms, ok := it.Value.(yamlutil.MapSlice)
			if !ok {
				return nil, fmt.Errorf("%w: states must be a mapping", ErrRuleFile)
			}
			for _, s := range ms {
				name, err := str(s.Key, "state name")
				if err != nil {
					return nil, err
				}
				m, err := toMap(s.Value)
				if err != nil {
					return nil, fmt.Errorf("%w (in state %q)", err, name)
				}
				states = append(states, StateRules{Name: name, Rules: m.Rules()})
			}
		default:
			return nil, fmt.Errorf("%w: unknown key %v", ErrRuleFile, it.Key)
		}
	}
	switch {
	case flat != nil && states != nil:
		return nil, fmt.Errorf("%w: rules and states are mutually exclusive", ErrRuleFile)
	case states != nil:
		return CompileStates(states, start)
	case flat != nil:
		if start != "" {
			return nil, fmt.Errorf("%w: start requires states", ErrRuleFile)
		}
		return Compile(flat.Rules())
	}
	return nil, fmt.Errorf("%w: no rules", ErrRuleFile)
}

func toMap(v any) (Map, error) {
	ms, ok := v.(yamlutil.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: rules must be a mapping", ErrRuleFile)
	}
	m := make(Map, 0, len(ms))
	for _, it := range ms {
		name, err := str(it.Key, "token type")
		if err != nil {
			return nil, err
		}
		var defs []Def
		items, ok := it.Value.([]any)
		if !ok {
			items = []any{it.Value}
		}
		for _, item := range items {
			d, err := toDef(item)
			if err != nil {
				return nil, fmt.Errorf("%w (for token %q)", err, name)
			}
			defs = append(defs, d)
		}
		m = append(m, MapEntry{Name: name, Defs: defs})
	}
	return m, nil
}

func toAlt(v any) (Alt, bool) {
	switch v := v.(type) {
	case string:
		return Lit(v), true
	case yamlutil.MapSlice:
		if len(v) == 1 && v[0].Key == "re" {
			if s, ok := v[0].Value.(string); ok {
				return Pat(s), true
			}
		}
	}
	return Alt{}, false
}

func toDef(v any) (Def, error) {
	if a, ok := toAlt(v); ok {
		return a, nil
	}
	ms, ok := v.(yamlutil.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: not a pattern: %v", ErrRuleFile, v)
	}
	var (
		r   Rule
		err error
	)
	for _, it := range ms {
		switch it.Key {
		case "match":
			items, ok := it.Value.([]any)
			if !ok {
				items = []any{it.Value}
			}
			for _, item := range items {
				a, ok := toAlt(item)
				if !ok {
					return nil, fmt.Errorf("%w: not a pattern: %v", ErrRuleFile, item)
				}
				r.Match = append(r.Match, a)
			}
		case "lineBreaks":
			r.LineBreaks, err = boolean(it.Value, "lineBreaks")
		case "error":
			r.Error, err = boolean(it.Value, "error")
		case "fallback":
			r.Fallback, err = boolean(it.Value, "fallback")
		case "shouldThrow":
			r.ShouldThrow, err = boolean(it.Value, "shouldThrow")
		case "push":
			r.Push, err = str(it.Value, "push")
		case "next":
			r.Next, err = str(it.Value, "next")
		case "pop":
			r.Pop, err = integer(it.Value, "pop")
		case "keywords":
			r.Keywords, err = keywords(it.Value)
		default:
			err = fmt.Errorf("%w: unknown option %v", ErrRuleFile, it.Key)
		}
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func keywords(v any) (map[string][]string, error) {
	ms, ok := v.(yamlutil.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: keywords must be a mapping", ErrRuleFile)
	}
	kw := make(map[string][]string, len(ms))
	for _, it := range ms {
		typ, err := str(it.Key, "keyword type")
		if err != nil {
			return nil, err
		}
		items, ok := it.Value.([]any)
		if !ok {
			items = []any{it.Value}
		}
		for _, item := range items {
			w, err := str(item, "keyword")
			if err != nil {
				return nil, err
			}
			kw[typ] = append(kw[typ], w)
		}
	}
	return kw, nil
}

func str(v any, what string) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %s must be a string, got %v", ErrRuleFile, what, v)
}

func boolean(v any, what string) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("%w: %s must be a boolean, got %v", ErrRuleFile, what, v)
}

func integer(v any, what string) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrRuleFile, what, v)
}
