// Copyright 2017-2020 Denis Bernard <db047h@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package rules

import "strconv"

// Common token definitions for use in custom rule tables.
//
// Rules returned by the functions in this file carry a Value transform that
// converts the matched literal the way Go would: quoted strings and characters
// are unquoted and numbers are normalized to base 10.

const (
	quotedString = `"(?:\\.|[^"\\\n])*"`
	quotedChar   = `'(?:\\.|[^'\\\n])+'`
	hexInt       = `0[xX][0-9a-fA-F]+(?![0-9a-zA-Z_.])`
	binInt       = `0[bB][01]+(?![0-9a-zA-Z_.])`
	float        = `(?:[0-9]+\.[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+`
	decInt       = `[0-9]+`
)

// QuotedString returns a rule matching a double-quoted Go string literal on a
// single line. Its value is the unquoted string. Literals with invalid escape
// sequences keep their raw text as value.
//
func QuotedString(name string) Rule {
	return Rule{Name: name, Match: []Alt{Pat(quotedString)}, Value: unquote}
}

// QuotedChar returns a rule matching a Go character literal. Its value is the
// character.
//
func QuotedChar(name string) Rule {
	return Rule{Name: name, Match: []Alt{Pat(quotedChar)}, Value: unquote}
}

// Number returns rules for integer and floating point literals. For integers,
// the number base is determined by the prefix: "0x" or "0X" selects base 16,
// "0b" or "0B" base 2 and "0" base 8. Floats are always in base 10. Values are
// in base 10; literals that overflow keep their raw text as value.
//
// The rules must be kept in order: floats are tried before plain integers.
//
func Number(intName, floatName string) []Rule {
	return []Rule{
		{Name: intName, Match: []Alt{Pat(hexInt), Pat(binInt)}, Value: intValue},
		{Name: floatName, Match: []Alt{Pat(float)}, Value: floatValue},
		{Name: intName, Match: []Alt{Pat(decInt)}, Value: intValue},
	}
}

func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return s
}

func intValue(s string) string {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return s
	}
	return strconv.FormatUint(v, 10)
}

func floatValue(s string) string {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
