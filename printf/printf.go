// Package printf implements a POSIX-subset printf command: a format
// string is parsed once into a linear sequence of literal and directive
// pieces, then applied against an argv of UTF-8 strings, optionally
// repeating the whole format across rounds of arguments.
package printf

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags what a directive consumes and how it is rendered.
type Kind int

const (
	KindLiteral Kind = iota
	KindChar
	KindString
	KindInt
	KindUint
	KindFloat
)

// Piece is one element of a parsed format string: either literal text
// (Kind == KindLiteral, already escape-decoded) or a directive.
type Piece struct {
	Kind Kind
	Text string // literal text, for KindLiteral

	Flags     string // raw flag runes, e.g. "-0"
	Width     string // pass-through byte range, e.g. "10" or "*"
	Precision string // pass-through byte range, after the '.'
	Pos       int    // 1-based positional override (%M$...), 0 if none
	Verb      byte   // the conversion letter itself (c, s, d, i, u, o, x, X, e, E, f, F, g, G, a, A)
}

// Parse turns format into a literal/directive sequence. Positional and
// non-positional directives must not be mixed.
func Parse(format string) ([]Piece, error) {
	var pieces []Piece
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			pieces = append(pieces, Piece{Kind: KindLiteral, Text: lit.String()})
			lit.Reset()
		}
	}

	usedPositional, usedNonPositional := false, false
	r := []rune(format)
	for i := 0; i < len(r); {
		if r[i] != '%' {
			c, n := decodeEscape(r[i:])
			lit.WriteString(c)
			i += n
			continue
		}
		i++
		if i >= len(r) {
			return nil, fmt.Errorf("printf: trailing '%%' in format string")
		}
		if r[i] == '%' {
			lit.WriteByte('%')
			i++
			continue
		}
		flushLit()

		start := i
		for i < len(r) && r[i] >= '0' && r[i] <= '9' {
			i++
		}
		pos := 0
		if i > start && i < len(r) && r[i] == '$' {
			var err error
			pos, err = strconv.Atoi(string(r[start:i]))
			if err != nil {
				return nil, fmt.Errorf("printf: bad positional argument")
			}
			usedPositional = true
			i++
		} else {
			i = start
			usedNonPositional = true
		}

		flagStart := i
		for i < len(r) && isFlag(r[i]) {
			i++
		}
		flags := string(r[flagStart:i])

		widthStart := i
		if i < len(r) && r[i] == '*' {
			i++
		} else {
			for i < len(r) && r[i] >= '0' && r[i] <= '9' {
				i++
			}
		}
		width := string(r[widthStart:i])

		precision := ""
		if i < len(r) && r[i] == '.' {
			i++
			precStart := i
			if i < len(r) && r[i] == '*' {
				i++
			} else {
				for i < len(r) && r[i] >= '0' && r[i] <= '9' {
					i++
				}
			}
			precision = string(r[precStart:i])
		}

		if i >= len(r) {
			return nil, fmt.Errorf("printf: unterminated directive")
		}
		verb := byte(r[i])
		i++

		kind, err := kindOf(verb)
		if err != nil {
			return nil, err
		}
		if err := checkFlagRestrictions(verb, flags); err != nil {
			return nil, err
		}

		pieces = append(pieces, Piece{
			Kind: kind, Flags: flags, Width: width, Precision: precision, Pos: pos, Verb: verb,
		})
	}
	flushLit()

	if usedPositional && usedNonPositional {
		return nil, fmt.Errorf("printf: format string mixes positional and non-positional directives")
	}
	return pieces, nil
}

func isFlag(r rune) bool {
	switch r {
	case ' ', '+', '-', '#', '0':
		return true
	}
	return false
}

func kindOf(verb byte) (Kind, error) {
	switch verb {
	case 'c':
		return KindChar, nil
	case 's':
		return KindString, nil
	case 'i', 'd':
		return KindInt, nil
	case 'u', 'o', 'x', 'X':
		return KindUint, nil
	case 'e', 'E', 'f', 'F', 'g', 'G', 'a', 'A':
		return KindFloat, nil
	default:
		return 0, fmt.Errorf("printf: unknown directive '%%%c'", verb)
	}
}

// checkFlagRestrictions enforces per-verb flag restrictions: '#' is
// invalid for c/s/i/d/u, '0' is invalid for c/s.
func checkFlagRestrictions(verb byte, flags string) error {
	for _, f := range flags {
		switch f {
		case '#':
			switch verb {
			case 'c', 's', 'i', 'd', 'u':
				return fmt.Errorf("printf: '#' flag invalid with '%%%c'", verb)
			}
		case '0':
			switch verb {
			case 'c', 's':
				return fmt.Errorf("printf: '0' flag invalid with '%%%c'", verb)
			}
		}
	}
	return nil
}

// decodeEscape decodes a single backslash escape at the start of r (or a
// single literal rune if none applies), returning the decoded text and
// the number of input runes consumed.
func decodeEscape(r []rune) (string, int) {
	if r[0] != '\\' || len(r) < 2 {
		return string(r[0]), 1
	}
	switch r[1] {
	case 'n':
		return "\n", 2
	case 't':
		return "\t", 2
	case 'r':
		return "\r", 2
	case '\\':
		return "\\", 2
	case 'a':
		return "\a", 2
	case 'b':
		return "\b", 2
	case 'f':
		return "\f", 2
	case 'v':
		return "\v", 2
	case '"':
		return "\"", 2
	default:
		return string(r[0]), 1
	}
}
