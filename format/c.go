package format

import "fmt"

// cDialect implements the standard C printf family: %[pos$][flags][width][.precision][size]spec.
type cDialect struct{}

func (cDialect) Name() string { return "c" }

func (cDialect) Parse(s string) (*ArgVec, error) {
	r := []rune(s)
	vec := newArgVec()
	auto := 0
	usedPositional, usedNonPositional := false, false

	for i := 0; i < len(r); {
		if r[i] != '%' {
			i++
			continue
		}
		i++
		if i >= len(r) {
			return nil, fmt.Errorf("trailing '%%' in format string")
		}
		if r[i] == '%' {
			i++
			continue
		}

		start := i
		for i < len(r) && r[i] >= '0' && r[i] <= '9' {
			i++
		}
		posOverride := 0
		if i > start && i < len(r) && r[i] == '$' {
			posOverride = atoiRunes(r[start:i])
			usedPositional = true
			i++
		} else {
			i = start
			usedNonPositional = true
		}

		for i < len(r) && isCFlag(r[i]) {
			i++
		}
		if i < len(r) && r[i] == '*' {
			auto++
			if err := vec.add(Directive{Pos: auto, Type: TInt}); err != nil {
				return nil, err
			}
			i++
		} else {
			for i < len(r) && r[i] >= '0' && r[i] <= '9' {
				i++
			}
		}
		if i < len(r) && r[i] == '.' {
			i++
			if i < len(r) && r[i] == '*' {
				auto++
				if err := vec.add(Directive{Pos: auto, Type: TInt}); err != nil {
					return nil, err
				}
				i++
			} else {
				for i < len(r) && r[i] >= '0' && r[i] <= '9' {
					i++
				}
			}
		}

		size := ""
		for i < len(r) && isCSizeMod(r[i]) {
			size += string(r[i])
			i++
		}
		if i >= len(r) {
			return nil, fmt.Errorf("unterminated format directive")
		}

		var typ ArgType
		switch r[i] {
		case 'd', 'i':
			typ = TInt
		case 'u', 'o', 'x', 'X':
			typ = TUInt
		case 'c':
			typ = TChar
		case 's':
			typ = TString
		case 'f', 'F', 'e', 'E', 'g', 'G', 'a', 'A':
			typ = TFloat
		case 'p':
			typ = TPointer
		case 'n':
			typ = TPointer
		default:
			return nil, fmt.Errorf("unknown format directive '%%%c'", r[i])
		}
		i++

		auto++
		pos := auto
		if posOverride > 0 {
			pos = posOverride
		}
		if err := vec.add(Directive{Pos: pos, Type: typ, Size: size}); err != nil {
			return nil, err
		}
	}

	if usedPositional && usedNonPositional {
		return nil, fmt.Errorf("format string mixes positional and non-positional directives")
	}
	vec.finalize()
	return vec, nil
}

func isCFlag(r rune) bool {
	switch r {
	case '-', '+', ' ', '#', '0', '\'':
		return true
	}
	return false
}

func isCSizeMod(r rune) bool {
	switch r {
	case 'h', 'l', 'L', 'z', 'j', 't', 'q':
		return true
	}
	return false
}

func atoiRunes(r []rune) int {
	n := 0
	for _, c := range r {
		n = n*10 + int(c-'0')
	}
	return n
}
