package format

import "fmt"

// gccInternalDialect implements the diagnostic-format grammar GCC uses
// for its own translatable strings: quote/color/URL groups, the errno
// and current-locus singletons, and a compact tagged-type specifier set.
type gccInternalDialect struct{}

func (gccInternalDialect) Name() string { return "gcc-internal" }

func (gccInternalDialect) Parse(s string) (*ArgVec, error) {
	r := []rune(s)
	vec := newArgVec()
	auto := 0
	usedPositional, usedNonPositional := false, false
	quoteOpen, colorOpen, urlOpen := false, false, false

	for i := 0; i < len(r); {
		if r[i] != '%' {
			i++
			continue
		}
		i++
		if i >= len(r) {
			return nil, fmt.Errorf("trailing '%%' in format string")
		}

		singleton := true
		switch r[i] {
		case '%', '\'':
		case '<':
			if quoteOpen {
				return nil, fmt.Errorf("nested quote group")
			}
			quoteOpen = true
		case '>':
			if !quoteOpen {
				return nil, fmt.Errorf("unmatched quote group close")
			}
			quoteOpen = false
		case 'r':
			if colorOpen {
				return nil, fmt.Errorf("nested color group")
			}
			colorOpen = true
		case 'R':
			if !colorOpen {
				return nil, fmt.Errorf("unmatched color group close")
			}
			colorOpen = false
		case '{':
			if urlOpen {
				return nil, fmt.Errorf("nested URL group")
			}
			urlOpen = true
		case '}':
			if !urlOpen {
				return nil, fmt.Errorf("unmatched URL group close")
			}
			urlOpen = false
		case 'm':
			vec.UsesErrno = true
		case 'C':
			vec.UsesCurrentLocus = true
		default:
			singleton = false
		}
		if singleton {
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

		size := ""
		for i < len(r) {
			switch r[i] {
			case 'q', '+', '#':
				i++
				continue
			case 'l', 'w', 'z', 't':
				size += string(r[i])
				i++
				if i < len(r) && r[i] == 'l' {
					size += "l"
					i++
				}
				continue
			}
			break
		}
		if i >= len(r) {
			return nil, fmt.Errorf("unterminated format directive")
		}

		var typ ArgType
		var extra bool
		switch r[i] {
		case 'd', 'i':
			typ = TInt
		case 'u':
			typ = TUInt
		case 'c':
			typ = TChar
		case 's':
			typ = TString
		case 'f', 'e', 'g', 'a':
			typ = TFloat
		case 'p':
			typ = TPointer
		case 'Z':
			typ = TIntArrayPart1
			extra = true
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
		if extra {
			auto++
			if err := vec.add(Directive{Pos: pos + 1, Type: TIntArrayPart2}); err != nil {
				return nil, err
			}
		}
	}

	if quoteOpen || colorOpen || urlOpen {
		return nil, fmt.Errorf("unterminated group in format string")
	}
	if usedPositional && usedNonPositional {
		return nil, fmt.Errorf("format string mixes positional and non-positional directives")
	}
	vec.finalize()
	return vec, nil
}
