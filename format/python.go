package format

import "fmt"

// pythonDialect implements Python's "%" string-formatting operator,
// supporting both positional (%s, %d, ...) and named (%(key)s) forms.
// A format string must use one style consistently.
type pythonDialect struct{}

func (pythonDialect) Name() string { return "python" }

func (pythonDialect) Parse(s string) (*ArgVec, error) {
	r := []rune(s)
	vec := newArgVec()
	auto := 0
	usedPositional, usedNamed := false, false

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

		name := ""
		if r[i] == '(' {
			j := i + 1
			for j < len(r) && r[j] != ')' {
				j++
			}
			if j >= len(r) {
				return nil, fmt.Errorf("unterminated '%%(' mapping key")
			}
			name = string(r[i+1 : j])
			usedNamed = true
			i = j + 1
		} else {
			usedPositional = true
		}

		for i < len(r) && isPyFlag(r[i]) {
			i++
		}
		if i < len(r) && r[i] == '*' {
			i++
		} else {
			for i < len(r) && r[i] >= '0' && r[i] <= '9' {
				i++
			}
		}
		if i < len(r) && r[i] == '.' {
			i++
			if i < len(r) && r[i] == '*' {
				i++
			} else {
				for i < len(r) && r[i] >= '0' && r[i] <= '9' {
					i++
				}
			}
		}
		for i < len(r) && isCSizeMod(r[i]) {
			i++
		}
		if i >= len(r) {
			return nil, fmt.Errorf("unterminated format directive")
		}

		var typ ArgType
		switch r[i] {
		case 'd', 'i', 'u':
			typ = TInt
		case 'o', 'x', 'X':
			typ = TUInt
		case 'c':
			typ = TChar
		case 's', 'r':
			typ = TString
		case 'f', 'F', 'e', 'E', 'g', 'G':
			typ = TFloat
		default:
			return nil, fmt.Errorf("unknown format directive '%%%c'", r[i])
		}
		i++

		if name != "" {
			if err := vec.add(Directive{Name: name, Type: typ}); err != nil {
				return nil, err
			}
		} else {
			auto++
			if err := vec.add(Directive{Pos: auto, Type: typ}); err != nil {
				return nil, err
			}
		}
	}

	if usedPositional && usedNamed {
		return nil, fmt.Errorf("format string mixes mapping-key and positional directives")
	}
	vec.finalize()
	return vec, nil
}

func isPyFlag(r rune) bool {
	switch r {
	case '-', '+', ' ', '#', '0':
		return true
	}
	return false
}
