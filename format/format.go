// Package format implements the format-string dialect parsers and the
// msgid/msgstr compatibility checker: each dialect turns a string into a
// sorted argument vector, and Check compares two vectors positionally.
package format

import (
	"fmt"
	"sort"
)

// ArgType tags the kind of value a format directive consumes.
type ArgType int

const (
	TInt ArgType = iota
	TUInt
	TChar
	TString
	TFloat
	TPointer
	TWideChar
	TWideString
	TIntArrayPart1
	TIntArrayPart2
)

func (t ArgType) String() string {
	switch t {
	case TInt:
		return "int"
	case TUInt:
		return "unsigned int"
	case TChar:
		return "char"
	case TString:
		return "string"
	case TFloat:
		return "float"
	case TPointer:
		return "pointer"
	case TWideChar:
		return "wide char"
	case TWideString:
		return "wide string"
	case TIntArrayPart1, TIntArrayPart2:
		return "int array"
	default:
		return "unknown"
	}
}

// Directive is one parsed argument-bearing format specifier.
type Directive struct {
	Pos  int    // 1-based positional index; 0 for named (python %(key)s) directives
	Name string // non-empty for named directives
	Type ArgType
	Size string // size modifiers seen: "h", "hh", "l", "ll", "L", "z", "t", "w", or ""
}

// ArgVec is the sorted, duplicate-merged argument vector: positional
// directives sorted by position, plus any named directives (python-style)
// keyed by name.
type ArgVec struct {
	Positional []Directive
	Named      map[string]Directive

	UsesErrno         bool
	UsesCurrentLocus  bool
	NumDirectives     int

	byPos map[int]Directive
}

func newArgVec() *ArgVec {
	return &ArgVec{Named: make(map[string]Directive), byPos: make(map[int]Directive)}
}

// add records a directive, merging into an existing position when one
// is already present: duplicate positions are merged, but an
// incompatible repeated type is an error.
func (v *ArgVec) add(d Directive) error {
	if d.Name != "" {
		if existing, ok := v.Named[d.Name]; ok {
			if existing.Type != d.Type {
				return fmt.Errorf("format specifications for argument %q are not the same", d.Name)
			}
			return nil
		}
		v.Named[d.Name] = d
		return nil
	}
	if existing, ok := v.byPos[d.Pos]; ok {
		if existing.Type != d.Type {
			return fmt.Errorf("format specifications for argument %d are not the same", d.Pos)
		}
		return nil
	}
	v.byPos[d.Pos] = d
	return nil
}

func (v *ArgVec) finalize() {
	v.Positional = v.Positional[:0]
	for _, d := range v.byPos {
		v.Positional = append(v.Positional, d)
	}
	sort.Slice(v.Positional, func(i, j int) bool { return v.Positional[i].Pos < v.Positional[j].Pos })
	v.NumDirectives = len(v.Positional) + len(v.Named)
}

// Dialect is a named format-string grammar.
type Dialect interface {
	Name() string
	Parse(s string) (*ArgVec, error)
}

// Dialects is the registry of built-in dialects, keyed by the flag-name
// gettext uses ("c-format", "python-format", "gcc-internal-format", ...
// minus the "-format" suffix).
var Dialects = map[string]Dialect{
	"c":            cDialect{},
	"python":       pythonDialect{},
	"gcc-internal": gccInternalDialect{},
}

// Lookup returns the named dialect, or (nil, false) if unknown.
func Lookup(name string) (Dialect, bool) {
	d, ok := Dialects[name]
	return d, ok
}

// Mismatch is one discrepancy found by Check.
type Mismatch struct {
	Kind    string // "position", "type", "errno", "current-locus"
	Detail  string
}

func (m Mismatch) String() string { return m.Detail }

// Check compares the argument vectors of a msgid (ref) and a msgstr
// (other). When equality is true the comparison is symmetric (both
// directions must match exactly, used
// when comparing two translations of the same original); when false it
// is asymmetric (msgstr may omit positions ref has, but not the
// reverse), the usual msgid-vs-msgstr case.
func Check(ref, other *ArgVec, equality bool) []Mismatch {
	var mismatches []Mismatch

	refByPos := indexByPos(ref.Positional)
	otherByPos := indexByPos(other.Positional)
	allPos := unionPositions(refByPos, otherByPos)
	for _, p := range allPos {
		rd, rok := refByPos[p]
		od, ook := otherByPos[p]
		switch {
		case rok && !ook:
			if equality {
				mismatches = append(mismatches, Mismatch{Kind: "position",
					Detail: fmt.Sprintf("a format specification for argument %d exists in 'msgid' but not in 'msgstr'", p)})
			}
		case !rok && ook:
			mismatches = append(mismatches, Mismatch{Kind: "position",
				Detail: fmt.Sprintf("a format specification for argument %d exists in 'msgstr' but not in 'msgid'", p)})
		case rd.Type != od.Type:
			mismatches = append(mismatches, Mismatch{Kind: "type",
				Detail: fmt.Sprintf("format specifications for argument %d are not the same", p)})
		}
	}

	allNames := unionNames(ref.Named, other.Named)
	for _, n := range allNames {
		rd, rok := ref.Named[n]
		od, ook := other.Named[n]
		switch {
		case rok && !ook:
			if equality {
				mismatches = append(mismatches, Mismatch{Kind: "position",
					Detail: fmt.Sprintf("a format specification for argument %q exists in 'msgid' but not in 'msgstr'", n)})
			}
		case !rok && ook:
			mismatches = append(mismatches, Mismatch{Kind: "position",
				Detail: fmt.Sprintf("a format specification for argument %q exists in 'msgstr' but not in 'msgid'", n)})
		case rd.Type != od.Type:
			mismatches = append(mismatches, Mismatch{Kind: "type",
				Detail: fmt.Sprintf("format specifications for argument %q are not the same", n)})
		}
	}

	if ref.UsesErrno != other.UsesErrno {
		mismatches = append(mismatches, Mismatch{Kind: "errno",
			Detail: "'msgid' and 'msgstr' disagree on whether errno is used"})
	}
	if ref.UsesCurrentLocus != other.UsesCurrentLocus {
		mismatches = append(mismatches, Mismatch{Kind: "current-locus",
			Detail: "'msgid' and 'msgstr' disagree on whether the current source locus is used"})
	}

	return mismatches
}

func indexByPos(ds []Directive) map[int]Directive {
	m := make(map[int]Directive, len(ds))
	for _, d := range ds {
		m[d.Pos] = d
	}
	return m
}

func unionPositions(a, b map[int]Directive) []int {
	seen := make(map[int]bool)
	var out []int
	for p := range a {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for p := range b {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

func unionNames(a, b map[string]Directive) []string {
	seen := make(map[string]bool)
	var out []string
	for n := range a {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for n := range b {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
