// Package po implements the PO/POT lexer, grammar driver, and in-memory
// catalog model: tokens become entries, entries live in named domains,
// domains live in an ordered domain list.
package po

import (
	"strings"

	"github.com/minios-linux/potools/poerr"
)

// TriState models a three-valued flag: unspecified/no, possible, or
// explicit-yes. Used for per-dialect format flags, do_wrap, and the
// syntax-check vector.
type TriState int

const (
	TriNo TriState = iota
	TriPossible
	TriYes
)

// Range is the plural-range constraint ("range: MIN..MAX").
type Range struct {
	Min, Max int
}

// Reference is one "#: file:line" source position.
type Reference struct {
	File string
	Line int
}

func (r Reference) String() string {
	if r.Line <= 0 {
		return r.File
	}
	return r.File + ":" + itoa(r.Line)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Entry is the primary datum of a catalog: a message, with context, msgid,
// optional plural, one or more msgstr forms, previous-msg fields, flags,
// comments, and the scratch bookkeeping the merge engine needs.
type Entry struct {
	HasContext bool
	Context    string

	MsgID       string
	HasPlural   bool
	MsgIDPlural string

	// MsgStr holds the singular/only translation. MsgStrPlural holds the
	// ordered plural forms (index 0..nplurals-1) when HasPlural is true;
	// it is nil for non-plural entries.
	MsgStr       string
	MsgStrPlural []string

	HasPreviousContext    bool
	PreviousContext       string
	HasPreviousMsgID      bool
	PreviousMsgID         string
	HasPreviousMsgIDPlural bool
	PreviousMsgIDPlural   string

	// Flags holds the raw comma-separated tokens from "#," lines
	// (fuzzy, no-wrap, wrap, c-format, no-c-format, ...). FormatFlags is
	// the derived per-dialect tri-state view; it is rebuilt by
	// RefreshFormatFlags whenever Flags changes.
	Flags       []string
	FormatFlags map[string]TriState

	PluralRange *Range
	DoWrap      TriState

	TranslatorComments []string
	ExtractedComments  []string
	References         []Reference

	DoSyntaxCheck map[string]TriState

	Obsolete bool
	Pos      poerr.Position

	// Used is a transient per-merge scratch bitfield; see merge package.
	Used int
}

// NewEntry returns an empty Entry with its maps initialized.
func NewEntry() *Entry {
	return &Entry{
		FormatFlags:   make(map[string]TriState),
		DoSyntaxCheck: make(map[string]TriState),
	}
}

// Key is the (context, msgid) lookup key used by domain indices, joined
// with a sentinel separator byte (0x04, the same byte the lexer rejects
// inside quoted strings) so the two parts never collide.
func Key(ctxt string, msgid string) string {
	return ctxt + "\x04" + msgid
}

// Key returns this entry's (context, msgid) lookup key.
func (e *Entry) Key() string {
	return Key(e.Context, e.MsgID)
}

// IsHeader reports whether e is the distinguished empty-msgid header:
// no context, never obsolete.
func (e *Entry) IsHeader() bool {
	return e.MsgID == "" && !e.HasContext && !e.Obsolete
}

// IsFuzzy reports whether the fuzzy flag is present.
func (e *Entry) IsFuzzy() bool {
	return e.HasFlag("fuzzy")
}

// SetFuzzy adds or removes the fuzzy flag, keeping it first when present.
func (e *Entry) SetFuzzy(fuzzy bool) {
	if fuzzy {
		if !e.IsFuzzy() {
			e.Flags = append([]string{"fuzzy"}, e.Flags...)
		}
		return
	}
	if !e.IsFuzzy() {
		return
	}
	filtered := make([]string, 0, len(e.Flags))
	for _, f := range e.Flags {
		if f != "fuzzy" {
			filtered = append(filtered, f)
		}
	}
	e.Flags = filtered
}

// HasFlag reports whether flag is present verbatim in e.Flags.
func (e *Entry) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ClearPrevious drops the previous-msg fields: for every message that is
// not fuzzy or whose msgstr is empty, the merge finalization pass clears
// them.
func (e *Entry) ClearPrevious() {
	e.HasPreviousContext = false
	e.PreviousContext = ""
	e.HasPreviousMsgID = false
	e.PreviousMsgID = ""
	e.HasPreviousMsgIDPlural = false
	e.PreviousMsgIDPlural = ""
}

// IsTranslated reports whether e carries a non-empty, non-fuzzy
// translation (every plural form populated, for plural entries).
func (e *Entry) IsTranslated() bool {
	if e.MsgID == "" || e.IsFuzzy() {
		return false
	}
	if e.HasPlural {
		if len(e.MsgStrPlural) == 0 {
			return false
		}
		for _, v := range e.MsgStrPlural {
			if v == "" {
				return false
			}
		}
		return true
	}
	return e.MsgStr != ""
}

// RefreshFormatFlags re-derives FormatFlags from the raw Flags tokens:
// "<dialect>-format" => TriYes, "no-<dialect>-format" => TriNo,
// "possible-<dialect>-format" => TriPossible. Also re-derives PluralRange
// from any "range:MIN..MAX" tokens, unioning when more than one appears.
func (e *Entry) RefreshFormatFlags() {
	e.FormatFlags = make(map[string]TriState)
	for _, f := range e.Flags {
		switch {
		case strings.HasSuffix(f, "-format") && strings.HasPrefix(f, "no-"):
			dialect := strings.TrimSuffix(strings.TrimPrefix(f, "no-"), "-format")
			e.FormatFlags[dialect] = TriNo
		case strings.HasSuffix(f, "-format") && strings.HasPrefix(f, "possible-"):
			dialect := strings.TrimSuffix(strings.TrimPrefix(f, "possible-"), "-format")
			e.FormatFlags[dialect] = TriPossible
		case strings.HasSuffix(f, "-format"):
			dialect := strings.TrimSuffix(f, "-format")
			e.FormatFlags[dialect] = TriYes
		case strings.HasPrefix(f, "range:"):
			spec := strings.TrimPrefix(f, "range:")
			parts := strings.SplitN(spec, "..", 2)
			if len(parts) == 2 {
				min, minOK := parseIntLoose(parts[0])
				max, maxOK := parseIntLoose(parts[1])
				if minOK && maxOK {
					if e.PluralRange == nil {
						e.PluralRange = &Range{Min: min, Max: max}
					} else {
						if min < e.PluralRange.Min {
							e.PluralRange.Min = min
						}
						if max > e.PluralRange.Max {
							e.PluralRange.Max = max
						}
					}
				}
			}
		case f == "no-wrap":
			e.DoWrap = TriNo
		case f == "wrap":
			e.DoWrap = TriYes
		}
	}
}

func parseIntLoose(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
