// Package charset resolves PO header charset names to canonical spellings
// and installs byte-stream converters to UTF-8.
package charset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// aliases maps non-portable or historical spellings to the name
// golang.org/x/text/encoding/htmlindex expects. gettext itself recognizes
// many more; this covers the ones the test corpus and common Linux distros
// actually emit in PO headers.
var aliases = map[string]string{
	"ansi_x3.4-1968": "us-ascii",
	"ascii":          "us-ascii",
	"utf8":           "utf-8",
	"utf-8":          "utf-8",
	"iso88591":       "iso-8859-1",
	"latin1":         "iso-8859-1",
	"latin-1":        "iso-8859-1",
	"cp1251":         "windows-1251",
	"win1251":        "windows-1251",
	"cp1252":         "windows-1252",
	"win1252":        "windows-1252",
	"shiftjis":       "shift_jis",
	"sjis":           "shift_jis",
	"euc-jp":         "euc-jp",
	"eucjp":          "euc-jp",
	"euckr":          "euc-kr",
	"euc-kr":         "euc-kr",
	"gb18030":        "gb18030",
	"gb2312":         "gb2312",
	"gbk":            "gbk",
	"big5":           "big5",
	"koi8-r":         "koi8-r",
}

// weirdEncodings are the charsets where characters need boundary-aware
// lexing: a double-byte character whose trailing byte can alias 0x5C (the
// backslash that introduces an escape in PO string literals). gettext
// itself calls these the "weird" and "weird CJK" encodings.
var weirdEncodings = map[string]bool{
	"shift_jis": true,
	"big5":      true,
	"gbk":       true,
	"gb2312":    true,
	"euc-jp":    true,
	"euc-kr":    true,
	"gb18030":   true,
	"johab":     true,
}

// weirdCJK is the subset of weirdEncodings that are specifically CJK
// double-byte encodings (as opposed to other stateful multibyte schemes).
var weirdCJK = map[string]bool{
	"shift_jis": true,
	"big5":      true,
	"gbk":       true,
	"gb2312":    true,
	"euc-jp":    true,
	"euc-kr":    true,
	"gb18030":   true,
}

// Canonicalize maps a free-form charset name (as found in a
// "Content-Type: ...; charset=X" header line) to its canonical spelling.
// The empty string and "none" both produce ("", false).
func Canonicalize(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "none" {
		return "", false
	}
	n = strings.TrimSuffix(n, "-")
	if alt, ok := aliases[n]; ok {
		n = alt
	}
	if e, err := htmlindex.Get(n); err == nil {
		if canon, err := htmlindex.Name(e); err == nil {
			return strings.ToLower(canon), true
		}
	}
	// htmlindex didn't recognize it, but it might still be one of our
	// explicit weird-encoding aliases (e.g. "gb18030" is already canonical).
	if weirdEncodings[n] {
		return n, true
	}
	return n, true
}

// IsWeird reports whether canonical needs character-boundary-aware lexing.
func IsWeird(canonical string) bool {
	return weirdEncodings[strings.ToLower(canonical)]
}

// IsWeirdCJK reports whether canonical is specifically a CJK double-byte
// weird encoding, the subset that needs the "trailing byte >= 0x30"
// lookahead heuristic.
func IsWeirdCJK(canonical string) bool {
	return weirdCJK[strings.ToLower(canonical)]
}

// portable lists the charset names gettext considers portable; used
// only to decide whether to emit a "non-portable charset name" warning.
var portable = map[string]bool{
	"ascii": true, "us-ascii": true, "utf-8": true,
	"iso-8859-1": true, "iso-8859-2": true, "iso-8859-15": true,
	"koi8-r": true, "koi8-u": true,
	"euc-jp": true, "euc-kr": true, "shift_jis": true,
	"gb2312": true, "gb18030": true, "big5": true,
}

// IsPortable reports whether canonical is one of the portable charsets
// gettext recommends; non-portable names trigger a remediation warning.
func IsPortable(canonical string) bool {
	return portable[strings.ToLower(canonical)]
}

// Converter incrementally decodes bytes in a source encoding into UTF-8
// scalar values, one rune (or invalid-byte fallback) at a time: feed
// bytes to the converter until one UTF-8 output character appears.
type Converter struct {
	canonical string
	dec       *encoding.Decoder
	pending   []byte
	maxBuffer int
}

// NewConverter installs a converter from canonical (an already-canonicalized
// charset name) to UTF-8. Returns (nil, false) when the encoding is
// unsupported — callers should warn and fall back to byte-identity mode.
func NewConverter(canonical string) (*Converter, bool) {
	e, err := htmlindex.Get(canonical)
	if err != nil {
		return nil, false
	}
	return &Converter{canonical: canonical, dec: e.NewDecoder(), maxBuffer: 8}, true
}

// Result is the outcome of feeding one more byte into the converter.
type Result int

const (
	// NeedMore means the converter consumed the byte but has not yet
	// produced a full character; feed another byte.
	NeedMore Result = iota
	// Ready means Rune (and Raw) are populated with a decoded character.
	Ready
	// Invalid means the accumulated bytes are not a valid sequence
	// (EILSEQ); the offending bytes are returned in Raw with no Rune.
	Invalid
	// Incomplete means the sequence is still short at EOF/line end
	// (EINVAL at end of input); Raw holds the partial bytes.
	Incomplete
)

// Feed consumes one input byte and reports whether a full character is
// ready. atEOF should be true only on the very last byte available in the
// whole stream (used to distinguish EINVAL-recoverable from
// incomplete-at-EOF).
func (c *Converter) Feed(b byte, atEOF bool) (res Result, r rune, raw []byte) {
	c.pending = append(c.pending, b)
	dst := make([]byte, 8)
	nDst, nSrc, err := c.dec.Transform(dst, c.pending, atEOF)
	switch {
	case err == nil && nDst > 0:
		raw = append([]byte(nil), c.pending[:nSrc]...)
		c.pending = c.pending[nSrc:]
		rr, _ := utf8.DecodeRune(dst[:nDst])
		if rr == utf8.RuneError && string(raw) != "�" {
			// The decoders substitute U+FFFD for undecodable input
			// instead of returning an error.
			return Invalid, 0, raw
		}
		return Ready, rr, raw
	case err == transform.ErrShortSrc:
		if atEOF || len(c.pending) >= c.maxBuffer {
			raw = append([]byte(nil), c.pending...)
			c.pending = nil
			return Incomplete, 0, raw
		}
		return NeedMore, 0, nil
	case err != nil:
		raw = append([]byte(nil), c.pending...)
		c.pending = nil
		return Invalid, 0, raw
	default:
		// err == nil but nDst == 0: degenerate, treat as needing more input.
		if atEOF {
			raw = append([]byte(nil), c.pending...)
			c.pending = nil
			return Incomplete, 0, raw
		}
		return NeedMore, 0, nil
	}
}

// FirstStrongIsolate and PopDirectionalIsolate are the Unicode control
// characters gettext's isolate_markers() supplies for UTF-8 and GB18030.
const (
	FirstStrongIsolate   = "⁨"
	PopDirectionalIsolate = "⁩"
)

// IsolateMarkers returns the (first-strong-isolate, pop-directional-isolate)
// byte sequences for canonical, or ("", "") when the encoding has no
// representation for them (anything other than UTF-8/GB18030).
func IsolateMarkers(canonical string) (start, end string) {
	switch strings.ToLower(canonical) {
	case "utf-8", "gb18030":
		return FirstStrongIsolate, PopDirectionalIsolate
	default:
		return "", ""
	}
}

// OldPOFileInputActive reports the policy for the OLD_PO_FILE_INPUT
// environment override: when non-empty, the converter is bypassed
// entirely and every byte is treated as itself.
func OldPOFileInputActive(envValue string) bool {
	return envValue != ""
}
