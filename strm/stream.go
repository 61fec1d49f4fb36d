// Package strm implements the byte/multibyte character stream the PO
// lexer reads from. It folds CRLF/CR to LF, tracks line/column with
// East-Asian-width-aware tab stops, and supports up to a few characters
// of pushback.
package strm

import (
	"bufio"
	"errors"
	"io"
	"unicode"

	"golang.org/x/text/width"

	"github.com/minios-linux/potools/charset"
	"github.com/minios-linux/potools/poerr"
)

// Char is one logical character as read from the stream: the original
// source bytes (kept so backslash handling can inspect the exact source
// sequence) plus an optional decoded scalar value.
type Char struct {
	Bytes     []byte
	R         rune
	HasScalar bool
}

// SequenceErrorKind distinguishes EILSEQ-like and EINVAL-like converter
// failures.
type SequenceErrorKind int

const (
	// Invalid means the accumulated bytes are not a valid sequence in the
	// installed encoding (EILSEQ): reported once, then the offending byte
	// is delivered as a lone-byte character with no scalar.
	Invalid SequenceErrorKind = iota
	// Incomplete means the sequence is still short at end of line/file
	// (EINVAL at end of input).
	Incomplete
)

// SequenceError reports a converter failure. The stream has already
// recovered (the Get call that raised it returned the fallback character);
// callers should turn this into a poerr.Diagnostic.
type SequenceError struct {
	Kind SequenceErrorKind
	Raw  []byte
}

func (e *SequenceError) Error() string {
	if e.Kind == Incomplete {
		return "incomplete multibyte sequence"
	}
	return "invalid multibyte sequence"
}

type histEntry struct {
	ch                     Char
	beforeLine, beforeCol  int
	afterLine, afterCol    int
}

// Stream wraps a byte source with charset conversion, newline folding,
// and display-width tracking.
type Stream struct {
	file string
	r    *bufio.Reader

	conv      *charset.Converter
	weird     bool
	weirdCJK  bool
	identity  bool // OLD_PO_FILE_INPUT: treat every byte as itself

	line, col int
	history   []histEntry
	back      int

	pending error // a SequenceError surfaced by the most recent Get
}

// New wraps r as a character stream for diagnostics tagged with file.
func New(r io.Reader, file string) *Stream {
	return &Stream{file: file, r: bufio.NewReaderSize(r, 4096), line: 1, col: 0}
}

// SetConverter installs the charset converter to use for multibyte
// decoding. Passing nil reverts to single-byte-or-weird-CJK mode.
func (s *Stream) SetConverter(c *charset.Converter) { s.conv = c }

// SetWeird configures the "weird"/"weird CJK" lookahead heuristic used
// when no converter is installed.
func (s *Stream) SetWeird(weird, weirdCJK bool) {
	s.weird, s.weirdCJK = weird, weirdCJK
}

// SetIdentityMode implements the OLD_PO_FILE_INPUT override: every byte
// is its own character, no conversion attempted.
func (s *Stream) SetIdentityMode(on bool) { s.identity = on }

// Position returns the current (not-yet-consumed) position.
func (s *Stream) Position() poerr.Position {
	return poerr.Position{File: s.file, Line: s.line, Column: s.col}
}

// PendingError returns and clears a SequenceError raised by the last Get,
// if any. The stream has already recovered; the caller decides how to
// surface the diagnostic.
func (s *Stream) PendingError() error {
	e := s.pending
	s.pending = nil
	return e
}

// Get returns the next logical character, or io.EOF at end of stream.
func (s *Stream) Get() (Char, error) {
	if s.back > 0 {
		e := s.history[len(s.history)-s.back]
		s.back--
		s.line, s.col = e.afterLine, e.afterCol
		return e.ch, nil
	}
	beforeLine, beforeCol := s.line, s.col
	ch, err := s.readRaw()
	if err != nil {
		return Char{}, err
	}
	s.advance(ch)
	s.history = append(s.history, histEntry{ch, beforeLine, beforeCol, s.line, s.col})
	if len(s.history) > 4 {
		s.history = s.history[1:]
	}
	return ch, nil
}

// Unget pushes the most recently returned character back onto the stream.
// Up to three characters of pushback are guaranteed.
func (s *Stream) Unget() {
	if s.back >= len(s.history) {
		return
	}
	s.back++
	e := s.history[len(s.history)-s.back]
	s.line, s.col = e.beforeLine, e.beforeCol
}

func (s *Stream) readRaw() (Char, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return Char{}, err
	}

	// CR, CRLF, LF all normalize to LF.
	if b == '\r' {
		nb, err2 := s.r.ReadByte()
		if err2 == nil && nb != '\n' {
			_ = s.r.UnreadByte()
		}
		return Char{Bytes: []byte{'\n'}, R: '\n', HasScalar: true}, nil
	}
	if b == '\n' {
		return Char{Bytes: []byte{'\n'}, R: '\n', HasScalar: true}, nil
	}

	if s.identity || s.conv == nil {
		if !s.identity && s.weird && b >= 0x80 {
			nb, err2 := s.r.ReadByte()
			if err2 == nil {
				if nb >= 0x30 {
					return Char{Bytes: []byte{b, nb}}, nil
				}
				_ = s.r.UnreadByte()
			}
		}
		if b < 0x80 {
			return Char{Bytes: []byte{b}, R: rune(b), HasScalar: true}, nil
		}
		return Char{Bytes: []byte{b}}, nil
	}

	for {
		atEOF := false
		res, r, raw := s.conv.Feed(b, atEOF)
		switch res {
		case charset.Ready:
			return Char{Bytes: raw, R: r, HasScalar: true}, nil
		case charset.Invalid:
			s.pending = &SequenceError{Kind: Invalid, Raw: raw}
			return Char{Bytes: raw}, nil
		case charset.Incomplete:
			s.pending = &SequenceError{Kind: Incomplete, Raw: raw}
			return Char{Bytes: raw}, nil
		case charset.NeedMore:
			nb, err2 := s.r.ReadByte()
			if err2 != nil {
				res, r, raw = s.conv.Feed(0, true)
				// Feed takes a byte, so a synthetic 0 is fed with
				// atEOF set to flush what is pending; drop it from raw
				// and report the sequence as incomplete.
				if n := len(raw); n > 1 && raw[n-1] == 0 {
					raw = raw[:n-1]
				}
				s.pending = &SequenceError{Kind: Incomplete, Raw: raw}
				return Char{Bytes: raw}, nil
			}
			b = nb
			continue
		}
	}
}

// advance updates line/column for ch, applying tab stops and
// East-Asian-width-aware column width.
func (s *Stream) advance(ch Char) {
	if ch.R == '\n' {
		s.line++
		s.col = 0
		return
	}
	if !ch.HasScalar {
		s.col++
		return
	}
	switch {
	case ch.R == '\t':
		s.col = ((s.col / 8) + 1) * 8
	case unicode.IsControl(ch.R):
		// width 0
	case isPrintable(ch.R):
		s.col += runeWidth(ch.R)
	default:
		s.col++
	}
}

func isPrintable(r rune) bool {
	return unicode.IsPrint(r) || unicode.IsSpace(r)
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// ErrTooManyErrors is returned by higher layers when the diagnostic
// counter's error ceiling has been exceeded.
var ErrTooManyErrors = errors.New("too many errors")
