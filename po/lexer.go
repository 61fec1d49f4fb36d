package po

import (
	"io"
	"strings"

	"github.com/minios-linux/potools/poerr"
	"github.com/minios-linux/potools/strm"
)

// TokenKind enumerates the lexer's terminal symbols.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokBlank
	TokDomain
	TokMsgCtxt
	TokMsgID
	TokMsgIDPlural
	TokMsgStr
	TokPrevMsgCtxt
	TokPrevMsgID
	TokPrevMsgIDPlural
	TokString
	TokPrevString
	TokNumber
	TokName
	TokLBracket
	TokRBracket
	TokComment
	TokJunk
)

// CommentKind distinguishes the four comment-line markers PO files use.
type CommentKind int

const (
	CommentTranslator CommentKind = iota // "# ..." or bare "#"
	CommentExtracted                     // "#. ..."
	CommentReference                     // "#: ..."
	CommentFlags                         // "#, ..."
)

// Token is one lexical unit, tagged with its source position and, where
// relevant, its obsolete-entry membership (from a "#~" line prefix).
type Token struct {
	Kind        TokenKind
	Str         string
	Num         int
	Pos         poerr.Position
	Obsolete    bool
	CommentKind CommentKind
}

// Lexer turns a character stream into the token sequence the parser
// consumes. It classifies each physical line independently by its
// leading marker ("#~", "#|", "#~|", "#.", "#:", "#,", bare "#", or none)
// rather than carrying sticky state across lines, since every line of an
// obsolete or previous-msg entry repeats its own marker in the wire
// format.
type Lexer struct {
	s       *strm.Stream
	counter *poerr.Counter

	queue []Token
	qpos  int

	eof bool
}

// NewLexer returns a lexer reading tokens from s, reporting diagnostics
// through counter.
func NewLexer(s *strm.Stream, counter *poerr.Counter) *Lexer {
	return &Lexer{s: s, counter: counter}
}

// Next returns the next token, or a TokEOF token at end of input.
func (l *Lexer) Next() Token {
	for l.qpos >= len(l.queue) {
		if l.eof {
			return Token{Kind: TokEOF, Pos: l.s.Position()}
		}
		l.refill()
	}
	t := l.queue[l.qpos]
	l.qpos++
	return t
}

// refill reads one more physical line and appends its tokens to the
// queue (possibly zero tokens, e.g. for a bare "#~" marker line, or
// exactly one TokBlank for an empty or whitespace-only line).
func (l *Lexer) refill() {
	pos := l.s.Position()
	line, sawAny, err := l.readLine()
	if err == io.EOF && !sawAny {
		l.eof = true
		return
	}
	trimmed := strings.TrimRight(line, " \t")
	if strings.TrimSpace(trimmed) == "" {
		l.queue = append(l.queue, Token{Kind: TokBlank, Pos: pos})
		if err == io.EOF {
			l.eof = true
		}
		return
	}
	l.lexLine(trimmed, pos)
	if err == io.EOF {
		l.eof = true
	}
}

func (l *Lexer) readLine() (string, bool, error) {
	var b strings.Builder
	saw := false
	for {
		ch, err := l.s.Get()
		if err != nil {
			return b.String(), saw, err
		}
		saw = true
		if err := l.s.PendingError(); err != nil {
			l.counter.Report(l.s.Position(), poerr.Warning, "%v", err)
		}
		if ch.R == '\n' {
			return b.String(), saw, nil
		}
		if ch.HasScalar {
			b.WriteRune(ch.R)
		} else {
			b.WriteByte(ch.Bytes[0])
		}
	}
}

// lexLine tokenizes one non-blank physical line starting at pos.
func (l *Lexer) lexLine(line string, pos poerr.Position) {
	obsolete, previous, rest, stripped := classifyMarker(line)
	p := pos
	p.Column += stripped

	if !previous && !isContentMarker(line) {
		// Bare comment marker line (#, #., #:, #,): the remainder is
		// free text, not grammar tokens. classifyMarker only strips
		// "#~"/"#|"/"#~|" markers, so strip the comment marker itself
		// here instead of using its rest.
		switch {
		case strings.HasPrefix(line, "#."):
			l.emitComment(CommentExtracted, strings.TrimPrefix(strings.TrimPrefix(line, "#."), " "), pos)
		case strings.HasPrefix(line, "#:"):
			l.emitComment(CommentReference, strings.TrimPrefix(strings.TrimPrefix(line, "#:"), " "), pos)
		case strings.HasPrefix(line, "#,"):
			l.emitComment(CommentFlags, strings.TrimPrefix(strings.TrimPrefix(line, "#,"), " "), pos)
		case strings.HasPrefix(line, "#"):
			l.emitComment(CommentTranslator, strings.TrimPrefix(strings.TrimPrefix(line, "#"), " "), pos)
		}
		return
	}

	l.lexContent(rest, p, obsolete, previous)
}

// isContentMarker reports whether line's marker introduces grammar
// content (domain/msgid/msgstr/string/etc.) rather than free comment
// text: true for "#~", "#|", "#~|", and ordinary (unmarked) lines.
func isContentMarker(line string) bool {
	switch {
	case strings.HasPrefix(line, "#~|"), strings.HasPrefix(line, "#~ "), strings.HasPrefix(line, "#~"):
		return true
	case strings.HasPrefix(line, "#|"):
		return true
	case strings.HasPrefix(line, "#"):
		return false
	default:
		return true
	}
}

// classifyMarker strips a leading "#~", "#|", or "#~|" marker (with one
// optional following space) and reports obsolete/previous membership,
// the remaining text, and how many bytes were stripped.
func classifyMarker(line string) (obsolete, previous bool, rest string, stripped int) {
	switch {
	case strings.HasPrefix(line, "#~|"):
		obsolete, previous = true, true
		rest = strings.TrimPrefix(line, "#~|")
	case strings.HasPrefix(line, "#~"):
		obsolete = true
		rest = strings.TrimPrefix(line, "#~")
	case strings.HasPrefix(line, "#|"):
		previous = true
		rest = strings.TrimPrefix(line, "#|")
	default:
		rest = line
	}
	stripped = len(line) - len(rest)
	if strings.HasPrefix(rest, " ") {
		rest = rest[1:]
		stripped++
	}
	return
}

func (l *Lexer) emitComment(kind CommentKind, text string, pos poerr.Position) {
	l.queue = append(l.queue, Token{Kind: TokComment, Str: text, CommentKind: kind, Pos: pos})
}

// lexContent tokenizes the keyword/string/bracket content of a
// non-comment line (obsolete and/or previous already determined by the
// caller from the line's marker).
func (l *Lexer) lexContent(s string, pos poerr.Position, obsolete, previous bool) {
	i := 0
	col := pos.Column
	advance := func(n int) {
		i += n
		col += n
	}
	skipSpace := func() {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			advance(1)
		}
	}
	tokPos := func() poerr.Position {
		return poerr.Position{File: pos.File, Line: pos.Line, Column: col}
	}

	skipSpace()
	if i >= len(s) {
		return
	}

	emitKeyword := func(kw string, normalKind, prevKind TokenKind) bool {
		if strings.HasPrefix(s[i:], kw) {
			tp := tokPos()
			kind := normalKind
			if previous {
				kind = prevKind
			}
			l.queue = append(l.queue, Token{Kind: kind, Pos: tp, Obsolete: obsolete})
			advance(len(kw))
			return true
		}
		return false
	}

	switch {
	case strings.HasPrefix(s[i:], "domain"):
		emitKeyword("domain", TokDomain, TokDomain)
	case strings.HasPrefix(s[i:], "msgctxt"):
		emitKeyword("msgctxt", TokMsgCtxt, TokPrevMsgCtxt)
	case strings.HasPrefix(s[i:], "msgid_plural"):
		emitKeyword("msgid_plural", TokMsgIDPlural, TokPrevMsgIDPlural)
	case strings.HasPrefix(s[i:], "msgid"):
		emitKeyword("msgid", TokMsgID, TokPrevMsgID)
	case strings.HasPrefix(s[i:], "msgstr"):
		tp := tokPos()
		l.queue = append(l.queue, Token{Kind: TokMsgStr, Pos: tp, Obsolete: obsolete})
		advance(len("msgstr"))
		skipSpace()
		if i < len(s) && s[i] == '[' {
			bp := tokPos()
			l.queue = append(l.queue, Token{Kind: TokLBracket, Pos: bp, Obsolete: obsolete})
			advance(1)
			skipSpace()
			start := i
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				advance(1)
			}
			if i > start {
				n := 0
				for _, c := range s[start:i] {
					n = n*10 + int(c-'0')
				}
				np := poerr.Position{File: pos.File, Line: pos.Line, Column: col - (i - start)}
				l.queue = append(l.queue, Token{Kind: TokNumber, Num: n, Pos: np, Obsolete: obsolete})
			} else {
				l.counter.Report(tokPos(), poerr.Error, "expected plural form number after '['")
			}
			skipSpace()
			if i < len(s) && s[i] == ']' {
				rp := tokPos()
				l.queue = append(l.queue, Token{Kind: TokRBracket, Pos: rp, Obsolete: obsolete})
				advance(1)
			} else {
				l.counter.Report(tokPos(), poerr.Error, "expected ']' after plural form number")
			}
		}
	case i < len(s) && s[i] == '"':
		l.lexString(s, &i, &col, pos, obsolete, previous)
		return
	default:
		tp := tokPos()
		l.queue = append(l.queue, Token{Kind: TokJunk, Str: s[i:], Pos: tp, Obsolete: obsolete})
		l.counter.Report(tp, poerr.Error, "parse error: unexpected %q", s[i:])
		return
	}

	skipSpace()
	if i < len(s) {
		l.lexContent(s[i:], poerr.Position{File: pos.File, Line: pos.Line, Column: col}, obsolete, previous)
	}
}

func (l *Lexer) lexString(s string, i, col *int, pos poerr.Position, obsolete, previous bool) {
	start := *i
	startCol := *col
	(*i)++
	(*col)++
	for *i < len(s) {
		if s[*i] == '"' {
			body := s[start+1 : *i]
			(*i)++
			(*col)++
			decoded, err := unquote(body)
			tp := poerr.Position{File: pos.File, Line: pos.Line, Column: startCol}
			if err != nil {
				l.counter.Report(tp, poerr.Error, "%v", err)
			}
			kind := TokString
			if previous {
				kind = TokPrevString
			}
			l.queue = append(l.queue, Token{Kind: kind, Str: decoded, Pos: tp, Obsolete: obsolete})
			// continue lexing remainder of line, if any (rare: trailing
			// tokens after a string are not valid grammar but may still
			// need to be reported).
			for *i < len(s) && (s[*i] == ' ' || s[*i] == '\t') {
				(*i)++
				(*col)++
			}
			if *i < len(s) {
				l.lexContent(s[*i:], poerr.Position{File: pos.File, Line: pos.Line, Column: *col}, obsolete, previous)
			}
			return
		}
		if s[*i] == '\\' && *i+1 < len(s) {
			(*i) += 2
			(*col) += 2
			continue
		}
		(*i)++
		(*col)++
	}
	tp := poerr.Position{File: pos.File, Line: pos.Line, Column: startCol}
	l.counter.Report(tp, poerr.Error, "unterminated string")
}
