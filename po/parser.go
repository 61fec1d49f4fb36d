package po

import (
	"github.com/minios-linux/potools/poerr"
	"github.com/minios-linux/potools/strm"
)

// ParseOptions configures a Parse call.
type ParseOptions struct {
	// AllowDuplicates tolerates a second entry with the same (context,
	// msgid), per msgcat/msgmerge's idempotent-merge tolerance.
	AllowDuplicates bool
}

// Parse reads a full PO/POT document from s, driving the lexer and
// building a DomainList. Parse diagnostics are recorded in counter;
// Parse returns an error only for the too-many-errors escalation
// (poerr.Fatal), never for individual recoverable syntax problems.
func Parse(s *strm.Stream, counter *poerr.Counter, opts ParseOptions) (*DomainList, error) {
	lex := NewLexer(s, counter)
	p := &parser{lex: lex, counter: counter, dl: NewDomainList(), opts: opts}
	p.domain = p.dl.Default()
	p.domain.AllowDuplicates(opts.AllowDuplicates)
	p.run()
	if counter.Fatal() {
		return p.dl, strm.ErrTooManyErrors
	}
	return p.dl, nil
}

type parser struct {
	lex     *Lexer
	counter *poerr.Counter
	dl      *DomainList
	opts    ParseOptions

	domain *Domain

	tok     Token
	hasPeek bool

	// pending accumulators for the entry under construction
	translatorComments []string
	extractedComments  []string
	references         []Reference
	flags              []string
}

func (p *parser) advance() Token {
	if p.hasPeek {
		p.hasPeek = false
		return p.tok
	}
	return p.lex.Next()
}

func (p *parser) peek() Token {
	if !p.hasPeek {
		p.tok = p.lex.Next()
		p.hasPeek = true
	}
	return p.tok
}

func (p *parser) resetAccumulators() {
	p.translatorComments = nil
	p.extractedComments = nil
	p.references = nil
	p.flags = nil
}

// run drives the whole token stream, building entries as it encounters
// comment runs and msgid/msgstr groups.
func (p *parser) run() {
	for {
		t := p.peek()
		switch t.Kind {
		case TokEOF:
			return
		case TokBlank:
			p.advance()
			continue
		case TokComment:
			p.consumeCommentRun()
			continue
		case TokDomain:
			p.advance()
			name := p.expectString("domain name")
			p.domain = p.dl.Domain(name)
			p.domain.AllowDuplicates(p.opts.AllowDuplicates)
			continue
		case TokJunk:
			p.advance()
			continue
		default:
			p.parseEntry()
		}
	}
}

func (p *parser) consumeCommentRun() {
	for {
		t := p.peek()
		if t.Kind != TokComment {
			return
		}
		p.advance()
		switch t.CommentKind {
		case CommentTranslator:
			p.translatorComments = append(p.translatorComments, t.Str)
		case CommentExtracted:
			p.extractedComments = append(p.extractedComments, t.Str)
		case CommentReference:
			p.references = append(p.references, parseReferences(t.Str)...)
		case CommentFlags:
			p.flags = append(p.flags, splitFlags(t.Str)...)
		}
	}
}

// parseEntry consumes one full entry: optional msgctxt, optional
// previous-msg block, msgid [msgid_plural], one or more msgstr forms.
func (p *parser) parseEntry() {
	e := NewEntry()
	e.TranslatorComments = p.translatorComments
	e.ExtractedComments = p.extractedComments
	e.References = p.references
	e.Flags = p.flags
	e.RefreshFormatFlags()
	p.resetAccumulators()

	obsolete := p.peek().Obsolete

	// previous-msg block (from "#|" lines already folded into Prev* tokens)
	for {
		t := p.peek()
		switch t.Kind {
		case TokPrevMsgCtxt:
			p.advance()
			e.HasPreviousContext = true
			e.PreviousContext = p.expectPrevString("previous msgctxt")
			continue
		case TokPrevMsgID:
			p.advance()
			e.HasPreviousMsgID = true
			e.PreviousMsgID = p.expectPrevString("previous msgid")
			continue
		case TokPrevMsgIDPlural:
			p.advance()
			e.HasPreviousMsgIDPlural = true
			e.PreviousMsgIDPlural = p.expectPrevString("previous msgid_plural")
			continue
		}
		break
	}

	if p.peek().Kind == TokMsgCtxt {
		p.advance()
		e.HasContext = true
		e.Context = p.expectString("msgctxt")
	}

	if p.peek().Kind != TokMsgID {
		t := p.peek()
		p.counter.Report(t.Pos, poerr.Error, "missing 'msgid' keyword")
		p.advance()
		return
	}
	msgidPos := p.peek().Pos
	p.advance()
	e.MsgID = p.expectString("msgid")
	e.Pos = msgidPos
	e.Obsolete = obsolete

	if p.peek().Kind == TokMsgIDPlural {
		p.advance()
		e.HasPlural = true
		e.MsgIDPlural = p.expectString("msgid_plural")
	}

	if p.peek().Kind != TokMsgStr {
		t := p.peek()
		p.counter.Report(t.Pos, poerr.Error, "missing 'msgstr' keyword")
		return
	}

	if e.HasPlural {
		e.MsgStrPlural = p.parsePluralForms()
	} else {
		p.advance()
		e.MsgStr = p.expectString("msgstr")
	}

	if !p.domain.Append(e) {
		p.counter.Report(e.Pos, poerr.Error, "duplicate message definition for msgid %q", e.MsgID)
	}
}

// parsePluralForms consumes one or more "msgstr[N] STRING" groups,
// requiring contiguous indices starting at 0.
func (p *parser) parsePluralForms() []string {
	var forms []string
	for p.peek().Kind == TokMsgStr {
		msgstrPos := p.peek().Pos
		p.advance()
		if p.peek().Kind != TokLBracket {
			p.counter.Report(msgstrPos, poerr.Error, "expected '[' after msgstr in plural entry")
			return forms
		}
		p.advance()
		if p.peek().Kind != TokNumber {
			p.counter.Report(p.peek().Pos, poerr.Error, "expected plural form index")
			return forms
		}
		idx := p.peek().Num
		p.advance()
		if p.peek().Kind != TokRBracket {
			p.counter.Report(p.peek().Pos, poerr.Error, "expected ']' after plural form index")
			return forms
		}
		p.advance()
		str := p.expectString("msgstr[N]")
		if idx != len(forms) {
			p.counter.Report(msgstrPos, poerr.Error, "plural form indices must be contiguous starting at 0, got %d expecting %d", idx, len(forms))
			for len(forms) <= idx {
				forms = append(forms, "")
			}
			forms[idx] = str
			continue
		}
		forms = append(forms, str)
	}
	return forms
}

// expectString concatenates one or more consecutive TokString tokens
// (PO's implicit string-literal concatenation across lines) into a
// single value, or reports an error naming what was expected.
func (p *parser) expectString(what string) string {
	if p.peek().Kind != TokString {
		p.counter.Report(p.peek().Pos, poerr.Error, "expected string after %s", what)
		return ""
	}
	var s string
	for p.peek().Kind == TokString {
		s += p.advance().Str
	}
	return s
}

func (p *parser) expectPrevString(what string) string {
	if p.peek().Kind != TokPrevString {
		p.counter.Report(p.peek().Pos, poerr.Error, "expected string after %s", what)
		return ""
	}
	var s string
	for p.peek().Kind == TokPrevString {
		s += p.advance().Str
	}
	return s
}

func parseReferences(text string) []Reference {
	var refs []Reference
	field := ""
	flush := func() {
		if field == "" {
			return
		}
		file, line := splitFileLine(field)
		refs = append(refs, Reference{File: file, Line: line})
		field = ""
	}
	for _, r := range text {
		if r == ' ' || r == '\t' {
			flush()
			continue
		}
		field += string(r)
	}
	flush()
	return refs
}

func splitFileLine(field string) (string, int) {
	for i := len(field) - 1; i >= 0; i-- {
		if field[i] == ':' {
			n, ok := parseIntLoose(field[i+1:])
			if ok {
				return field[:i], n
			}
			return field, 0
		}
	}
	return field, 0
}

func splitFlags(text string) []string {
	var flags []string
	cur := ""
	for _, r := range text {
		if r == ',' {
			if f := trimFlag(cur); f != "" {
				flags = append(flags, f)
			}
			cur = ""
			continue
		}
		cur += string(r)
	}
	if f := trimFlag(cur); f != "" {
		flags = append(flags, f)
	}
	return flags
}

func trimFlag(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
