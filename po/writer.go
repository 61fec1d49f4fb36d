package po

import (
	"bufio"
	"io"
	"strings"
)

// WriteOptions configures Write's output shape.
type WriteOptions struct {
	// Width is the line-wrap target column. 0 selects the default of 79,
	// matching msgcat/msgmerge's default; a negative value disables
	// wrapping entirely, as if every entry had the no-wrap flag.
	Width int
	// SortByMsgID and SortByFilePos request a sort before writing;
	// mutually exclusive, SortByMsgID wins if both are set. Neither
	// mutates the in-memory domain list's stored order if false.
	SortByMsgID  bool
	SortByFilePos bool
}

// Write serializes every domain of dl to w in PO wire format.
// Multi-domain lists are written with "domain" directives separating
// each named domain's entries.
func Write(w io.Writer, dl *DomainList, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	width := opts.Width
	if width == 0 {
		width = 79
	}
	multi := len(dl.Domains) > 1
	for i, d := range dl.Domains {
		if multi {
			if i > 0 {
				bw.WriteByte('\n')
			}
			bw.WriteString("domain \"")
			bw.WriteString(quote(d.Name))
			bw.WriteString("\"\n")
		}
		if opts.SortByMsgID {
			d.SortByMsgID()
		} else if opts.SortByFilePos {
			d.SortByFilePos()
		}
		for j, e := range d.Entries {
			if j > 0 || multi {
				bw.WriteByte('\n')
			}
			writeEntry(bw, e, width)
		}
	}
	return bw.Flush()
}

func writeEntry(bw *bufio.Writer, e *Entry, width int) {
	marker := ""
	if e.Obsolete {
		marker = "#~ "
	}

	for _, c := range e.TranslatorComments {
		writeCommentLine(bw, "#", c)
	}
	for _, c := range e.ExtractedComments {
		writeCommentLine(bw, "#.", c)
	}
	if len(e.References) > 0 {
		var parts []string
		for _, r := range e.References {
			parts = append(parts, r.String())
		}
		bw.WriteString("#: ")
		bw.WriteString(strings.Join(parts, " "))
		bw.WriteByte('\n')
	}
	if len(e.Flags) > 0 {
		bw.WriteString("#, ")
		bw.WriteString(strings.Join(e.Flags, ", "))
		bw.WriteByte('\n')
	}

	wrap := e.DoWrap != TriNo
	effWidth := width
	if !wrap {
		effWidth = 0
	}

	if e.HasPreviousContext {
		writeField(bw, "#| msgctxt", e.PreviousContext, effWidth)
	}
	if e.HasPreviousMsgID {
		writeField(bw, "#| msgid", e.PreviousMsgID, effWidth)
	}
	if e.HasPreviousMsgIDPlural {
		writeField(bw, "#| msgid_plural", e.PreviousMsgIDPlural, effWidth)
	}

	if e.HasContext {
		writeFieldMarked(bw, marker, "msgctxt", e.Context, effWidth)
	}
	writeFieldMarked(bw, marker, "msgid", e.MsgID, effWidth)
	if e.HasPlural {
		writeFieldMarked(bw, marker, "msgid_plural", e.MsgIDPlural, effWidth)
		for i, form := range e.MsgStrPlural {
			writeFieldMarked(bw, marker, "msgstr["+itoa(i)+"]", form, effWidth)
		}
	} else {
		writeFieldMarked(bw, marker, "msgstr", e.MsgStr, effWidth)
	}
}

func writeCommentLine(bw *bufio.Writer, marker, text string) {
	if text == "" {
		bw.WriteString(marker)
		bw.WriteByte('\n')
		return
	}
	bw.WriteString(marker)
	bw.WriteByte(' ')
	bw.WriteString(text)
	bw.WriteByte('\n')
}

func writeField(bw *bufio.Writer, keyword, value string, width int) {
	writeFieldMarked(bw, "", keyword, value, width)
}

// writeFieldMarked writes "<marker><keyword> <quoted-value>". When value
// contains embedded newlines or the rendered line would exceed width, it
// writes an empty first segment and then one quoted segment per line of
// value; lines are split only after embedded newlines, never at width.
func writeFieldMarked(bw *bufio.Writer, marker, keyword, value string, width int) {
	lines := strings.SplitAfter(value, "\n")
	// SplitAfter leaves a trailing empty element when value ends in \n;
	// drop it and reattach the newline to the previous segment so it
	// round-trips through quote().
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	single := marker + keyword + " \"" + quote(value) + "\""
	if width <= 0 || len(lines) <= 1 && len([]rune(single)) <= width {
		bw.WriteString(single)
		bw.WriteByte('\n')
		return
	}

	bw.WriteString(marker)
	bw.WriteString(keyword)
	bw.WriteString(" \"\"\n")
	for _, line := range lines {
		bw.WriteString(marker)
		bw.WriteString("\"")
		bw.WriteString(quote(line))
		bw.WriteString("\"\n")
	}
}
