package po

import (
	"bytes"
	"testing"

	"github.com/minios-linux/potools/poerr"
	"github.com/minios-linux/potools/strm"
)

func parseString(t *testing.T, src string) (*DomainList, *poerr.Counter) {
	t.Helper()
	counter := poerr.NewCounter()
	s := strm.New(bytes.NewReader([]byte(src)), "test.po")
	dl, err := Parse(s, counter, ParseOptions{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return dl, counter
}

func TestParseSimpleHeaderAndEntry(t *testing.T) {
	src := "msgid \"\"\n" +
		"msgstr \"\"\n" +
		"\"Content-Type: text/plain; charset=UTF-8\\n\"\n" +
		"\n" +
		"msgid \"Hello\"\n" +
		"msgstr \"Bonjour\"\n"

	dl, counter := parseString(t, src)
	if len(counter.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", counter.Diagnostics)
	}
	d := dl.Default()
	if len(d.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(d.Entries))
	}
	if !d.Entries[0].IsHeader() {
		t.Fatal("first entry should be the header")
	}
	ct, ok := HeaderValue(d, "Content-Type")
	if !ok || ct != "text/plain; charset=UTF-8" {
		t.Fatalf("Content-Type = %q, %v", ct, ok)
	}
	if got := Charset(d); got != "UTF-8" {
		t.Fatalf("Charset() = %q, want UTF-8", got)
	}

	e := d.Lookup("", "Hello")
	if e == nil {
		t.Fatal("expected to find msgid \"Hello\"")
	}
	if e.MsgStr != "Bonjour" {
		t.Fatalf("MsgStr = %q, want Bonjour", e.MsgStr)
	}
}

func TestParsePluralEntry(t *testing.T) {
	src := "msgid \"cat\"\n" +
		"msgid_plural \"cats\"\n" +
		"msgstr[0] \"chat\"\n" +
		"msgstr[1] \"chats\"\n"

	dl, counter := parseString(t, src)
	if len(counter.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", counter.Diagnostics)
	}
	e := dl.Default().Lookup("", "cat")
	if e == nil {
		t.Fatal("expected to find msgid \"cat\"")
	}
	if !e.HasPlural || e.MsgIDPlural != "cats" {
		t.Fatalf("plural fields wrong: %+v", e)
	}
	if len(e.MsgStrPlural) != 2 || e.MsgStrPlural[0] != "chat" || e.MsgStrPlural[1] != "chats" {
		t.Fatalf("MsgStrPlural = %v", e.MsgStrPlural)
	}
}

func TestParseCommentsFlagsAndReferences(t *testing.T) {
	src := "# translator note\n" +
		"#. extracted note\n" +
		"#: src/main.c:42 src/util.c:7\n" +
		"#, fuzzy, c-format\n" +
		"msgid \"Error: %s\"\n" +
		"msgstr \"Erreur : %s\"\n"

	dl, counter := parseString(t, src)
	if len(counter.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", counter.Diagnostics)
	}
	e := dl.Default().Lookup("", "Error: %s")
	if e == nil {
		t.Fatal("expected to find the entry")
	}
	if len(e.TranslatorComments) != 1 || e.TranslatorComments[0] != "translator note" {
		t.Fatalf("TranslatorComments = %v", e.TranslatorComments)
	}
	if len(e.ExtractedComments) != 1 || e.ExtractedComments[0] != "extracted note" {
		t.Fatalf("ExtractedComments = %v", e.ExtractedComments)
	}
	if len(e.References) != 2 || e.References[0].File != "src/main.c" || e.References[0].Line != 42 {
		t.Fatalf("References = %+v", e.References)
	}
	if !e.IsFuzzy() {
		t.Fatal("expected fuzzy flag")
	}
	if e.FormatFlags["c"] != TriYes {
		t.Fatalf("FormatFlags[c] = %v, want TriYes", e.FormatFlags["c"])
	}
}

func TestParseObsoleteEntryDoesNotIndexOrConflict(t *testing.T) {
	src := "#~ msgid \"old\"\n" +
		"#~ msgstr \"ancien\"\n" +
		"\n" +
		"msgid \"old\"\n" +
		"msgstr \"nouveau\"\n"

	dl, counter := parseString(t, src)
	if len(counter.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", counter.Diagnostics)
	}
	d := dl.Default()
	if len(d.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(d.Entries))
	}
	if !d.Entries[0].Obsolete {
		t.Fatal("first entry should be obsolete")
	}
	live := d.Lookup("", "old")
	if live == nil || live.Obsolete || live.MsgStr != "nouveau" {
		t.Fatalf("live entry wrong: %+v", live)
	}
}

func TestParsePreviousMsgidOnFuzzyEntry(t *testing.T) {
	src := "#, fuzzy\n" +
		"#| msgid \"old text\"\n" +
		"msgid \"new text\"\n" +
		"msgstr \"texte\"\n"

	dl, counter := parseString(t, src)
	if len(counter.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", counter.Diagnostics)
	}
	e := dl.Default().Lookup("", "new text")
	if e == nil {
		t.Fatal("expected to find the entry")
	}
	if !e.HasPreviousMsgID || e.PreviousMsgID != "old text" {
		t.Fatalf("previous msgid wrong: %+v", e)
	}
}

func TestParseDomainDirectiveSplitsEntries(t *testing.T) {
	src := "domain \"app\"\n" +
		"msgid \"a\"\n" +
		"msgstr \"A\"\n" +
		"\n" +
		"domain \"lib\"\n" +
		"msgid \"b\"\n" +
		"msgstr \"B\"\n"

	dl, counter := parseString(t, src)
	if len(counter.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", counter.Diagnostics)
	}
	if len(dl.Domains) != 2 {
		t.Fatalf("got %d domains, want 2", len(dl.Domains))
	}
	if dl.Lookup("app", "", "a") == nil || dl.Lookup("lib", "", "b") == nil {
		t.Fatal("expected entries in both named domains")
	}
}

func TestDuplicateMsgidReportsError(t *testing.T) {
	src := "msgid \"dup\"\n" +
		"msgstr \"un\"\n" +
		"\n" +
		"msgid \"dup\"\n" +
		"msgstr \"deux\"\n"

	_, counter := parseString(t, src)
	if counter.Errors != 1 {
		t.Fatalf("Errors = %d, want 1", counter.Errors)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	src := "msgid \"\"\n" +
		"msgstr \"\"\n" +
		"\"Content-Type: text/plain; charset=UTF-8\\n\"\n" +
		"\n" +
		"msgid \"Hello\"\n" +
		"msgstr \"Bonjour\"\n"

	dl, _ := parseString(t, src)

	var buf bytes.Buffer
	if err := Write(&buf, dl, WriteOptions{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	dl2, counter := parseString(t, buf.String())
	if len(counter.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics reparsing written output: %v\n%s", counter.Diagnostics, buf.String())
	}
	if !dl.Default().Equal(dl2.Default(), false) {
		t.Fatalf("round trip mismatch:\noriginal write:\n%s", buf.String())
	}
}

func TestParseBytesWarnsOnMissingCharset(t *testing.T) {
	src := "msgid \"\"\n" +
		"msgstr \"\"\n" +
		"\"Content-Type: text/plain\\n\"\n" +
		"\n" +
		"msgid \"Hello\"\n" +
		"msgstr \"Bonjour\"\n"

	_, counter, err := ParseBytes([]byte(src), "test.po", ParseReaderOptions{})
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if counter.Warnings != 1 {
		t.Fatalf("Warnings = %d, want 1: %v", counter.Warnings, counter.Diagnostics)
	}
}

func TestParseBytesSilentWhenNoHeaderAtAll(t *testing.T) {
	src := "msgid \"Hello\"\n" +
		"msgstr \"Bonjour\"\n"

	_, counter, err := ParseBytes([]byte(src), "test.po", ParseReaderOptions{})
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if counter.Warnings != 0 {
		t.Fatalf("Warnings = %d, want 0 when there is no header at all: %v", counter.Warnings, counter.Diagnostics)
	}
}

func TestSetHeaderValueInsertsAndReplaces(t *testing.T) {
	d := NewDomain(DefaultDomainName)
	SetHeaderValue(d, "Language", "fr")
	SetHeaderValue(d, "Content-Type", "text/plain; charset=UTF-8")
	SetHeaderValue(d, "Language", "fr_FR")

	v, ok := HeaderValue(d, "Language")
	if !ok || v != "fr_FR" {
		t.Fatalf("Language = %q, %v", v, ok)
	}
	v, ok = HeaderValue(d, "Content-Type")
	if !ok || v != "text/plain; charset=UTF-8" {
		t.Fatalf("Content-Type = %q, %v", v, ok)
	}
}

func TestDomainSortByMsgID(t *testing.T) {
	d := NewDomain(DefaultDomainName)
	d.Append(&Entry{MsgID: "zebra"})
	d.Append(&Entry{MsgID: "apple"})
	d.Append(NewEntry()) // header, empty msgid

	d.SortByMsgID()
	if !d.Entries[0].IsHeader() {
		t.Fatal("header should sort first")
	}
	if d.Entries[1].MsgID != "apple" || d.Entries[2].MsgID != "zebra" {
		t.Fatalf("sort order wrong: %v", []string{d.Entries[1].MsgID, d.Entries[2].MsgID})
	}
}

func TestMoveObsoleteToEnd(t *testing.T) {
	d := NewDomain(DefaultDomainName)
	d.Append(&Entry{MsgID: "obs1", Obsolete: true})
	d.Append(&Entry{MsgID: "live"})
	d.MoveObsoleteToEnd()
	if d.Entries[0].MsgID != "live" || !d.Entries[1].Obsolete {
		t.Fatalf("obsolete entries not moved to end: %+v", d.Entries)
	}
}
