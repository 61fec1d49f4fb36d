package fuzzyindex

import (
	"testing"

	"github.com/minios-linux/potools/po"
)

func newDomainWithEntries(msgids ...string) *po.Domain {
	d := po.NewDomain("messages")
	for _, id := range msgids {
		e := po.NewEntry()
		e.MsgID = id
		d.Append(e)
	}
	return d
}

func TestSearchExactMsgIDScoresOne(t *testing.T) {
	d := newDomainWithEntries("Save file", "Open file", "Close file")
	idx := New(d)

	got, ok := idx.Search("", "Save file", 0, false)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Score != 1.0 {
		t.Fatalf("score = %v, want 1.0", got.Score)
	}
	if got.Entry.MsgID != "Save file" {
		t.Fatalf("matched %q, want %q", got.Entry.MsgID, "Save file")
	}
}

func TestSearchNearMissBeatsUnrelated(t *testing.T) {
	d := newDomainWithEntries("Save the file now", "Delete everything forever")
	idx := New(d)

	got, ok := idx.Search("", "Save the file", 0, false)
	if !ok {
		t.Fatal("expected a match above FuzzyThreshold")
	}
	if got.Entry.MsgID != "Save the file now" {
		t.Fatalf("matched %q, want the near-miss entry", got.Entry.MsgID)
	}
}

func TestSearchBelowThresholdReturnsNoMatch(t *testing.T) {
	d := newDomainWithEntries("Completely unrelated string of text")
	idx := New(d)

	_, ok := idx.Search("", "xyz", 0, false)
	if ok {
		t.Fatal("expected no match below FuzzyThreshold")
	}
}

func TestSearchMatchingContextPreferredOverMismatchedContext(t *testing.T) {
	d := po.NewDomain("messages")
	same := po.NewEntry()
	same.HasContext = true
	same.Context = "menu"
	same.MsgID = "Open"
	d.Append(same)

	other := po.NewEntry()
	other.HasContext = true
	other.Context = "dialog"
	other.MsgID = "Open"
	d.Append(other)

	idx := New(d)
	got, ok := idx.Search("menu", "Open", 0, false)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Entry != same {
		t.Fatal("expected the matching-context entry to win the tie")
	}
}

func TestSearchSkipsObsoleteAndHeaderEntries(t *testing.T) {
	d := po.NewDomain("messages")
	header := po.NewEntry()
	d.Prepend(header)

	obsolete := po.NewEntry()
	obsolete.MsgID = "Save file"
	obsolete.Obsolete = true
	d.Append(obsolete)

	idx := New(d)
	_, ok := idx.Search("", "Save file", 0, false)
	if ok {
		t.Fatal("expected no match: the only same-msgid entry is obsolete")
	}
}

func TestSearchIsIdempotentAcrossCalls(t *testing.T) {
	d := newDomainWithEntries("Save file", "Open file")
	idx := New(d)

	first, ok1 := idx.Search("", "Save file", 0, false)
	second, ok2 := idx.Search("", "Save file", 0, false)
	if ok1 != ok2 || first.Entry != second.Entry || first.Score != second.Score {
		t.Fatal("expected repeated Search calls to return identical results")
	}
}

func TestNgramCountsShortStringFallsBackToWholeString(t *testing.T) {
	counts := ngramCounts("ab", 3)
	if len(counts) != 1 || counts["ab"] != 1 {
		t.Fatalf("ngramCounts(\"ab\", 3) = %v, want {\"ab\":1}", counts)
	}
}

func TestNgramCountsEmptyStringIsEmpty(t *testing.T) {
	counts := ngramCounts("", 3)
	if len(counts) != 0 {
		t.Fatalf("ngramCounts(\"\", 3) = %v, want empty", counts)
	}
}
