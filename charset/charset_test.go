package charset

import "testing"

func TestCanonicalizeEmptyAndNone(t *testing.T) {
	for _, in := range []string{"", "  ", "none", "NONE"} {
		name, ok := Canonicalize(in)
		if ok || name != "" {
			t.Fatalf("Canonicalize(%q) = (%q, %v), want (\"\", false)", in, name, ok)
		}
	}
}

func TestCanonicalizeAppliesAliases(t *testing.T) {
	// Limited to aliases with no WHATWG legacy-encoding conflation, so the
	// expected canonical name is unambiguous (e.g. "ascii"/"latin1" are
	// deliberately excluded: the WHATWG encoding standard redirects both
	// to windows-1252, not to a distinct "us-ascii"/"iso-8859-1" encoding).
	cases := map[string]string{
		"UTF8":     "utf-8",
		"CP1251":   "windows-1251",
		"shiftjis": "shift_jis",
	}
	for in, want := range cases {
		got, ok := Canonicalize(in)
		if !ok {
			t.Fatalf("Canonicalize(%q) returned ok=false", in)
		}
		if got != want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalizeTrimsWhitespaceAndTrailingDash(t *testing.T) {
	got, ok := Canonicalize("  UTF-8- ")
	if !ok || got != "utf-8" {
		t.Fatalf("Canonicalize(\"  UTF-8- \") = (%q, %v), want (\"utf-8\", true)", got, ok)
	}
}

func TestIsWeirdAndIsWeirdCJK(t *testing.T) {
	if !IsWeird("shift_jis") || !IsWeirdCJK("shift_jis") {
		t.Fatal("shift_jis should be both weird and weird CJK")
	}
	if IsWeird("utf-8") || IsWeirdCJK("utf-8") {
		t.Fatal("utf-8 should be neither weird nor weird CJK")
	}
	if !IsWeird("SHIFT_JIS") {
		t.Fatal("IsWeird should be case-insensitive")
	}
}

func TestIsPortable(t *testing.T) {
	if !IsPortable("utf-8") || !IsPortable("ISO-8859-1") {
		t.Fatal("utf-8 and iso-8859-1 should be portable")
	}
	if IsPortable("windows-1252") {
		t.Fatal("windows-1252 should not be portable")
	}
}

func TestNewConverterUnsupportedEncoding(t *testing.T) {
	if _, ok := NewConverter("not-a-real-charset"); ok {
		t.Fatal("expected NewConverter to reject an unknown encoding")
	}
}

func TestConverterFeedASCIIRoundTrips(t *testing.T) {
	c, ok := NewConverter("utf-8")
	if !ok {
		t.Fatal("expected utf-8 converter to be supported")
	}
	res, r, raw := c.Feed('A', false)
	if res != Ready || r != 'A' || len(raw) != 1 || raw[0] != 'A' {
		t.Fatalf("Feed('A') = (%v, %q, %v), want (Ready, 'A', [A])", res, r, raw)
	}
}

func TestConverterFeedMultiByteUTF8(t *testing.T) {
	c, ok := NewConverter("utf-8")
	if !ok {
		t.Fatal("expected utf-8 converter to be supported")
	}
	// U+00E9 'é' encodes as 0xC3 0xA9 in UTF-8.
	res, _, _ := c.Feed(0xC3, false)
	if res != NeedMore {
		t.Fatalf("Feed(0xC3) = %v, want NeedMore", res)
	}
	res, r, raw := c.Feed(0xA9, false)
	if res != Ready || r != 'é' {
		t.Fatalf("Feed(0xA9) = (%v, %q), want (Ready, 'é')", res, r)
	}
	if len(raw) != 2 || raw[0] != 0xC3 || raw[1] != 0xA9 {
		t.Fatalf("raw = %v, want [0xC3 0xA9]", raw)
	}
}

func TestConverterFeedInvalidSequence(t *testing.T) {
	c, ok := NewConverter("utf-8")
	if !ok {
		t.Fatal("expected utf-8 converter to be supported")
	}
	// 0xFF is never valid in UTF-8.
	res, _, raw := c.Feed(0xFF, false)
	if res != Invalid {
		t.Fatalf("Feed(0xFF) = %v, want Invalid", res)
	}
	if len(raw) != 1 || raw[0] != 0xFF {
		t.Fatalf("raw = %v, want [0xFF]", raw)
	}
}

func TestIsolateMarkers(t *testing.T) {
	start, end := IsolateMarkers("utf-8")
	if start != FirstStrongIsolate || end != PopDirectionalIsolate {
		t.Fatal("utf-8 should carry isolate markers")
	}
	start, end = IsolateMarkers("iso-8859-1")
	if start != "" || end != "" {
		t.Fatal("iso-8859-1 should carry no isolate markers")
	}
}

func TestOldPOFileInputActive(t *testing.T) {
	if OldPOFileInputActive("") {
		t.Fatal("empty OLD_PO_FILE_INPUT should be inactive")
	}
	if !OldPOFileInputActive("1") {
		t.Fatal("non-empty OLD_PO_FILE_INPUT should be active")
	}
}
