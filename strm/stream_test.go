package strm

import (
	"io"
	"strings"
	"testing"
)

func TestGetTracksLineAndColumn(t *testing.T) {
	s := New(strings.NewReader("ab"), "f")

	ch, err := s.Get()
	if err != nil || ch.R != 'a' {
		t.Fatalf("Get() = %+v, %v", ch, err)
	}
	if pos := s.Position(); pos.Line != 1 || pos.Column != 1 {
		t.Fatalf("Position after 'a' = %+v, want line 1 col 1", pos)
	}

	ch, err = s.Get()
	if err != nil || ch.R != 'b' {
		t.Fatalf("Get() = %+v, %v", ch, err)
	}
	if pos := s.Position(); pos.Line != 1 || pos.Column != 2 {
		t.Fatalf("Position after 'b' = %+v, want line 1 col 2", pos)
	}

	if _, err := s.Get(); err != io.EOF {
		t.Fatalf("Get() at end = %v, want io.EOF", err)
	}
}

func TestCRLFNormalizesToLF(t *testing.T) {
	s := New(strings.NewReader("a\r\nb"), "f")
	mustGet(t, s) // 'a'

	ch := mustGet(t, s)
	if ch.R != '\n' {
		t.Fatalf("CRLF produced %q, want newline", ch.R)
	}
	if pos := s.Position(); pos.Line != 2 || pos.Column != 0 {
		t.Fatalf("Position after CRLF = %+v, want line 2 col 0", pos)
	}

	ch = mustGet(t, s)
	if ch.R != 'b' {
		t.Fatalf("Get() after CRLF = %q, want 'b'", ch.R)
	}
}

func TestLoneCRNormalizesToLF(t *testing.T) {
	s := New(strings.NewReader("a\rb"), "f")
	mustGet(t, s) // 'a'

	ch := mustGet(t, s)
	if ch.R != '\n' {
		t.Fatalf("lone CR produced %q, want newline", ch.R)
	}

	ch = mustGet(t, s)
	if ch.R != 'b' {
		t.Fatalf("byte after lone CR = %q, want 'b' (must not be swallowed)", ch.R)
	}
}

func TestUngetReplaysSameCharacterAndPosition(t *testing.T) {
	s := New(strings.NewReader("ab"), "f")
	first := mustGet(t, s)
	posAfterFirst := s.Position()

	s.Unget()
	replayed := mustGet(t, s)
	if replayed.R != first.R {
		t.Fatalf("replayed char = %q, want %q", replayed.R, first.R)
	}
	if pos := s.Position(); pos != posAfterFirst {
		t.Fatalf("position after replay = %+v, want %+v", pos, posAfterFirst)
	}

	second := mustGet(t, s)
	if second.R != 'b' {
		t.Fatalf("Get() after replay = %q, want 'b'", second.R)
	}
}

func TestTabAdvancesToNextStop(t *testing.T) {
	s := New(strings.NewReader("\tx"), "f")
	mustGet(t, s) // tab
	if pos := s.Position(); pos.Column != 8 {
		t.Fatalf("column after tab = %d, want 8", pos.Column)
	}
}

func TestIdentityModeBypassesWeirdLookahead(t *testing.T) {
	s := New(strings.NewReader(string([]byte{0x81, 0x40})), "f")
	s.SetIdentityMode(true)
	s.SetWeird(true, true)

	ch := mustGet(t, s)
	if ch.HasScalar {
		t.Fatalf("identity mode byte 0x81 should carry no scalar, got %+v", ch)
	}
	if len(ch.Bytes) != 1 || ch.Bytes[0] != 0x81 {
		t.Fatalf("identity mode should deliver one raw byte at a time, got %+v", ch.Bytes)
	}

	ch = mustGet(t, s)
	if len(ch.Bytes) != 1 || ch.Bytes[0] != 0x40 {
		t.Fatalf("second byte should be delivered on its own, got %+v", ch.Bytes)
	}
}

func TestWeirdCJKLookaheadCombinesTwoBytes(t *testing.T) {
	s := New(strings.NewReader(string([]byte{0x81, 0x40, 'x'})), "f")
	s.SetWeird(true, true)

	ch := mustGet(t, s)
	if ch.HasScalar {
		t.Fatalf("weird CJK pair should carry no decoded scalar, got %+v", ch)
	}
	if len(ch.Bytes) != 2 || ch.Bytes[0] != 0x81 || ch.Bytes[1] != 0x40 {
		t.Fatalf("expected a combined 2-byte char, got %+v", ch.Bytes)
	}

	ch = mustGet(t, s)
	if ch.R != 'x' {
		t.Fatalf("byte after the pair = %+v, want 'x'", ch)
	}
}

func TestWeirdLookaheadUnreadsLowTrailingByte(t *testing.T) {
	s := New(strings.NewReader(string([]byte{0x81, 0x20})), "f")
	s.SetWeird(true, true)

	ch := mustGet(t, s)
	if len(ch.Bytes) != 1 || ch.Bytes[0] != 0x81 {
		t.Fatalf("trailing byte below 0x30 should not be consumed into the pair, got %+v", ch.Bytes)
	}

	ch = mustGet(t, s)
	if !ch.HasScalar || ch.R != ' ' {
		t.Fatalf("unread trailing byte should resurface as its own char, got %+v", ch)
	}
}

func mustGet(t *testing.T, s *Stream) Char {
	t.Helper()
	ch, err := s.Get()
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	return ch
}
