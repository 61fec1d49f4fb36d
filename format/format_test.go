package format

import "testing"

func TestCDialectBasic(t *testing.T) {
	d := cDialect{}
	vec, err := d.Parse("Hello, %s! You have %d messages.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Positional) != 2 {
		t.Fatalf("got %d directives, want 2", len(vec.Positional))
	}
	if vec.Positional[0].Type != TString || vec.Positional[1].Type != TInt {
		t.Fatalf("wrong types: %+v", vec.Positional)
	}
}

func TestCDialectPositional(t *testing.T) {
	d := cDialect{}
	vec, err := d.Parse("%2$s costs %1$d dollars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Positional) != 2 {
		t.Fatalf("got %d directives, want 2", len(vec.Positional))
	}
	if vec.Positional[0].Pos != 1 || vec.Positional[0].Type != TInt {
		t.Fatalf("position 1 wrong: %+v", vec.Positional[0])
	}
	if vec.Positional[1].Pos != 2 || vec.Positional[1].Type != TString {
		t.Fatalf("position 2 wrong: %+v", vec.Positional[1])
	}
}

func TestCDialectRejectsMixedPositional(t *testing.T) {
	d := cDialect{}
	if _, err := d.Parse("%1$s and %d"); err == nil {
		t.Fatal("expected error mixing positional and non-positional directives")
	}
}

func TestPythonDialectNamed(t *testing.T) {
	d := pythonDialect{}
	vec, err := d.Parse("%(name)s is %(age)d years old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Named) != 2 {
		t.Fatalf("got %d named directives, want 2", len(vec.Named))
	}
	if vec.Named["name"].Type != TString || vec.Named["age"].Type != TInt {
		t.Fatalf("wrong named types: %+v", vec.Named)
	}
}

func TestGCCInternalQuoteGroup(t *testing.T) {
	d := gccInternalDialect{}
	vec, err := d.Parse("cannot find %<%s%>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Positional) != 1 || vec.Positional[0].Type != TString {
		t.Fatalf("wrong directives: %+v", vec.Positional)
	}
}

func TestGCCInternalUnterminatedGroup(t *testing.T) {
	d := gccInternalDialect{}
	if _, err := d.Parse("cannot find %<%s"); err == nil {
		t.Fatal("expected error for unterminated quote group")
	}
}

func TestGCCInternalIntArraySpecifierAdvancesAutoNumbering(t *testing.T) {
	d := gccInternalDialect{}
	vec, err := d.Parse("%d %Z %d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Positional) != 4 {
		t.Fatalf("wrong directive count: %+v", vec.Positional)
	}
	wantTypes := []ArgType{TInt, TIntArrayPart1, TIntArrayPart2, TInt}
	for i, dir := range vec.Positional {
		if dir.Pos != i+1 {
			t.Fatalf("directive %d has Pos %d, want %d: %+v", i, dir.Pos, i+1, vec.Positional)
		}
		if dir.Type != wantTypes[i] {
			t.Fatalf("directive %d has Type %v, want %v: %+v", i, dir.Type, wantTypes[i], vec.Positional)
		}
	}
}

func TestGCCInternalErrnoAndLocus(t *testing.T) {
	d := gccInternalDialect{}
	vec, err := d.Parse("%C: %m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vec.UsesErrno || !vec.UsesCurrentLocus {
		t.Fatalf("expected both errno and current-locus flags set: %+v", vec)
	}
}

func TestCheckDetectsPositionMismatch(t *testing.T) {
	d := cDialect{}
	ref, _ := d.Parse("%s")
	other, _ := d.Parse("%s and %d")
	mismatches := Check(ref, other, false)
	found := false
	for _, m := range mismatches {
		if m.Kind == "position" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a position mismatch, got %+v", mismatches)
	}
}

func TestCheckDetectsTypeMismatch(t *testing.T) {
	d := cDialect{}
	ref, _ := d.Parse("%d")
	other, _ := d.Parse("%s")
	mismatches := Check(ref, other, false)
	if len(mismatches) != 1 || mismatches[0].Kind != "type" {
		t.Fatalf("expected one type mismatch, got %+v", mismatches)
	}
}

func TestCheckSymmetricEquality(t *testing.T) {
	d := cDialect{}
	ref, _ := d.Parse("%s and %d")
	other, _ := d.Parse("%s")
	asymmetric := Check(ref, other, false)
	symmetric := Check(ref, other, true)
	if len(symmetric) <= len(asymmetric) {
		t.Fatalf("expected symmetric check to report more: sym=%d asym=%d", len(symmetric), len(asymmetric))
	}
}
