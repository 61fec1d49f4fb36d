package runconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Domain != "" || f.Compendiums != nil {
		t.Fatalf("expected zero-value File, got %+v", f)
	}
}

func TestLoadAppliesDomainDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "compendiums:\n  - shared.po\n")

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Domain != "messages" {
		t.Fatalf("Domain = %q, want messages", f.Domain)
	}
	if len(f.Compendiums) != 1 || f.Compendiums[0] != "shared.po" {
		t.Fatalf("Compendiums = %v", f.Compendiums)
	}
}

func TestLoadRejectsUnknownDialect(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dialects:\n  - cobol\n")

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for an unknown dialect")
	}
}

func TestAbsCompendiumsResolvesRelativeToDir(t *testing.T) {
	f := &File{Compendiums: []string{"shared.po", "extra/legacy.po"}}
	got := f.AbsCompendiums("/project")
	want := []string{
		filepath.Join("/project", "shared.po"),
		filepath.Join("/project", "extra/legacy.po"),
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("AbsCompendiums = %v, want %v", got, want)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	original := &File{Domain: "app", KeepPrevious: true, ArgsEachRound: 3}
	if err := Save(dir, original); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Domain != "app" || !loaded.KeepPrevious || loaded.ArgsEachRound != 3 {
		t.Fatalf("round-tripped file = %+v", loaded)
	}
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
