// Package runconfig — .potools.yaml run-configuration file support.
//
// When a .potools.yaml file exists next to the PO files potools is
// invoked on, it supplies defaults for the command-line flags the
// cmd/potools subcommands accept (default text domain, compendium
// search path, which format dialects to enforce). No auto-detection is
// performed beyond this file; everything else is explicit flags.
package runconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default run-configuration file name.
const FileName = ".potools.yaml"

// File is the top-level .potools.yaml structure.
type File struct {
	// Domain is the default text domain new catalogs are merged under
	// when a PO file carries no "domain" directive of its own.
	Domain string `yaml:"domain,omitempty"`
	// Compendiums lists compendium PO files consulted during fuzzy
	// search, in priority order, relative to the directory File was
	// loaded from.
	Compendiums []string `yaml:"compendiums,omitempty"`
	// Dialects restricts format-string checking to the named dialects
	// (c, python, gcc-internal). Empty means "check every dialect a
	// message's flags name".
	Dialects []string `yaml:"dialects,omitempty"`
	// KeepPrevious mirrors msgmerge's --previous: keep #| comments on
	// fuzzy matches instead of discarding them.
	KeepPrevious bool `yaml:"keep_previous,omitempty"`
	// ArgsEachRound mirrors the printf command's round-repetition
	// count; 0 means "run the format once".
	ArgsEachRound int `yaml:"args_each_round,omitempty"`
	// Checks lists the synlint checks to run; nil means "run them all".
	Checks []string `yaml:"checks,omitempty"`
}

// Load reads and validates .potools.yaml from dir. Returns a zero-value
// *File with no error if the file does not exist; the "messages" Domain
// default is applied only to a file that was read, so a missing file
// leaves Domain empty while an empty file sets it to "messages".
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.Domain == "" {
		f.Domain = "messages"
	}
	for _, d := range f.Dialects {
		switch d {
		case "c", "python", "gcc-internal":
		default:
			return nil, fmt.Errorf("%s: unknown dialect %q (valid: c, python, gcc-internal)", path, d)
		}
	}
	return &f, nil
}

// AbsCompendiums resolves every Compendiums entry to an absolute path
// rooted at dir.
func (f *File) AbsCompendiums(dir string) []string {
	out := make([]string, len(f.Compendiums))
	for i, c := range f.Compendiums {
		out[i] = filepath.Join(dir, c)
	}
	return out
}

// Save writes f to dir/.potools.yaml, creating or overwriting it.
func Save(dir string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", FileName, err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
