// Package merge implements the catalog merge engine: given a
// human-edited definitions catalog and a freshly extracted references
// catalog (plus optional compendium memories), it produces an updated
// catalog that carries forward existing translations, fuzzy-marks the
// ones that no longer line up exactly, and retires the rest as obsolete.
package merge

// Config carries every merge-engine knob as a single explicit record,
// instead of package-level globals.
type Config struct {
	// UseFuzzyMatching enables the fuzzy-search phase for references with
	// no exact (context, msgid) match.
	UseFuzzyMatching bool

	// KeepPrevious controls whether previous-msg fields are carried
	// forward for fuzzy-marked messages.
	KeepPrevious bool

	// ForMsgfmt suppresses untranslated/fuzzy non-header messages and all
	// obsolete entries from the output, since a msgfmt-style consumer
	// discards them anyway.
	ForMsgfmt bool

	// MultiDomain applies the references' default domain to every
	// definition domain instead of matching domains by name.
	MultiDomain bool

	// CatalogName, when non-empty, overrides the synthesized Language:
	// header field.
	CatalogName string

	// Quiet is carried for callers; Merge itself does not read it and
	// prints no summary (the counters are returned in Stats).
	Quiet bool
}

// Stats accumulates the per-merge summary counters.
type Stats struct {
	Merged   int
	Fuzzied  int
	Missing  int
	Obsolete int
}
