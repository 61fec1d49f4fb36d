package merge

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/minios-linux/potools/format"
	"github.com/minios-linux/potools/fuzzyindex"
	"github.com/minios-linux/potools/plural"
	"github.com/minios-linux/potools/po"
)

// used bitfield values, set during message merge and consumed by the
// finalization pass once the result domain's nplurals is known.
const (
	usedExpandPlural = 1 << iota
	usedCollapsePlural
)

type searchResult struct {
	entry      *po.Entry
	exact      bool
	forceFuzzy bool
}

// Merge combines references with definitions (and zero or more
// compendium catalogs) into an updated catalog.
//
// No charset re-encoding step is needed here: every Entry string is
// already canonical UTF-8 once po.ParseBytes has run, regardless of the
// originating file's Content-Type charset, so the "convert everything to
// a common charset" precondition is satisfied by construction rather
// than by a merge-time conversion pass. Only the Content-Type header
// field itself is normalized to say so, in mergeHeaderFields.
func Merge(ctx context.Context, definitions, references *po.DomainList, compendiums []*po.DomainList, cfg Config) (*po.DomainList, Stats, error) {
	if references == nil || len(references.Domains) == 0 {
		return nil, Stats{}, fmt.Errorf("merge: references catalog has no domains")
	}
	if definitions == nil {
		definitions = po.NewDomainList()
	}
	ensureHeader(references)

	result := po.NewDomainList()
	var stats Stats

	if cfg.MultiDomain {
		refDomain := firstDomain(references)
		defDomains := definitions.Domains
		if len(defDomains) == 0 {
			defDomains = []*po.Domain{po.NewDomain(refDomain.Name)}
		}
		for _, defDomain := range defDomains {
			mergedDomain := mergeDomain(ctx, defDomain, refDomain, collectCompendiumDomains(compendiums, defDomain.Name, true), cfg, &stats)
			mergedDomain.Name = defDomain.Name
			result.AddDomain(mergedDomain)
		}
		return result, stats, nil
	}

	for _, refDomain := range references.Domains {
		var defDomain *po.Domain
		switch {
		default:
			if d, ok := definitions.Get(refDomain.Name); ok {
				defDomain = d
			}
		}
		if defDomain == nil {
			defDomain = po.NewDomain(refDomain.Name)
		}

		compDomains := collectCompendiumDomains(compendiums, refDomain.Name, cfg.MultiDomain)
		mergedDomain := mergeDomain(ctx, defDomain, refDomain, compDomains, cfg, &stats)
		result.AddDomain(mergedDomain)
	}

	return result, stats, nil
}

func ensureHeader(dl *po.DomainList) {
	for _, d := range dl.Domains {
		if d.Header() != nil {
			continue
		}
		d.Prepend(defaultHeader())
	}
}

func defaultHeader() *po.Entry {
	h := po.NewEntry()
	h.MsgStr = "Project-Id-Version: PACKAGE VERSION\n" +
		"Report-Msgid-Bugs-To: \n" +
		"POT-Creation-Date: \n" +
		"PO-Revision-Date: YEAR-MO-DA HO:MI+ZONE\n" +
		"Last-Translator: FULL NAME <EMAIL@ADDRESS>\n" +
		"Language-Team: LANGUAGE <LL@li.org>\n" +
		"Language: \n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: text/plain; charset=UTF-8\n" +
		"Content-Transfer-Encoding: 8bit"
	return h
}

func firstDomain(dl *po.DomainList) *po.Domain {
	if len(dl.Domains) == 0 {
		return nil
	}
	return dl.Domains[0]
}

func collectCompendiumDomains(compendiums []*po.DomainList, name string, multiDomain bool) []*po.Domain {
	var out []*po.Domain
	for _, c := range compendiums {
		if c == nil {
			continue
		}
		if multiDomain {
			out = append(out, c.Domains...)
			continue
		}
		if d, ok := c.Get(name); ok {
			out = append(out, d)
		}
	}
	return out
}

func mergeDomain(ctx context.Context, defs, refs *po.Domain, compendiums []*po.Domain, cfg Config, stats *Stats) *po.Domain {
	result := po.NewDomain(refs.Name)

	combined := buildCombinedLookup(defs, compendiums)

	var defIndex, compIndex *fuzzyindex.Index
	if cfg.UseFuzzyMatching {
		defIndex = fuzzyindex.New(defs)
		if len(compendiums) > 0 {
			compIndex = fuzzyindex.New(compendiumUnion(compendiums))
		}
	}

	results := searchPhase(ctx, refs, combined, defIndex, compIndex, cfg)

	matchedDefs := make(map[*po.Entry]bool, len(refs.Entries))
	for i, refEntry := range refs.Entries {
		sr := results[i]
		var merged *po.Entry
		if sr.entry != nil {
			matchedDefs[sr.entry] = true
			merged = messageMerge(sr.entry, refEntry, sr.forceFuzzy, cfg)
			if !merged.IsHeader() {
				stats.Merged++
				if merged.IsFuzzy() {
					stats.Fuzzied++
				}
			}
		} else {
			merged = newFromReference(refEntry)
			if !merged.IsHeader() {
				stats.Missing++
			}
		}
		result.Append(merged)
	}

	if !cfg.ForMsgfmt {
		for _, d := range defs.Entries {
			if d.Obsolete {
				obs := *d
				result.Append(&obs)
				continue
			}
			if matchedDefs[d] {
				continue
			}
			obs := *d
			obs.ExtractedComments = nil
			obs.References = nil
			obs.Obsolete = true
			result.Append(&obs)
			stats.Obsolete++
		}
	}

	finalize(result)
	if cfg.ForMsgfmt {
		result = stripForMsgfmt(result)
	}
	return result
}

func buildCombinedLookup(defs *po.Domain, compendiums []*po.Domain) map[string]*po.Entry {
	m := make(map[string]*po.Entry)
	for _, e := range defs.Entries {
		if e.Obsolete {
			continue
		}
		if _, ok := m[e.Key()]; !ok {
			m[e.Key()] = e
		}
	}
	for _, c := range compendiums {
		for _, e := range c.Entries {
			if e.Obsolete {
				continue
			}
			if _, ok := m[e.Key()]; !ok {
				m[e.Key()] = e
			}
		}
	}
	return m
}

func compendiumUnion(compendiums []*po.Domain) *po.Domain {
	u := po.NewDomain("compendium")
	u.AllowDuplicates(true)
	for _, c := range compendiums {
		for _, e := range c.Entries {
			if !e.Obsolete {
				u.Append(e)
			}
		}
	}
	return u
}

// searchPhase is the parallel search step: independent per-message work
// distributed across a bounded worker pool, with cooperative
// cancellation between messages (no sub-message cancellation is offered
// or needed).
func searchPhase(ctx context.Context, refs *po.Domain, combined map[string]*po.Entry, defIndex, compIndex *fuzzyindex.Index, cfg Config) []searchResult {
	n := len(refs.Entries)
	results := make([]searchResult, n)
	if n == 0 {
		return results
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					continue
				default:
				}
				results[i] = searchOne(refs.Entries[i], combined, defIndex, compIndex, cfg)
			}
		}()
	}
	for i := range refs.Entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func searchOne(ref *po.Entry, combined map[string]*po.Entry, defIndex, compIndex *fuzzyindex.Index, cfg Config) searchResult {
	if exact, ok := combined[ref.Key()]; ok {
		return searchResult{entry: exact, exact: true}
	}
	if !cfg.UseFuzzyMatching || ref.IsHeader() {
		return searchResult{}
	}

	var best fuzzyindex.Candidate
	found := false
	if defIndex != nil {
		if c, ok := defIndex.Search(ref.Context, ref.MsgID, 0, false); ok {
			best, found = c, true
		}
	}
	if compIndex != nil {
		lower := 0.0
		if found {
			lower = best.Score
		}
		if c, ok := compIndex.Search(ref.Context, ref.MsgID, lower, true); ok {
			if !found || c.Score > best.Score {
				best, found = c, true
			}
		}
	}
	if !found {
		return searchResult{}
	}
	return searchResult{entry: best.Entry, forceFuzzy: true}
}

// messageMerge implements the per-message merge rule.
func messageMerge(def, ref *po.Entry, forceFuzzy bool, cfg Config) *po.Entry {
	if ref.IsHeader() {
		return mergeHeaderEntry(def, ref, cfg)
	}

	merged := po.NewEntry()
	merged.HasContext = ref.HasContext
	merged.Context = ref.Context
	merged.MsgID = ref.MsgID
	merged.HasPlural = ref.HasPlural
	merged.MsgIDPlural = ref.MsgIDPlural
	merged.ExtractedComments = ref.ExtractedComments
	merged.References = ref.References
	merged.Flags = withoutFuzzy(ref.Flags)
	merged.RefreshFormatFlags()
	merged.PluralRange = ref.PluralRange
	merged.DoWrap = ref.DoWrap
	merged.DoSyntaxCheck = ref.DoSyntaxCheck
	merged.Obsolete = ref.Obsolete
	merged.Pos = ref.Pos

	merged.TranslatorComments = def.TranslatorComments
	merged.MsgStr = def.MsgStr
	merged.MsgStrPlural = append([]string(nil), def.MsgStrPlural...)

	if ref.HasPlural && !def.HasPlural {
		merged.Used = usedExpandPlural
	} else if !ref.HasPlural && def.HasPlural {
		merged.Used = usedCollapsePlural
	}

	fuzzy := def.IsFuzzy() || forceFuzzy
	if ref.HasPlural != def.HasPlural {
		fuzzy = true
	} else if ref.HasPlural && def.HasPlural && ref.MsgIDPlural != def.MsgIDPlural {
		fuzzy = true
	}
	if !fuzzy && formatMismatch(ref, def, merged) {
		fuzzy = true
	}
	if !fuzzy && def.PluralRange != nil && ref.PluralRange != nil {
		if def.PluralRange.Min < ref.PluralRange.Min || def.PluralRange.Max > ref.PluralRange.Max {
			fuzzy = true
		}
	}
	merged.SetFuzzy(fuzzy)

	if cfg.KeepPrevious {
		if def.IsFuzzy() {
			merged.HasPreviousContext = def.HasPreviousContext
			merged.PreviousContext = def.PreviousContext
			merged.HasPreviousMsgID = def.HasPreviousMsgID
			merged.PreviousMsgID = def.PreviousMsgID
			merged.HasPreviousMsgIDPlural = def.HasPreviousMsgIDPlural
			merged.PreviousMsgIDPlural = def.PreviousMsgIDPlural
		} else {
			merged.HasPreviousContext = def.HasContext
			merged.PreviousContext = def.Context
			merged.HasPreviousMsgID = true
			merged.PreviousMsgID = def.MsgID
			merged.HasPreviousMsgIDPlural = def.HasPlural
			merged.PreviousMsgIDPlural = def.MsgIDPlural
		}
	}

	return merged
}

func mergeHeaderEntry(def, ref *po.Entry, cfg Config) *po.Entry {
	merged := po.NewEntry()
	merged.ExtractedComments = ref.ExtractedComments
	merged.References = ref.References
	merged.TranslatorComments = def.TranslatorComments
	merged.Flags = withoutFuzzy(def.Flags)
	merged.RefreshFormatFlags()
	merged.Pos = ref.Pos
	merged.MsgStr = mergeHeaderFields(def.MsgStr, ref.MsgStr, cfg.CatalogName)
	merged.SetFuzzy(def.IsFuzzy())
	return merged
}

// formatMismatch implements fuzzy-marking rule (d): a dialect where ref
// is possible-format but def is not, and the merged msgstr fails that
// dialect's check against ref's msgid.
func formatMismatch(ref, def, merged *po.Entry) bool {
	for dialectName, refState := range ref.FormatFlags {
		if refState != po.TriPossible {
			continue
		}
		if def.FormatFlags[dialectName] == po.TriPossible {
			continue
		}
		dialect, ok := format.Lookup(dialectName)
		if !ok {
			continue
		}
		refVec, err := dialect.Parse(ref.MsgID)
		if err != nil {
			continue
		}
		if !checkEntryFormat(dialect, refVec, merged) {
			return true
		}
	}
	return false
}

func checkEntryFormat(dialect format.Dialect, refVec *format.ArgVec, merged *po.Entry) bool {
	if merged.HasPlural {
		for _, s := range merged.MsgStrPlural {
			if s == "" {
				continue
			}
			vec, err := dialect.Parse(s)
			if err != nil {
				return false
			}
			if len(format.Check(refVec, vec, false)) > 0 {
				return false
			}
		}
		return true
	}
	if merged.MsgStr == "" {
		return true
	}
	vec, err := dialect.Parse(merged.MsgStr)
	if err != nil {
		return false
	}
	return len(format.Check(refVec, vec, false)) == 0
}

func newFromReference(ref *po.Entry) *po.Entry {
	e := po.NewEntry()
	e.HasContext = ref.HasContext
	e.Context = ref.Context
	e.MsgID = ref.MsgID
	e.HasPlural = ref.HasPlural
	e.MsgIDPlural = ref.MsgIDPlural
	e.ExtractedComments = ref.ExtractedComments
	e.References = ref.References
	e.Flags = withoutFuzzy(ref.Flags)
	e.RefreshFormatFlags()
	e.PluralRange = ref.PluralRange
	e.DoWrap = ref.DoWrap
	e.DoSyntaxCheck = ref.DoSyntaxCheck
	e.Obsolete = ref.Obsolete
	e.Pos = ref.Pos
	if ref.IsHeader() {
		e.MsgStr = ref.MsgStr
	}
	return e
}

func withoutFuzzy(flags []string) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if f != "fuzzy" {
			out = append(out, f)
		}
	}
	return out
}

// finalize applies the used-bitfield post-processing and the
// previous-msg clearing pass.
func finalize(d *po.Domain) {
	nplurals := domainNplurals(d)
	for _, e := range d.Entries {
		switch {
		case e.Used&usedExpandPlural != 0:
			plural := make([]string, nplurals)
			for i := range plural {
				plural[i] = e.MsgStr
			}
			e.HasPlural = true
			e.MsgStrPlural = plural
			e.MsgStr = ""
			e.SetFuzzy(true)
		case e.Used&usedCollapsePlural != 0:
			if len(e.MsgStrPlural) > 0 {
				e.MsgStr = e.MsgStrPlural[0]
			}
			e.MsgStrPlural = nil
			e.SetFuzzy(true)
		}
		e.Used = 0
	}
	for _, e := range d.Entries {
		if !e.IsFuzzy() || (e.MsgStr == "" && len(e.MsgStrPlural) == 0) {
			e.ClearPrevious()
		}
	}
}

func domainNplurals(d *po.Domain) int {
	h := d.Header()
	if h == nil {
		return 2
	}
	_, n, _ := plural.ParseHeader(po.PluralFormsHeader(d))
	if n < 1 {
		return 2
	}
	return n
}

// stripForMsgfmt rebuilds d keeping only what a msgfmt-style consumer
// wants: the header, plus translated non-fuzzy, non-obsolete messages.
func stripForMsgfmt(d *po.Domain) *po.Domain {
	out := po.NewDomain(d.Name)
	for _, e := range d.Entries {
		if e.Obsolete {
			continue
		}
		if e.IsHeader() || e.IsTranslated() {
			out.Append(e)
		}
	}
	return out
}
