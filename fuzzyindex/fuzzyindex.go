// Package fuzzyindex implements the nearest-msgid lookup the merge engine
// uses when no exact (context, msgid) match exists: a lazily-built,
// thread-safe index over a domain's entries, scored by trigram overlap
// blended with a length ratio (no edit distance is computed), with a
// bias toward matching context.
package fuzzyindex

import (
	"strings"
	"sync"

	"github.com/minios-linux/potools/po"
)

// FuzzyThreshold is the minimum similarity score search() accepts.
const FuzzyThreshold = 0.6

// Candidate is a fuzzy-search hit: the matched entry and its score.
type Candidate struct {
	Entry *po.Entry
	Score float64
}

// Index is a lazily-built, thread-safe fuzzy-match index over one
// domain's (non-obsolete) entries.
type Index struct {
	domain *po.Domain
	once   sync.Once
	sigs   []signature
}

type signature struct {
	entry   *po.Entry
	ctxt    string
	msgid   string
	grams   map[string]int
	length  int
}

// New returns a lazily-initialized index over domain. No work happens
// until the first Search call, which triggers a one-shot build guarded
// by sync.Once so concurrent callers from a parallel merge search phase
// block on, rather than race, the first initialization.
func New(domain *po.Domain) *Index {
	return &Index{domain: domain}
}

func (idx *Index) ensureBuilt() {
	idx.once.Do(func() {
		idx.sigs = make([]signature, 0, len(idx.domain.Entries))
		for _, e := range idx.domain.Entries {
			if e.Obsolete || e.IsHeader() {
				continue
			}
			idx.sigs = append(idx.sigs, signature{
				entry:  e,
				ctxt:   e.Context,
				msgid:  e.MsgID,
				grams:  ngramCounts(e.MsgID, 3),
				length: len([]rune(e.MsgID)),
			})
		}
	})
}

// Search returns the best-scoring candidate for (ctxt, msgid) with score
// at least lowerBound (and at least FuzzyThreshold), or (Candidate{},
// false) if none qualifies. isSecondary marks a lower-priority search
// (e.g. over a compendium union after the primary definitions list came
// up empty), used by callers only to decide which of two searches to
// prefer on a tie; Search itself is agnostic to it.
func (idx *Index) Search(ctxt, msgid string, lowerBound float64, isSecondary bool) (Candidate, bool) {
	idx.ensureBuilt()
	floor := lowerBound
	if floor < FuzzyThreshold {
		floor = FuzzyThreshold
	}

	targetGrams := ngramCounts(msgid, 3)
	targetLen := len([]rune(msgid))

	best := Candidate{}
	found := false
	for _, sig := range idx.sigs {
		score := similarity(msgid, targetGrams, targetLen, sig.msgid, sig.grams, sig.length)
		if sig.ctxt == ctxt {
			score = score*0.9 + 0.1
		} else if ctxt != "" && sig.ctxt != "" {
			// Distinct, non-empty contexts are strong evidence of an
			// unrelated message; penalize instead of ignoring context.
			score *= 0.5
		}
		if score > 1 {
			score = 1
		}
		if score >= floor && (!found || score > best.Score) {
			best = Candidate{Entry: sig.entry, Score: score}
			found = true
		}
	}
	return best, found
}

// similarity combines normalized n-gram overlap (a cheap upper bound on
// edit similarity) with a length-ratio penalty so very different-length
// strings don't score highly on a few shared trigrams.
func similarity(a string, aGrams map[string]int, aLen int, b string, bGrams map[string]int, bLen int) float64 {
	if a == b {
		return 1.0
	}
	if aLen == 0 || bLen == 0 {
		return 0
	}
	overlap := 0
	for g, an := range aGrams {
		if bn, ok := bGrams[g]; ok {
			if an < bn {
				overlap += an
			} else {
				overlap += bn
			}
		}
	}
	total := 0
	for _, n := range aGrams {
		total += n
	}
	for _, n := range bGrams {
		total += n
	}
	if total == 0 {
		// Strings shorter than the n-gram size: fall back to a coarse
		// length-ratio comparison.
		shorter, longer := aLen, bLen
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return float64(shorter) / float64(longer)
	}
	gramScore := 2 * float64(overlap) / float64(total)

	shorter, longer := aLen, bLen
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	lengthRatio := float64(shorter) / float64(longer)

	return gramScore*0.8 + lengthRatio*0.2
}

func ngramCounts(s string, n int) map[string]int {
	r := []rune(strings.ToLower(s))
	counts := make(map[string]int)
	if len(r) < n {
		if len(r) > 0 {
			counts[string(r)] = 1
		}
		return counts
	}
	for i := 0; i+n <= len(r); i++ {
		counts[string(r[i:i+n])]++
	}
	return counts
}
