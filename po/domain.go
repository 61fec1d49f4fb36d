package po

import (
	"sort"
	"strings"
)

// Domain is one named message catalog within a DomainList: an ordered
// slice of entries plus a fast (context, msgid) index.
type Domain struct {
	Name    string
	Entries []*Entry

	index           map[string]*Entry
	allowDuplicates bool
}

// NewDomain returns an empty domain named name.
func NewDomain(name string) *Domain {
	return &Domain{Name: name, index: make(map[string]*Entry)}
}

// AllowDuplicates controls whether Append rejects a second entry sharing
// an existing (context, msgid) pair. merge and msgcat callers that must
// tolerate idempotent re-merges set this true.
func (d *Domain) AllowDuplicates(allow bool) { d.allowDuplicates = allow }

// Lookup returns the entry with the given context and msgid, or nil.
func (d *Domain) Lookup(ctxt, msgid string) *Entry {
	return d.index[Key(ctxt, msgid)]
}

// Header returns the domain's header entry (empty msgid, no context,
// not obsolete), or nil if none has been appended yet.
func (d *Domain) Header() *Entry {
	return d.Lookup("", "")
}

// Append adds e to the domain, indexing it by (context, msgid) unless it
// is obsolete (obsolete entries are not indexed: duplicates among them
// are common and harmless). Returns false without
// modifying the domain if a non-obsolete duplicate already exists and
// AllowDuplicates(true) was not called.
func (d *Domain) Append(e *Entry) bool {
	if !e.Obsolete {
		k := e.Key()
		if _, dup := d.index[k]; dup && !d.allowDuplicates {
			return false
		}
		d.index[k] = e
	}
	d.Entries = append(d.Entries, e)
	return true
}

// Prepend inserts e at the front of Entries, indexing it like Append.
// Used to synthesize a missing header entry, which conventionally sorts
// first.
func (d *Domain) Prepend(e *Entry) bool {
	if !e.Obsolete {
		k := e.Key()
		if _, dup := d.index[k]; dup && !d.allowDuplicates {
			return false
		}
		d.index[k] = e
	}
	d.Entries = append(d.Entries, nil)
	copy(d.Entries[1:], d.Entries[:len(d.Entries)-1])
	d.Entries[0] = e
	return true
}

// Remove deletes e from the domain (both the slice and the index).
func (d *Domain) Remove(e *Entry) {
	if !e.Obsolete {
		delete(d.index, e.Key())
	}
	for i, x := range d.Entries {
		if x == e {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
			return
		}
	}
}

// SortByMsgID reorders Entries by (context, msgid), header always first,
// matching msgcat --sort-by-msgid.
func (d *Domain) SortByMsgID() {
	sort.SliceStable(d.Entries, func(i, j int) bool {
		a, b := d.Entries[i], d.Entries[j]
		if a.IsHeader() != b.IsHeader() {
			return a.IsHeader()
		}
		if a.Context != b.Context {
			return a.Context < b.Context
		}
		return a.MsgID < b.MsgID
	})
}

// SortByFilePos reorders Entries by first reference (file, line), entries
// without references kept in their relative order at the end, header
// always first, per msgcat --sort-by-file.
func (d *Domain) SortByFilePos() {
	sort.SliceStable(d.Entries, func(i, j int) bool {
		a, b := d.Entries[i], d.Entries[j]
		if a.IsHeader() != b.IsHeader() {
			return a.IsHeader()
		}
		af, bf := len(a.References) > 0, len(b.References) > 0
		if af != bf {
			return af
		}
		if !af {
			return false
		}
		ra, rb := a.References[0], b.References[0]
		if ra.File != rb.File {
			return ra.File < rb.File
		}
		return ra.Line < rb.Line
	})
}

// MoveObsoleteToEnd partitions Entries so every obsolete entry follows
// every live one, preserving relative order within each group.
func (d *Domain) MoveObsoleteToEnd() {
	live := make([]*Entry, 0, len(d.Entries))
	obsolete := make([]*Entry, 0)
	for _, e := range d.Entries {
		if e.Obsolete {
			obsolete = append(obsolete, e)
		} else {
			live = append(live, e)
		}
	}
	d.Entries = append(live, obsolete...)
}

// Equal reports whether d and other carry the same entries, ignoring
// the POT-Creation-Date header field's value when ignorePOTDate is true.
func (d *Domain) Equal(other *Domain, ignorePOTDate bool) bool {
	if other == nil || len(d.Entries) != len(other.Entries) {
		return false
	}
	for i, e := range d.Entries {
		o := other.Entries[i]
		if !entriesEqual(e, o, ignorePOTDate) {
			return false
		}
	}
	return true
}

func entriesEqual(a, b *Entry, ignorePOTDate bool) bool {
	if a.HasContext != b.HasContext || a.Context != b.Context {
		return false
	}
	if a.MsgID != b.MsgID || a.HasPlural != b.HasPlural || a.MsgIDPlural != b.MsgIDPlural {
		return false
	}
	if a.Obsolete != b.Obsolete {
		return false
	}
	if a.IsHeader() && b.IsHeader() && ignorePOTDate {
		if !headerFieldsEqualIgnoringPOTDate(a.MsgStr, b.MsgStr) {
			return false
		}
	} else if a.MsgStr != b.MsgStr {
		return false
	}
	if len(a.MsgStrPlural) != len(b.MsgStrPlural) {
		return false
	}
	for i := range a.MsgStrPlural {
		if a.MsgStrPlural[i] != b.MsgStrPlural[i] {
			return false
		}
	}
	return true
}

func headerFieldsEqualIgnoringPOTDate(a, b string) bool {
	fa, fb := parseHeaderFields(a), parseHeaderFields(b)
	delete(fa, "pot-creation-date")
	delete(fb, "pot-creation-date")
	if len(fa) != len(fb) {
		return false
	}
	for k, v := range fa {
		if fb[k] != v {
			return false
		}
	}
	return true
}

func parseHeaderFields(header string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(header, "\n") {
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		out[key] = strings.TrimSpace(line[idx+1:])
	}
	return out
}

// DomainList is an ordered collection of Domains: a PO file with no
// "domain" lines has exactly one domain, conventionally named
// "messages".
type DomainList struct {
	Domains []*Domain

	byName map[string]*Domain
}

// DefaultDomainName is the conventional name for a domain-less catalog.
const DefaultDomainName = "messages"

// NewDomainList returns an empty domain list.
func NewDomainList() *DomainList {
	return &DomainList{byName: make(map[string]*Domain)}
}

// Get returns the named domain without creating it.
func (dl *DomainList) Get(name string) (*Domain, bool) {
	d, ok := dl.byName[name]
	return d, ok
}

// AddDomain registers an already-built domain into the list, replacing
// any existing domain of the same name. Used by callers (e.g. the merge
// engine) that build a Domain independently and then attach it.
func (dl *DomainList) AddDomain(d *Domain) {
	if existing, ok := dl.byName[d.Name]; ok {
		for i, x := range dl.Domains {
			if x == existing {
				dl.Domains[i] = d
				break
			}
		}
	} else {
		dl.Domains = append(dl.Domains, d)
	}
	dl.byName[d.Name] = d
}

// Domain returns the named domain, creating and appending it if absent.
func (dl *DomainList) Domain(name string) *Domain {
	if name == "" {
		name = DefaultDomainName
	}
	if d, ok := dl.byName[name]; ok {
		return d
	}
	d := NewDomain(name)
	dl.byName[name] = d
	dl.Domains = append(dl.Domains, d)
	return d
}

// Default returns (creating if needed) the "messages" domain: the usual
// entry point for single-domain PO documents.
func (dl *DomainList) Default() *Domain {
	return dl.Domain(DefaultDomainName)
}

// Lookup finds an entry by domain name, context, and msgid.
func (dl *DomainList) Lookup(domain, ctxt, msgid string) *Entry {
	d, ok := dl.byName[domain]
	if !ok {
		return nil
	}
	return d.Lookup(ctxt, msgid)
}

// SortByMsgID applies Domain.SortByMsgID to every domain.
func (dl *DomainList) SortByMsgID() {
	for _, d := range dl.Domains {
		d.SortByMsgID()
	}
}

// SortByFilePos applies Domain.SortByFilePos to every domain.
func (dl *DomainList) SortByFilePos() {
	for _, d := range dl.Domains {
		d.SortByFilePos()
	}
}

// MoveObsoleteToEnd applies Domain.MoveObsoleteToEnd to every domain.
func (dl *DomainList) MoveObsoleteToEnd() {
	for _, d := range dl.Domains {
		d.MoveObsoleteToEnd()
	}
}

// Equal reports whether dl and other hold the same named domains with
// equal content, per Domain.Equal.
func (dl *DomainList) Equal(other *DomainList, ignorePOTDate bool) bool {
	if other == nil || len(dl.Domains) != len(other.Domains) {
		return false
	}
	for _, d := range dl.Domains {
		od, ok := other.byName[d.Name]
		if !ok || !d.Equal(od, ignorePOTDate) {
			return false
		}
	}
	return true
}

// EntryCount returns the total number of entries across all domains.
func (dl *DomainList) EntryCount() int {
	n := 0
	for _, d := range dl.Domains {
		n += len(d.Entries)
	}
	return n
}
