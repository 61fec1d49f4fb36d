package merge

import (
	"strings"

	"github.com/minios-linux/potools/langmeta"
)

// recognizedHeaderFields lists the header lines the merge engine treats
// specially by name; anything else falls into the "unknown" bucket that
// is carried along verbatim.
var recognizedHeaderFields = []string{
	"Project-Id-Version",
	"Report-Msgid-Bugs-To",
	"POT-Creation-Date",
	"PO-Revision-Date",
	"Last-Translator",
	"Language-Team",
	"Language",
	"MIME-Version",
	"Content-Type",
	"Content-Transfer-Encoding",
}

// fromReference is the subset of recognized fields that come from the
// reference catalog rather than the definitions.
var fromReference = map[string]bool{
	"report-msgid-bugs-to": true,
	"pot-creation-date":    true,
}

// mergeHeaderFields performs the header's field-level union:
// Report-Msgid-Bugs-To and POT-Creation-Date come from the reference;
// every other recognized field comes from the definitions; unrecognized
// lines from the definitions are preserved in place, and any unrecognized
// reference lines absent from the definitions are appended. Content-Type's
// charset= token is then force-rewritten to UTF-8 regardless of its
// source, since the in-memory strings it describes are UTF-8 by the time
// this runs. Language: is synthesized from Language-Team: when the
// definitions carry neither, or overridden outright when catalogName is
// non-empty.
func mergeHeaderFields(defHeader, refHeader, catalogName string) string {
	defLines := strings.Split(defHeader, "\n")
	refFields := parseFields(refHeader)

	out := make([]string, 0, len(defLines)+4)
	seen := make(map[string]bool)

	for _, line := range defLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, _, ok := splitField(line)
		if !ok {
			out = append(out, line)
			continue
		}
		lk := strings.ToLower(key)
		seen[lk] = true
		if fromReference[lk] {
			if v, ok := refFields[lk]; ok {
				out = append(out, key+": "+v)
				continue
			}
		}
		out = append(out, line)
	}

	// Recognized fields the definitions lack entirely: reference-sourced
	// fields always backfill; other recognized fields backfill too, since
	// an absent definitions header (brand-new catalog) has nothing better
	// to offer than the reference's placeholder value.
	for _, field := range recognizedHeaderFields {
		lk := strings.ToLower(field)
		if seen[lk] {
			continue
		}
		if v, ok := refFields[lk]; ok {
			out = append(out, field+": "+v)
			seen[lk] = true
		}
	}

	// Unrecognized reference lines the definitions never had.
	for _, line := range strings.Split(refHeader, "\n") {
		key, _, ok := splitField(line)
		if !ok {
			continue
		}
		lk := strings.ToLower(key)
		if isRecognized(lk) || seen[lk] {
			continue
		}
		out = append(out, line)
		seen[lk] = true
	}

	out = forceUTF8ContentType(out)

	if catalogName != "" {
		out = setField(out, "Language", catalogName)
	} else if !seen["language"] {
		if team, ok := fieldValue(out, "Language-Team"); ok {
			if lang := langmeta.LanguageFromTeam(team); lang != "" {
				out = setField(out, "Language", lang)
			}
		}
	}

	if _, ok := fieldValue(out, "Plural-Forms"); !ok {
		if lang, ok := fieldValue(out, "Language"); ok && lang != "" {
			out = append(out, "Plural-Forms: "+langmeta.PluralFormsForLang(lang))
		}
	}

	return strings.Join(trimTrailingEmpty(out), "\n")
}

// forceUTF8ContentType rewrites the charset= token of the Content-Type
// line (whichever source it was carried from) to UTF-8: every Entry
// string in memory is already canonical UTF-8 by the time the merge
// engine runs, regardless of what charset the definitions file declared,
// so the emitted Content-Type must say so too or the written file lies
// about its own bytes.
func forceUTF8ContentType(lines []string) []string {
	for i, line := range lines {
		key, value, ok := splitField(line)
		if !ok || strings.ToLower(key) != "content-type" {
			continue
		}
		lines[i] = key + ": " + rewriteCharsetUTF8(value)
	}
	return lines
}

func rewriteCharsetUTF8(contentType string) string {
	lower := strings.ToLower(contentType)
	idx := strings.Index(lower, "charset=")
	if idx < 0 {
		return contentType
	}
	rest := contentType[idx+len("charset="):]
	end := len(rest)
	for j, c := range rest {
		if c == ';' || c == ' ' || c == '\t' {
			end = j
			break
		}
	}
	return contentType[:idx] + "charset=UTF-8" + rest[end:]
}

func isRecognized(lowerKey string) bool {
	for _, f := range recognizedHeaderFields {
		if strings.ToLower(f) == lowerKey {
			return true
		}
	}
	return false
}

func splitField(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func parseFields(header string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(header, "\n") {
		if key, value, ok := splitField(line); ok {
			out[strings.ToLower(key)] = value
		}
	}
	return out
}

func fieldValue(lines []string, field string) (string, bool) {
	lk := strings.ToLower(field)
	for _, line := range lines {
		if key, value, ok := splitField(line); ok && strings.ToLower(key) == lk {
			return value, true
		}
	}
	return "", false
}

func setField(lines []string, field, value string) []string {
	lk := strings.ToLower(field)
	for i, line := range lines {
		if key, _, ok := splitField(line); ok && strings.ToLower(key) == lk {
			lines[i] = field + ": " + value
			return lines
		}
	}
	return append(lines, field+": "+value)
}

func trimTrailingEmpty(lines []string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
