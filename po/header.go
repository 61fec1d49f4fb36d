package po

import "strings"

// HeaderValue looks up a "Field: value" line within the domain's header
// msgstr, case-insensitively.
func HeaderValue(d *Domain, field string) (string, bool) {
	h := d.Header()
	if h == nil {
		return "", false
	}
	fields := parseHeaderFields(h.MsgStr)
	v, ok := fields[strings.ToLower(field)]
	return v, ok
}

// SetHeaderValue inserts or replaces a "Field: value" line in the
// domain's header msgstr, creating the header entry if absent. Field
// order is preserved for existing fields; new fields are appended.
func SetHeaderValue(d *Domain, field, value string) {
	h := d.Header()
	if h == nil {
		h = NewEntry()
		d.Append(h)
	}
	lines := splitHeaderLines(h.MsgStr)
	key := strings.ToLower(field)
	replaced := false
	for i, line := range lines {
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		if strings.ToLower(strings.TrimSpace(line[:idx])) == key {
			lines[i] = field + ": " + value
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, field+": "+value)
	}
	h.MsgStr = strings.Join(lines, "\n")
}

func splitHeaderLines(header string) []string {
	if header == "" {
		return nil
	}
	lines := strings.Split(header, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Charset returns the charset named in the domain's Content-Type header
// field as written (not canonicalized), or "" if absent/unparsable.
func Charset(d *Domain) string {
	ct, ok := HeaderValue(d, "Content-Type")
	if !ok {
		return ""
	}
	idx := strings.Index(strings.ToLower(ct), "charset=")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(ct[idx+len("charset="):])
}

// PluralFormsHeader returns the raw Plural-Forms header value, or "" if
// absent.
func PluralFormsHeader(d *Domain) string {
	v, _ := HeaderValue(d, "Plural-Forms")
	return v
}
