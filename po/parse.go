package po

import (
	"bytes"
	"os"
	"strings"

	"github.com/minios-linux/potools/charset"
	"github.com/minios-linux/potools/poerr"
	"github.com/minios-linux/potools/strm"
)

// ParseReaderOptions configures ParseBytes's charset handling.
type ParseReaderOptions struct {
	ParseOptions
	// OldPOFileInput mirrors the OLD_PO_FILE_INPUT environment override:
	// when true, the byte stream is consumed identity-mode, with no
	// charset conversion attempted at all.
	OldPOFileInput bool
}

// ParseBytes parses a complete PO/POT document held in data, tagging
// diagnostics with file. It pre-scans the raw bytes for a
// "Content-Type: ...; charset=" header field (always 7-bit-safe) and
// installs the matching converter before tokenizing. When the charset is
// unknown or has no converter in this build, or OldPOFileInput is set,
// no conversion is done and the lexer receives the bytes as they are.
func ParseBytes(data []byte, file string, opts ParseReaderOptions) (*DomainList, *poerr.Counter, error) {
	counter := poerr.NewCounter()
	s := strm.New(bytes.NewReader(data), file)

	if opts.OldPOFileInput {
		s.SetIdentityMode(true)
	} else if name, headerFound := sniffCharset(data); name != "" {
		canon, ok := charset.Canonicalize(name)
		if ok {
			if !charset.IsPortable(canon) {
				counter.Report(poerr.Position{File: file}, poerr.Warning, "charset %q is not a portable encoding name", name)
			}
			if conv, ok := charset.NewConverter(canon); ok {
				s.SetConverter(conv)
			} else {
				counter.Report(poerr.Position{File: file}, poerr.Warning, "charset %q is not supported by this build; continuing in byte-identity mode", canon)
				s.SetWeird(charset.IsWeird(canon), charset.IsWeirdCJK(canon))
			}
		}
	} else if headerFound {
		counter.Report(poerr.Position{File: file}, poerr.Warning, "charset missing in header; assuming ASCII")
	}

	dl, err := Parse(s, counter, opts.ParseOptions)
	return dl, counter, err
}

// ParseFile reads and parses the named file.
func ParseFile(path string, opts ParseReaderOptions) (*DomainList, *poerr.Counter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		counter := poerr.NewCounter()
		counter.Report(poerr.Position{File: path}, poerr.Fatal, "%v", err)
		return nil, counter, err
	}
	return ParseBytes(data, path, opts)
}

// sniffCharset extracts the charset= value from the first msgstr header
// block of a raw (not yet converted) PO document, by plain substring
// search: header fields are guaranteed ASCII regardless of the body
// encoding, so this is safe to do before any conversion. headerFound
// reports whether a Content-Type line was located at all, distinguishing
// "no header yet" from "header present but missing charset=".
func sniffCharset(data []byte) (name string, headerFound bool) {
	text := string(data)
	idx := strings.Index(strings.ToLower(text), "content-type:")
	if idx < 0 {
		return "", false
	}
	end := strings.IndexAny(text[idx:], "\n")
	var line string
	if end < 0 {
		line = text[idx:]
	} else {
		line = text[idx : idx+end]
	}
	cidx := strings.Index(strings.ToLower(line), "charset=")
	if cidx < 0 {
		return "", true
	}
	rest := line[cidx+len("charset="):]
	rest = strings.TrimSuffix(rest, `\n`)
	rest = strings.TrimSuffix(rest, `"`)
	return strings.TrimSpace(rest), true
}
