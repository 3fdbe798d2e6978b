// Package control implements parsing and serialization of Debian-style
// control stanzas (C2): the RFC-822-like paragraph format used by
// package control files (WPKG/control), admindb status entries and
// repository index files.
package control

import (
	"bufio"
	"errors"
	"io"
	"sort"
	"strings"
	"unicode"
)

// Stanza is one control-file paragraph: an ordered set of fields,
// represented as a map since field order on read is not meaningful,
// only on write.
type Stanza map[string]string

// MaxFieldSize bounds a single field/line buffer to guard against a
// corrupt or hostile control file exhausting memory.
const MaxFieldSize = 2 * 1024 * 1024

// Canonical field order used when re-serializing a stanza, matching
// the order apt's own tagfile writer uses for binary package stanzas.
var canonicalOrder = []string{
	"Package",
	"Essential",
	"Status",
	"Priority",
	"Section",
	"Installed-Size",
	"Maintainer",
	"Architecture",
	"Source",
	"Version",
	"Replaces",
	"Provides",
	"Depends",
	"Pre-Depends",
	"Recommends",
	"Suggests",
	"Conflicts",
	"Breaks",
	"Conffiles",
	"Filename",
	"Size",
	"MD5Sum",
	"SHA1",
	"SHA256",
	"SHA512",
	"Description",
}

// Copy returns a shallow copy of the stanza.
func (s Stanza) Copy() Stanza {
	result := make(Stanza, len(s))
	for k, v := range s {
		result[k] = v
	}
	return result
}

// Bool coerces a field to a boolean, recognizing the "yes"/"no" values
// used by Essential and similar fields. Missing fields default to false.
func (s Stanza) Bool(field string) (bool, error) {
	value, ok := s[field]
	if !ok {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes":
		return true, nil
	case "no", "":
		return false, nil
	}
	return false, &FieldError{Field: field, Value: value, Reason: "expected yes/no"}
}

// Int coerces a field to an integer, as used by Installed-Size.
func (s Stanza) Int(field string) (int, error) {
	value, ok := s[field]
	if !ok || value == "" {
		return 0, nil
	}
	n := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, &FieldError{Field: field, Value: value, Reason: "expected an integer"}
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// FieldError reports a field that failed coercion or syntax validation.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return "control: field " + e.Field + " = " + e.Value + ": " + e.Reason
}

func isMultilineField(field string) bool {
	switch field {
	case "":
		return true
	case "Description":
		return true
	case "Conffiles":
		return true
	}
	return false
}

func writeField(w *bufio.Writer, field, value string) error {
	var err error
	if !isMultilineField(field) {
		_, err = w.WriteString(field + ": " + value + "\n")
		return err
	}

	if field != "" && !strings.HasSuffix(value, "\n") {
		value += "\n"
	}
	if field != "Description" && field != "" {
		value = "\n" + value
	}
	if field != "" {
		_, err = w.WriteString(field + ":" + value)
	} else {
		_, err = w.WriteString(value)
	}
	return err
}

// WriteTo serializes the stanza: the fields of canonicalOrder first,
// then every other field sorted by name. It works on a copy, so the
// stanza itself is left unchanged.
func (s Stanza) WriteTo(w *bufio.Writer) error {
	cp := s.Copy()

	for _, field := range canonicalOrder {
		value, ok := cp[field]
		if !ok {
			continue
		}
		delete(cp, field)
		if err := writeField(w, field, value); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(cp))
	for field := range cp {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	for _, field := range keys {
		if err := writeField(w, field, cp[field]); err != nil {
			return err
		}
	}

	return nil
}

// ErrMalformedStanza is returned when a control-file line is neither a
// continuation nor a "field: value" pair.
var ErrMalformedStanza = errors.New("control: malformed stanza syntax")

func canonicalCase(field string) string {
	upper := strings.ToUpper(field)
	switch upper {
	case "SHA1", "SHA256", "SHA512":
		return upper
	case "MD5SUM":
		return "MD5Sum"
	}

	startOfWord := true
	return strings.Map(func(r rune) rune {
		if startOfWord {
			startOfWord = false
			return unicode.ToUpper(r)
		}
		if r == '-' {
			startOfWord = true
		}
		return unicode.ToLower(r)
	}, field)
}

// Reader reads a stream of stanzas from a control file, stanza by
// stanza, separated by blank lines.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r with buffering sized for control-file stanzas.
func NewReader(r io.Reader) *Reader {
	scnr := bufio.NewScanner(bufio.NewReaderSize(r, 32768))
	scnr.Buffer(nil, MaxFieldSize)
	return &Reader{scanner: scnr}
}

// ReadStanza reads one stanza, returning (nil, nil) at end of stream.
func (c *Reader) ReadStanza() (Stanza, error) {
	stanza := make(Stanza, 32)
	lastField := ""
	lastFieldMultiline := false

	for c.scanner.Scan() {
		line := c.scanner.Text()

		if line == "" {
			if len(stanza) > 0 {
				return stanza, nil
			}
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if lastFieldMultiline {
				stanza[lastField] += line + "\n"
			} else {
				stanza[lastField] += " " + strings.TrimSpace(line)
			}
		} else {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				return nil, ErrMalformedStanza
			}
			lastField = canonicalCase(parts[0])
			lastFieldMultiline = isMultilineField(lastField)
			if lastFieldMultiline {
				stanza[lastField] = parts[1]
				if parts[1] != "" {
					stanza[lastField] += "\n"
				}
			} else {
				stanza[lastField] = strings.TrimSpace(parts[1])
			}
		}
	}

	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	if len(stanza) > 0 {
		return stanza, nil
	}
	return nil, nil
}

// ReadAll reads every stanza in the stream.
func ReadAll(r io.Reader) ([]Stanza, error) {
	reader := NewReader(r)
	var stanzas []Stanza
	for {
		s, err := reader.ReadStanza()
		if err != nil {
			return nil, err
		}
		if s == nil {
			break
		}
		stanzas = append(stanzas, s)
	}
	return stanzas, nil
}
