package admindb

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/wpkg-go/wpkg/control"
)

// toStanza renders a Record as the control.Stanza stored in the
// status file: the package's own control fields plus the three
// admindb-owned overlay fields Status, Auto-Installed and Conffiles.
func (r *Record) toStanza() control.Stanza {
	s := control.Stanza{}
	if r.Control != nil {
		s = r.Control.Copy()
	}

	s["Package"] = r.Name
	s["Version"] = r.Version
	s["Architecture"] = r.Architecture
	s["Status"] = string(r.Selection) + " " + string(r.State)
	if r.AutoInstalled {
		s["Auto-Installed"] = "yes"
	} else {
		delete(s, "Auto-Installed")
	}

	if len(r.Conffiles) > 0 {
		var b strings.Builder
		for _, cf := range r.Conffiles {
			b.WriteString(" ")
			b.WriteString(cf.Path)
			b.WriteString(" ")
			b.WriteString(cf.PackagedMD5)
			b.WriteString("\n")
		}
		s["Conffiles"] = b.String()
	} else {
		delete(s, "Conffiles")
	}

	return s
}

// fromStanza parses a status-file stanza back into a Record. File
// list and script bodies live in info/<name>.* and are attached by
// DB.load, not reconstructed here.
func fromStanza(s control.Stanza) (*Record, error) {
	r := &Record{
		Name:         s["Package"],
		Version:      s["Version"],
		Architecture: s["Architecture"],
		Control:      s.Copy(),
	}

	if r.Name == "" {
		return nil, errors.New("admindb: status stanza missing Package field")
	}

	status := strings.Fields(s["Status"])
	if len(status) != 2 {
		return nil, errors.Errorf("admindb: malformed Status field %q for package %s", s["Status"], r.Name)
	}
	r.Selection = Selection(status[0])
	r.State = State(status[1])

	auto, err := r.Control.Bool("Auto-Installed")
	if err != nil {
		return nil, errors.Wrapf(err, "admindb: package %s", r.Name)
	}
	r.AutoInstalled = auto

	delete(r.Control, "Status")
	delete(r.Control, "Auto-Installed")

	if raw, ok := s["Conffiles"]; ok {
		for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, errors.Errorf("admindb: malformed conffile digest line %q for %s", line, r.Name)
			}
			r.Conffiles = append(r.Conffiles, ConffileDigest{Path: fields[0], PackagedMD5: fields[1]})
		}
		delete(r.Control, "Conffiles")
	}

	return r, nil
}

// writeStatus serializes every record to w, each stanza separated by
// a blank line, matching dpkg's own status-file layout.
func writeStatus(w io.Writer, records []*Record) error {
	bw := bufio.NewWriter(w)
	for i, r := range records {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if err := r.toStanza().WriteTo(bw); err != nil {
			return errors.Wrapf(err, "admindb: writing status stanza for %s", r.Name)
		}
	}
	return bw.Flush()
}

// readStatus parses every stanza out of r into Records.
func readStatus(r io.Reader) ([]*Record, error) {
	stanzas, err := control.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "admindb: reading status file")
	}

	records := make([]*Record, 0, len(stanzas))
	for _, s := range stanzas {
		rec, err := fromStanza(s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseFileList parses the info/<name>.list format: one path per line.
func parseFileList(body []byte) []FileEntry {
	var entries []FileEntry
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, FileEntry{Path: line})
	}
	return entries
}

// encodeFileList renders a file list back to the info/<name>.list
// format.
func encodeFileList(entries []FileEntry) []byte {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Path)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// parseMd5sums parses the info/<name>.md5sums format: "<hex>  <path>".
func parseMd5sums(body []byte) map[string]string {
	sums := map[string]string{}
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "  ", 2)
		if len(fields) != 2 {
			fields = strings.Fields(line)
			if len(fields) != 2 {
				continue
			}
		}
		sums[fields[1]] = fields[0]
	}
	return sums
}

func formatMode(mode int64) string {
	return strconv.FormatInt(mode, 8)
}
