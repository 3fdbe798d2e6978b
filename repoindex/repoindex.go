// Package repoindex implements the repository index (C6): scanning a
// repository directory for candidate archives and building/consuming
// a compressed catalog of their control stanzas, per spec §4.5.
package repoindex

import (
	"archive/tar"
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/saracen/walker"

	"github.com/wpkg-go/wpkg/archive"
	"github.com/wpkg-go/wpkg/control"
)

// IndexName is the file created under a repository root (§6
// "<repo>/index.tar.gz").
const IndexName = "index.tar.gz"

// Candidate is one archive discovered in a repository: its path, its
// parsed control stanza, and the archive file's size and mtime. Scan
// fills Size and ModTime; the index does not store them, so
// candidates returned by Read leave them zero.
type Candidate struct {
	Path    string
	Control control.Stanza
	Size    int64
	ModTime time.Time
}

// Scan walks repoDir collecting every *.deb (and *.wpkg, the
// historical wpkg extension) candidate archive and parsing its
// control stanza, using saracen/walker for concurrent directory
// traversal (grounded on aptly's deb.CollectPackageFiles).
func Scan(repoDir string) ([]Candidate, error) {
	var (
		mu         sync.Mutex
		candidates []Candidate
		walkErr    error
	)

	err := walker.Walk(repoDir, func(path string, info os.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".deb") && !strings.HasSuffix(path, ".wpkg") {
			return nil
		}

		stanza, err := archive.NewReader(path).ControlStanza()
		if err != nil {
			mu.Lock()
			walkErr = errors.Wrapf(err, "repoindex: reading %s", path)
			mu.Unlock()
			return nil
		}

		mu.Lock()
		candidates = append(candidates, Candidate{
			Path:    path,
			Control: stanza,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "repoindex: walking %s", repoDir)
	}
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })
	return candidates, nil
}

// candidateMember names the per-candidate stanza file inside the
// index archive (§6 "index/<pkg>_<ver>_<arch>.ctrl").
func candidateMember(c Candidate) string {
	return "index/" + c.Control["Package"] + "_" + c.Control["Version"] + "_" + c.Control["Architecture"] + ".ctrl"
}

// Write builds the compressed index.tar.gz for candidates at
// indexPath.
func Write(indexPath string, candidates []Candidate) error {
	f, err := os.Create(indexPath)
	if err != nil {
		return errors.Wrapf(err, "repoindex: creating %s", indexPath)
	}
	defer f.Close()

	gz := pgzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for _, c := range candidates {
		var buf bytes.Buffer
		bw := bufio.NewWriter(&buf)
		stanza := c.Control.Copy()
		stanza["Filename"] = c.Path
		if err := stanza.WriteTo(bw); err != nil {
			return errors.Wrapf(err, "repoindex: rendering stanza for %s", c.Path)
		}
		if err := bw.Flush(); err != nil {
			return errors.Wrap(err, "repoindex: flushing stanza buffer")
		}

		if err := tw.WriteHeader(&tar.Header{
			Name: candidateMember(c),
			Size: int64(buf.Len()),
			Mode: 0644,
		}); err != nil {
			return errors.Wrap(err, "repoindex: writing tar header")
		}
		if _, err := tw.Write(buf.Bytes()); err != nil {
			return errors.Wrap(err, "repoindex: writing tar body")
		}
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "repoindex: closing tar writer")
	}
	return gz.Close()
}

// Read parses a previously built index.tar.gz back into candidates.
// Filename carries the archive path as Scan recorded it: repoDir
// joined with the file's location under it.
func Read(indexPath string) ([]Candidate, error) {
	f, err := os.Open(indexPath)
	if err != nil {
		return nil, errors.Wrapf(err, "repoindex: opening %s", indexPath)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "repoindex: opening gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var candidates []Candidate
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		reader := control.NewReader(tr)
		stanza, err := reader.ReadStanza()
		if err != nil {
			return nil, errors.Wrapf(err, "repoindex: parsing %s", hdr.Name)
		}
		if stanza == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Path:    stanza["Filename"],
			Control: stanza,
		})
	}
	return candidates, nil
}

// Stale reports whether indexPath is missing or older than the
// newest archive mtime under repoDir (§4.5 "Staleness").
func Stale(repoDir, indexPath string) (bool, error) {
	indexInfo, err := os.Stat(indexPath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "repoindex: statting %s", indexPath)
	}

	stale := false
	err = walker.Walk(repoDir, func(path string, info os.FileInfo) error {
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".deb") && !strings.HasSuffix(path, ".wpkg") {
			return nil
		}
		if info.ModTime().After(indexInfo.ModTime()) {
			stale = true
		}
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "repoindex: walking %s", repoDir)
	}
	return stale, nil
}

// Consume returns the candidates found in repoDir: the cached index
// if present and fresh (fast path), or a fresh Scan, rebuilding the
// index as a side effect, when forceRescan is set or the index is
// stale/missing (validated path), per §4.5.
func Consume(repoDir string, forceRescan bool) ([]Candidate, error) {
	indexPath := filepath.Join(repoDir, IndexName)

	if !forceRescan {
		stale, err := Stale(repoDir, indexPath)
		if err != nil {
			return nil, err
		}
		if !stale {
			return Read(indexPath)
		}
	}

	candidates, err := Scan(repoDir)
	if err != nil {
		return nil, err
	}
	if err := Write(indexPath, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}
