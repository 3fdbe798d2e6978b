package repoindex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wpkg-go/wpkg/control"
)

func TestCandidateMember(t *testing.T) {
	c := Candidate{Control: control.Stanza{"Package": "foo", "Version": "1.0", "Architecture": "all"}}
	if got, want := candidateMember(c), "index/foo_1.0_all.ctrl"; got != want {
		t.Errorf("candidateMember = %q, want %q", got, want)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, IndexName)

	candidates := []Candidate{
		{Path: "foo_1.0_all.deb", Control: control.Stanza{"Package": "foo", "Version": "1.0", "Architecture": "all", "Maintainer": "Test <t@example.com>"}},
		{Path: "bar_2.0_windows-amd64.deb", Control: control.Stanza{"Package": "bar", "Version": "2.0", "Architecture": "windows-amd64"}},
	}

	if err := Write(indexPath, candidates); err != nil {
		t.Fatal(err)
	}

	got, err := Read(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	byName := map[string]Candidate{}
	for _, c := range got {
		byName[c.Control["Package"]] = c
	}
	if byName["foo"].Control["Version"] != "1.0" {
		t.Errorf("foo version = %q", byName["foo"].Control["Version"])
	}
	if byName["foo"].Path != "foo_1.0_all.deb" {
		t.Errorf("foo Filename not round-tripped: %q", byName["foo"].Path)
	}
	if byName["bar"].Control["Architecture"] != "windows-amd64" {
		t.Errorf("bar architecture = %q", byName["bar"].Control["Architecture"])
	}
}

func TestStaleMissingIndex(t *testing.T) {
	dir := t.TempDir()
	stale, err := Stale(dir, filepath.Join(dir, IndexName))
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Fatal("expected missing index to be reported stale")
	}
}

func TestStaleAfterNewArchive(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, IndexName)

	if err := Write(indexPath, nil); err != nil {
		t.Fatal(err)
	}
	stale, err := Stale(dir, indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if stale {
		t.Fatal("expected fresh empty index to not be stale")
	}

	indexInfo, err := os.Stat(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	future := indexInfo.ModTime().Add(time.Hour)

	debPath := filepath.Join(dir, "new_1.0_all.deb")
	if err := os.WriteFile(debPath, []byte("fake"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(debPath, future, future); err != nil {
		t.Fatal(err)
	}

	stale, err = Stale(dir, indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Fatal("expected index to be stale once a newer archive appears")
	}
}
