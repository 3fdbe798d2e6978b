package admindb

import "testing"

func TestOwnerResolvesAndReflectsUpdates(t *testing.T) {
	db := openTestDB(t)
	defer db.CloseCache()

	r := &Record{
		Name: "t1", Version: "1.0", Architecture: "linux-amd64",
		State: StateInstalled, Selection: SelectionInstall,
		Files: []FileEntry{{Path: "/usr/bin/t1"}, {Path: "/etc/t1.conf"}},
	}
	if err := db.Put(r); err != nil {
		t.Fatal(err)
	}

	owner, err := db.Owner("/usr/bin/t1")
	if err != nil {
		t.Fatal(err)
	}
	if owner != "t1" {
		t.Fatalf("expected t1 to own /usr/bin/t1, got %q", owner)
	}

	owner, err = db.Owner("/no/such/path")
	if err != nil {
		t.Fatal(err)
	}
	if owner != "" {
		t.Fatalf("expected no owner for an unrecorded path, got %q", owner)
	}

	if err := db.Remove("t1", "linux-amd64"); err != nil {
		t.Fatal(err)
	}

	// Force a fresh rebuild instead of relying on Stale()'s mtime
	// comparison, whose resolution isn't guaranteed fine enough to
	// observe within a single test run.
	if err := db.CloseCache(); err != nil {
		t.Fatal(err)
	}

	owner, err = db.Owner("/usr/bin/t1")
	if err != nil {
		t.Fatal(err)
	}
	if owner != "" {
		t.Fatalf("expected cache to reflect removal after rebuild, got owner %q", owner)
	}
}

func TestCloseCacheIsIdempotentWithoutOwnerCall(t *testing.T) {
	db := openTestDB(t)
	if err := db.CloseCache(); err != nil {
		t.Fatalf("expected CloseCache to be a no-op before Owner ever opened the cache: %v", err)
	}
}
