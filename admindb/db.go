package admindb

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/wpkg-go/wpkg/utils"
)

// DB is the administrative database rooted at a single admin
// directory (§4.4). It owns <admin>/status, <admin>/info/*,
// <admin>/updates/* and <admin>/hooks/*, and the advisory lock at
// <admin>/lock (§5).
type DB struct {
	dir     string
	records map[string]*Record // keyed by Record.Key()
	lock    *utils.AdminLock

	cacheMu sync.Mutex
	cache   *Cache // lazily opened path->owner index, see cache.go
}

// Open reads the admin directory's current state. It does not take
// the lock; call Lock before starting a mutating transaction.
func Open(adminDir string) (*DB, error) {
	for _, sub := range []string{"info", "updates", "hooks"} {
		if err := os.MkdirAll(filepath.Join(adminDir, sub), 0755); err != nil {
			return nil, errors.Wrapf(err, "admindb: creating %s", sub)
		}
	}

	db := &DB{dir: adminDir, records: map[string]*Record{}}
	if err := db.load(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) statusPath() string  { return filepath.Join(db.dir, "status") }
func (db *DB) infoDir() string     { return filepath.Join(db.dir, "info") }
func (db *DB) updatesDir() string  { return filepath.Join(db.dir, "updates") }
func (db *DB) hooksDir() string    { return filepath.Join(db.dir, "hooks") }
func (db *DB) lockPath() string    { return filepath.Join(db.dir, "lock") }

// Dir returns the admin directory root.
func (db *DB) Dir() string { return db.dir }

func (db *DB) load() error {
	f, err := os.Open(db.statusPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "admindb: opening status file")
	}
	defer f.Close()

	records, err := readStatus(f)
	if err != nil {
		return err
	}

	for _, r := range records {
		if err := db.attachInfo(r); err != nil {
			return err
		}
		db.records[r.Key()] = r
	}
	return nil
}

// attachInfo loads the per-package info/<name>.* side files for r.
func (db *DB) attachInfo(r *Record) error {
	base := filepath.Join(db.infoDir(), r.Name)

	if body, err := os.ReadFile(base + ".list"); err == nil {
		r.Files = parseFileList(body)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "admindb: reading %s.list", r.Name)
	}

	r.Scripts = Scripts{}
	for _, name := range []string{"preinst", "postinst", "prerm", "postrm", "validate"} {
		for _, ext := range []string{"", ".bat"} {
			body, err := os.ReadFile(base + "." + name + ext)
			if err == nil {
				r.Scripts[name+ext] = body
			} else if !os.IsNotExist(err) {
				return errors.Wrapf(err, "admindb: reading %s.%s%s", r.Name, name, ext)
			}
		}
	}

	return nil
}

// Lock acquires the exclusive cross-process advisory lock on
// <admin>/lock (§5). It must be released with Unlock.
func (db *DB) Lock() error {
	l, err := utils.AcquireAdminLock(db.lockPath())
	if err != nil {
		return err
	}
	db.lock = l
	return nil
}

// Unlock releases the lock taken by Lock.
func (db *DB) Unlock() error {
	if db.lock == nil {
		return nil
	}
	err := db.lock.Release()
	db.lock = nil
	return err
}

// Get returns the record for (name, arch), or nil if none exists.
func (db *DB) Get(name, arch string) *Record {
	return db.records[name+":"+arch]
}

// All returns every record, sorted by (name, architecture) for
// deterministic iteration (plan ordering, status dumps).
func (db *DB) All() []*Record {
	records := make([]*Record, 0, len(db.records))
	for _, r := range db.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].Architecture < records[j].Architecture
	})
	return records
}

// Put atomically persists r: writes its info/<name>.* side files and
// rewrites the full status file (§4.4 "the status file is rewritten
// in full after each phase"), each through the write-rename
// discipline so a reader never observes a torn file (I8/P8).
func (db *DB) Put(r *Record) error {
	if r.State == StateNotInstalled {
		return db.Remove(r.Name, r.Architecture)
	}

	if err := db.writeInfoFiles(r); err != nil {
		return err
	}

	db.records[r.Key()] = r
	return db.rewriteStatus()
}

// Remove deletes r's info/<name>.* files and drops it from the
// status file entirely — used at the end of purge (§4.7).
func (db *DB) Remove(name, arch string) error {
	delete(db.records, name+":"+arch)

	matches, err := filepath.Glob(filepath.Join(db.infoDir(), name+".*"))
	if err != nil {
		return errors.Wrapf(err, "admindb: globbing info files for %s", name)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "admindb: removing %s", m)
		}
	}

	return db.rewriteStatus()
}

func (db *DB) writeInfoFiles(r *Record) error {
	base := filepath.Join(db.infoDir(), r.Name)

	if err := writeAtomic(base+".list", encodeFileList(r.Files)); err != nil {
		return err
	}

	var conf []byte
	for _, cf := range r.Conffiles {
		conf = append(conf, []byte(cf.Path+"\n")...)
	}
	if len(conf) > 0 {
		if err := writeAtomic(base+".conffiles", conf); err != nil {
			return err
		}
	}

	for name, body := range r.Scripts {
		path := base + "." + name
		if err := writeAtomic(path, body); err != nil {
			return err
		}
		if err := os.Chmod(path, 0755); err != nil {
			return errors.Wrapf(err, "admindb: making %s executable", path)
		}
	}

	return nil
}

func (db *DB) rewriteStatus() error {
	records := db.All()

	tmp := db.statusPath() + ".wpkg-new"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "admindb: creating status.wpkg-new")
	}

	if err := writeStatus(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "admindb: fsyncing status.wpkg-new")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "admindb: closing status.wpkg-new")
	}

	return os.Rename(tmp, db.statusPath())
}

// writeAtomic implements §4.4's write-rename discipline for a single
// file: write to <path>.wpkg-new, fsync, rename over path.
func writeAtomic(path string, body []byte) error {
	tmp := path + ".wpkg-new"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "admindb: creating %s", tmp)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "admindb: writing %s", tmp)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "admindb: fsyncing %s", tmp)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "admindb: closing %s", tmp)
	}
	return os.Rename(tmp, path)
}
