// Package archive implements the binary package container format (C1):
// an ar(1) archive holding a format-version member, a compressed
// control.tar, and a compressed data.tar, following the layout
// historically used by both dpkg and wpkg .deb-style packages.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/mkrautz/goar"
	"github.com/pkg/errors"
	"github.com/smira/go-xz"

	"github.com/wpkg-go/wpkg/control"
)

// Compression identifies the compression capability applied to a
// control.tar/data.tar member.
type Compression int

// Supported compression capabilities for archive members.
const (
	None Compression = iota
	Gzip
	Bzip2
	Xz
)

func (c Compression) suffix() string {
	switch c {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case Xz:
		return ".xz"
	}
	return ""
}

func compressionFromName(name, base string) (Compression, bool) {
	if !strings.HasPrefix(name, base) {
		return None, false
	}
	switch name[len(base):] {
	case "":
		return None, true
	case ".gz":
		return Gzip, true
	case ".bz2":
		return Bzip2, true
	case ".xz":
		return Xz, true
	}
	return None, false
}

// File is one entry extracted from data.tar, carrying enough metadata
// for the executor's install/verify/conffile logic: the on-disk mode,
// ownership, and, for symlinks, the link target.
type File struct {
	Name       string
	Typeflag   byte
	Mode       int64
	UID, GID   int
	Size       int64
	LinkTarget string
}

// IsDir reports whether the entry is a directory.
func (f File) IsDir() bool { return f.Typeflag == tar.TypeDir }

// IsSymlink reports whether the entry is a symbolic link.
func (f File) IsSymlink() bool { return f.Typeflag == tar.TypeSymlink }

// Reader reads the members of a package archive.
type Reader struct {
	path string
}

// NewReader opens an archive reader over the package file at path.
// The file itself is opened fresh for each accessor below, since ar
// members (control.tar, data.tar) must each be scanned from the start.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

func (r *Reader) openMember(prefix string) (io.ReadCloser, string, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "archive: opening %s", r.path)
	}

	library := ar.NewReader(file)
	for {
		header, err := library.Next()
		if err == io.EOF {
			file.Close()
			return nil, "", errors.Errorf("archive: no %s* member in %s", prefix, r.path)
		}
		if err != nil {
			file.Close()
			return nil, "", errors.Wrapf(err, "archive: reading ar container of %s", r.path)
		}

		if strings.HasPrefix(header.Name, prefix) {
			return struct {
				io.Reader
				io.Closer
			}{library, file}, header.Name, nil
		}
	}
}

func decompress(r io.Reader, name, base string) (io.Reader, io.Closer, error) {
	comp, ok := compressionFromName(name, base)
	if !ok {
		return nil, nil, errors.Errorf("archive: unsupported compression on member %s", name)
	}

	switch comp {
	case None:
		return r, io.NopCloser(nil), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "archive: opening gzip member")
		}
		return zr, zr, nil
	case Bzip2:
		return bzip2.NewReader(r), io.NopCloser(nil), nil
	case Xz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "archive: opening xz member")
		}
		return xr, io.NopCloser(nil), nil
	}

	return nil, nil, errors.Errorf("archive: unreachable compression case for %s", name)
}

// ControlStanza reads and parses the "control" file out of the
// archive's control.tar(.*) member.
func (r *Reader) ControlStanza() (control.Stanza, error) {
	rc, name, err := r.openMember("control.tar")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tarInput, closer, err := decompress(rc, name, "control.tar")
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	untar := tar.NewReader(tarInput)
	for {
		hdr, err := untar.Next()
		if err == io.EOF {
			return nil, errors.Errorf("archive: no control file in %s", r.path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "archive: reading control.tar of %s", r.path)
		}

		if hdr.Name == "./control" || hdr.Name == "control" || hdr.Name == "WPKG/control" {
			reader := control.NewReader(untar)
			return reader.ReadStanza()
		}
	}
}

// ControlMember reads a single named file out of the archive's
// control.tar(.*) member (e.g. "conffiles", "md5sums"), returning
// (nil, nil) if the member's tar does not contain it — optional
// control.tar entries are the common case.
func (r *Reader) ControlMember(name string) ([]byte, error) {
	rc, memberName, err := r.openMember("control.tar")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tarInput, closer, err := decompress(rc, memberName, "control.tar")
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	untar := tar.NewReader(tarInput)
	for {
		hdr, err := untar.Next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "archive: reading control.tar of %s", r.path)
		}

		candidate := strings.TrimPrefix(strings.TrimPrefix(hdr.Name, "./"), "WPKG/")
		if candidate == name {
			body, err := io.ReadAll(untar)
			if err != nil {
				return nil, errors.Wrapf(err, "archive: reading %s from %s", name, r.path)
			}
			return body, nil
		}
	}
}

// ControlMembersWithPrefix returns every regular-file control.tar(.*)
// member whose name (after stripping "./"/"WPKG/") starts with
// prefix, keyed by that trimmed name. Used to discover package-
// declared hook scripts named "<pkg>_<hookname>" (§4.8).
func (r *Reader) ControlMembersWithPrefix(prefix string) (map[string][]byte, error) {
	rc, memberName, err := r.openMember("control.tar")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tarInput, closer, err := decompress(rc, memberName, "control.tar")
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	untar := tar.NewReader(tarInput)
	result := make(map[string][]byte)
	for {
		hdr, err := untar.Next()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "archive: reading control.tar of %s", r.path)
		}

		candidate := strings.TrimPrefix(strings.TrimPrefix(hdr.Name, "./"), "WPKG/")
		if hdr.Typeflag != tar.TypeReg || !strings.HasPrefix(candidate, prefix) {
			continue
		}
		body, err := io.ReadAll(untar)
		if err != nil {
			return nil, errors.Wrapf(err, "archive: reading %s from %s", candidate, r.path)
		}
		result[candidate] = body
	}
}

// DataFiles enumerates every file, directory and symlink recorded in
// the archive's data.tar(.*) member.
func (r *Reader) DataFiles() ([]File, error) {
	rc, name, err := r.openMember("data.tar")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tarInput, closer, err := decompress(rc, name, "data.tar")
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	untar := tar.NewReader(tarInput)
	var files []File

	for {
		hdr, err := untar.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "archive: reading data.tar of %s", r.path)
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		files = append(files, File{
			Name:       name,
			Typeflag:   hdr.Typeflag,
			Mode:       hdr.Mode,
			UID:        hdr.Uid,
			GID:        hdr.Gid,
			Size:       hdr.Size,
			LinkTarget: hdr.Linkname,
		})
	}
}

// ExtractDataTo streams every data.tar entry (directories, regular
// files and symlinks alike), in archive order, to write together with
// its content; write decides where and how each entry lands. destDir
// itself is not used by the reader.
func (r *Reader) ExtractDataTo(destDir string, write func(f File, content io.Reader) error) error {
	rc, name, err := r.openMember("data.tar")
	if err != nil {
		return err
	}
	defer rc.Close()

	tarInput, closer, err := decompress(rc, name, "data.tar")
	if err != nil {
		return err
	}
	defer closer.Close()

	untar := tar.NewReader(tarInput)
	for {
		hdr, err := untar.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "archive: reading data.tar of %s", r.path)
		}

		f := File{
			Name:       strings.TrimPrefix(hdr.Name, "./"),
			Typeflag:   hdr.Typeflag,
			Mode:       hdr.Mode,
			UID:        hdr.Uid,
			GID:        hdr.Gid,
			Size:       hdr.Size,
			LinkTarget: hdr.Linkname,
		}

		if err := write(f, untar); err != nil {
			return errors.Wrapf(err, "archive: extracting %s from %s", f.Name, r.path)
		}
	}
}

// DisplayPath rewrites a stored forward-slash path for display under
// the package's declared drive-letter convention (X-Drive-Letter:
// Yes), never mutating the path actually stored in the archive.
func DisplayPath(stanza control.Stanza, path string) string {
	if stanza["X-Drive-Letter"] != "Yes" {
		return path
	}
	if idx := strings.Index(path, "/"); idx == 1 || (idx > 0 && path[idx-1] == ':') {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return "C:" + path
	}
	return path
}

// Writer writes a new package archive to an underlying ar container.
type Writer struct {
	w           *ar.Writer
	compression Compression
}

// NewWriter creates a Writer over w using the given compression for
// both control.tar and data.tar members.
func NewWriter(w io.Writer, compression Compression) *Writer {
	return &Writer{w: ar.NewWriter(w), compression: compression}
}

// WriteFormatMember writes the leading "debian-binary"-equivalent
// format member recording the container format version.
func (aw *Writer) WriteFormatMember(version string) error {
	body := []byte(version + "\n")
	return aw.writeMember("format", body)
}

func (aw *Writer) writeMember(name string, body []byte) error {
	if err := aw.w.WriteHeader(&ar.Header{
		Name: name,
		Size: int64(len(body)),
		Mode: 0644,
	}); err != nil {
		return errors.Wrapf(err, "archive: writing %s header", name)
	}
	_, err := aw.w.Write(body)
	return errors.Wrapf(err, "archive: writing %s body", name)
}

// newCompressor wraps w with the Writer's compression capability,
// returning the writer to feed tar data into and a close func that
// must run before the member's total size is known to ar.
func newCompressor(compression Compression, w io.Writer) (io.Writer, func() error, error) {
	switch compression {
	case None:
		return w, func() error { return nil }, nil
	case Gzip:
		gz := pgzip.NewWriter(w)
		return gz, gz.Close, nil
	case Bzip2:
		return nil, nil, errors.New("archive: bzip2 writing is not supported, only reading")
	case Xz:
		// go-xz only decompresses, so compression runs the external xz
		// program, the same tool go-xz itself relies on.
		cmd := exec.Command("xz", "--compress", "--stdout")
		cmd.Stdout = w
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, nil, errors.Wrap(err, "archive: opening xz writer")
		}
		if err := cmd.Start(); err != nil {
			return nil, nil, errors.Wrap(err, "archive: starting xz")
		}
		return stdin, func() error {
			if err := stdin.Close(); err != nil {
				return err
			}
			return cmd.Wait()
		}, nil
	}
	return nil, nil, fmt.Errorf("archive: unknown compression %d", compression)
}

func (aw *Writer) memberName(base string) string {
	return base + aw.compression.suffix()
}

// WriteTarMember compresses the tar stream produced by build into a
// single ar member named base + the writer's compression suffix
// (control.tar.gz, data.tar.xz, ...). The member is buffered in memory
// first since the ar format requires the size up front.
func (aw *Writer) WriteTarMember(base string, build func(tw *tar.Writer) error) error {
	var buf bytes.Buffer

	comp, closeComp, err := newCompressor(aw.compression, &buf)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(comp)
	if err := build(tw); err != nil {
		return errors.Wrapf(err, "archive: building %s", base)
	}
	if err := tw.Close(); err != nil {
		return errors.Wrapf(err, "archive: closing tar for %s", base)
	}
	if err := closeComp(); err != nil {
		return errors.Wrapf(err, "archive: closing compressor for %s", base)
	}

	return aw.writeMember(aw.memberName(base), buf.Bytes())
}

// Close finishes the underlying ar container.
func (aw *Writer) Close() error {
	return aw.w.Close()
}
