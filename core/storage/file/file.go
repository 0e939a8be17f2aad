// Package file implements the local filesystem storage driver, registered
// as "file".
//
// The endpoint is the root directory; an empty endpoint selects the
// current working directory. Keys are slash separated paths relative to
// the root, directories are reported with a trailing slash.
//
// # Atomic writes
//
// Writes land in a hidden temporary file next to the destination and are
// renamed into place on Close, followed by an fsync of the parent
// directory. Temporary files are never listed.
//
// # Listing
//
// List walks the tree depth first, visiting siblings in key order (a
// directory sorts as its name plus "/"), which yields keys in strict
// lexical order. Subtrees that sort entirely before the marker or outside
// the prefix are pruned. Symbolic links are reported but not descended.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"objectfs/core/storage"

	"github.com/google/uuid"
)

const tmpMarker = ".objectfs-tmp-"

func init() {
	storage.Register("file", func(ctx context.Context, cfg storage.Config) (storage.Driver, error) {
		return New(cfg.Endpoint)
	})
}

// Disk is a storage driver rooted at a local directory.
type Disk struct {
	root string
}

// New creates a driver rooted at root. The directory does not need to exist.
func New(root string) (*Disk, error) {
	root = strings.TrimPrefix(root, "file://")
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	return &Disk{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Disk) Root() string { return d.root }

func (d *Disk) String() string {
	return "file://" + strings.TrimSuffix(filepath.ToSlash(d.root), "/") + "/"
}

func (d *Disk) Create(ctx context.Context) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return mapErr("create", "", err)
	}
	return nil
}

// path maps key to a filesystem path below the root.
func (d *Disk) path(op, key string) (string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", storage.NewError(op, key, storage.ErrInvalidArgument, errors.New("key escapes root"))
		}
	}
	clean := path.Clean("/" + key)
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (d *Disk) Head(ctx context.Context, key string) (storage.Object, error) {
	p, err := d.path("head", key)
	if err != nil {
		return storage.Object{}, err
	}
	fi, err := os.Lstat(p)
	if err != nil {
		return storage.Object{}, mapErr("head", key, err)
	}
	obj := toObject(key, p, fi)
	if strings.HasSuffix(key, "/") && !obj.IsDir() {
		return storage.Object{}, storage.NewError("head", key, storage.ErrNotFound, nil)
	}
	return obj, nil
}

// toObject normalizes a FileInfo obtained with Lstat.
func toObject(key, p string, fi fs.FileInfo) storage.Object {
	obj := storage.Object{Key: key, Mtime: fi.ModTime()}
	if fi.Mode()&fs.ModeSymlink != 0 {
		obj.Symlink = true
		if target, err := os.Stat(p); err == nil {
			fi = target
		}
	}
	if fi.IsDir() {
		obj.Dir = true
		obj.Key = storage.DirKey(key)
	} else if fi.Mode()&fs.ModeSymlink == 0 {
		obj.Size = fi.Size()
	}
	return obj
}

type entry struct {
	key  string
	path string
	info fs.FileInfo
	dir  bool
	link bool
}

func (d *Disk) List(ctx context.Context, prefix, marker string, limit int64) ([]storage.Object, error) {
	out := make([]storage.Object, 0)
	if err := d.walk(ctx, d.root, "", prefix, marker, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Disk) walk(ctx context.Context, dir, dirKey, prefix, marker string, limit int64, out *[]storage.Object) error {
	des, err := os.ReadDir(dir)
	if err != nil {
		if dirKey == "" && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return mapErr("list", dirKey, err)
	}

	entries := make([]entry, 0, len(des))
	for _, de := range des {
		if isTemp(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Lstat.
			continue
		}
		e := entry{path: filepath.Join(dir, de.Name()), info: info}
		e.link = info.Mode()&fs.ModeSymlink != 0
		if e.link {
			if target, err := os.Stat(e.path); err == nil && target.IsDir() {
				e.dir = true
			}
		} else {
			e.dir = info.IsDir()
		}
		e.key = dirKey + de.Name()
		if e.dir {
			e.key += "/"
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if int64(len(*out)) >= limit {
			return nil
		}
		if e.key > marker && strings.HasPrefix(e.key, prefix) {
			*out = append(*out, toObject(e.key, e.path, e.info))
		}
		if !e.dir || e.link {
			continue
		}
		if e.key < marker && !strings.HasPrefix(marker, e.key) {
			continue
		}
		if !strings.HasPrefix(e.key, prefix) && !strings.HasPrefix(prefix, e.key) {
			continue
		}
		if err := d.walk(ctx, e.path, e.key, prefix, marker, limit, out); err != nil {
			return err
		}
	}
	return nil
}

func (d *Disk) Get(ctx context.Context, key string, off, limit int64) (io.ReadCloser, error) {
	p, err := d.path("get", key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, mapErr("get", key, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, mapErr("get", key, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, storage.NewError("get", key, storage.ErrInvalidArgument, errors.New("key is a directory"))
	}
	if off > 0 {
		if _, err := f.Seek(off, io.SeekStart); err != nil {
			f.Close()
			return nil, mapErr("get", key, err)
		}
	}
	if limit < 0 {
		return f, nil
	}
	return &limitedFile{Reader: io.LimitReader(f, limit), f: f}, nil
}

type limitedFile struct {
	io.Reader
	f *os.File
}

func (l *limitedFile) Close() error { return l.f.Close() }

func (d *Disk) Put(ctx context.Context, key string, r io.Reader) error {
	if strings.HasSuffix(key, "/") {
		p, err := d.path("put", key)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return mapErr("put", key, err)
		}
		return nil
	}
	w, err := d.OpenWrite(ctx, key)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

// OpenWrite opens a temporary file that is renamed over key on Close.
func (d *Disk) OpenWrite(ctx context.Context, key string) (storage.StreamWriter, error) {
	if strings.HasSuffix(key, "/") {
		return nil, storage.NewError("write", key, storage.ErrInvalidArgument, errors.New("cannot stream into a directory key"))
	}
	p, err := d.path("write", key)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, mapErr("write", key, err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(p)+tmpMarker+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, mapErr("write", key, err)
	}
	return &fileWriter{f: f, tmp: tmp, final: p, key: key}, nil
}

type fileWriter struct {
	f     *os.File
	tmp   string
	final string
	key   string
}

func (w *fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		return n, mapErr("write", w.key, err)
	}
	return n, nil
}

func (w *fileWriter) Close() error {
	if err := w.f.Sync(); err != nil {
		w.discard()
		return mapErr("close", w.key, err)
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.tmp)
		return mapErr("close", w.key, err)
	}
	if err := os.Rename(w.tmp, w.final); err != nil {
		_ = os.Remove(w.tmp)
		return mapErr("close", w.key, err)
	}
	if err := SyncDir(filepath.Dir(w.final)); err != nil {
		return mapErr("close", w.key, err)
	}
	return nil
}

func (w *fileWriter) Abort() error {
	w.discard()
	return nil
}

func (w *fileWriter) discard() {
	_ = w.f.Close()
	_ = os.Remove(w.tmp)
}

func (d *Disk) Delete(ctx context.Context, key string) error {
	p, err := d.path("delete", key)
	if err != nil {
		return err
	}
	if strings.HasSuffix(key, "/") {
		fi, err := os.Lstat(p)
		if err != nil {
			return mapErr("delete", key, err)
		}
		if !fi.IsDir() {
			return storage.NewError("delete", key, storage.ErrNotFound, nil)
		}
	}
	if err := os.Remove(p); err != nil {
		return mapErr("delete", key, err)
	}
	return nil
}

func (d *Disk) Close() error {
	return nil
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, tmpMarker)
}

// mapErr classifies os errors into storage kinds.
func mapErr(op, key string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return storage.NewError(op, key, storage.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return storage.NewError(op, key, storage.ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrExist):
		return storage.NewError(op, key, storage.ErrAlreadyExists, err)
	default:
		return storage.NewError(op, key, storage.ErrIOFailure, err)
	}
}
