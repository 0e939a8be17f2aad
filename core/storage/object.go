package storage

import (
	"strings"
	"time"
)

// Object is an immutable metadata snapshot of one key.
type Object struct {
	// Key is the backend-relative path. Directory keys end with "/".
	Key string `json:"key"`
	// Size is the object size in bytes, 0 for directories.
	Size int64 `json:"size"`
	// Mtime is the last modification time. Resolution is backend dependent.
	Mtime time.Time `json:"mtime"`
	// Dir reports a directory entry.
	Dir bool `json:"is_dir"`
	// Symlink reports a symbolic link (filesystem backends only).
	Symlink bool `json:"is_symlink"`
}

// IsDir reports whether the object is a directory.
func (o Object) IsDir() bool { return o.Dir }

// IsFile reports whether the object is a regular object.
func (o Object) IsFile() bool { return !o.Dir }

// IsSymlink reports whether the object is a symbolic link.
func (o Object) IsSymlink() bool { return o.Symlink }

// MtimeUnix returns the modification time in seconds since the epoch.
func (o Object) MtimeUnix() int64 {
	if o.Mtime.IsZero() {
		return 0
	}
	return o.Mtime.Unix()
}

// Page is one page of a paginated listing.
type Page struct {
	// Objects are ordered by key, strictly ascending.
	Objects []Object `json:"objects"`
	// NextMarker is the last key of the page; pass it as marker to continue.
	NextMarker string `json:"next_marker"`
	// Truncated is true when the page was full and more entries may follow.
	Truncated bool `json:"truncated"`
}

// Keys returns the keys of the page, in order.
func (p Page) Keys() []string {
	keys := make([]string, len(p.Objects))
	for i, o := range p.Objects {
		keys[i] = o.Key
	}
	return keys
}

// DirKey normalizes a directory key to carry exactly one trailing slash.
func DirKey(key string) string {
	return strings.TrimRight(key, "/") + "/"
}
