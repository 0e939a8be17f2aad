package reconcile

import (
	"fmt"

	"objectfs/core/storage"
)

// Comparator decides whether two present copies of a key differ. It
// returns one description per difference, or nothing when they match.
type Comparator interface {
	// Name identifies the rule in logs.
	Name() string

	// Compare is only called when both objects exist.
	Compare(src, dst storage.Object) []string
}

// SizeComparator reports differing sizes.
type SizeComparator struct{}

func (SizeComparator) Name() string { return "size" }

func (SizeComparator) Compare(src, dst storage.Object) []string {
	if src.IsDir() || dst.IsDir() {
		if src.IsDir() != dst.IsDir() {
			return []string{fmt.Sprintf("type: src_dir=%t dst_dir=%t", src.IsDir(), dst.IsDir())}
		}
		return nil
	}
	if src.Size != dst.Size {
		return []string{fmt.Sprintf("size: src=%d dst=%d", src.Size, dst.Size)}
	}
	return nil
}

// MtimeComparator reports a source copy modified after the destination
// copy. Directories are ignored.
type MtimeComparator struct{}

func (MtimeComparator) Name() string { return "mtime" }

func (MtimeComparator) Compare(src, dst storage.Object) []string {
	if src.IsDir() || dst.IsDir() {
		return nil
	}
	if src.Mtime.After(dst.Mtime) {
		return []string{fmt.Sprintf("mtime: src=%d dst=%d", src.MtimeUnix(), dst.MtimeUnix())}
	}
	return nil
}

// ComparatorsFor returns the comparators selected by cfg.
func ComparatorsFor(cfg Config) []Comparator {
	cs := []Comparator{SizeComparator{}}
	if cfg.CheckMtime {
		cs = append(cs, MtimeComparator{})
	}
	return cs
}

func compareAll(cs []Comparator, src, dst storage.Object) []string {
	mismatch := []string{}
	for _, c := range cs {
		mismatch = append(mismatch, c.Compare(src, dst)...)
	}
	return mismatch
}
