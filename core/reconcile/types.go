package reconcile

import (
	"time"

	"objectfs/core/storage"
)

// Config holds configuration for backend synchronization.
type Config struct {
	// Workers bounds the number of concurrent copies.
	Workers int `mapstructure:"workers" default:"4"`
	// CacheTTLSeconds keeps listings cached between targeted lookups. Zero
	// disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
	// CheckMtime treats a newer source object as a mismatch.
	CheckMtime bool `mapstructure:"check_mtime" default:"false"`
}

// Result is the reconciliation output for a single key.
type Result struct {
	// Key is the object key, identical on both sides.
	Key string `json:"key"`

	// SourcePresent indicates whether the key exists on the source.
	SourcePresent bool `json:"source_present"`

	// DestinationPresent indicates whether the key exists on the destination.
	DestinationPresent bool `json:"destination_present"`

	// Size is the source size, or the destination size when the source
	// copy is missing.
	Size int64 `json:"size"`

	// Dir marks directory keys.
	Dir bool `json:"is_dir"`

	// Mismatch describes how the two copies differ, e.g. "size: src=3 dst=4".
	Mismatch []string `json:"mismatch"`
}

// Spec defines one reconciliation between two engines.
type Spec struct {
	// Source is the engine holding the reference copy.
	Source *storage.Engine

	// Destination is the engine brought in line with Source.
	Destination *storage.Engine

	// Prefix restricts both listings.
	Prefix string

	// Comparators decide whether two present copies differ. Empty means
	// SizeComparator only.
	Comparators []Comparator

	// CacheTTL is the time-to-live for cached indices. Zero disables caching.
	CacheTTL time.Duration
}

// CacheKey identifies the cached indices of this spec.
func (s *Spec) CacheKey() string {
	return s.Source.String() + "|" + s.Destination.String() + "|" + s.Prefix
}

func (s *Spec) comparators() []Comparator {
	if len(s.Comparators) == 0 {
		return []Comparator{SizeComparator{}}
	}
	return s.Comparators
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCopy copies the source object over the destination.
	ActionCopy ActionType = "copy"
	// ActionDelete removes a destination object missing on the source.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the object key.
	Key string `json:"key"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Size is the number of bytes a copy moves.
	Size int64 `json:"size"`

	// Dir marks directory keys, which are created rather than streamed.
	Dir bool `json:"is_dir"`
}

// Plan contains reconciliation results and planned actions.
type Plan struct {
	Results []Result    `json:"results"`
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	// TotalKeys is the number of keys in the union of both sides.
	TotalKeys int `json:"total_keys"`

	// MissingDestination counts keys only present on the source.
	MissingDestination int `json:"missing_destination"`

	// ExtraDestination counts keys only present on the destination.
	ExtraDestination int `json:"extra_destination"`

	// Mismatches counts keys whose copies differ.
	Mismatches int `json:"mismatches"`

	// CopyActions counts planned copies.
	CopyActions int `json:"copy_actions"`

	// DeleteActions counts planned deletions.
	DeleteActions int `json:"delete_actions"`

	// CopyBytes is the total size of planned copies.
	CopyBytes int64 `json:"copy_bytes"`
}

// Options controls planning and execution.
type Options struct {
	// DryRun prevents execution of any mutations.
	DryRun bool

	// DoDelete plans removal of destination keys missing on the source.
	DoDelete bool

	// Confirmed must be set for ApplyPlan to mutate anything.
	Confirmed bool

	// Workers bounds concurrent copies in ApplyPlan. Zero means 4.
	Workers int
}
