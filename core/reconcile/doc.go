// Package reconcile synchronizes the key space of two storage engines.
//
// A reconciliation lists a source and a destination engine concurrently,
// builds an index of each, and reports for every key in the union whether
// it is present on each side and whether the two copies differ.
//
// # Architecture
//
//  1. Index building: both listings run on their own goroutine through
//     storage.Engine.Walk, so no per-key HEAD calls are needed.
//
//  2. Comparators: pluggable rules deciding whether two copies of a key
//     differ (size, modification time).
//
//  3. Cache: TTL-based index cache with stampede protection for repeated
//     targeted lookups.
//
//  4. Plan and apply: a plan lists copy and delete actions; ApplyPlan runs
//     copies through storage.Engine.Copy on a bounded worker pool and
//     deletes extras deepest key first.
//
// # Usage
//
//	spec := &reconcile.Spec{Source: src, Destination: dst, Prefix: "assets/"}
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, reconcile.Options{DoDelete: true})
//	executed, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.Options{Confirmed: true})
package reconcile
