package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// ReconcileWithPlan reconciles spec and plans the actions that would bring
// the destination in line with the source. It does not execute anything;
// use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, spec *Spec, opts Options) (*Plan, error) {
	cache, err := GetOrBuildCache(ctx, spec)
	if err != nil {
		return nil, err
	}

	results := reconcileFromCache(cache, spec)
	summary, actions := buildPlanFromResults(results, opts)

	return &Plan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes plan. Nothing happens unless opts.Confirmed is set and
// opts.DryRun is not. Copies run concurrently; deletions run afterwards,
// deepest key first, so directories are emptied before they are removed.
// The cached indices of spec are dropped once anything was executed.
func ApplyPlan(ctx context.Context, spec *Spec, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}
	defer func() {
		if executed > 0 {
			InvalidateCache(spec)
		}
	}()

	var copies, deletes []Action
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionCopy:
			copies = append(copies, action)
		case ActionDelete:
			deletes = append(deletes, action)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]bool, len(copies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, action := range copies {
		i, action := i, action
		g.Go(func() error {
			if err := applyCopy(gctx, spec, action); err != nil {
				return fmt.Errorf("failed to copy %s: %w", action.Key, err)
			}
			results[i] = true
			return nil
		})
	}
	err = g.Wait()
	for _, ok := range results {
		if ok {
			executed++
		}
	}
	if err != nil {
		return executed, err
	}

	sort.Slice(deletes, func(i, j int) bool { return deletes[i].Key > deletes[j].Key })
	for _, action := range deletes {
		if err := spec.Destination.Remove(ctx, action.Key); err != nil {
			return executed, fmt.Errorf("failed to delete %s: %w", action.Key, err)
		}
		executed++
	}

	return executed, nil
}

func applyCopy(ctx context.Context, spec *Spec, action Action) error {
	if action.Dir {
		return spec.Destination.WriteReader(ctx, action.Key, strings.NewReader(""))
	}
	_, err := spec.Source.Copy(ctx, action.Key, spec.Destination, action.Key)
	return err
}

// ReconcileAndApply plans and, when opts allow it, applies the plan.
func ReconcileAndApply(ctx context.Context, spec *Spec, opts Options) (*Plan, int, error) {
	plan, err := ReconcileWithPlan(ctx, spec, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, spec, plan, opts)
	return plan, executed, err
}

func buildPlanFromResults(results []Result, opts Options) (PlanSummary, []Action) {
	var summary PlanSummary
	actions := []Action{}

	summary.TotalKeys = len(results)

	for _, result := range results {
		switch {
		case result.SourcePresent && !result.DestinationPresent:
			summary.MissingDestination++
			actions = append(actions, Action{
				Type:   ActionCopy,
				Key:    result.Key,
				Reason: "missing in destination",
				Size:   result.Size,
				Dir:    result.Dir,
			})
		case !result.SourcePresent && result.DestinationPresent:
			summary.ExtraDestination++
			if opts.DoDelete {
				actions = append(actions, Action{
					Type:   ActionDelete,
					Key:    result.Key,
					Reason: "missing in source",
					Dir:    result.Dir,
				})
			}
		case len(result.Mismatch) > 0:
			summary.Mismatches++
			actions = append(actions, Action{
				Type:   ActionCopy,
				Key:    result.Key,
				Reason: fmt.Sprintf("mismatch: %v", result.Mismatch),
				Size:   result.Size,
				Dir:    result.Dir,
			})
		}
	}

	for _, action := range actions {
		switch action.Type {
		case ActionCopy:
			summary.CopyActions++
			summary.CopyBytes += action.Size
		case ActionDelete:
			summary.DeleteActions++
		}
	}

	return summary, actions
}

// Describe renders a one-line summary for logs and CLI output.
func (s PlanSummary) Describe() string {
	return fmt.Sprintf("%d keys, %d to copy (%d bytes), %d to delete, %d mismatched",
		s.TotalKeys, s.CopyActions, s.CopyBytes, s.DeleteActions, s.Mismatches)
}

