package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanFromResults(t *testing.T) {
	results := []Result{
		{Key: "copy-me", SourcePresent: true, Size: 10},
		{Key: "dir/", SourcePresent: true, Dir: true},
		{Key: "extra", DestinationPresent: true, Size: 4},
		{Key: "fine", SourcePresent: true, DestinationPresent: true, Size: 1, Mismatch: []string{}},
		{Key: "stale", SourcePresent: true, DestinationPresent: true, Size: 7, Mismatch: []string{"size: src=7 dst=2"}},
	}

	t.Run("Without Delete", func(t *testing.T) {
		summary, actions := buildPlanFromResults(results, Options{})
		assert.Equal(t, 5, summary.TotalKeys)
		assert.Equal(t, 2, summary.MissingDestination)
		assert.Equal(t, 1, summary.ExtraDestination)
		assert.Equal(t, 1, summary.Mismatches)
		assert.Equal(t, 3, summary.CopyActions)
		assert.Equal(t, int64(17), summary.CopyBytes)
		assert.Equal(t, 0, summary.DeleteActions)
		for _, a := range actions {
			assert.Equal(t, ActionCopy, a.Type)
		}
	})

	t.Run("With Delete", func(t *testing.T) {
		summary, actions := buildPlanFromResults(results, Options{DoDelete: true})
		assert.Equal(t, 1, summary.DeleteActions)
		require.Len(t, actions, 4)
		assert.Equal(t, Action{Type: ActionDelete, Key: "extra", Reason: "missing in source"}, actions[2])
	})
}

func TestApplyPlan_RequiresConfirmation(t *testing.T) {
	src := newMemEngine(t, "src", map[string]string{"a": "1"})
	dst := newMemEngine(t, "dst", nil)
	spec := &Spec{Source: src, Destination: dst}

	plan, err := ReconcileWithPlan(context.Background(), spec, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)

	executed, err := ApplyPlan(context.Background(), spec, plan, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, executed)

	executed, err = ApplyPlan(context.Background(), spec, plan, Options{Confirmed: true, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 0, executed)

	_, err = dst.Head(context.Background(), "a")
	assert.Error(t, err)
}

func TestReconcileAndApply_Converges(t *testing.T) {
	ctx := context.Background()
	src := newMemEngine(t, "src", map[string]string{
		"assets/":          "",
		"assets/logo.png":  "png-bytes",
		"assets/style.css": "body{}",
		"readme":           "hello",
	})
	dst := newMemEngine(t, "dst", map[string]string{
		"assets/style.css": "old",
		"obsolete/":        "",
		"obsolete/file":    "gone",
	})
	spec := &Spec{Source: src, Destination: dst}
	opts := Options{DoDelete: true, Confirmed: true, Workers: 2}

	plan, executed, err := ReconcileAndApply(ctx, spec, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, plan.Summary.CopyActions)
	assert.Equal(t, 2, plan.Summary.DeleteActions)
	assert.Equal(t, 6, executed)

	assert.Equal(t, "png-bytes", readString(t, dst, "assets/logo.png"))
	assert.Equal(t, "body{}", readString(t, dst, "assets/style.css"))
	assert.Equal(t, "hello", readString(t, dst, "readme"))
	obj, err := dst.Head(ctx, "assets/")
	require.NoError(t, err)
	assert.True(t, obj.IsDir())

	// A second pass finds nothing left to do.
	plan, executed, err = ReconcileAndApply(ctx, spec, opts)
	require.NoError(t, err)
	assert.Empty(t, plan.Actions)
	assert.Equal(t, 0, executed)
	assert.Equal(t, 4, plan.Summary.TotalKeys)
}

func TestPlanSummary_Describe(t *testing.T) {
	s := PlanSummary{TotalKeys: 3, CopyActions: 1, CopyBytes: 9, DeleteActions: 2}
	assert.Equal(t, "3 keys, 1 to copy (9 bytes), 2 to delete, 0 mismatched", s.Describe())
}
