package executor_test

import (
	"context"
	"testing"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/executor"
)

func planFor(device string, modelPaths map[string]any) domain.ChangePlan {
	paths := make([]string, 0, len(modelPaths))
	for k := range modelPaths {
		paths = append(paths, k)
	}
	return domain.ChangePlan{
		Actions: []domain.ChangeAction{
			{Device: device, Paths: paths, ModelPaths: modelPaths},
		},
	}
}

func TestMemoryExecutorCapturesPreChangeSnapshot(t *testing.T) {
	initial := map[string]map[string]any{"leaf1": {"/a": "old"}}
	exec := executor.NewMemoryExecutor(initial, true)

	observed, pre, err := exec.Apply(context.Background(), planFor("leaf1", map[string]any{"/a": "new"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prior := pre.Get("leaf1", "/a")
	if !prior.Present || prior.Value != "old" {
		t.Fatalf("expected pre-change snapshot to capture the old value, got %+v", prior)
	}
	got, ok := observed.Get("leaf1", "/a")
	if !ok || got != "new" {
		t.Fatalf("expected observed value to reflect the write, got %v ok=%v", got, ok)
	}
}

func TestMemoryExecutorPreChangeSnapshotAbsentWhenNoPriorValue(t *testing.T) {
	exec := executor.NewMemoryExecutor(nil, true)
	_, pre, err := exec.Apply(context.Background(), planFor("leaf1", map[string]any{"/a": "new"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prior := pre.Get("leaf1", "/a")
	if prior.Present {
		t.Fatalf("expected no prior value to be absent, not an explicit null, got %+v", prior)
	}
}

func TestMemoryExecutorMismatchOverridesObservedValue(t *testing.T) {
	exec := executor.NewMemoryExecutor(nil, true)
	exec.SetMismatch(map[string]map[string]any{"leaf1": {"/a": "drifted"}})

	observed, _, err := exec.Apply(context.Background(), planFor("leaf1", map[string]any{"/a": "new"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := observed.Get("leaf1", "/a")
	if !ok || got != "drifted" {
		t.Fatalf("expected mismatch override to surface as observed value, got %v ok=%v", got, ok)
	}
	if state := exec.State()["leaf1"]["/a"]; state != "new" {
		t.Fatalf("expected underlying state to still reflect the actual write, got %v", state)
	}
}

func TestMemoryExecutorWithoutReadAfterWriteTrustsDesiredValue(t *testing.T) {
	exec := executor.NewMemoryExecutor(nil, false)
	exec.SetMismatch(map[string]map[string]any{"leaf1": {"/a": "drifted"}})

	observed, _, err := exec.Apply(context.Background(), planFor("leaf1", map[string]any{"/a": "new"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := observed.Get("leaf1", "/a")
	if !ok || got != "new" {
		t.Fatalf("expected unsafe mode to report the desired value regardless of mismatch, got %v ok=%v", got, ok)
	}
}
