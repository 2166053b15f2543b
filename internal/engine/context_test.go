package engine

import (
	"testing"

	"github.com/shaiso/Conductor/internal/domain"
)

func TestNewContext_CopiesInputs(t *testing.T) {
	inputs := map[string]any{"key": "value"}
	ctx := NewContext(inputs)

	inputs["key"] = "mutated"

	v, ok := ctx.Input("key")
	if !ok {
		t.Fatal("input key should exist")
	}
	if v != "value" {
		t.Errorf("context should not share state with caller, got %v", v)
	}
}

func TestNewContext_NilInputs(t *testing.T) {
	ctx := NewContext(nil)

	if ctx.Len() != 0 {
		t.Error("empty context should have no results")
	}
	if _, ok := ctx.Input("anything"); ok {
		t.Error("nil inputs should yield no values")
	}
}

func TestContext_SetResult_PreservesOrder(t *testing.T) {
	ctx := NewContext(nil)

	ctx.SetResult("fetch", domain.SuccessResult(map[string]any{"n": 1}))
	ctx.SetResult("process", domain.SuccessResult(map[string]any{"n": 2}))
	ctx.SetResult("store", domain.SuccessResult(nil))

	names := ctx.Names()
	want := []string{"fetch", "process", "store"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("names[%d]: expected %q, got %q", i, name, names[i])
		}
	}
}

func TestContext_SetResult_OverwriteKeepsPosition(t *testing.T) {
	ctx := NewContext(nil)

	ctx.SetResult("A", domain.SuccessResult(nil))
	ctx.SetResult("B", domain.SuccessResult(nil))
	ctx.SetResult("A", domain.FailureResult("boom"))

	if ctx.Len() != 2 {
		t.Errorf("overwrite should not duplicate position, len=%d", ctx.Len())
	}

	r, ok := ctx.Result("A")
	if !ok {
		t.Fatal("result A should exist")
	}
	if !r.Failed() {
		t.Error("result A should be overwritten with failure")
	}
}

func TestContext_Snapshot(t *testing.T) {
	ctx := NewContext(map[string]any{"env": "test"})
	ctx.SetResult("fetch", domain.SuccessResult(map[string]any{"count": 3}))
	ctx.SetResult("validate", domain.FailureResult("missing field"))

	snap := ctx.Snapshot()

	if snap["env"] != "test" {
		t.Error("snapshot should include run inputs")
	}

	fetch, ok := snap["fetch"].(map[string]any)
	if !ok {
		t.Fatalf("fetch entry should be a map, got %T", snap["fetch"])
	}
	if fetch["status"] != "success" {
		t.Errorf("expected success status, got %v", fetch["status"])
	}
	data, ok := fetch["data"].(map[string]any)
	if !ok || data["count"] != 3 {
		t.Errorf("fetch data should carry task output, got %v", fetch["data"])
	}

	validate, ok := snap["validate"].(map[string]any)
	if !ok {
		t.Fatalf("validate entry should be a map, got %T", snap["validate"])
	}
	if validate["status"] != "failure" {
		t.Errorf("expected failure status, got %v", validate["status"])
	}
	if validate["error"] != "missing field" {
		t.Errorf("expected error message, got %v", validate["error"])
	}
}

func TestContext_Snapshot_Independent(t *testing.T) {
	ctx := NewContext(map[string]any{"key": "value"})
	snap := ctx.Snapshot()

	snap["key"] = "mutated"
	snap["extra"] = true

	v, _ := ctx.Input("key")
	if v != "value" {
		t.Error("mutating snapshot should not affect context")
	}
	if _, ok := ctx.Input("extra"); ok {
		t.Error("snapshot keys should not leak into context")
	}
}
