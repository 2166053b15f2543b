package tasks

import (
	"context"
	"testing"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	task := &fakeTask{
		name: "custom",
		execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
			return domain.SuccessResult(nil), nil
		},
	}

	r.Register(task)

	got, ok := r.Get("custom")
	if !ok {
		t.Fatal("task should be found after registration")
	}
	if got.Name() != "custom" {
		t.Errorf("expected custom, got %q", got.Name())
	}
	if !r.Has("custom") {
		t.Error("Has should report registered task")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry(nil)

	if _, ok := r.Get("ghost"); ok {
		t.Error("unknown task should not be found")
	}
	if r.Has("ghost") {
		t.Error("Has should report false for unknown task")
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry(nil)

	first := &fakeTask{name: "dup", execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
		return domain.SuccessResult(map[string]any{"version": 1}), nil
	}}
	second := &fakeTask{name: "dup", execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
		return domain.SuccessResult(map[string]any{"version": 2}), nil
	}}

	r.Register(first)
	r.Register(second)

	if r.Count() != 1 {
		t.Errorf("overwrite should not grow registry, count=%d", r.Count())
	}

	got, _ := r.Get("dup")
	result, _ := got.Execute(context.Background(), engine.NewContext(nil))
	if result.Data["version"] != 2 {
		t.Error("second registration should win")
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeTask{name: "temp", execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
		return domain.SuccessResult(nil), nil
	}})

	if !r.Unregister("temp") {
		t.Error("Unregister should report true for registered task")
	}
	if r.Has("temp") {
		t.Error("task should be gone after Unregister")
	}
	if r.Unregister("temp") {
		t.Error("second Unregister should report false")
	}
}

func TestDefaultRegistry_BuiltinsPresent(t *testing.T) {
	r := DefaultRegistry(nil)

	builtins := []string{
		TaskFetchData,
		TaskProcessData,
		TaskStoreData,
		TaskValidateData,
		TaskSendNotification,
	}

	for _, name := range builtins {
		if !r.Has(name) {
			t.Errorf("builtin %q should be registered", name)
		}
	}
	if r.Count() != len(builtins) {
		t.Errorf("expected %d builtins, got %d", len(builtins), r.Count())
	}

	list := r.List()
	for _, name := range builtins {
		if list[name] == "" {
			t.Errorf("builtin %q should have a description", name)
		}
	}
}

func TestRegistries_Isolated(t *testing.T) {
	a := NewRegistry(nil)
	b := NewRegistry(nil)

	a.Register(&fakeTask{name: "only-a", execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
		return domain.SuccessResult(nil), nil
	}})

	if b.Has("only-a") {
		t.Error("registries should not share state")
	}
}
