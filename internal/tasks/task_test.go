package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
)

// fakeTask — управляемая задача для тестов.
type fakeTask struct {
	name    string
	execute func(ctx context.Context, fc *engine.Context) (domain.TaskResult, error)
}

func (t *fakeTask) Name() string        { return t.name }
func (t *fakeTask) Description() string { return "fake task" }
func (t *fakeTask) Execute(ctx context.Context, fc *engine.Context) (domain.TaskResult, error) {
	return t.execute(ctx, fc)
}

// --- Run Tests ---

func TestRun_Success(t *testing.T) {
	task := &fakeTask{
		name: "ok",
		execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
			return domain.SuccessResult(map[string]any{"n": 1}), nil
		},
	}

	result := Run(context.Background(), task, engine.NewContext(nil), nil)

	if !result.Succeeded() {
		t.Errorf("expected success, got %s", result.Status)
	}
	if result.Data["n"] != 1 {
		t.Errorf("expected data to be carried, got %v", result.Data)
	}
}

func TestRun_ErrorBecomesFailureResult(t *testing.T) {
	task := &fakeTask{
		name: "broken",
		execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
			return domain.TaskResult{}, errors.New("connection refused")
		},
	}

	result := Run(context.Background(), task, engine.NewContext(nil), nil)

	if !result.Failed() {
		t.Fatalf("expected failure, got %s", result.Status)
	}
	if result.Error != "connection refused" {
		t.Errorf("expected error message, got %q", result.Error)
	}
}

func TestRun_PanicBecomesFailureResult(t *testing.T) {
	task := &fakeTask{
		name: "panicky",
		execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
			panic("nil map write")
		},
	}

	result := Run(context.Background(), task, engine.NewContext(nil), nil)

	if !result.Failed() {
		t.Fatalf("panic should become failure, got %s", result.Status)
	}
	if result.Error == "" {
		t.Error("failure should carry the panic message")
	}
	if result.Trace == "" {
		t.Error("failure should carry the stack trace")
	}
}

func TestRun_EmptyStatusDefaultsToSuccess(t *testing.T) {
	task := &fakeTask{
		name: "lazy",
		execute: func(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
			return domain.TaskResult{Data: map[string]any{"ok": true}}, nil
		},
	}

	result := Run(context.Background(), task, engine.NewContext(nil), nil)

	if result.Status != domain.StatusSuccess {
		t.Errorf("empty status should default to success, got %s", result.Status)
	}
}

// --- Builtin Tests ---

func TestFetchDataTask_DefaultRecords(t *testing.T) {
	result := Run(context.Background(), NewFetchDataTask(), engine.NewContext(nil), nil)

	if !result.Succeeded() {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Error)
	}
	if result.Data["total_count"] != 3 {
		t.Errorf("fetch_data should report total_count, got %v", result.Data["total_count"])
	}
	if result.Data["records"] == nil {
		t.Error("fetch_data should carry records")
	}
}

func TestProcessDataTask_UsesFetchResult(t *testing.T) {
	fc := engine.NewContext(nil)

	fetch := Run(context.Background(), NewFetchDataTask(), fc, nil)
	fc.SetResult(TaskFetchData, fetch)

	result := Run(context.Background(), NewProcessDataTask(), fc, nil)

	if !result.Succeeded() {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Error)
	}
	if result.Data["total_value"] != float64(600) {
		t.Errorf("process_data should sum values, got %v", result.Data["total_value"])
	}
	if result.Data["average_value"] != float64(200) {
		t.Errorf("process_data should average values, got %v", result.Data["average_value"])
	}
}

func TestValidateDataTask_MissingRequiredKey(t *testing.T) {
	fc := engine.NewContext(map[string]any{
		"required_keys": []any{"customer_id"},
	})

	result := Run(context.Background(), NewValidateDataTask(), fc, nil)

	if !result.Failed() {
		t.Errorf("missing required key should fail validation, got %s", result.Status)
	}
}

func TestValidateDataTask_AllKeysPresent(t *testing.T) {
	fc := engine.NewContext(map[string]any{
		"required_keys": []any{"customer_id"},
		"customer_id":   42,
	})

	result := Run(context.Background(), NewValidateDataTask(), fc, nil)

	if !result.Succeeded() {
		t.Errorf("expected success, got %s: %s", result.Status, result.Error)
	}
}
