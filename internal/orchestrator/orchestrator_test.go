package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
	"github.com/shaiso/Conductor/internal/tasks"
)

// --- In-memory Store ---

// memStore — хранилище в памяти для тестов движка.
type memStore struct {
	executions map[uuid.UUID]*domain.FlowExecution
	taskExecs  []*domain.TaskExecution

	failCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		executions: make(map[uuid.UUID]*domain.FlowExecution),
	}
}

func (s *memStore) CreateExecution(_ context.Context, exec *domain.FlowExecution) error {
	if s.failCreate {
		return errors.New("store unavailable")
	}
	copied := *exec
	s.executions[exec.ID] = &copied
	return nil
}

func (s *memStore) UpdateExecution(_ context.Context, exec *domain.FlowExecution) error {
	copied := *exec
	s.executions[exec.ID] = &copied
	return nil
}

func (s *memStore) CreateTaskExecution(_ context.Context, te *domain.TaskExecution) error {
	copied := *te
	s.taskExecs = append(s.taskExecs, &copied)
	return nil
}

func (s *memStore) UpdateTaskExecution(_ context.Context, te *domain.TaskExecution) error {
	for i, existing := range s.taskExecs {
		if existing.ID == te.ID {
			copied := *te
			s.taskExecs[i] = &copied
			return nil
		}
	}
	return errors.New("task execution not found")
}

func (s *memStore) ListUnfinished(_ context.Context) ([]domain.FlowExecution, error) {
	var out []domain.FlowExecution
	for _, exec := range s.executions {
		if !exec.Status.IsTerminal() {
			out = append(out, *exec)
		}
	}
	return out, nil
}

// tasksFor возвращает записи о задачах выполнения в порядке sequence_number.
func (s *memStore) tasksFor(execID uuid.UUID) []*domain.TaskExecution {
	var out []*domain.TaskExecution
	for seq := 1; ; seq++ {
		found := false
		for _, te := range s.taskExecs {
			if te.FlowExecutionID == execID && te.SequenceNumber == seq {
				out = append(out, te)
				found = true
			}
		}
		if !found {
			return out
		}
	}
}

// --- Test fixtures ---

type stubTask struct {
	name    string
	result  domain.TaskResult
	execErr error
	doPanic bool
}

func (t *stubTask) Name() string        { return t.name }
func (t *stubTask) Description() string { return "stub" }
func (t *stubTask) Execute(_ context.Context, _ *engine.Context) (domain.TaskResult, error) {
	if t.doPanic {
		panic("stub exploded")
	}
	return t.result, t.execErr
}

func succeeding(name string) *stubTask {
	return &stubTask{name: name, result: domain.SuccessResult(map[string]any{"by": name})}
}

func failing(name, msg string) *stubTask {
	return &stubTask{name: name, execErr: errors.New(msg)}
}

func newTestEngine(store Store, taskList ...tasks.Task) *Engine {
	registry := tasks.NewRegistry(nil)
	for _, t := range taskList {
		registry.Register(t)
	}
	return New(Config{Store: store, Registry: registry})
}

// twoStepFlow — flow из двух задач с условием A → B при успехе.
func twoStepFlow() *domain.Flow {
	return &domain.Flow{
		ID:        "two-step",
		Name:      "Two Step",
		StartTask: "A",
		IsActive:  true,
		Tasks: []domain.TaskDef{
			{Name: "A"},
			{Name: "B"},
		},
		Conditions: []domain.Condition{
			{Name: "a-done", SourceTask: "A", Outcome: domain.OutcomeSuccess, TargetTaskSuccess: "B", TargetTaskFailure: "end"},
		},
	}
}

// --- Execute Tests ---

func TestExecute_SingleTaskCompletes(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, succeeding("solo"))

	flow := &domain.Flow{
		ID:        "single",
		StartTask: "solo",
		Tasks:     []domain.TaskDef{{Name: "solo"}},
	}

	exec, err := eng.Execute(context.Background(), flow, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s (%s)", exec.Status, exec.ErrorMessage)
	}
	if exec.TotalTasksExecuted != 1 {
		t.Errorf("expected 1 task executed, got %d", exec.TotalTasksExecuted)
	}
	if exec.CompletedAt == nil {
		t.Error("terminal execution should have completed_at")
	}

	trail := store.tasksFor(exec.ID)
	if len(trail) != 1 {
		t.Fatalf("expected exactly one task execution, got %d", len(trail))
	}
	if trail[0].Status != domain.StatusSuccess {
		t.Errorf("task should be success, got %s", trail[0].Status)
	}
}

func TestExecute_TwoStepFlowCompletes(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, succeeding("A"), succeeding("B"))

	exec, err := eng.Execute(context.Background(), twoStepFlow(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s (%s)", exec.Status, exec.ErrorMessage)
	}
	if exec.TotalTasksExecuted != 2 {
		t.Errorf("expected 2 tasks executed, got %d", exec.TotalTasksExecuted)
	}

	trail := store.tasksFor(exec.ID)
	if len(trail) != 2 {
		t.Fatalf("expected 2 task executions, got %d", len(trail))
	}
	if trail[0].TaskName != "A" || trail[1].TaskName != "B" {
		t.Errorf("unexpected task order: %s, %s", trail[0].TaskName, trail[1].TaskName)
	}
}

func TestExecute_FailureRoutesToEnd(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, failing("A", "boom"), succeeding("B"))

	exec, err := eng.Execute(context.Background(), twoStepFlow(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Status != domain.StatusFailure {
		t.Errorf("expected failure, got %s", exec.Status)
	}
	if exec.ErrorTask != "A" {
		t.Errorf("expected error_task A, got %q", exec.ErrorTask)
	}
	if exec.ErrorMessage != "boom" {
		t.Errorf("expected error message boom, got %q", exec.ErrorMessage)
	}
	if exec.TotalTasksExecuted != 1 {
		t.Errorf("expected 1 task executed, got %d", exec.TotalTasksExecuted)
	}

	trail := store.tasksFor(exec.ID)
	if len(trail) != 1 {
		t.Fatalf("B should never run, got %d task executions", len(trail))
	}
	if trail[0].Status != domain.StatusFailure {
		t.Errorf("task A record should be failure, got %s", trail[0].Status)
	}
}

func TestExecute_AnyOutcomeProceedsOnFailure(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, failing("A", "boom"), succeeding("B"))

	flow := twoStepFlow()
	flow.Conditions[0].Outcome = domain.OutcomeAny

	exec, err := eng.Execute(context.Background(), flow, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// any ведёт по success-ветке независимо от исхода A
	if exec.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s (%s)", exec.Status, exec.ErrorMessage)
	}
	if exec.TotalTasksExecuted != 2 {
		t.Errorf("expected 2 tasks executed, got %d", exec.TotalTasksExecuted)
	}
}

func TestExecute_NoConditionAfterFailureTask(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, failing("solo", "kaput"))

	flow := &domain.Flow{
		ID:        "single-fail",
		StartTask: "solo",
		Tasks:     []domain.TaskDef{{Name: "solo"}},
	}

	exec, _ := eng.Execute(context.Background(), flow, nil)

	if exec.Status != domain.StatusFailure {
		t.Errorf("expected failure, got %s", exec.Status)
	}
	if exec.ErrorTask != "solo" {
		t.Errorf("expected error_task solo, got %q", exec.ErrorTask)
	}
}

func TestExecute_SequenceNumbersGapFree(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, succeeding("A"), succeeding("B"), succeeding("C"))

	flow := &domain.Flow{
		ID:        "chain",
		StartTask: "A",
		Tasks:     []domain.TaskDef{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Conditions: []domain.Condition{
			{Name: "c1", SourceTask: "A", Outcome: domain.OutcomeSuccess, TargetTaskSuccess: "B", TargetTaskFailure: "end"},
			{Name: "c2", SourceTask: "B", Outcome: domain.OutcomeSuccess, TargetTaskSuccess: "C", TargetTaskFailure: "end"},
		},
	}

	exec, _ := eng.Execute(context.Background(), flow, nil)

	trail := store.tasksFor(exec.ID)
	if len(trail) != 3 {
		t.Fatalf("expected 3 task executions, got %d", len(trail))
	}
	for i, te := range trail {
		if te.SequenceNumber != i+1 {
			t.Errorf("trail[%d]: expected sequence %d, got %d", i, i+1, te.SequenceNumber)
		}
	}
}

func TestExecute_MissingCapabilityLeavesNoTaskRecord(t *testing.T) {
	// Задача есть в определении, но не в реестре: выполнение падает,
	// а запись TaskExecution не создаётся.
	store := newMemStore()
	eng := newTestEngine(store) // пустой реестр

	flow := &domain.Flow{
		ID:        "ghost-flow",
		StartTask: "ghost",
		Tasks:     []domain.TaskDef{{Name: "ghost"}},
	}

	exec, err := eng.Execute(context.Background(), flow, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Status != domain.StatusFailure {
		t.Errorf("expected failure, got %s", exec.Status)
	}
	if len(store.tasksFor(exec.ID)) != 0 {
		t.Error("missing capability should leave no task execution record")
	}
}

func TestExecute_PanicInTaskIsIsolated(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, &stubTask{name: "A", doPanic: true}, succeeding("B"))

	exec, err := eng.Execute(context.Background(), twoStepFlow(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Status != domain.StatusFailure {
		t.Errorf("expected failure, got %s", exec.Status)
	}
	if exec.ErrorTask != "A" {
		t.Errorf("panic should be attributed to task A, got %q", exec.ErrorTask)
	}

	trail := store.tasksFor(exec.ID)
	if len(trail) != 1 {
		t.Fatalf("expected 1 task execution, got %d", len(trail))
	}
	if trail[0].ErrorTrace == "" {
		t.Error("panic should record a stack trace")
	}
}

func TestExecute_IndependentExecutions(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, succeeding("A"), succeeding("B"))

	first, _ := eng.Execute(context.Background(), twoStepFlow(), map[string]any{"run": 1})
	second, _ := eng.Execute(context.Background(), twoStepFlow(), map[string]any{"run": 2})

	if first.ID == second.ID {
		t.Fatal("executions should have distinct IDs")
	}
	if len(store.tasksFor(first.ID)) != 2 || len(store.tasksFor(second.ID)) != 2 {
		t.Error("each execution should have its own task trail")
	}
	if first.InputContext["run"] == second.InputContext["run"] {
		t.Error("executions should not share input context")
	}
}

func TestExecute_OutputDataCarriesContext(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, succeeding("A"), succeeding("B"))

	exec, _ := eng.Execute(context.Background(), twoStepFlow(), map[string]any{"env": "test"})

	if exec.OutputData["env"] != "test" {
		t.Error("output data should include run inputs")
	}
	for _, name := range []string{"A", "B"} {
		entry, ok := exec.OutputData[name].(map[string]any)
		if !ok {
			t.Fatalf("output data should include %s result, got %T", name, exec.OutputData[name])
		}
		if entry["status"] != "success" {
			t.Errorf("%s entry should be success, got %v", name, entry["status"])
		}
	}
}

func TestExecute_TaskInputDataSnapshotsContext(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store, succeeding("A"), succeeding("B"))

	exec, _ := eng.Execute(context.Background(), twoStepFlow(), map[string]any{"env": "test"})

	trail := store.tasksFor(exec.ID)
	if len(trail) != 2 {
		t.Fatalf("expected 2 task executions, got %d", len(trail))
	}

	// Первая задача видит только входы
	if _, ok := trail[0].InputData["A"]; ok {
		t.Error("first task input should not contain its own result")
	}
	if trail[0].InputData["env"] != "test" {
		t.Error("first task input should carry run inputs")
	}

	// Вторая задача видит результат первой
	if _, ok := trail[1].InputData["A"]; !ok {
		t.Error("second task input should contain first task result")
	}
}

func TestExecute_NilFlow(t *testing.T) {
	eng := newTestEngine(newMemStore())

	if _, err := eng.Execute(context.Background(), nil, nil); !errors.Is(err, ErrNilFlow) {
		t.Errorf("expected ErrNilFlow, got %v", err)
	}
}

func TestExecute_CreateFailureReturnsError(t *testing.T) {
	store := newMemStore()
	store.failCreate = true
	eng := newTestEngine(store, succeeding("A"))

	flow := &domain.Flow{ID: "f", StartTask: "A", Tasks: []domain.TaskDef{{Name: "A"}}}

	if _, err := eng.Execute(context.Background(), flow, nil); err == nil {
		t.Error("create failure should surface as error")
	}
}

// --- ValidateExecutable Tests ---

func TestValidateExecutable_Valid(t *testing.T) {
	eng := newTestEngine(newMemStore(), succeeding("A"), succeeding("B"))

	valid, problems := eng.ValidateExecutable(twoStepFlow())
	if !valid {
		t.Errorf("flow should be executable, problems: %v", problems)
	}
}

func TestValidateExecutable_UnregisteredTask(t *testing.T) {
	eng := newTestEngine(newMemStore(), succeeding("A")) // B не зарегистрирована

	valid, problems := eng.ValidateExecutable(twoStepFlow())
	if valid {
		t.Error("flow with unregistered task should not be executable")
	}
	if len(problems) == 0 {
		t.Error("problems should name the missing task")
	}
}

// --- EnsureRunnable Tests ---

func TestEnsureRunnable_Active(t *testing.T) {
	eng := newTestEngine(newMemStore(), succeeding("A"), succeeding("B"))

	if _, err := eng.EnsureRunnable(twoStepFlow()); err != nil {
		t.Errorf("active executable flow should be runnable, got %v", err)
	}
}

func TestEnsureRunnable_Inactive(t *testing.T) {
	eng := newTestEngine(newMemStore(), succeeding("A"), succeeding("B"))

	flow := twoStepFlow()
	flow.IsActive = false

	_, err := eng.EnsureRunnable(flow)
	if !errors.Is(err, ErrFlowInactive) {
		t.Errorf("expected ErrFlowInactive, got %v", err)
	}
}

func TestEnsureRunnable_NotExecutable(t *testing.T) {
	eng := newTestEngine(newMemStore(), succeeding("A")) // B не зарегистрирована

	problems, err := eng.EnsureRunnable(twoStepFlow())
	if !errors.Is(err, ErrFlowNotExecutable) {
		t.Errorf("expected ErrFlowNotExecutable, got %v", err)
	}
	if len(problems) == 0 {
		t.Error("problems should name the missing task")
	}
}

func TestEnsureRunnable_NilFlow(t *testing.T) {
	eng := newTestEngine(newMemStore())

	if _, err := eng.EnsureRunnable(nil); !errors.Is(err, ErrNilFlow) {
		t.Errorf("expected ErrNilFlow, got %v", err)
	}
}

// --- RecoverAbandoned Tests ---

func TestRecoverAbandoned(t *testing.T) {
	store := newMemStore()
	eng := newTestEngine(store)

	// Два брошенных выполнения и одно завершённое
	stuck1 := domain.NewFlowExecution("f1", nil)
	stuck1.MarkRunning()
	store.CreateExecution(context.Background(), stuck1)

	stuck2 := domain.NewFlowExecution("f2", nil)
	store.CreateExecution(context.Background(), stuck2)

	done := domain.NewFlowExecution("f3", nil)
	done.MarkCompleted(nil)
	store.CreateExecution(context.Background(), done)

	recovered, err := eng.RecoverAbandoned(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recovered != 2 {
		t.Errorf("expected 2 recovered, got %d", recovered)
	}

	for _, id := range []uuid.UUID{stuck1.ID, stuck2.ID} {
		exec := store.executions[id]
		if exec.Status != domain.StatusFailure {
			t.Errorf("stuck execution should be failure, got %s", exec.Status)
		}
		if exec.ErrorMessage != abandonedMessage {
			t.Errorf("unexpected error message: %q", exec.ErrorMessage)
		}
	}

	if store.executions[done.ID].Status != domain.StatusCompleted {
		t.Error("finished execution should be untouched")
	}
}

func TestRecoverAbandoned_NothingToRecover(t *testing.T) {
	eng := newTestEngine(newMemStore())

	recovered, err := eng.RecoverAbandoned(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recovered != 0 {
		t.Errorf("expected 0 recovered, got %d", recovered)
	}
}
