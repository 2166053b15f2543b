package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
	"github.com/shaiso/Conductor/internal/orchestrator"
	"github.com/shaiso/Conductor/internal/repo"
	"github.com/shaiso/Conductor/internal/tasks"
)

// --- Fakes ---

type fakeScheduleStore struct {
	due      []domain.Schedule
	updated  []domain.Schedule
	disabled []uuid.UUID
}

func (f *fakeScheduleStore) ListDue(_ context.Context, _ time.Time, _ int) ([]domain.Schedule, error) {
	return f.due, nil
}

func (f *fakeScheduleStore) Update(_ context.Context, sched *domain.Schedule) error {
	f.updated = append(f.updated, *sched)
	return nil
}

func (f *fakeScheduleStore) SetEnabled(_ context.Context, id uuid.UUID, enabled bool) error {
	if !enabled {
		f.disabled = append(f.disabled, id)
	}
	return nil
}

type fakeFlowStore struct {
	flows map[string]*domain.Flow
}

func (f *fakeFlowStore) GetByID(_ context.Context, id string) (*domain.Flow, error) {
	flow, ok := f.flows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return flow, nil
}

// countingStore считает созданные выполнения; остальное — no-op.
type countingStore struct {
	executions int
}

func (s *countingStore) CreateExecution(_ context.Context, _ *domain.FlowExecution) error {
	s.executions++
	return nil
}

func (s *countingStore) UpdateExecution(context.Context, *domain.FlowExecution) error { return nil }
func (s *countingStore) CreateTaskExecution(context.Context, *domain.TaskExecution) error {
	return nil
}
func (s *countingStore) UpdateTaskExecution(context.Context, *domain.TaskExecution) error {
	return nil
}
func (s *countingStore) ListUnfinished(context.Context) ([]domain.FlowExecution, error) {
	return nil, nil
}

type echoTask struct{ name string }

func (t echoTask) Name() string        { return t.name }
func (t echoTask) Description() string { return "echo" }
func (t echoTask) Execute(context.Context, *engine.Context) (domain.TaskResult, error) {
	return domain.SuccessResult(nil), nil
}

// --- Fixtures ---

func testFlow() *domain.Flow {
	return &domain.Flow{
		ID:        "nightly",
		Name:      "Nightly",
		StartTask: "step",
		IsActive:  true,
		Tasks:     []domain.TaskDef{{Name: "step"}},
	}
}

func dueSchedule(flowID string) domain.Schedule {
	past := time.Now().Add(-time.Minute)
	return domain.Schedule{
		ID:          uuid.New(),
		FlowID:      flowID,
		Name:        "every-minute",
		IntervalSec: 60,
		Timezone:    "UTC",
		Enabled:     true,
		NextDueAt:   &past,
	}
}

func newTestScheduler(schedules *fakeScheduleStore, flows *fakeFlowStore, execs *countingStore) *Scheduler {
	registry := tasks.NewRegistry(nil)
	registry.Register(echoTask{name: "step"})

	eng := orchestrator.New(orchestrator.Config{Store: execs, Registry: registry})

	return New(Config{
		ScheduleRepo: schedules,
		FlowRepo:     flows,
		Engine:       eng,
	})
}

// --- Tick Tests ---

func TestTick_RunsDueSchedule(t *testing.T) {
	execs := &countingStore{}
	schedules := &fakeScheduleStore{due: []domain.Schedule{dueSchedule("nightly")}}
	flows := &fakeFlowStore{flows: map[string]*domain.Flow{"nightly": testFlow()}}

	sched := newTestScheduler(schedules, flows, execs)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if execs.executions != 1 {
		t.Errorf("expected 1 execution, got %d", execs.executions)
	}
	if len(schedules.updated) != 1 {
		t.Fatalf("schedule should be updated after the run, got %d updates", len(schedules.updated))
	}

	after := schedules.updated[0]
	if after.LastExecutionID == nil {
		t.Error("last_execution_id should be recorded")
	}
	if after.NextDueAt == nil || !after.NextDueAt.After(time.Now()) {
		t.Error("next_due_at should move into the future")
	}
}

func TestTick_NoDueSchedules(t *testing.T) {
	execs := &countingStore{}
	sched := newTestScheduler(&fakeScheduleStore{}, &fakeFlowStore{}, execs)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if execs.executions != 0 {
		t.Errorf("expected no executions, got %d", execs.executions)
	}
}

func TestTick_MissingFlowAdvancesWithoutRun(t *testing.T) {
	execs := &countingStore{}
	schedules := &fakeScheduleStore{due: []domain.Schedule{dueSchedule("ghost")}}
	flows := &fakeFlowStore{flows: map[string]*domain.Flow{}}

	sched := newTestScheduler(schedules, flows, execs)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if execs.executions != 0 {
		t.Errorf("missing flow should not execute, got %d executions", execs.executions)
	}
	if len(schedules.updated) != 1 {
		t.Fatalf("schedule should still advance, got %d updates", len(schedules.updated))
	}
	if next := schedules.updated[0].NextDueAt; next == nil || !next.After(time.Now()) {
		t.Error("next_due_at should move into the future")
	}
}

func TestTick_InactiveFlowAdvancesWithoutRun(t *testing.T) {
	flow := testFlow()
	flow.IsActive = false

	execs := &countingStore{}
	schedules := &fakeScheduleStore{due: []domain.Schedule{dueSchedule("nightly")}}
	flows := &fakeFlowStore{flows: map[string]*domain.Flow{"nightly": flow}}

	sched := newTestScheduler(schedules, flows, execs)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if execs.executions != 0 {
		t.Errorf("inactive flow should not execute, got %d executions", execs.executions)
	}
	if len(schedules.updated) != 1 {
		t.Error("schedule should still advance")
	}
}

func TestTick_BrokenScheduleIsDisabledAfterRun(t *testing.T) {
	// Ни cron, ни interval: следующее время вычислить нельзя.
	// Без деактивации такой schedule перезапускался бы каждый тик.
	broken := dueSchedule("nightly")
	broken.IntervalSec = 0
	broken.CronExpr = ""

	execs := &countingStore{}
	schedules := &fakeScheduleStore{due: []domain.Schedule{broken}}
	flows := &fakeFlowStore{flows: map[string]*domain.Flow{"nightly": testFlow()}}

	sched := newTestScheduler(schedules, flows, execs)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if execs.executions != 1 {
		t.Errorf("due schedule should still run once, got %d executions", execs.executions)
	}
	if len(schedules.disabled) != 1 || schedules.disabled[0] != broken.ID {
		t.Errorf("broken schedule should be disabled, got %v", schedules.disabled)
	}
	if len(schedules.updated) != 0 {
		t.Errorf("disabled schedule should not be rescheduled, got %d updates", len(schedules.updated))
	}
}

func TestTick_BrokenScheduleWithMissingFlowIsDisabled(t *testing.T) {
	broken := dueSchedule("ghost")
	broken.IntervalSec = 0

	execs := &countingStore{}
	schedules := &fakeScheduleStore{due: []domain.Schedule{broken}}
	flows := &fakeFlowStore{flows: map[string]*domain.Flow{}}

	sched := newTestScheduler(schedules, flows, execs)

	if err := sched.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(schedules.disabled) != 1 {
		t.Errorf("unschedulable schedule should be disabled, got %v", schedules.disabled)
	}
}
