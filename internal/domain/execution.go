package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlowExecution — один запуск flow, долговечная запись о выполнении.
//
// Запись создаётся в момент запуска и мутируется только движком
// в ходе этого запуска. Жизненный цикл:
//
//	pending → running → completed
//	                  ↘ failure
//
// CompletedAt выставляется тогда и только тогда, когда статус
// терминальный.
type FlowExecution struct {
	// ID — уникальный идентификатор выполнения.
	ID uuid.UUID `json:"id"`

	// FlowID — ссылка на flow, который выполняется.
	FlowID string `json:"flow_id"`

	// Status — текущий статус выполнения.
	Status ExecutionStatus `json:"status"`

	// InputContext — входные данные, переданные при запуске.
	InputContext map[string]any `json:"input_context,omitempty"`

	// OutputData — итоговый контекст flow.
	// Заполняется только при успешном завершении.
	OutputData map[string]any `json:"output_data,omitempty"`

	// ErrorMessage — текст ошибки при статусе failure.
	ErrorMessage string `json:"error_message,omitempty"`

	// ErrorTask — имя задачи, на которой произошла ошибка.
	// Пусто, если ошибка не привязана к конкретной задаче.
	ErrorTask string `json:"error_task,omitempty"`

	// TotalTasksExecuted — количество выполненных задач.
	TotalTasksExecuted int `json:"total_tasks_executed"`

	// StartedAt — время создания записи.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения. Nil до терминального статуса.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewFlowExecution создаёт запись о запуске flow в статусе pending.
func NewFlowExecution(flowID string, input map[string]any) *FlowExecution {
	if input == nil {
		input = make(map[string]any)
	}
	return &FlowExecution{
		ID:           uuid.New(),
		FlowID:       flowID,
		Status:       StatusPending,
		InputContext: input,
		StartedAt:    time.Now(),
	}
}

// MarkRunning переводит выполнение в статус running.
func (e *FlowExecution) MarkRunning() {
	e.Status = StatusRunning
}

// MarkCompleted завершает выполнение успешно с итоговыми данными.
func (e *FlowExecution) MarkCompleted(output map[string]any) {
	now := time.Now()
	e.Status = StatusCompleted
	e.CompletedAt = &now
	e.OutputData = output
}

// MarkFailed завершает выполнение с ошибкой.
// errorTask может быть пустым, если ошибка произошла вне задачи.
func (e *FlowExecution) MarkFailed(errMsg, errorTask string) {
	now := time.Now()
	e.Status = StatusFailure
	e.CompletedAt = &now
	e.ErrorMessage = errMsg
	e.ErrorTask = errorTask
}

// IsFinished возвращает true, если выполнение завершено.
func (e *FlowExecution) IsFinished() bool {
	return e.Status.IsTerminal()
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если выполнение ещё не завершено.
func (e *FlowExecution) Duration() time.Duration {
	if e.CompletedAt == nil {
		return 0
	}
	return e.CompletedAt.Sub(e.StartedAt)
}

// TaskExecution — запись о выполнении одной задачи внутри flow-запуска.
//
// Запись принадлежит исключительно родительскому FlowExecution
// и удаляется вместе с ним. Создаётся непосредственно перед
// запуском задачи, финализируется сразу после.
type TaskExecution struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// FlowExecutionID — ссылка на родительское выполнение.
	FlowExecutionID uuid.UUID `json:"flow_execution_id"`

	// TaskName — имя выполненной задачи.
	TaskName string `json:"task_name"`

	// TaskDescription — описание задачи из определения flow.
	TaskDescription string `json:"task_description,omitempty"`

	// SequenceNumber — порядковый номер задачи в запуске (с 1,
	// строго возрастает без пропусков).
	SequenceNumber int `json:"sequence_number"`

	// Status — статус выполнения задачи.
	Status ExecutionStatus `json:"status"`

	// InputData — снимок контекста на момент запуска задачи.
	InputData map[string]any `json:"input_data,omitempty"`

	// OutputData — выходные данные задачи.
	OutputData map[string]any `json:"output_data,omitempty"`

	// ErrorMessage — текст ошибки при неудаче.
	ErrorMessage string `json:"error_message,omitempty"`

	// ErrorTrace — стек вызовов при панике внутри задачи.
	ErrorTrace string `json:"error_trace,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения. Nil до терминального статуса.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTaskExecution создаёт запись о задаче в статусе pending.
// input — снимок контекста на момент вызова.
func NewTaskExecution(executionID uuid.UUID, taskName, description string, seq int, input map[string]any) *TaskExecution {
	if input == nil {
		input = make(map[string]any)
	}
	return &TaskExecution{
		ID:              uuid.New(),
		FlowExecutionID: executionID,
		TaskName:        taskName,
		TaskDescription: description,
		SequenceNumber:  seq,
		Status:          StatusPending,
		InputData:       input,
		StartedAt:       time.Now(),
	}
}

// MarkRunning переводит задачу в статус running.
func (t *TaskExecution) MarkRunning() {
	t.Status = StatusRunning
	t.StartedAt = time.Now()
}

// MarkSuccess завершает задачу успешно с выходными данными.
func (t *TaskExecution) MarkSuccess(output map[string]any) {
	now := time.Now()
	t.Status = StatusSuccess
	t.CompletedAt = &now
	t.OutputData = output
}

// MarkFailure завершает задачу с ошибкой.
func (t *TaskExecution) MarkFailure(errMsg, trace string) {
	now := time.Now()
	t.Status = StatusFailure
	t.CompletedAt = &now
	t.ErrorMessage = errMsg
	t.ErrorTrace = trace
}

// Duration возвращает продолжительность выполнения задачи.
func (t *TaskExecution) Duration() time.Duration {
	if t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(t.StartedAt)
}

// DurationSeconds возвращает продолжительность в секундах.
// Nil, если задача не завершена.
func (t *TaskExecution) DurationSeconds() *float64 {
	if t.CompletedAt == nil {
		return nil
	}
	d := t.CompletedAt.Sub(t.StartedAt).Seconds()
	return &d
}
