package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
)

// Flow DTOs

// CreateFlowRequest — запрос на создание flow.
// Тело повторяет wire-формат определения flow.
type CreateFlowRequest struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	StartTask   string             `json:"start_task"`
	Tasks       []domain.TaskDef   `json:"tasks"`
	Conditions  []domain.Condition `json:"conditions,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

// UpdateFlowRequest — запрос на обновление метаданных flow.
// Определение (tasks, conditions, start_task) неизменяемо.
type UpdateFlowRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// FlowResponse — ответ с flow.
type FlowResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	StartTask   string             `json:"start_task"`
	Tasks       []domain.TaskDef   `json:"tasks"`
	Conditions  []domain.Condition `json:"conditions,omitempty"`
	IsActive    bool               `json:"is_active"`
	Version     int                `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// FlowFromDomain конвертирует domain.Flow в FlowResponse.
func FlowFromDomain(f domain.Flow) FlowResponse {
	return FlowResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		StartTask:   f.StartTask,
		Tasks:       f.Tasks,
		Conditions:  f.Conditions,
		IsActive:    f.IsActive,
		Version:     f.Version,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ValidationResponse — результат валидации flow.
type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Execution DTOs

// ExecuteFlowRequest — запрос на запуск flow.
type ExecuteFlowRequest struct {
	InputContext map[string]any `json:"input_context,omitempty"`
}

// ExecutionResponse — ответ с выполнением flow.
type ExecutionResponse struct {
	ID                 uuid.UUID               `json:"id"`
	FlowID             string                  `json:"flow_id"`
	Status             string                  `json:"status"`
	InputContext       map[string]any          `json:"input_context,omitempty"`
	OutputData         map[string]any          `json:"output_data,omitempty"`
	ErrorMessage       string                  `json:"error_message,omitempty"`
	ErrorTask          string                  `json:"error_task,omitempty"`
	TotalTasksExecuted int                     `json:"total_tasks_executed"`
	StartedAt          time.Time               `json:"started_at"`
	CompletedAt        *time.Time              `json:"completed_at,omitempty"`
	TaskExecutions     []TaskExecutionResponse `json:"task_executions,omitempty"`
}

// ExecutionFromDomain конвертирует domain.FlowExecution в ExecutionResponse.
func ExecutionFromDomain(e domain.FlowExecution) ExecutionResponse {
	return ExecutionResponse{
		ID:                 e.ID,
		FlowID:             e.FlowID,
		Status:             string(e.Status),
		InputContext:       e.InputContext,
		OutputData:         e.OutputData,
		ErrorMessage:       e.ErrorMessage,
		ErrorTask:          e.ErrorTask,
		TotalTasksExecuted: e.TotalTasksExecuted,
		StartedAt:          e.StartedAt,
		CompletedAt:        e.CompletedAt,
	}
}

// TaskExecutionResponse — ответ с записью о задаче.
type TaskExecutionResponse struct {
	ID              uuid.UUID      `json:"id"`
	TaskName        string         `json:"task_name"`
	TaskDescription string         `json:"task_description,omitempty"`
	SequenceNumber  int            `json:"sequence_number"`
	Status          string         `json:"status"`
	InputData       map[string]any `json:"input_data,omitempty"`
	OutputData      map[string]any `json:"output_data,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	DurationSeconds *float64       `json:"duration_seconds"`
	StartedAt       time.Time      `json:"started_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// TaskExecutionFromDomain конвертирует domain.TaskExecution в TaskExecutionResponse.
func TaskExecutionFromDomain(t domain.TaskExecution) TaskExecutionResponse {
	return TaskExecutionResponse{
		ID:              t.ID,
		TaskName:        t.TaskName,
		TaskDescription: t.TaskDescription,
		SequenceNumber:  t.SequenceNumber,
		Status:          string(t.Status),
		InputData:       t.InputData,
		OutputData:      t.OutputData,
		ErrorMessage:    t.ErrorMessage,
		DurationSeconds: t.DurationSeconds(),
		StartedAt:       t.StartedAt,
		CompletedAt:     t.CompletedAt,
	}
}

// Task catalog DTOs

// TaskInfoResponse — описание зарегистрированной задачи.
type TaskInfoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Name         string         `json:"name"`
	CronExpr     string         `json:"cron_expr,omitempty"`
	IntervalSec  int            `json:"interval_sec,omitempty"`
	Timezone     string         `json:"timezone,omitempty"`
	Enabled      bool           `json:"enabled"`
	InputContext map[string]any `json:"input_context,omitempty"`
}

// UpdateScheduleRequest — запрос на обновление schedule.
type UpdateScheduleRequest struct {
	Name         *string         `json:"name,omitempty"`
	CronExpr     *string         `json:"cron_expr,omitempty"`
	IntervalSec  *int            `json:"interval_sec,omitempty"`
	Timezone     *string         `json:"timezone,omitempty"`
	InputContext *map[string]any `json:"input_context,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с schedule.
type ScheduleResponse struct {
	ID              uuid.UUID      `json:"id"`
	FlowID          string         `json:"flow_id"`
	Name            string         `json:"name"`
	CronExpr        string         `json:"cron_expr,omitempty"`
	IntervalSec     int            `json:"interval_sec,omitempty"`
	Timezone        string         `json:"timezone"`
	Enabled         bool           `json:"enabled"`
	NextDueAt       *time.Time     `json:"next_due_at,omitempty"`
	LastRunAt       *time.Time     `json:"last_run_at,omitempty"`
	LastExecutionID *uuid.UUID     `json:"last_execution_id,omitempty"`
	InputContext    map[string]any `json:"input_context,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:              s.ID,
		FlowID:          s.FlowID,
		Name:            s.Name,
		CronExpr:        s.CronExpr,
		IntervalSec:     s.IntervalSec,
		Timezone:        s.Timezone,
		Enabled:         s.Enabled,
		NextDueAt:       s.NextDueAt,
		LastRunAt:       s.LastRunAt,
		LastExecutionID: s.LastExecutionID,
		InputContext:    s.InputContext,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
