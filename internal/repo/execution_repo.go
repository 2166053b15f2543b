package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Conductor/internal/domain"
)

// ExecutionRepo — репозиторий записей о выполнениях flows и их задач.
//
// Реализует orchestrator.Store: движок пишет сюда каждый переход
// состояния отдельным запросом.
type ExecutionRepo struct {
	pool *pgxpool.Pool
}

// NewExecutionRepo создаёт новый ExecutionRepo.
func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{pool: pool}
}

// CreateExecution сохраняет новую запись о выполнении flow.
func (r *ExecutionRepo) CreateExecution(ctx context.Context, exec *domain.FlowExecution) error {
	inputJSON, err := json.Marshal(exec.InputContext)
	if err != nil {
		return fmt.Errorf("marshal input context: %w", err)
	}

	query := `
		INSERT INTO flow_executions (id, flow_id, status, input_context, total_tasks_executed, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query,
		exec.ID,
		exec.FlowID,
		exec.Status,
		inputJSON,
		exec.TotalTasksExecuted,
		exec.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flow execution: %w", err)
	}
	return nil
}

// UpdateExecution сохраняет текущее состояние выполнения.
func (r *ExecutionRepo) UpdateExecution(ctx context.Context, exec *domain.FlowExecution) error {
	outputJSON, err := json.Marshal(exec.OutputData)
	if err != nil {
		return fmt.Errorf("marshal output data: %w", err)
	}

	query := `
		UPDATE flow_executions
		SET status = $2, output_data = $3, error_message = $4, error_task = $5,
		    total_tasks_executed = $6, completed_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		exec.ID,
		exec.Status,
		outputJSON,
		nullString(exec.ErrorMessage),
		nullString(exec.ErrorTask),
		exec.TotalTasksExecuted,
		exec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update flow execution: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает выполнение по ID.
func (r *ExecutionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlowExecution, error) {
	query := `
		SELECT id, flow_id, status, input_context, output_data, error_message,
		       error_task, total_tasks_executed, started_at, completed_at
		FROM flow_executions
		WHERE id = $1
	`
	return r.scanExecution(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список выполнений с фильтрацией.
func (r *ExecutionRepo) List(ctx context.Context, filter ExecutionFilter) ([]domain.FlowExecution, error) {
	query := `
		SELECT id, flow_id, status, input_context, output_data, error_message,
		       error_task, total_tasks_executed, started_at, completed_at
		FROM flow_executions
		WHERE ($1::text IS NULL OR flow_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.FlowID),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list flow executions: %w", err)
	}
	defer rows.Close()

	var execs []domain.FlowExecution
	for rows.Next() {
		exec, err := r.scanExecutionFromRows(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, *exec)
	}
	return execs, rows.Err()
}

// ListUnfinished возвращает выполнения в нетерминальных статусах.
func (r *ExecutionRepo) ListUnfinished(ctx context.Context) ([]domain.FlowExecution, error) {
	query := `
		SELECT id, flow_id, status, input_context, output_data, error_message,
		       error_task, total_tasks_executed, started_at, completed_at
		FROM flow_executions
		WHERE status IN ('pending', 'running')
		ORDER BY started_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unfinished executions: %w", err)
	}
	defer rows.Close()

	var execs []domain.FlowExecution
	for rows.Next() {
		exec, err := r.scanExecutionFromRows(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, *exec)
	}
	return execs, rows.Err()
}

// CreateTaskExecution сохраняет новую запись о задаче.
func (r *ExecutionRepo) CreateTaskExecution(ctx context.Context, te *domain.TaskExecution) error {
	inputJSON, err := json.Marshal(te.InputData)
	if err != nil {
		return fmt.Errorf("marshal input data: %w", err)
	}

	query := `
		INSERT INTO task_executions (id, flow_execution_id, task_name, task_description,
		                             sequence_number, status, input_data, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		te.ID,
		te.FlowExecutionID,
		te.TaskName,
		nullString(te.TaskDescription),
		te.SequenceNumber,
		te.Status,
		inputJSON,
		te.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task execution: %w", err)
	}
	return nil
}

// UpdateTaskExecution сохраняет текущее состояние задачи.
func (r *ExecutionRepo) UpdateTaskExecution(ctx context.Context, te *domain.TaskExecution) error {
	outputJSON, err := json.Marshal(te.OutputData)
	if err != nil {
		return fmt.Errorf("marshal output data: %w", err)
	}

	query := `
		UPDATE task_executions
		SET status = $2, output_data = $3, error_message = $4, error_trace = $5,
		    started_at = $6, completed_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		te.ID,
		te.Status,
		outputJSON,
		nullString(te.ErrorMessage),
		nullString(te.ErrorTrace),
		te.StartedAt,
		te.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update task execution: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTasksByExecution возвращает задачи выполнения в порядке запуска.
func (r *ExecutionRepo) ListTasksByExecution(ctx context.Context, executionID uuid.UUID) ([]domain.TaskExecution, error) {
	query := `
		SELECT id, flow_execution_id, task_name, task_description, sequence_number,
		       status, input_data, output_data, error_message, error_trace,
		       started_at, completed_at
		FROM task_executions
		WHERE flow_execution_id = $1
		ORDER BY sequence_number ASC
	`
	rows, err := r.pool.Query(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("list task executions: %w", err)
	}
	defer rows.Close()

	var tasks []domain.TaskExecution
	for rows.Next() {
		te, err := r.scanTaskExecutionFromRows(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *te)
	}
	return tasks, rows.Err()
}

// --- Helpers ---

// ExecutionFilter — параметры фильтрации выполнений.
type ExecutionFilter struct {
	FlowID string
	Status domain.ExecutionStatus
	Limit  int
	Offset int
}

// scanExecution сканирует одну строку в FlowExecution.
func (r *ExecutionRepo) scanExecution(row pgx.Row) (*domain.FlowExecution, error) {
	var exec domain.FlowExecution
	var inputJSON, outputJSON []byte
	var errMsg, errTask *string

	err := row.Scan(
		&exec.ID,
		&exec.FlowID,
		&exec.Status,
		&inputJSON,
		&outputJSON,
		&errMsg,
		&errTask,
		&exec.TotalTasksExecuted,
		&exec.StartedAt,
		&exec.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flow execution: %w", err)
	}

	if err := fillExecutionJSON(&exec, inputJSON, outputJSON); err != nil {
		return nil, err
	}
	if errMsg != nil {
		exec.ErrorMessage = *errMsg
	}
	if errTask != nil {
		exec.ErrorTask = *errTask
	}

	return &exec, nil
}

// scanExecutionFromRows сканирует строку из rows в FlowExecution.
func (r *ExecutionRepo) scanExecutionFromRows(rows pgx.Rows) (*domain.FlowExecution, error) {
	var exec domain.FlowExecution
	var inputJSON, outputJSON []byte
	var errMsg, errTask *string

	err := rows.Scan(
		&exec.ID,
		&exec.FlowID,
		&exec.Status,
		&inputJSON,
		&outputJSON,
		&errMsg,
		&errTask,
		&exec.TotalTasksExecuted,
		&exec.StartedAt,
		&exec.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan flow execution: %w", err)
	}

	if err := fillExecutionJSON(&exec, inputJSON, outputJSON); err != nil {
		return nil, err
	}
	if errMsg != nil {
		exec.ErrorMessage = *errMsg
	}
	if errTask != nil {
		exec.ErrorTask = *errTask
	}

	return &exec, nil
}

// scanTaskExecutionFromRows сканирует строку из rows в TaskExecution.
func (r *ExecutionRepo) scanTaskExecutionFromRows(rows pgx.Rows) (*domain.TaskExecution, error) {
	var te domain.TaskExecution
	var inputJSON, outputJSON []byte
	var description, errMsg, errTrace *string

	err := rows.Scan(
		&te.ID,
		&te.FlowExecutionID,
		&te.TaskName,
		&description,
		&te.SequenceNumber,
		&te.Status,
		&inputJSON,
		&outputJSON,
		&errMsg,
		&errTrace,
		&te.StartedAt,
		&te.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan task execution: %w", err)
	}

	if description != nil {
		te.TaskDescription = *description
	}
	if errMsg != nil {
		te.ErrorMessage = *errMsg
	}
	if errTrace != nil {
		te.ErrorTrace = *errTrace
	}
	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &te.InputData); err != nil {
			return nil, fmt.Errorf("unmarshal input data: %w", err)
		}
	}
	if outputJSON != nil {
		if err := json.Unmarshal(outputJSON, &te.OutputData); err != nil {
			return nil, fmt.Errorf("unmarshal output data: %w", err)
		}
	}

	return &te, nil
}

// fillExecutionJSON раскладывает JSONB-поля по структуре выполнения.
func fillExecutionJSON(exec *domain.FlowExecution, inputJSON, outputJSON []byte) error {
	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &exec.InputContext); err != nil {
			return fmt.Errorf("unmarshal input context: %w", err)
		}
	}
	if outputJSON != nil {
		if err := json.Unmarshal(outputJSON, &exec.OutputData); err != nil {
			return fmt.Errorf("unmarshal output data: %w", err)
		}
	}
	return nil
}
