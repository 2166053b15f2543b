package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Conductor/internal/domain"
)

// FlowRepo — репозиторий для работы с определениями flows.
//
// Список задач и условий хранится в JSONB-колонке definition:
// определение неизменяемо после создания, UPDATE трогает только
// метаданные.
type FlowRepo struct {
	pool *pgxpool.Pool
}

// NewFlowRepo создаёт новый FlowRepo.
func NewFlowRepo(pool *pgxpool.Pool) *FlowRepo {
	return &FlowRepo{pool: pool}
}

// flowDefinition — содержимое JSONB поля definition.
type flowDefinition struct {
	Tasks      []domain.TaskDef   `json:"tasks"`
	Conditions []domain.Condition `json:"conditions,omitempty"`
}

// Create создаёт новый flow.
// Возвращает ErrAlreadyExists, если flow с таким ID уже есть.
func (r *FlowRepo) Create(ctx context.Context, flow *domain.Flow) error {
	defJSON, err := json.Marshal(flowDefinition{
		Tasks:      flow.Tasks,
		Conditions: flow.Conditions,
	})
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}

	query := `
		INSERT INTO flows (id, name, description, start_task, definition, is_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.pool.Exec(ctx, query,
		flow.ID,
		flow.Name,
		nullString(flow.Description),
		flow.StartTask,
		defJSON,
		flow.IsActive,
		flow.Version,
		flow.CreatedAt,
		flow.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert flow: %w", err)
	}
	return nil
}

// GetByID возвращает flow по ID.
func (r *FlowRepo) GetByID(ctx context.Context, id string) (*domain.Flow, error) {
	query := `
		SELECT id, name, description, start_task, definition, is_active, version, created_at, updated_at
		FROM flows
		WHERE id = $1
	`
	return r.scanFlow(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список всех flows.
func (r *FlowRepo) List(ctx context.Context) ([]domain.Flow, error) {
	query := `
		SELECT id, name, description, start_task, definition, is_active, version, created_at, updated_at
		FROM flows
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	var flows []domain.Flow
	for rows.Next() {
		flow, err := r.scanFlowFromRows(rows)
		if err != nil {
			return nil, err
		}
		flows = append(flows, *flow)
	}
	return flows, rows.Err()
}

// Update обновляет метаданные flow (имя, описание, активность, версию).
// Определение (definition) после создания не меняется.
func (r *FlowRepo) Update(ctx context.Context, flow *domain.Flow) error {
	query := `
		UPDATE flows
		SET name = $2, description = $3, is_active = $4, version = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		flow.ID,
		flow.Name,
		nullString(flow.Description),
		flow.IsActive,
		flow.Version,
		flow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update flow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет flow (каскадно удалит executions и schedules).
func (r *FlowRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM flows WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanFlow сканирует одну строку в Flow.
func (r *FlowRepo) scanFlow(row pgx.Row) (*domain.Flow, error) {
	var flow domain.Flow
	var description *string
	var defJSON []byte

	err := row.Scan(
		&flow.ID,
		&flow.Name,
		&description,
		&flow.StartTask,
		&defJSON,
		&flow.IsActive,
		&flow.Version,
		&flow.CreatedAt,
		&flow.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flow: %w", err)
	}

	if description != nil {
		flow.Description = *description
	}
	if err := unmarshalDefinition(defJSON, &flow); err != nil {
		return nil, err
	}

	return &flow, nil
}

// scanFlowFromRows сканирует строку из rows в Flow.
func (r *FlowRepo) scanFlowFromRows(rows pgx.Rows) (*domain.Flow, error) {
	var flow domain.Flow
	var description *string
	var defJSON []byte

	err := rows.Scan(
		&flow.ID,
		&flow.Name,
		&description,
		&flow.StartTask,
		&defJSON,
		&flow.IsActive,
		&flow.Version,
		&flow.CreatedAt,
		&flow.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan flow: %w", err)
	}

	if description != nil {
		flow.Description = *description
	}
	if err := unmarshalDefinition(defJSON, &flow); err != nil {
		return nil, err
	}

	return &flow, nil
}

// unmarshalDefinition раскладывает JSONB definition по полям flow.
func unmarshalDefinition(defJSON []byte, flow *domain.Flow) error {
	var def flowDefinition
	if err := json.Unmarshal(defJSON, &def); err != nil {
		return fmt.Errorf("unmarshal definition: %w", err)
	}
	flow.Tasks = def.Tasks
	flow.Conditions = def.Conditions
	return nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
