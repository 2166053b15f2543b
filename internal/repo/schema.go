package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema — DDL всех таблиц. Выполняется идемпотентно при старте.
const schema = `
CREATE TABLE IF NOT EXISTS flows (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	start_task  TEXT NOT NULL,
	definition  JSONB NOT NULL,
	is_active   BOOLEAN NOT NULL DEFAULT TRUE,
	version     INTEGER NOT NULL DEFAULT 1,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flows_name ON flows (name);

CREATE TABLE IF NOT EXISTS flow_executions (
	id                   UUID PRIMARY KEY,
	flow_id              TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
	status               TEXT NOT NULL,
	input_context        JSONB,
	output_data          JSONB,
	error_message        TEXT,
	error_task           TEXT,
	total_tasks_executed INTEGER NOT NULL DEFAULT 0,
	started_at           TIMESTAMPTZ NOT NULL,
	completed_at         TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_flow_executions_flow_id ON flow_executions (flow_id);
CREATE INDEX IF NOT EXISTS idx_flow_executions_status ON flow_executions (status);
CREATE INDEX IF NOT EXISTS idx_flow_executions_started_at ON flow_executions (started_at);

CREATE TABLE IF NOT EXISTS task_executions (
	id                UUID PRIMARY KEY,
	flow_execution_id UUID NOT NULL REFERENCES flow_executions(id) ON DELETE CASCADE,
	task_name         TEXT NOT NULL,
	task_description  TEXT,
	sequence_number   INTEGER NOT NULL,
	status            TEXT NOT NULL,
	input_data        JSONB,
	output_data       JSONB,
	error_message     TEXT,
	error_trace       TEXT,
	started_at        TIMESTAMPTZ NOT NULL,
	completed_at      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_task_executions_parent ON task_executions (flow_execution_id);
CREATE INDEX IF NOT EXISTS idx_task_executions_task_name ON task_executions (task_name);

CREATE TABLE IF NOT EXISTS schedules (
	id                UUID PRIMARY KEY,
	flow_id           TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
	name              TEXT,
	cron_expr         TEXT,
	interval_sec      INTEGER,
	timezone          TEXT NOT NULL DEFAULT 'UTC',
	enabled           BOOLEAN NOT NULL DEFAULT TRUE,
	next_due_at       TIMESTAMPTZ,
	last_run_at       TIMESTAMPTZ,
	last_execution_id UUID,
	input_context     JSONB,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_schedules_due ON schedules (enabled, next_due_at);
`

// InitSchema создаёт таблицы, если их ещё нет.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
