package orchestrator

import (
	"context"

	"github.com/shaiso/Conductor/internal/domain"
)

// Store — персистентное хранилище записей о выполнениях.
//
// Движку нужны только атомарные одиночные create/update: каждый
// переход состояния коммитится отдельно, без батчей. Продакшн
// реализация — repo.ExecutionRepo (PostgreSQL); тесты используют
// in-memory фейк.
type Store interface {
	// CreateExecution сохраняет новую запись о выполнении flow.
	CreateExecution(ctx context.Context, exec *domain.FlowExecution) error

	// UpdateExecution сохраняет текущее состояние выполнения.
	UpdateExecution(ctx context.Context, exec *domain.FlowExecution) error

	// CreateTaskExecution сохраняет новую запись о задаче.
	CreateTaskExecution(ctx context.Context, te *domain.TaskExecution) error

	// UpdateTaskExecution сохраняет текущее состояние задачи.
	UpdateTaskExecution(ctx context.Context, te *domain.TaskExecution) error

	// ListUnfinished возвращает выполнения в нетерминальных статусах
	// (pending, running). Используется восстановлением после рестарта.
	ListUnfinished(ctx context.Context) ([]domain.FlowExecution, error)
}
