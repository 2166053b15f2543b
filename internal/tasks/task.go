package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
)

// Task — интерфейс исполняемой задачи (capability).
//
// Реализации выбираются по имени через Registry, не по типу.
// Execute получает контекст выполнения flow и возвращает результат;
// возврат ошибки означает логическую неудачу задачи.
type Task interface {
	// Name возвращает уникальное имя задачи.
	Name() string

	// Description возвращает описание задачи.
	Description() string

	// Execute выполняет задачу. fc содержит входные данные запуска
	// и результаты предыдущих задач.
	Execute(ctx context.Context, fc *engine.Context) (domain.TaskResult, error)
}

// Run выполняет задачу с изоляцией ошибок.
//
// Это единственная граница обработки сбоев для логики задач:
//   - паника внутри Execute перехватывается и превращается
//     в результат failure со стеком вызовов;
//   - возвращённая ошибка превращается в результат failure;
//   - результат без статуса по умолчанию считается success.
//
// Сбой задачи никогда не распространяется дальше одного вызова Run —
// авторам задач не нужно самим обрабатывать паники.
func Run(ctx context.Context, task Task, fc *engine.Context, logger *slog.Logger) (result domain.TaskResult) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("task", task.Name())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", "panic", r)
			result = domain.FailureResult(fmt.Sprintf("task panicked: %v", r))
			result.Trace = string(debug.Stack())
		}
	}()

	logger.Info("starting task")

	result, err := task.Execute(ctx, fc)
	if err != nil {
		logger.Error("task failed", "error", err)
		return domain.FailureResult(err.Error())
	}

	if result.Status == "" {
		result.Status = domain.StatusSuccess
	}

	logger.Info("task finished", "status", result.Status)
	return result
}
