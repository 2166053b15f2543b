package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
	"github.com/shaiso/Conductor/internal/events"
	"github.com/shaiso/Conductor/internal/metrics"
	"github.com/shaiso/Conductor/internal/tasks"
	"github.com/shaiso/Conductor/internal/telemetry"
)

// Engine выполняет flows: по одной задаче за раз, синхронно,
// с немедленной персистенцией каждого перехода состояния.
type Engine struct {
	store    Store
	registry *tasks.Registry
	events   *events.Publisher
	logger   *slog.Logger
}

// Config — конфигурация Engine.
type Config struct {
	// Store — хранилище записей о выполнениях. Обязателен.
	Store Store

	// Registry — реестр задач. Обязателен, конструируется явно
	// вызывающим (tasks.DefaultRegistry или собственный набор).
	Registry *tasks.Registry

	// Events — публикатор событий жизненного цикла. Nil допустим.
	Events *events.Publisher

	// Logger — логгер. По умолчанию slog.Default().
	Logger *slog.Logger
}

// New создаёт новый Engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:    cfg.Store,
		registry: cfg.Registry,
		events:   cfg.Events,
		logger:   logger,
	}
}

// Execute выполняет flow целиком и возвращает итоговую запись.
//
// Запись создаётся в статусе pending, переводится в running, затем
// цикл ведёт выполнение от start_task по условиям маршрутизации до
// сентинеля "end" или отсутствия дальнейшего маршрута. Любой сбой
// самого цикла (не задачи) перехватывается и финализирует выполнение
// как failure без привязки к задаче.
//
// Ошибка возвращается только если не удалось создать стартовую
// запись: после этого все сбои превращаются в данные выполнения.
func (e *Engine) Execute(ctx context.Context, flow *domain.Flow, input map[string]any) (*domain.FlowExecution, error) {
	if flow == nil {
		return nil, ErrNilFlow
	}

	exec := domain.NewFlowExecution(flow.ID, input)
	if err := e.store.CreateExecution(ctx, exec); err != nil {
		return nil, fmt.Errorf("create flow execution: %w", err)
	}

	logger := telemetry.WithFlowID(e.logger, flow.ID)
	logger = telemetry.WithExecutionID(logger, exec.ID.String())
	logger.Info("starting flow execution", "start_task", flow.StartTask)

	metrics.ExecutionsStarted.Inc()

	exec.MarkRunning()
	if err := e.store.UpdateExecution(ctx, exec); err != nil {
		e.finalizeWithFault(ctx, exec, fmt.Errorf("persist running status: %w", err), logger)
		return exec, nil
	}

	e.publishStarted(ctx, exec, logger)

	if err := e.runLoop(ctx, exec, flow, logger); err != nil {
		e.finalizeWithFault(ctx, exec, err, logger)
		return exec, nil
	}

	e.finalize(ctx, exec, logger)
	return exec, nil
}

// runLoop — основной цикл выполнения. Паника внутри цикла
// перехватывается и превращается в терминальный failure без
// привязки к задаче; ошибки хранилища возвращаются наружу
// и обрабатываются так же.
func (e *Engine) runLoop(ctx context.Context, exec *domain.FlowExecution, flow *domain.Flow, logger *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine fault: %v", r)
		}
	}()

	fc := engine.NewContext(exec.InputContext)
	current := flow.StartTask
	seq := 1

	for current != domain.EndTask {
		result, err := e.executeTask(ctx, exec, flow, current, fc, seq)
		if err != nil {
			return err
		}

		exec.TotalTasksExecuted = seq
		if err := e.store.UpdateExecution(ctx, exec); err != nil {
			return fmt.Errorf("persist task counter: %w", err)
		}

		cond, ok := engine.FindCondition(current, flow.Conditions)
		if !ok {
			// Маршрута дальше нет — flow заканчивается здесь.
			if result.Failed() {
				exec.MarkFailed(errorOr(result.Error, "Task failed"), current)
			} else {
				exec.MarkCompleted(fc.Snapshot())
			}
			return nil
		}

		next := engine.Evaluate(cond, result)
		logger.Info("task routed",
			"task", current,
			"status", result.Status,
			"next", next,
		)

		if next == domain.EndTask {
			if result.Failed() {
				exec.MarkFailed(errorOr(result.Error, "Flow ended due to task failure"), current)
			} else {
				exec.MarkCompleted(fc.Snapshot())
			}
			return nil
		}

		current = next
		seq++
	}

	// start_task == "end": ни одной задачи не выполнено.
	exec.MarkCompleted(fc.Snapshot())
	return nil
}

// executeTask выполняет одну задачу и записывает её трейл.
//
// Возвращаемая ошибка означает сбой инфраструктуры (хранилища),
// не задачи: сбои задач всегда приходят результатом failure.
//
// Если определение задачи или capability не находятся, возвращается
// результат failure БЕЗ записи TaskExecution: запись создаётся
// только после разрешения задачи.
func (e *Engine) executeTask(ctx context.Context, exec *domain.FlowExecution, flow *domain.Flow, taskName string, fc *engine.Context, seq int) (domain.TaskResult, error) {
	logger := telemetry.WithExecutionID(e.logger, exec.ID.String())
	logger = telemetry.WithTaskName(logger, taskName)

	def, ok := flow.TaskByName(taskName)
	if !ok {
		msg := fmt.Sprintf("task %q not found in flow definition", taskName)
		logger.Error(msg)
		return domain.FailureResult(msg), nil
	}

	task, ok := e.registry.Get(taskName)
	if !ok {
		msg := fmt.Sprintf("task %q not found in task registry", taskName)
		logger.Error(msg)
		return domain.FailureResult(msg), nil
	}

	te := domain.NewTaskExecution(exec.ID, taskName, def.Description, seq, fc.Snapshot())
	if err := e.store.CreateTaskExecution(ctx, te); err != nil {
		return domain.TaskResult{}, fmt.Errorf("create task execution: %w", err)
	}

	te.MarkRunning()
	if err := e.store.UpdateTaskExecution(ctx, te); err != nil {
		return domain.TaskResult{}, fmt.Errorf("persist task running status: %w", err)
	}

	start := time.Now()
	result := tasks.Run(ctx, task, fc, logger)

	// Результат попадает в контекст под именем задачи — так
	// последующие задачи видят выходы предыдущих.
	fc.SetResult(taskName, result)

	if result.Succeeded() {
		te.MarkSuccess(result.Data)
	} else {
		te.MarkFailure(errorOr(result.Error, "Task failed without error message"), result.Trace)
	}
	if err := e.store.UpdateTaskExecution(ctx, te); err != nil {
		return domain.TaskResult{}, fmt.Errorf("persist task result: %w", err)
	}

	metrics.TasksExecuted.WithLabelValues(taskName, string(te.Status)).Inc()
	metrics.TaskDuration.WithLabelValues(taskName).Observe(time.Since(start).Seconds())

	if err := e.events.TaskFinished(ctx, flow.ID, te); err != nil {
		logger.Warn("failed to publish task event", "error", err)
	}

	return result, nil
}

// finalize персистит терминальное состояние и публикует событие.
func (e *Engine) finalize(ctx context.Context, exec *domain.FlowExecution, logger *slog.Logger) {
	if err := e.store.UpdateExecution(ctx, exec); err != nil {
		logger.Error("failed to persist final state", "error", err)
	}

	metrics.ExecutionsFinished.WithLabelValues(string(exec.Status)).Inc()
	metrics.ExecutionDuration.Observe(exec.Duration().Seconds())

	if err := e.events.ExecutionFinished(ctx, exec); err != nil {
		logger.Warn("failed to publish execution event", "error", err)
	}

	logger.Info("flow execution finished",
		"status", exec.Status,
		"tasks_executed", exec.TotalTasksExecuted,
		"duration", exec.Duration(),
	)
}

// finalizeWithFault финализирует выполнение после сбоя самого цикла.
// Такой сбой не привязан к задаче: error_task остаётся пустым.
func (e *Engine) finalizeWithFault(ctx context.Context, exec *domain.FlowExecution, fault error, logger *slog.Logger) {
	logger.Error("flow execution faulted", "error", fault)
	exec.MarkFailed(fault.Error(), "")
	e.finalize(ctx, exec, logger)
}

// publishStarted публикует событие о начале выполнения.
func (e *Engine) publishStarted(ctx context.Context, exec *domain.FlowExecution, logger *slog.Logger) {
	if err := e.events.ExecutionStarted(ctx, exec); err != nil {
		logger.Warn("failed to publish execution event", "error", err)
	}
}

// ValidateExecutable проверяет, что flow может быть выполнен:
// структура валидна и каждая задача разрешается в реестре.
// Структурно валидный flow может быть неисполним, если его задачи
// не зарегистрированы.
func (e *Engine) ValidateExecutable(flow *domain.Flow) (bool, []string) {
	problems := validationMessages(engine.ValidateStructure(flow))

	for _, name := range flow.TaskNames() {
		if !e.registry.Has(name) {
			problems = append(problems, fmt.Sprintf("task %q not found in task registry", name))
		}
	}

	return len(problems) == 0, problems
}

// ValidateStructure проверяет только структуру определения flow.
func (e *Engine) ValidateStructure(flow *domain.Flow) (bool, []string) {
	problems := validationMessages(engine.ValidateStructure(flow))
	return len(problems) == 0, problems
}

// EnsureRunnable проверяет, что flow можно запускать прямо сейчас.
//
// Возвращает ErrFlowInactive для неактивного flow и ErrFlowNotExecutable
// с перечнем проблем для flow, не прошедшего проверку исполнимости.
// Вызывающие различают причины через errors.Is.
func (e *Engine) EnsureRunnable(flow *domain.Flow) ([]string, error) {
	if flow == nil {
		return nil, ErrNilFlow
	}
	if !flow.IsActive {
		return nil, ErrFlowInactive
	}
	if ok, problems := e.ValidateExecutable(flow); !ok {
		return problems, ErrFlowNotExecutable
	}
	return nil, nil
}

// validationMessages конвертирует ошибки валидации в строки для API.
func validationMessages(errs []*engine.ValidationError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// errorOr возвращает msg, если он непустой, иначе fallback.
func errorOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
