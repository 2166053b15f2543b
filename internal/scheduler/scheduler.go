package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/orchestrator"
	"github.com/shaiso/Conductor/internal/repo"
)

// ScheduleStore — операции над расписаниями, нужные планировщику.
// repo.ScheduleRepo реализует интерфейс.
type ScheduleStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Schedule, error)
	Update(ctx context.Context, schedule *domain.Schedule) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

// FlowStore — доступ к определениям flow.
// repo.FlowRepo реализует интерфейс.
type FlowStore interface {
	GetByID(ctx context.Context, id string) (*domain.Flow, error)
}

// Scheduler — планировщик, обрабатывающий due schedules.
type Scheduler struct {
	scheduleRepo ScheduleStore
	flowRepo     FlowStore
	engine       *orchestrator.Engine
	logger       *slog.Logger
	batchSize    int
}

// Config — конфигурация Scheduler.
type Config struct {
	ScheduleRepo ScheduleStore
	FlowRepo     FlowStore
	Engine       *orchestrator.Engine
	Logger       *slog.Logger
	BatchSize    int // количество schedules за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduleRepo: cfg.ScheduleRepo,
		flowRepo:     cfg.FlowRepo,
		engine:       cfg.Engine,
		logger:       logger,
		batchSize:    batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due schedules (enabled=true, next_due_at <= now)
// 2. Для каждого schedule запускает flow через движок
// 3. Обновляет next_due_at
//
// Ошибки одного schedule не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	schedules, err := s.scheduleRepo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("found due schedules", "count", len(schedules))

	var processed, started int
	for i := range schedules {
		sched := &schedules[i]

		executed, err := s.processSchedule(ctx, sched, now)
		if err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}

		processed++
		if executed {
			started++
		}
	}

	s.logger.Info("scheduler tick completed",
		"due", len(schedules),
		"processed", processed,
		"executions_started", started,
	)

	return nil
}

// processSchedule обрабатывает один schedule.
// Возвращает true, если flow был запущен.
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) (bool, error) {
	flow, err := s.flowRepo.GetByID(ctx, sched.FlowID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.logger.Warn("flow not found for schedule, skipping",
				"schedule_id", sched.ID,
				"flow_id", sched.FlowID,
			)
			// Не возвращаем ошибку — просто переносим next_due_at
			return false, s.advance(ctx, sched, now)
		}
		return false, fmt.Errorf("get flow: %w", err)
	}

	if !flow.IsActive {
		s.logger.Debug("flow is inactive, skipping",
			"schedule_id", sched.ID,
			"flow_id", sched.FlowID,
		)
		return false, s.advance(ctx, sched, now)
	}

	// Запуск синхронный: тик ждёт завершения flow.
	exec, err := s.engine.Execute(ctx, flow, sched.InputContext)
	if err != nil {
		return false, fmt.Errorf("execute flow: %w", err)
	}

	s.logger.Info("started execution from schedule",
		"execution_id", exec.ID,
		"schedule_id", sched.ID,
		"schedule_name", sched.Name,
		"flow_id", sched.FlowID,
		"status", exec.Status,
	)

	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		// next_due_at остаётся в прошлом: без деактивации schedule
		// перезапускался бы каждый тик, пока его не починят.
		return true, s.disable(ctx, sched, err)
	}

	sched.RecordRun(exec.ID, nextDue)
	if err := s.scheduleRepo.Update(ctx, sched); err != nil {
		return true, fmt.Errorf("update schedule: %w", err)
	}

	return true, nil
}

// disable выключает schedule, для которого не удалось вычислить
// следующее время запуска.
func (s *Scheduler) disable(ctx context.Context, sched *domain.Schedule, cause error) error {
	s.logger.Error("failed to calculate next due, disabling schedule",
		"schedule_id", sched.ID,
		"schedule_name", sched.Name,
		"error", cause,
	)
	if err := s.scheduleRepo.SetEnabled(ctx, sched.ID, false); err != nil {
		return fmt.Errorf("disable schedule: %w", err)
	}
	return nil
}

// advance переносит next_due_at без запуска flow.
// Иначе пропущенный schedule остаётся due и молотится каждый тик.
func (s *Scheduler) advance(ctx context.Context, sched *domain.Schedule, now time.Time) error {
	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		return s.disable(ctx, sched, err)
	}

	sched.NextDueAt = &nextDue
	sched.UpdatedAt = time.Now()
	if err := s.scheduleRepo.Update(ctx, sched); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}
