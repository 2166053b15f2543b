package api

import (
	"log/slog"

	"github.com/shaiso/Conductor/internal/orchestrator"
	"github.com/shaiso/Conductor/internal/repo"
	"github.com/shaiso/Conductor/internal/tasks"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	flowRepo     *repo.FlowRepo
	execRepo     *repo.ExecutionRepo
	scheduleRepo *repo.ScheduleRepo
	engine       *orchestrator.Engine
	registry     *tasks.Registry
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	FlowRepo     *repo.FlowRepo
	ExecRepo     *repo.ExecutionRepo
	ScheduleRepo *repo.ScheduleRepo
	Engine       *orchestrator.Engine
	Registry     *tasks.Registry
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		flowRepo:     cfg.FlowRepo,
		execRepo:     cfg.ExecRepo,
		scheduleRepo: cfg.ScheduleRepo,
		engine:       cfg.Engine,
		registry:     cfg.Registry,
		logger:       cfg.Logger,
	}
}
