package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Conductor/internal/api"
	"github.com/shaiso/Conductor/internal/events"
	"github.com/shaiso/Conductor/internal/orchestrator"
	"github.com/shaiso/Conductor/internal/repo"
	"github.com/shaiso/Conductor/internal/tasks"
	"github.com/shaiso/Conductor/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conductor_api_http_requests_total",
		Help: "Total HTTP requests handled by conductor_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting conductor-api")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Создаём таблицы при первом запуске
	if err := repo.InitSchema(context.Background(), pool); err != nil {
		logger.Error("failed to init schema", "error", err)
		os.Exit(1)
	}

	// Создаём репозитории
	flowRepo := repo.NewFlowRepo(pool)
	execRepo := repo.NewExecutionRepo(pool)
	scheduleRepo := repo.NewScheduleRepo(pool)

	// Подключаемся к RabbitMQ, если он настроен.
	// Без MQ_URL события жизненного цикла просто не публикуются.
	var publisher *events.Publisher
	if url := os.Getenv("MQ_URL"); url != "" {
		conn, err := events.NewConnection(url, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		if err := events.SetupTopology(context.Background(), conn); err != nil {
			logger.Error("failed to setup mq topology", "error", err)
			os.Exit(1)
		}

		publisher = events.NewPublisher(conn, logger)
		logger.Info("connected to rabbitmq")
	}

	// Registry со встроенными задачами
	registry := tasks.DefaultRegistry(logger)

	// Движок выполнения flows
	engine := orchestrator.New(orchestrator.Config{
		Store:    execRepo,
		Registry: registry,
		Events:   publisher,
		Logger:   logger,
	})

	// Помечаем брошенные выполнения после рестарта
	if os.Getenv("RECOVERY_ENABLED") != "false" {
		recovered, err := engine.RecoverAbandoned(context.Background())
		if err != nil {
			logger.Error("failed to recover abandoned executions", "error", err)
			os.Exit(1)
		}
		if recovered > 0 {
			logger.Info("recovered abandoned executions", "count", recovered)
		}
	}

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		FlowRepo:     flowRepo,
		ExecRepo:     execRepo,
		ScheduleRepo: scheduleRepo,
		Engine:       engine,
		Registry:     registry,
		Logger:       logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
