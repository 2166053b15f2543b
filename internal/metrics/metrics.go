// Package metrics содержит Prometheus-метрики движка.
//
// Метрики регистрируются в default registry через promauto
// и отдаются наружу endpoint'ом /metrics в conductor-api.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExecutionsStarted — количество запущенных выполнений flow.
	ExecutionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conductor_executions_started_total",
		Help: "Total flow executions started",
	})

	// ExecutionsFinished — количество завершённых выполнений по статусам.
	ExecutionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conductor_executions_finished_total",
		Help: "Total flow executions finished, by terminal status",
	}, []string{"status"})

	// ExecutionDuration — продолжительность выполнений flow.
	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "conductor_execution_duration_seconds",
		Help:    "Flow execution duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	// TasksExecuted — количество выполненных задач по имени и статусу.
	TasksExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conductor_tasks_executed_total",
		Help: "Total tasks executed, by task name and status",
	}, []string{"task", "status"})

	// TaskDuration — продолжительность выполнения задач по имени.
	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "conductor_task_duration_seconds",
		Help:    "Task execution duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"task"})

	// ExecutionsRecovered — количество выполнений, помеченных failure
	// при восстановлении после рестарта.
	ExecutionsRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conductor_executions_recovered_total",
		Help: "Total abandoned executions marked as failed on startup",
	})
)
