// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//
// Все бинарники используют единый формат логирования;
// Prometheus-метрики живут в internal/metrics и экспортируются
// на /metrics endpoint в conductor-api.
package telemetry
