// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go           — Handler с DI (репозитории, движок, registry, logger)
//   - routes.go            — регистрация маршрутов
//   - middleware.go        — middleware (logging, recovery)
//   - response.go          — унифицированные JSON-ответы и обработка ошибок
//   - dto.go               — Data Transfer Objects (request/response)
//   - flow_handler.go      — обработчики для /flows
//   - execution_handler.go — обработчики для /executions
//   - task_handler.go      — обработчик каталога задач /tasks
//   - schedule_handler.go  — обработчики для /schedules
//
// API предоставляет REST endpoints для управления flows, их запуска
// и просмотра аудита выполнений.
package api
