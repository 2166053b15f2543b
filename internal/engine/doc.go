// Package engine содержит чистую логику движка flow.
//
// Включает:
//   - evaluator.go — вычисление условий маршрутизации (какая задача следующая)
//   - validate.go  — структурная валидация определения flow
//   - context.go   — типизированный контекст выполнения (результаты задач)
//
// Пакет не имеет побочных эффектов: persistence и вызов задач
// живут в internal/orchestrator.
package engine
