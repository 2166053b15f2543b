// Package tasks содержит контракт исполняемых задач (capabilities)
// и реестр для их поиска по имени.
//
// Включает:
//   - task.go     — интерфейс Task и обёртка Run (изоляция ошибок)
//   - registry.go — реестр имя → capability
//   - builtin.go  — стандартный набор задач
//
// Задача — это единица работы, на которую ссылается определение flow
// по имени. Реестр конструируется явно и передаётся движку; скрытого
// глобального состояния нет.
package tasks
