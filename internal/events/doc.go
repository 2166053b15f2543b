// Package events публикует события жизненного цикла выполнений в RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queues, bindings
//   - publisher.go  — публикация событий
//
// Типы событий:
//   - execution.started   — выполнение flow началось
//   - execution.completed — выполнение успешно завершено
//   - execution.failed    — выполнение завершилось с ошибкой
//   - task.finished       — отдельная задача завершена
//
// События — уведомления для внешних потребителей (аудит, алертинг),
// а не механизм распределения работы: движок выполняет задачи сам,
// синхронно. Ошибка публикации никогда не роняет выполнение.
package events
