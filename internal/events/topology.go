package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeEvents — topic exchange для событий жизненного цикла.
const ExchangeEvents = "conductor.events"

// QueueAudit — очередь, собирающая все события для аудита.
const QueueAudit = "events.audit"

// Routing keys событий.
const (
	RoutingExecutionStarted   = "execution.started"
	RoutingExecutionCompleted = "execution.completed"
	RoutingExecutionFailed    = "execution.failed"
	RoutingTaskFinished       = "task.finished"
)

// SetupTopology объявляет exchange, очереди и привязки.
// Идемпотентно: повторный вызов безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			ExchangeEvents, // name
			"topic",        // type
			true,           // durable
			false,          // auto-deleted
			false,          // internal
			false,          // no-wait
			nil,            // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			QueueAudit, // name
			true,       // durable
			false,      // delete when unused
			false,      // exclusive
			false,      // no-wait
			nil,        // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueAudit, err)
		}

		// Аудиторская очередь получает все события.
		if err := ch.QueueBind(QueueAudit, "#", ExchangeEvents, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", QueueAudit, err)
		}

		return nil
	})
}
