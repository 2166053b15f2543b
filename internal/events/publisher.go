package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Conductor/internal/domain"
)

// Publisher публикует события жизненного цикла выполнений.
//
// Nil-публикатор допустим: все методы nil-safe, публикация просто
// пропускается. Так движок работает и без RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Event — событие жизненного цикла.
type Event struct {
	// ID — уникальный идентификатор события.
	ID string `json:"id"`

	// Type — routing key события (execution.started и т.д.).
	Type string `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionPayload — payload событий уровня выполнения.
type ExecutionPayload struct {
	ExecutionID uuid.UUID `json:"execution_id"`
	FlowID      string    `json:"flow_id"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ErrorTask   string    `json:"error_task,omitempty"`
	TasksTotal  int       `json:"tasks_total,omitempty"`
}

// TaskPayload — payload события о завершённой задаче.
type TaskPayload struct {
	ExecutionID    uuid.UUID `json:"execution_id"`
	FlowID         string    `json:"flow_id"`
	TaskName       string    `json:"task_name"`
	SequenceNumber int       `json:"sequence_number"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
}

// publish отправляет событие в exchange.
func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	if p == nil || p.conn == nil {
		return nil
	}

	event := Event{
		ID:        uuid.New().String(),
		Type:      routingKey,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			ExchangeEvents, // exchange
			routingKey,     // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // событие переживёт рестарт RabbitMQ
				MessageId:    event.ID,
				Timestamp:    event.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", routingKey, err)
		}

		p.logger.Debug("published event", "type", routingKey, "event_id", event.ID)
		return nil
	})
}

// ExecutionStarted публикует событие о начале выполнения.
func (p *Publisher) ExecutionStarted(ctx context.Context, exec *domain.FlowExecution) error {
	return p.publish(ctx, RoutingExecutionStarted, ExecutionPayload{
		ExecutionID: exec.ID,
		FlowID:      exec.FlowID,
		Status:      string(exec.Status),
	})
}

// ExecutionFinished публикует событие о завершении выполнения.
// Routing key зависит от исхода: execution.completed или execution.failed.
func (p *Publisher) ExecutionFinished(ctx context.Context, exec *domain.FlowExecution) error {
	routingKey := RoutingExecutionCompleted
	if exec.Status == domain.StatusFailure {
		routingKey = RoutingExecutionFailed
	}

	return p.publish(ctx, routingKey, ExecutionPayload{
		ExecutionID: exec.ID,
		FlowID:      exec.FlowID,
		Status:      string(exec.Status),
		Error:       exec.ErrorMessage,
		ErrorTask:   exec.ErrorTask,
		TasksTotal:  exec.TotalTasksExecuted,
	})
}

// TaskFinished публикует событие о завершённой задаче.
func (p *Publisher) TaskFinished(ctx context.Context, flowID string, te *domain.TaskExecution) error {
	return p.publish(ctx, RoutingTaskFinished, TaskPayload{
		ExecutionID:    te.FlowExecutionID,
		FlowID:         flowID,
		TaskName:       te.TaskName,
		SequenceNumber: te.SequenceNumber,
		Status:         string(te.Status),
		Error:          te.ErrorMessage,
	})
}
