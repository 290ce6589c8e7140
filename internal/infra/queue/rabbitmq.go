package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"fan-chat-assist/internal/domain"
)

// AMQPAuditEvents реализует очередь событий аудита через RabbitMQ.
type AMQPAuditEvents struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	deliveries <-chan amqp.Delivery
}

var _ domain.AuditEventPublisher = (*AMQPAuditEvents)(nil)
var _ domain.AuditEventConsumer = (*AMQPAuditEvents)(nil)

// NewAMQPAuditEvents подключается к RabbitMQ и объявляет durable-очередь.
func NewAMQPAuditEvents(url, queue string) (*AMQPAuditEvents, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	return &AMQPAuditEvents{conn: conn, ch: ch, queue: queue}, nil
}

// Publish публикует событие жизненного цикла аудита.
func (q *AMQPAuditEvents) Publish(ctx context.Context, event domain.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Pop блокирующе читает событие из очереди. Подписка создаётся при
// первом вызове и переиспользуется.
func (q *AMQPAuditEvents) Pop(ctx context.Context) (domain.AuditEvent, error) {
	if q.deliveries == nil {
		deliveries, err := q.ch.ConsumeWithContext(ctx, q.queue, "", false, false, false, false, nil)
		if err != nil {
			return domain.AuditEvent{}, fmt.Errorf("consume: %w", err)
		}
		q.deliveries = deliveries
	}
	for {
		select {
		case <-ctx.Done():
			return domain.AuditEvent{}, ctx.Err()
		case d, ok := <-q.deliveries:
			if !ok {
				return domain.AuditEvent{}, errors.New("amqp queue: канал доставки закрыт")
			}
			var event domain.AuditEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				_ = d.Nack(false, false)
				continue
			}
			if err := d.Ack(false); err != nil {
				return domain.AuditEvent{}, fmt.Errorf("ack: %w", err)
			}
			return event, nil
		}
	}
}

// Close закрывает канал и соединение.
func (q *AMQPAuditEvents) Close() error {
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
