package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"docuchat/internal/model"
)

// IndexJobPublisher enqueues document index jobs on a durable queue.
// The background worker consumes them; jobs survive a broker restart.
type IndexJobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewIndexJobPublisher(conn *amqp.Connection, queueName string) *IndexJobPublisher {
	return &IndexJobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *IndexJobPublisher) Publish(ctx context.Context, job model.IndexJob) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare index queue failed: %w", err)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal index job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish index job failed: %w", err)
	}
	return nil
}
