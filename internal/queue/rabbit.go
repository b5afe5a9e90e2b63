package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/formflow/backend/internal/config"
	"github.com/formflow/backend/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMqClient carries the submission lifecycle events that stand in for
// document-store triggers: one queue for created documents, one for updates.
type RabbitMqClient struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Config  config.RabbitMQConfig
}

func NewRabbitMqService(cfg config.RabbitMQConfig) (*RabbitMqClient, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return &RabbitMqClient{
		Conn:    conn,
		Channel: channel,
		Config:  cfg,
	}, nil
}

func (r *RabbitMqClient) CloseConnection() {
	r.Channel.Close()
	r.Conn.Close()
}

func (r *RabbitMqClient) IsConnected() bool {
	return r.Conn != nil && !r.Conn.IsClosed()
}

// SetUpExchangeAndQueue declares the events exchange and binds the
// submission queues to it.
func (r *RabbitMqClient) SetUpExchangeAndQueue() error {
	if err := r.Channel.ExchangeDeclare(
		r.Config.Exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("error in declaring exchange: %w", err)
	}
	queues := []string{
		r.Config.CreatedQueue,
		r.Config.UpdatedQueue,
		r.Config.FailedQueue,
	}
	for _, queueName := range queues {
		if _, err := r.Channel.QueueDeclare(
			queueName,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("error declaring queue %s: %w", queueName, err)
		}
		err := r.Channel.QueueBind(
			queueName,
			queueName,
			r.Config.Exchange,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", queueName, err)
		}
	}
	return nil
}

func (r *RabbitMqClient) Publish(ctx context.Context, routingKey string, message interface{}) error {
	by, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return r.publishBytes(ctx, routingKey, by)
}

func (r *RabbitMqClient) publishBytes(ctx context.Context, routingKey string, body []byte) error {
	err := r.Channel.PublishWithContext(
		ctx,
		r.Config.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (r *RabbitMqClient) PublishSubmissionCreated(ctx context.Context, event models.SubmissionEvent) error {
	return r.Publish(ctx, r.Config.CreatedQueue, event)
}

func (r *RabbitMqClient) PublishSubmissionUpdated(ctx context.Context, event models.SubmissionEvent) error {
	return r.Publish(ctx, r.Config.UpdatedQueue, event)
}

// Consume delivers the queue's messages to the handler until the channel
// closes. Deliveries whose handler fails are parked on the failed queue and
// then acked, so a poison message is kept for inspection instead of wedging
// the queue.
func (r *RabbitMqClient) Consume(ctx context.Context, queueName string, handler func(context.Context, []byte) error) error {
	deliveries, err := r.Channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", queueName, err)
	}

	park := func(ctx context.Context, body []byte) error {
		return r.publishBytes(ctx, r.Config.FailedQueue, body)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("consumer channel for %s closed", queueName)
			}
			if err := settleDelivery(ctx, delivery, delivery.Body, handler, park); err != nil {
				return fmt.Errorf("failed to settle delivery from %s: %w", queueName, err)
			}
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
}

// settleDelivery runs the handler, parks the message when the handler fails,
// and acks. A park or ack error means the channel itself is broken, so it
// stops the consumer; an unparked message is left unacked for redelivery.
func settleDelivery(ctx context.Context, delivery acknowledger, body []byte, handler, park func(context.Context, []byte) error) error {
	if err := handler(ctx, body); err != nil {
		if parkErr := park(ctx, body); parkErr != nil {
			return fmt.Errorf("failed to park message: %w", parkErr)
		}
	}
	if err := delivery.Ack(false); err != nil {
		return fmt.Errorf("failed to ack delivery: %w", err)
	}
	return nil
}
