package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mugundhan-karan/moment-app-backend-1/internal/config"
	"github.com/Mugundhan-karan/moment-app-backend-1/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ для очереди очистки изображений.
// Реализует ports.ImageCleanupPublisher и ports.ImageCleanupConsumer.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет durable-очередь
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	start := time.Now()
	client := &Client{logger: logger}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// Идемпотентно: существующая очередь не пересоздается.
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q

	logger.Info("RabbitMQ connected",
		"queue", q.Name,
		"messages", q.Messages,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return client, nil
}

// Close закрывает соединение и канал RabbitMQ
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ connection", "error", err)
			return
		}
	}
	c.logger.Info("RabbitMQ connection closed")
}

// PublishImageCleanup ставит объект хранилища в очередь на удаление
func (c *Client) PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Info("image cleanup scheduled",
		"queue", c.queue.Name,
		"object_key", payload.ObjectKey,
		"reason", payload.Reason,
	)
	return nil
}

// StartConsumingImageCleanup регистрирует потребителя и обрабатывает
// сообщения в отдельной горутине до отмены ctx.
func (c *Client) StartConsumingImageCleanup(ctx context.Context, handler func(context.Context, payloads.ImageCleanupPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ channel closed, stopping consumer")
					return
				}
				c.settle(msg, handleDelivery(ctx, msg.Body, handler, c.logger))
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

func (c *Client) settle(msg amqp.Delivery, ack bool) {
	if ack {
		if err := msg.Ack(false); err != nil {
			c.logger.Error("error ACKing message", "error", err)
		}
		return
	}
	// Без requeue: повторная доставка битого сообщения зациклит очередь.
	if err := msg.Nack(false, false); err != nil {
		c.logger.Error("error NACKing message", "error", err)
	}
}

// handleDelivery декодирует сообщение и вызывает handler.
// Возвращает true, если сообщение нужно подтвердить.
func handleDelivery(
	ctx context.Context,
	body []byte,
	handler func(context.Context, payloads.ImageCleanupPayload) error,
	logger *slog.Logger,
) bool {
	var payload payloads.ImageCleanupPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Error("error unmarshalling message", "error", err, "body", string(body))
		return false
	}
	if payload.ObjectKey == "" {
		logger.Warn("cleanup message without object key, dropping", "body", string(body))
		return false
	}

	start := time.Now()
	if err := handler(ctx, payload); err != nil {
		logger.Error("error processing cleanup message",
			"object_key", payload.ObjectKey,
			"reason", payload.Reason,
			"error", err,
		)
		return false
	}

	logger.Info("cleanup message processed",
		"object_key", payload.ObjectKey,
		"reason", payload.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return true
}
