package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// OrderQueue is the durable queue carrying order lifecycle events.
const OrderQueue = "order_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
	mu      sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// Message is the envelope published for every event.
type Message struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewClient connects to RabbitMQ, opens a channel and declares the order queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareOrderQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected", zap.String("queue", OrderQueue))

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func declareOrderQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		OrderQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", OrderQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Encode wraps payload in a Message and marshals it to JSON.
func Encode(eventType string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(Message{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return body, nil
}

// PublishEvent publishes a persistent JSON event to the order queue.
func (c *Client) PublishEvent(eventType string, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := Encode(eventType, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",         // default exchange
		OrderQueue, // routing key: the queue name
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	c.logger.Debug("Published event", zap.String("event_type", eventType))
	return nil
}

// ConsumeOrderEvents delivers every message of the order queue to
// messageHandler in a background goroutine. Messages are acked when the
// handler returns nil and requeued otherwise. Consumption stops when the
// client is closed.
func (c *Client) ConsumeOrderEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	c.mu.Lock()
	msgs, err := c.channel.Consume(
		OrderQueue, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Waiting for order events", zap.String("queue", OrderQueue))

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				c.logger.Error("Error processing message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
				if requeueErr := msg.Nack(false, true); requeueErr != nil {
					c.logger.Error("Error nacking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(requeueErr))
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.logger.Error("Error acking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
			}
		}
		c.logger.Info("Order event consumer stopped")
	}()

	return nil
}
