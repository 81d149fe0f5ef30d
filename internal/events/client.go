package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client publishes and consumes family events over AMQP. The topology is a
// durable direct exchange with a single durable queue bound under the queue
// name, so the web process and the notification worker agree on routing
// without extra configuration.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
}

func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{conn: conn, channel: ch, exchange: exchange, queue: queue}
	if err := c.declareTopology(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) declareTopology() error {
	if err := c.channel.ExchangeDeclare(c.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", c.exchange, err)
	}
	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", c.queue, err)
	}
	// Routing key equals the queue name on a direct exchange.
	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %q: %w", c.queue, err)
	}
	return nil
}

// Publish sends one event as a persistent message. Delivery to consumers is
// at-least-once; handlers must tolerate replays.
func (c *Client) Publish(ctx context.Context, e Event) error {
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err := c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish event %s: %w", e.Type, err)
	}

	slog.InfoContext(ctx, "Published family event",
		"event_id", e.ID,
		"type", e.Type,
		"family_uuid", e.FamilyUUID)
	return nil
}

// Consume delivers queued events to handler until ctx is cancelled. A
// handler failure nacks the delivery back onto the queue; a payload that
// does not decode is nacked without requeue, since replaying it can never
// succeed.
func (c *Client) Consume(ctx context.Context, handler func(Event) error) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming from %q: %w", c.queue, err)
	}
	slog.InfoContext(ctx, "Consuming family events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler func(Event) error) {
	e, err := FromJSON(d.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping undecodable event", "error", err)
		d.Nack(false, false)
		return
	}

	if err := handler(e); err != nil {
		slog.ErrorContext(ctx, "Event handler failed, requeueing",
			"error", err,
			"event_id", e.ID,
			"type", e.Type)
		d.Nack(false, true)
		return
	}

	d.Ack(false)
	slog.DebugContext(ctx, "Processed family event", "event_id", e.ID, "type", e.Type)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
