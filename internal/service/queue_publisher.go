// Package service publishes roster events to RabbitMQ.  Publishing is best
// effort: errors are returned and the caller decides whether to log them.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/traveller-reservation/internal/queue"
)

// Publisher sends traveller events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev queue.TravellerEvent) error
}

// NopPublisher drops every event.  It is used when QUEUE_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.TravellerEvent) error { return nil }

// dialTimeout keeps a missing broker from stalling the request that
// triggered the event.
const dialTimeout = 2 * time.Second

// AMQPPublisher dials the broker for each event.  Roster mutations are rare
// and human-paced, so a long-lived channel is not worth its reconnect logic.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// Publish sends ev to the traveller.events queue as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.TravellerEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.QueueName, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",              // default exchange
		queue.QueueName, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}
