// Package service holds integrations the HTTP handlers call after the
// primary write has succeeded.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-booking-calendar/internal/config"
	"github.com/iliyamo/event-booking-calendar/internal/queue"
)

// BookingPublisher announces stored bookings.  Failures are reported to the
// caller, which treats them as non-fatal.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// RabbitPublisher dials the broker for each message.  Bookings are rare
// enough that holding a channel open is not worth the reconnect handling.
type RabbitPublisher struct {
	url   string
	queue string
}

func NewRabbitPublisher(cfg config.QueueConfig) *RabbitPublisher {
	return &RabbitPublisher{url: cfg.URL, queue: cfg.Queue}
}

func (p *RabbitPublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.EventID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	log.Printf("[RabbitMQ] published booking %s to %s", ev.EventID, p.queue)
	return nil
}

// NopPublisher drops every message.  Used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(context.Context, queue.BookingConfirmedEvent) error {
	return nil
}
