// Package service publishes activity events to RabbitMQ.  Publishing is
// best effort: errors are logged and returned so callers can ignore them
// without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/eventx-studio/internal/config"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/queue"
)

// ActivityPublisher sends activity events to one durable queue.
type ActivityPublisher struct {
	url   string
	queue string
	l     logger.Logger
}

// Publisher is what handlers depend on.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// NewActivityPublisher returns a RabbitMQ publisher, or a no-op publisher
// when activity events are disabled.
func NewActivityPublisher(cfg config.EventsConfig, l logger.Logger) Publisher {
	if !cfg.Enabled {
		return Noop{}
	}
	return &ActivityPublisher{url: cfg.URL, queue: cfg.Queue, l: l}
}

// Publish dials the broker, declares the queue and sends ev as a
// persistent JSON message.
func (p *ActivityPublisher) Publish(ctx context.Context, ev queue.ActivityEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.l.Warn("rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.l.Warn("rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.l.Warn("rabbitmq: queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.l.Warn("rabbitmq: publish failed", "error", err)
		return err
	}
	return nil
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, queue.ActivityEvent) error { return nil }
