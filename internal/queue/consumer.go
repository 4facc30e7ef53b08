package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/eventx-studio/internal/config"
	"github.com/iliyamo/eventx-studio/internal/logger"
)

// StartActivityConsumer connects to RabbitMQ, declares the durable activity
// queue and appends every message to cfg.ConsumerLog, one line each.  It
// reconnects with backoff until ctx is cancelled.  A message that cannot be
// handled is rejected without requeue so it cannot loop.
func StartActivityConsumer(ctx context.Context, cfg config.EventsConfig, l logger.Logger) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			l.Warn("activity-consumer: dial failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, cfg, l)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.Warn("activity-consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg config.EventsConfig, l logger.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		l.Warn("activity-consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(d.Body, cfg.ConsumerLog); err != nil {
				l.Error("activity-consumer: handle message failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one message and appends its line to path.
func HandleMessage(body []byte, path string) error {
	var ev ActivityEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("message without type")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single newline-terminated log line.
func FormatLine(ev ActivityEvent) string {
	switch ev.Type {
	case TypeBookingConfirmed:
		return fmt.Sprintf("[%s] Booking confirmed | ticket_id=%s | user_id=%s | user=%q | event_id=%s | event=%q | seat=%d | amount=%.2f\n",
			ev.OccurredAt, ev.TicketID, ev.UserID, ev.UserEmail, ev.EventID, ev.EventTitle, ev.SeatNo, ev.Amount)
	case TypeTicketCancelled:
		return fmt.Sprintf("[%s] Ticket cancelled | ticket_id=%s | user_id=%s | user=%q\n",
			ev.OccurredAt, ev.TicketID, ev.UserID, ev.UserEmail)
	}
	return fmt.Sprintf("[%s] %s | ticket_id=%s | user_id=%s\n", ev.OccurredAt, ev.Type, ev.TicketID, ev.UserID)
}
