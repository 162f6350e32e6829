// internal/audit/amqp.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"yieldledger/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp.Channel used by the publisher.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink publishes events to a durable RabbitMQ queue from a background
// goroutine. When the buffer is full new events are dropped and counted.
type AMQPSink struct {
	ch      channel
	queue   string
	events  chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
	once    sync.Once
}

// DialAMQP connects to url and declares queue as durable.
func DialAMQP(url, queue string, buffer int, logger *slog.Logger, m *metrics.Metrics) (*AMQPSink, *amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return NewAMQPSink(ch, queue, buffer, logger, m), conn, nil
}

// NewAMQPSink starts the publishing goroutine over an open channel.
func NewAMQPSink(ch channel, queue string, buffer int, logger *slog.Logger, m *metrics.Metrics) *AMQPSink {
	if buffer <= 0 {
		buffer = 1024
	}
	s := &AMQPSink{
		ch:      ch,
		queue:   queue,
		events:  make(chan Event, buffer),
		logger:  logger.With("component", "audit_amqp"),
		metrics: m,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Publish enqueues e without blocking.
func (s *AMQPSink) Publish(_ context.Context, e Event) {
	select {
	case s.events <- e:
	default:
		s.count("dropped")
		s.logger.Warn("audit buffer full, dropping event", "kind", e.Kind, "user_id", e.UserID)
	}
}

func (s *AMQPSink) run() {
	defer s.wg.Done()
	for e := range s.events {
		if err := s.send(e); err != nil {
			s.count("failed")
			s.logger.Error("failed to publish audit event", "kind", e.Kind, "error", err)
			continue
		}
		s.count("published")
	}
}

func (s *AMQPSink) send(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return s.ch.PublishWithContext(ctx,
		"",      // exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         e.Kind,
			Timestamp:    e.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (s *AMQPSink) count(outcome string) {
	if s.metrics != nil {
		s.metrics.AuditEvents.WithLabelValues("amqp", outcome).Inc()
	}
}

// Close drains buffered events and closes the channel.
func (s *AMQPSink) Close() error {
	var err error
	s.once.Do(func() {
		close(s.events)
		s.wg.Wait()
		err = s.ch.Close()
	})
	return err
}
