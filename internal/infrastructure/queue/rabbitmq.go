package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ats-sync/internal/config"
	"ats-sync/internal/events"
	"ats-sync/internal/pkg/logger"
)

const DefaultQueueName = "ats.record_upserted"

var errMalformed = errors.New("queue: malformed sync event")

// RabbitMQ is the durable events.Publisher, used when RABBITMQ_URL is set.
// Messages are persistent and acknowledged manually.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *zap.SugaredLogger

	mu sync.Mutex
}

func NewRabbitMQ(cfg config.QueueConfig, log *zap.SugaredLogger) (*RabbitMQ, error) {
	url := strings.TrimSpace(cfg.RabbitMQURL)
	if url == "" {
		return nil, errors.New("queue: empty RABBITMQ_URL")
	}
	name := strings.TrimSpace(cfg.QueueName)
	if name == "" {
		name = DefaultQueueName
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", name, err)
	}

	log = logger.OrNop(log)
	log.Infow("rabbitmq connected", "queue", q.Name)
	return &RabbitMQ{conn: conn, channel: ch, queue: q, logger: log}, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, evt events.RecordUpserted) error {
	msg, err := encode(evt)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel.PublishWithContext(ctx, "", r.queue.Name, false, false, msg)
}

// Consume delivers messages to handler until ctx is done. Malformed messages
// are dropped; handler errors are logged and the message is still acked,
// since the next batch run picks the record up again.
func (r *RabbitMQ) Consume(ctx context.Context, handler events.Handler) error {
	msgs, err := r.channel.Consume(
		r.queue.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				evt, err := decode(d.Body)
				if err != nil {
					r.logger.Warnw("dropping sync event", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				if err := handler(ctx, evt); err != nil {
					r.logger.Warnw("sync event handling failed", "kind", evt.Kind, "local_id", evt.LocalID, "error", err)
				}
				_ = d.Ack(false)
			}
		}
	}()
	return nil
}

func (r *RabbitMQ) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func encode(evt events.RecordUpserted) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.At,
		Type:         string(evt.Kind),
		Body:         body,
	}, nil
}

func decode(body []byte) (events.RecordUpserted, error) {
	var evt events.RecordUpserted
	if err := json.Unmarshal(body, &evt); err != nil {
		return events.RecordUpserted{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if !evt.Kind.Valid() {
		return events.RecordUpserted{}, fmt.Errorf("%w: kind %q", errMalformed, evt.Kind)
	}
	if evt.LocalID == uuid.Nil {
		return events.RecordUpserted{}, fmt.Errorf("%w: empty local id", errMalformed)
	}
	return evt, nil
}
