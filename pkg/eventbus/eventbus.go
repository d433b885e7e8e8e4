package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/richxcame/car-rental/pkg/async"
	"github.com/richxcame/car-rental/pkg/logger"
	"go.uber.org/zap"
)

// Subjects for car rental events.
const (
	SubjectRentalCreated  = "rentals.created"
	SubjectRentalReturned = "rentals.returned"
	SubjectRentalUpdated  = "rentals.updated"
	SubjectRentalDeleted  = "rentals.deleted"

	SubjectMaintenanceOpened  = "maintenance.opened"
	SubjectMaintenanceUpdated = "maintenance.updated"
	SubjectMaintenanceDeleted = "maintenance.deleted"

	SubjectVehicleStateChanged = "vehicles.state_changed"
)

const defaultStreamName = "CARRENTAL"

// streamSubjects are captured by the JetStream stream.
var streamSubjects = []string{"rentals.>", "maintenance.>", "vehicles.>"}

// Event is the envelope for all events published through the bus.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates a new event with a unique ID and current timestamp.
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Decode unmarshals the event payload into dst.
func (e *Event) Decode(dst interface{}) error {
	return json.Unmarshal(e.Data, dst)
}

// HandlerFunc processes a received event. Return nil to ack, error to nack.
type HandlerFunc func(ctx context.Context, event *Event) error

// Publisher is implemented by Bus. Services depend on it so tests can
// substitute a recorder.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *Event) error
}

// Config holds NATS connection settings.
type Config struct {
	URL        string
	Name       string // client connection name
	StreamName string // JetStream stream name
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		URL:        nats.DefaultURL,
		Name:       "car-rental",
		StreamName: defaultStreamName,
	}
}

func (c Config) stream() string {
	if c.StreamName == "" {
		return defaultStreamName
	}
	return c.StreamName
}

// Bus wraps a NATS JetStream connection for publishing and subscribing.
type Bus struct {
	conn *nats.Conn
	js   jetstream.JetStream
	cfg  Config
	subs []jetstream.ConsumeContext
}

var _ Publisher = (*Bus)(nil)

// New connects to NATS and ensures the JetStream stream exists.
func New(cfg Config) (*Bus, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.stream(),
		Subjects:  streamSubjects,
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream: %w", err)
	}

	logger.Info("NATS event bus connected",
		zap.String("url", cfg.URL),
		zap.String("stream", cfg.stream()),
	)

	return &Bus{conn: nc, js: js, cfg: cfg}, nil
}

// Publish sends an event to the given subject with JetStream guarantees.
func (b *Bus) Publish(ctx context.Context, subject string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := b.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	logger.DebugContext(ctx, "event published",
		zap.String("subject", subject),
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
	)
	return nil
}

// SubscribeOrdered follows subject through an ordered consumer. Each caller
// gets its own ephemeral consumer, so every process sees every message, in
// stream order. Ordered consumers do not ack: a handler error is logged and
// the message is not redelivered.
func (b *Bus) SubscribeOrdered(ctx context.Context, subject string, handler HandlerFunc) error {
	consumer, err := b.js.OrderedConsumer(ctx, b.cfg.stream(), jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{subject},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create ordered consumer for %s: %w", subject, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			logger.Warn("failed to unmarshal event", zap.String("subject", msg.Subject()), zap.Error(err))
			return
		}

		if err := handler(ctx, &event); err != nil {
			logger.Warn("event handler error",
				zap.String("event_id", event.ID),
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", subject, err)
	}

	b.subs = append(b.subs, cc)
	logger.Info("following events", zap.String("subject", subject))
	return nil
}

// Close drains subscriptions and closes the NATS connection.
func (b *Bus) Close() {
	for _, sub := range b.subs {
		sub.Stop()
	}
	if b.conn != nil {
		_ = b.conn.Drain()
	}
	logger.Info("NATS event bus closed")
}

// Connected returns true if the NATS connection is active.
func (b *Bus) Connected() bool {
	return b != nil && b.conn != nil && b.conn.IsConnected()
}

// HealthCheck reports an error when the connection is down.
func (b *Bus) HealthCheck(ctx context.Context) error {
	if !b.Connected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

const publishTimeout = 5 * time.Second

// PublishAsync wraps data in an event and publishes it in the background.
// Failures are logged and never reach the caller. A nil publisher is a no-op.
// Events from separate calls may reach the stream in any order.
func PublishAsync(ctx context.Context, p Publisher, subject, source string, data interface{}) {
	if p == nil {
		return
	}

	async.Go(ctx, "publish "+subject, publishTimeout, func(ctx context.Context) error {
		return publish(ctx, p, subject, source, data)
	})
}

// PublishNow publishes before returning, so events from one caller enter the
// stream in call order. It ignores cancellation of ctx: the change being
// announced has already been written. Failures are logged and returned.
func PublishNow(ctx context.Context, p Publisher, subject, source string, data interface{}) error {
	if p == nil {
		return nil
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := publish(pubCtx, p, subject, source, data); err != nil {
		logger.WarnContext(ctx, "event publish failed", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}

func publish(ctx context.Context, p Publisher, subject, source string, data interface{}) error {
	evt, err := NewEvent(subject, source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", subject, err)
	}
	if err := p.Publish(ctx, subject, evt); err != nil {
		return fmt.Errorf("publish event %s: %w", evt.ID, err)
	}
	return nil
}
