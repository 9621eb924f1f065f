package communication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const DefaultSubject = "magi.council"

// Messenger publishes council events on NATS subjects <subject>.<event type>
type Messenger struct {
	NC      *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewMessenger connects to the NATS server at url
func NewMessenger(url, subject string, logger *zap.Logger) (*Messenger, error) {
	nc, err := nats.Connect(url,
		nats.Name("magi-council"),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Messenger{NC: nc, subject: subject, logger: logger}, nil
}

// Subject returns the subject an event type is published on
func (m *Messenger) Subject(eventType string) string {
	return m.subject + "." + eventType
}

// Publish sends event as JSON
func (m *Messenger) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := m.Subject(event.Type)
	m.logger.Debug("Publishing event", zap.String("subject", subject))
	return m.NC.Publish(subject, data)
}

// Subscribe registers a handler for one event type, or all of them when
// eventType is "*".
func (m *Messenger) Subscribe(eventType string, handler nats.MsgHandler) (*nats.Subscription, error) {
	return m.NC.Subscribe(m.Subject(eventType), handler)
}

// Close drains pending messages and closes the connection
func (m *Messenger) Close() {
	if err := m.NC.Drain(); err != nil {
		m.NC.Close()
	}
}
