package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Event kinds double as NATS subjects.
const (
	UserRegistered    = "user.registered"
	UserPasswordReset = "user.password_reset"
	OrderPlaced       = "order.placed"
)

// Event is a domain notification. Email describes the message sent to the
// affected user; Payload is published to the bus as-is.
type Event struct {
	Kind      string                 `json:"kind"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// Sink receives domain events. Handlers depend on this interface so tests can
// swap in a no-op.
type Sink interface {
	Notify(event Event)
}

// EmailSender delivers a single message.
type EmailSender interface {
	Send(to, subject, body string) error
}

// Dispatcher publishes events to NATS and emails the affected user. Both are
// best effort: failures are logged and never surfaced to the request that
// produced the event.
type Dispatcher struct {
	nc     *nats.Conn
	mailer EmailSender
	logger *logrus.Logger
}

// NewDispatcher creates a dispatcher. nc and mailer may each be nil, which
// disables the corresponding delivery.
func NewDispatcher(nc *nats.Conn, mailer EmailSender, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{nc: nc, mailer: mailer, logger: logger}
}

// Notify fires the event asynchronously and returns immediately.
func (d *Dispatcher) Notify(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	go func() {
		if d.nc != nil {
			data, err := json.Marshal(event)
			if err != nil {
				d.logger.WithError(err).Error("Failed to marshal event")
			} else if err := d.nc.Publish(event.Kind, data); err != nil {
				d.logger.WithError(err).WithField("subject", event.Kind).Error("Failed to publish event")
			}
		}

		if d.mailer != nil && event.Recipient != "" {
			if err := d.mailer.Send(event.Recipient, event.Subject, event.Body); err != nil {
				d.logger.WithError(err).WithFields(logrus.Fields{
					"kind":      event.Kind,
					"recipient": event.Recipient,
				}).Error("Failed to send notification email")
			}
		}
	}()
}

// Close drains the underlying NATS connection.
func (d *Dispatcher) Close() {
	if d.nc != nil {
		d.nc.Close()
	}
}
