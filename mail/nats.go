package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubject is the JetStream subject outbound mail is published on.
const DefaultSubject = "boardauth.mail.outbound"

// Message is the outbox payload.
type Message struct {
	To         string            `json:"to"`
	TemplateID string            `json:"template_id"`
	Vars       map[string]string `json:"vars"`
}

// Publisher is the subset of nats.JetStreamContext the outbox needs.
type Publisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Outbox publishes messages to JetStream. Send returns once the stream has
// acknowledged the message; actual delivery happens in a Relay.
type Outbox struct {
	js      Publisher
	subject string
}

func NewOutbox(js Publisher, subject string) *Outbox {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Outbox{js: js, subject: subject}
}

func (o *Outbox) Send(ctx context.Context, to, templateID string, vars map[string]string) error {
	if o == nil || o.js == nil {
		return errors.New("nil outbox")
	}

	data, err := json.Marshal(Message{To: to, TemplateID: templateID, Vars: vars})
	if err != nil {
		return err
	}
	if _, err := o.js.Publish(o.subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish mail: %w", err)
	}
	return nil
}

// Sender is implemented by every mailer in this package.
type Sender interface {
	Send(ctx context.Context, to, templateID string, vars map[string]string) error
}

// Relay consumes the outbox subject with a durable consumer and delivers each
// message through next. Failed deliveries are nak'ed for redelivery.
type Relay struct {
	js      nats.JetStreamContext
	subject string
	durable string
	next    Sender
	log     zerolog.Logger
}

func NewRelay(js nats.JetStreamContext, subject, durable string, next Sender, log zerolog.Logger) *Relay {
	if subject == "" {
		subject = DefaultSubject
	}
	if durable == "" {
		durable = "boardauth-mail-relay"
	}
	return &Relay{js: js, subject: subject, durable: durable, next: next, log: log}
}

// Handle delivers one encoded message.
func (r *Relay) Handle(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		// Poison message: acknowledge so it is not redelivered forever.
		r.log.Error().Err(err).Msg("dropping undecodable mail message")
		return nil
	}
	if err := r.next.Send(ctx, msg.To, msg.TemplateID, msg.Vars); err != nil {
		r.log.Warn().Err(err).Str("template", msg.TemplateID).Msg("mail delivery failed, will retry")
		return err
	}
	return nil
}

// Start subscribes and runs until ctx is done or the returned closer is closed.
func (r *Relay) Start(ctx context.Context) (io.Closer, error) {
	handler := func(m *nats.Msg) {
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		if err := r.Handle(handlerCtx, m.Data); err != nil {
			_ = m.Nak()
			return
		}
		_ = m.Ack()
	}

	sub, err := r.js.Subscribe(r.subject, handler, nats.Durable(r.durable), nats.ManualAck(), nats.AckExplicit())
	if err != nil {
		return nil, err
	}

	s := &subscription{sub: sub}
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return s, nil
}

type subscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Drain()
}

// Connect dials url and returns the connection with its JetStream context.
// It ensures a stream covering subject exists.
func Connect(url, stream, subject string, opts ...nats.Option) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	if subject == "" {
		subject = DefaultSubject
	}
	if _, err := js.StreamInfo(stream); errors.Is(err, nats.ErrStreamNotFound) {
		_, err = js.AddStream(&nats.StreamConfig{Name: stream, Subjects: []string{subject}})
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
	} else if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return nc, js, nil
}
