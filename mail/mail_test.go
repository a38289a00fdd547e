package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

func TestRenderVerificationCode(t *testing.T) {
	subject, body, err := Render("verification-code", map[string]string{"code": "042917", "ttl_minutes": "4"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject == "" {
		t.Fatalf("empty subject")
	}
	if !strings.Contains(body, "042917") || !strings.Contains(body, "4 minutes") {
		t.Fatalf("body missing vars: %s", body)
	}
}

func TestRenderEscapesLink(t *testing.T) {
	_, body, err := Render("password-reset", map[string]string{"link": `https://app.example/reset?authToken=abc&x="y"`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, `"y"`) {
		t.Fatalf("link not escaped: %s", body)
	}
}

func TestRenderRejectsUnknownTemplateAndMissingVars(t *testing.T) {
	if _, _, err := Render("welcome", nil); err == nil {
		t.Fatalf("expected unknown template error")
	}
	if _, _, err := Render("password-reset", map[string]string{}); err == nil {
		t.Fatalf("expected missing var error")
	}
}

func TestSMTPSendBuildsMessage(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "smtp.example", Port: "587", From: "no-reply@example", Username: "u", Password: "p"})

	var gotAddr string
	var gotMsg []byte
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		if a == nil {
			t.Fatalf("expected auth")
		}
		if len(to) != 1 || to[0] != "a@b.co" {
			t.Fatalf("unexpected recipients %v", to)
		}
		return nil
	}

	if err := s.Send(context.Background(), "a@b.co", "verification-code", map[string]string{"code": "123456", "ttl_minutes": "4"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example:587" {
		t.Fatalf("unexpected addr %q", gotAddr)
	}
	if !bytes.Contains(gotMsg, []byte("Content-Type: text/html")) || !bytes.Contains(gotMsg, []byte("123456")) {
		t.Fatalf("unexpected message: %s", gotMsg)
	}
}

func TestSMTPRejectsHeaderInjection(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "h", Port: "25"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatalf("send must not be called")
		return nil
	}
	if err := s.Send(context.Background(), "a@b.co\r\nBcc: x@y.z", "verification-code", nil); err == nil {
		t.Fatalf("expected error")
	}
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subj string, data []byte, _ ...nats.PubOpt) (*nats.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subject = subj
	f.data = data
	return &nats.PubAck{Stream: "MAIL", Sequence: 1}, nil
}

func TestOutboxPublishesMessage(t *testing.T) {
	pub := &fakePublisher{}
	o := NewOutbox(pub, "")

	if err := o.Send(context.Background(), "a@b.co", "password-reset", map[string]string{"link": "https://x"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if pub.subject != DefaultSubject {
		t.Fatalf("unexpected subject %q", pub.subject)
	}

	var msg Message
	if err := json.Unmarshal(pub.data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.To != "a@b.co" || msg.TemplateID != "password-reset" || msg.Vars["link"] != "https://x" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestOutboxPublishFailure(t *testing.T) {
	o := NewOutbox(&fakePublisher{err: errors.New("no responders")}, "")
	if err := o.Send(context.Background(), "a@b.co", "password-reset", nil); err == nil {
		t.Fatalf("expected error")
	}
}

type recordingSender struct {
	to, templateID string
	err            error
}

func (r *recordingSender) Send(_ context.Context, to, templateID string, _ map[string]string) error {
	r.to, r.templateID = to, templateID
	return r.err
}

func TestRelayHandle(t *testing.T) {
	next := &recordingSender{}
	r := NewRelay(nil, "", "", next, zerolog.Nop())

	data, _ := json.Marshal(Message{To: "a@b.co", TemplateID: "verification-code"})
	if err := r.Handle(context.Background(), data); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if next.to != "a@b.co" || next.templateID != "verification-code" {
		t.Fatalf("unexpected delivery %+v", next)
	}

	next.err = errors.New("smtp down")
	if err := r.Handle(context.Background(), data); err == nil {
		t.Fatalf("expected delivery error to propagate for nak")
	}

	if err := r.Handle(context.Background(), []byte("{not json")); err != nil {
		t.Fatalf("poison message should be acked, got %v", err)
	}
}

func TestLogMailerHidesVarsByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(zerolog.New(&buf), false)

	if err := l.Send(context.Background(), "a@b.co", "verification-code", map[string]string{"code": "987654", "ttl_minutes": "4"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if strings.Contains(buf.String(), "987654") {
		t.Fatalf("code leaked into log: %s", buf.String())
	}
}
