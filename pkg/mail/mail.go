// Package mail builds transactional emails and delivers them through a
// pluggable Transport (SMTP, Postmark, log, or an in-memory fake).
//
//	msg := mail.To(user.Email).
//	    Subject("Your Nutrieve order #42").
//	    HTML(body)
//	err := mailer.Send(ctx, msg)
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/pkg/logger"
	"github.com/nutrieve/nutrieve/pkg/metrics"
	"github.com/nutrieve/nutrieve/pkg/workerpool"
)

var ErrNoRecipient = errors.New("mail: message has no recipient")

// Message is a fluent builder for one email.
type Message struct {
	To          []string
	SubjectLine string
	HTMLBody    string
	TextBody    string
}

// To starts a message for addresses.
func To(addresses ...string) *Message {
	return &Message{To: addresses}
}

func (m *Message) Subject(s string) *Message {
	m.SubjectLine = s
	return m
}

func (m *Message) HTML(body string) *Message {
	m.HTMLBody = body
	return m
}

func (m *Message) Text(body string) *Message {
	m.TextBody = body
	return m
}

// Sender is the From identity.
type Sender struct {
	Address string
	Name    string
}

func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Address)
}

// Transport delivers a message on behalf of from.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, from Sender, m *Message) error
}

// Mailer sends through one transport and counts the outcome.
type Mailer struct {
	transport Transport
	from      Sender
	pool      *workerpool.Pool
}

func NewMailer(t Transport, from Sender) *Mailer {
	return &Mailer{transport: t, from: from}
}

// FromConfig picks the transport named by MAIL_DRIVER. An unusable
// postmark or smtp setup falls back to the log transport with a warning.
func FromConfig() *Mailer {
	from := Sender{Address: config.MailFrom(), Name: config.MailFromName()}

	var t Transport
	switch config.MailDriver() {
	case "postmark":
		if key := config.PostmarkAPIKey(); key != "" {
			t = NewPostmark(key)
		} else {
			logger.Warn("mail: POSTMARK_API_KEY is empty, using log transport")
		}
	case "smtp":
		cfg := SMTPConfig{
			Host:     config.MailHost(),
			Port:     config.MailPort(),
			Username: config.MailUsername(),
			Password: config.MailPassword(),
		}
		if cfg.Username != "" {
			t = NewSMTP(cfg)
		} else {
			logger.Warn("mail: MAIL_USERNAME is empty, using log transport")
		}
	}
	if t == nil {
		t = LogTransport{}
	}
	return NewMailer(t, from)
}

// Transport returns the transport in use.
func (m *Mailer) Transport() Transport { return m.transport }

// Background returns a copy of m whose Send only queues the message on
// pool. Delivery errors are logged. If the pool refuses the task the
// message is delivered inline.
func (m *Mailer) Background(pool *workerpool.Pool) *Mailer {
	return &Mailer{transport: m.transport, from: m.from, pool: pool}
}

// Send validates and delivers msg.
func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 || strings.TrimSpace(msg.To[0]) == "" {
		return ErrNoRecipient
	}

	if m.pool != nil {
		bg := context.WithoutCancel(ctx)
		err := m.pool.Submit(func() {
			if err := m.deliver(bg, msg); err != nil {
				logger.WithCtx(bg).Error("mail delivery failed", "to", msg.To, "error", err)
			}
		})
		if err == nil {
			return nil
		}
		logger.WithCtx(ctx).Warn("mail queue refused message, sending inline", "error", err)
	}
	return m.deliver(ctx, msg)
}

func (m *Mailer) deliver(ctx context.Context, msg *Message) error {
	err := m.transport.Deliver(ctx, m.from, msg)
	metrics.RecordMail(m.transport.Name(), err)
	if err != nil {
		return fmt.Errorf("mail: %s: %w", m.transport.Name(), err)
	}

	logger.WithCtx(ctx).Info("mail sent", "transport", m.transport.Name(), "to", msg.To, "subject", msg.SubjectLine)
	return nil
}
