package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/nutrieve/nutrieve/pkg/http"
	"github.com/nutrieve/nutrieve/pkg/logger"
)

// ─── SMTP ─────────────────────────────────────────────────────────────────────

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPTransport { return &SMTPTransport{cfg: cfg} }

func (t *SMTPTransport) Name() string { return "smtp" }

// Deliver uses implicit TLS on port 465 and STARTTLS otherwise.
func (t *SMTPTransport) Deliver(_ context.Context, from Sender, m *Message) error {
	addr := t.cfg.Host + ":" + t.cfg.Port
	auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	raw := buildRaw(from, m)

	if t.cfg.Port != "465" {
		return smtp.SendMail(addr, auth, from.Address, m.To, raw)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: t.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit() //nolint:errcheck

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from.Address); err != nil {
		return err
	}
	for _, rcpt := range m.To {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func buildRaw(from Sender, m *Message) []byte {
	contentType, body := "text/html", m.HTMLBody
	if body == "" {
		contentType, body = "text/plain", m.TextBody
	}

	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + m.SubjectLine + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// ─── Postmark ─────────────────────────────────────────────────────────────────

const postmarkEndpoint = "https://api.postmarkapp.com/email"

// PostmarkTransport sends through Postmark's HTTP API.
type PostmarkTransport struct {
	apiKey   string
	Endpoint string
}

func NewPostmark(apiKey string) *PostmarkTransport {
	return &PostmarkTransport{apiKey: apiKey, Endpoint: postmarkEndpoint}
}

func (t *PostmarkTransport) Name() string { return "postmark" }

type postmarkPayload struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HTMLBody      string `json:"HtmlBody,omitempty"`
	TextBody      string `json:"TextBody,omitempty"`
	MessageStream string `json:"MessageStream"`
}

func (t *PostmarkTransport) Deliver(ctx context.Context, from Sender, m *Message) error {
	resp, err := http.Post(t.Endpoint).
		WithContext(ctx).
		Header("X-Postmark-Server-Token", t.apiKey).
		Body(postmarkPayload{
			From:          from.String(),
			To:            strings.Join(m.To, ","),
			Subject:       m.SubjectLine,
			HTMLBody:      m.HTMLBody,
			TextBody:      m.TextBody,
			MessageStream: "outbound",
		}).
		Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}

// ─── Log ──────────────────────────────────────────────────────────────────────

// LogTransport writes the message to the log instead of sending it.
type LogTransport struct{}

func (LogTransport) Name() string { return "log" }

func (LogTransport) Deliver(ctx context.Context, from Sender, m *Message) error {
	logger.WithCtx(ctx).Info("mail (log transport)",
		"from", from.String(), "to", m.To, "subject", m.SubjectLine, "text", m.TextBody)
	return nil
}

// ─── Fake ─────────────────────────────────────────────────────────────────────

// Fake records messages in memory. Set Err to make every delivery fail.
type Fake struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Deliver(_ context.Context, _ Sender, m *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.sent = append(f.sent, *m)
	return nil
}

// Sent returns a copy of every delivered message.
func (f *Fake) Sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

// Last returns the most recent message, or false.
func (f *Fake) Last() (Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return Message{}, false
	}
	return f.sent[len(f.sent)-1], true
}
