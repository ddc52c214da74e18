// Package debug captures messages in memory instead of delivering
// them, for inspection in tests and development environments.
package debug

import (
	"sync"

	"github.com/google/uuid"

	mail "github.com/fyrelib/go-mail"
	"github.com/fyrelib/go-mail/message"
)

// SentMail is one captured message: its assembled headers and body,
// tagged with a stable identifier assigned at capture time.
type SentMail struct {
	ID      uuid.UUID
	Headers []message.Header
	Body    string
}

// Mailer is an in-memory delivery handler. Safe for concurrent use.
type Mailer struct {
	mail.Base

	mu   sync.Mutex
	sent []SentMail
}

// New builds a debug handler from cfg.
func New(cfg mail.Config) (mail.Mailer, error) {
	return &Mailer{Base: mail.NewBase(cfg)}, nil
}

// Email composes an empty message bound to this handler.
func (d *Mailer) Email() *message.Message {
	return d.NewEmail(d)
}

// Send assembles m and appends it to the capture list.
func (d *Mailer) Send(m *message.Message) error {
	if err := d.CheckRecipients(m); err != nil {
		return err
	}

	headers, err := m.FullHeaders()
	if err != nil {
		return err
	}
	body, err := m.BodyString()
	if err != nil {
		return err
	}

	captured := SentMail{ID: uuid.New(), Headers: headers, Body: body}

	d.mu.Lock()
	d.sent = append(d.sent, captured)
	d.mu.Unlock()

	d.Log().Debug().Str("id", captured.ID.String()).Msg("debug capture")
	return nil
}

// Sent returns a snapshot of the captured messages, oldest first.
func (d *Mailer) Sent() []SentMail {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SentMail(nil), d.sent...)
}

// Clear drops every captured message.
func (d *Mailer) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = nil
}
