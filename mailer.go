package mail

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/fyrelib/go-mail/message"
)

// Mailer is a delivery handler. Email composes a new message bound to
// the handler; Send delivers a composed message.
type Mailer interface {
	Email() *message.Message
	Send(m *message.Message) error
}

// Base carries the behavior shared by every handler: config defaults,
// client name resolution and message construction. Handlers embed it.
type Base struct {
	cfg Config
	log zerolog.Logger
}

// NewBase applies defaults to cfg and wraps it.
func NewBase(cfg Config) Base {
	return Base{cfg: cfg.withDefaults(), log: cfg.Log()}
}

// Config returns the handler configuration, with defaults applied.
func (b *Base) Config() Config {
	return b.cfg
}

// Log returns the handler logger.
func (b *Base) Log() *zerolog.Logger {
	return &b.log
}

// Client returns the hostname the handler presents: the configured
// client name, else the machine hostname, else "localhost".
func (b *Base) Client() string {
	if b.cfg.Client != "" {
		return b.cfg.Client
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "localhost"
}

// NewEmail composes an empty message bound to the given sender, using
// the handler's charset settings and client name.
func (b *Base) NewEmail(s message.Sender) *message.Message {
	return message.New(message.Options{
		Charset:    b.cfg.Charset,
		AppCharset: b.cfg.AppCharset,
		Client:     b.Client(),
		Sender:     s,
	})
}

// CheckRecipients fails when the message has nobody to deliver to.
func (b *Base) CheckRecipients(m *message.Message) error {
	if m.Recipients().Len() == 0 {
		return ErrMissingRecipients
	}
	return nil
}
