// Package sendmail delivers messages through the local mail submission
// binary, the way a webserver-hosted application traditionally sends.
package sendmail

import (
	"fmt"
	"os/exec"
	"strings"

	mail "github.com/fyrelib/go-mail"
	"github.com/fyrelib/go-mail/message"
)

// SubmitFunc is the platform submission primitive: it receives the
// recipient list, the subject, the assembled body and every remaining
// header. The default execs sendmail; tests inject their own.
type SubmitFunc func(to, subject, body string, headers []message.Header) error

// Mailer is a local-submission delivery handler.
type Mailer struct {
	mail.Base
	submit SubmitFunc
}

// New builds a sendmail handler from cfg, submitting through the
// sendmail binary.
func New(cfg mail.Config) (mail.Mailer, error) {
	return NewWithSubmit(cfg, execSendmail)
}

// NewWithSubmit builds a sendmail handler with a custom submission
// primitive.
func NewWithSubmit(cfg mail.Config, submit SubmitFunc) (mail.Mailer, error) {
	if submit == nil {
		return nil, fmt.Errorf("%w: nil submit function", mail.ErrInvalidConfig)
	}
	return &Mailer{Base: mail.NewBase(cfg), submit: submit}, nil
}

// Email composes an empty message bound to this handler.
func (s *Mailer) Email() *message.Message {
	return s.NewEmail(s)
}

// Send assembles m and hands it to the submission primitive. To and
// Subject are passed as dedicated arguments and stripped from the
// header block, matching the platform contract.
func (s *Mailer) Send(m *message.Message) error {
	if err := s.CheckRecipients(m); err != nil {
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

	var to, subject string
	rest := make([]message.Header, 0, len(headers))
	for _, h := range headers {
		switch h.Name {
		case "To":
			to = strings.Join(h.Values, ", ")
		case "Subject":
			if len(h.Values) > 0 {
				subject = h.Values[0]
			}
		default:
			rest = append(rest, h)
		}
	}

	s.Log().Debug().Str("to", to).Msg("sendmail submit")

	if err := s.submit(to, subject, body, rest); err != nil {
		return fmt.Errorf("%w: %v", mail.ErrDeliveryFailed, err)
	}
	return nil
}

// execSendmail pipes the message into the sendmail binary. The -i flag
// disables dot termination, -t reads recipients from the headers.
func execSendmail(to, subject, body string, headers []message.Header) error {
	var b strings.Builder
	for _, h := range headers {
		for _, value := range h.Values {
			if value == "" {
				continue
			}
			b.WriteString(h.Name + ": " + value + "\r\n")
		}
	}
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	cmd := exec.Command("sendmail", "-i", "-t")
	cmd.Stdin = strings.NewReader(b.String())

	if out, err := cmd.CombinedOutput(); err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))
		}
		return err
	}
	return nil
}
