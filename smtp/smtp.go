// Package smtp delivers messages by speaking the SMTP wire protocol
// directly over a TCP socket, with optional STARTTLS and AUTH LOGIN.
package smtp

import (
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	mail "github.com/fyrelib/go-mail"
	"github.com/fyrelib/go-mail/message"
)

// Errors returned by the SMTP transport.
var (
	// ErrConnectionFailed is returned when the socket cannot be opened
	// or dies mid-session.
	ErrConnectionFailed = errors.New("smtp: connection failed")

	// ErrAuthFailed is returned when any AUTH LOGIN step receives an
	// unexpected reply.
	ErrAuthFailed = errors.New("smtp: authentication failed")

	// ErrInvalidResponse is returned when a command receives a reply
	// not matching the expected status code.
	ErrInvalidResponse = errors.New("smtp: invalid response")

	// ErrInvalidData is returned when a socket write fails to complete.
	ErrInvalidData = errors.New("smtp: invalid data")
)

type state int

const (
	stateDisconnected state = iota
	stateConnected
	stateReady
)

// Mailer is an SMTP delivery handler. One instance owns at most one
// socket; sends through it are serialized internally and each message
// is processed end to end before the next begins.
type Mailer struct {
	mail.Base

	mu    sync.Mutex
	conn  net.Conn
	state state

	// tlsConfig overrides the STARTTLS client configuration; nil means
	// verify against the configured host.
	tlsConfig *tls.Config
}

// New builds an SMTP handler from cfg. The connection is opened lazily
// on the first send.
func New(cfg mail.Config) (mail.Mailer, error) {
	return &Mailer{Base: mail.NewBase(cfg)}, nil
}

// Email composes an empty message bound to this handler.
func (s *Mailer) Email() *message.Message {
	return s.NewEmail(s)
}

// Send delivers m over SMTP, connecting and authenticating first if the
// session is not already open. The message is fully assembled before
// any protocol traffic; assembly errors never leave a half-sent
// transaction behind. Any protocol failure closes the socket so the
// next send starts from a fresh connection.
func (s *Mailer) Send(m *message.Message) error {
	if err := s.CheckRecipients(m); err != nil {
		return err
	}

	headers, err := m.HeaderString()
	if err != nil {
		return err
	}
	body, err := m.BodyString()
	if err != nil {
		return err
	}

	envelope := m.ReturnPath().FirstEmail()
	if envelope == "" {
		envelope = m.From().FirstEmail()
	}
	recipients := m.Recipients().Emails()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transaction(envelope, recipients, headers, body); err != nil {
		s.teardown()
		return err
	}

	if s.Config().KeepAlive {
		if _, err := s.command("RSET", "250"); err != nil {
			s.teardown()
			return err
		}
		return nil
	}

	_, err = s.command("QUIT", "221")
	s.teardown()
	return err
}

// Close shuts the session down cleanly, sending QUIT when a connection
// is open. Only needed with KeepAlive.
func (s *Mailer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateDisconnected {
		return nil
	}
	_, err := s.command("QUIT", "221")
	s.teardown()
	return err
}

func (s *Mailer) transaction(envelope string, recipients []string, headers, body string) error {
	if err := s.connect(); err != nil {
		return err
	}

	if _, err := s.command("MAIL FROM:<"+envelope+">", "250"); err != nil {
		return err
	}

	dsn := s.Config().DSN
	for _, rcpt := range recipients {
		cmd := "RCPT TO:<" + rcpt + ">"
		if dsn {
			cmd += " NOTIFY=SUCCESS,DELAY,FAILURE ORCPT=rfc822;" + rcpt
		}
		if _, err := s.command(cmd, "250"); err != nil {
			return err
		}
	}

	if _, err := s.command("DATA", "354"); err != nil {
		return err
	}

	for _, line := range strings.Split(headers+"\r\n\r\n"+body, "\r\n") {
		if err := s.writeLine(dotStuff(line)); err != nil {
			return err
		}
	}

	_, err := s.command(".", "250")
	return err
}

// connect opens the socket, reads the greeting, negotiates TLS and
// authenticates, leaving the session ready for MAIL FROM. It is a
// no-op when the session is already ready.
func (s *Mailer) connect() error {
	if s.state == stateReady {
		return nil
	}

	cfg := s.Config()
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	s.Log().Debug().Str("addr", addr).Msg("smtp connect")

	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	s.conn = conn
	s.state = stateConnected

	if _, err := s.read(); err != nil {
		return err
	}

	if err := s.hello(); err != nil {
		return err
	}

	if cfg.TLS {
		if err := s.startTLS(cfg.Host); err != nil {
			return err
		}
	}

	if cfg.Auth {
		if err := s.authenticate(cfg.Username, cfg.Password); err != nil {
			return err
		}
	}

	s.state = stateReady
	return nil
}

func (s *Mailer) hello() error {
	if s.Config().Auth {
		_, err := s.command("EHLO "+s.Client(), "250")
		return err
	}
	_, err := s.command("HELO "+s.Client(), "250")
	return err
}

// authenticate runs AUTH LOGIN. A 503 reply means the server already
// considers the session authenticated and is not an error.
func (s *Mailer) authenticate(username, password string) error {
	if err := s.writeLine("AUTH LOGIN"); err != nil {
		return err
	}
	reply, err := s.read()
	if err != nil {
		return err
	}
	s.Log().Debug().Str("cmd", "AUTH").Str("code", replyCode(reply)).Msg("smtp reply")

	if strings.HasPrefix(reply, "503") {
		return nil
	}
	if !strings.HasPrefix(reply, "334") {
		return fmt.Errorf("%w: %s", ErrAuthFailed, strings.TrimRight(reply, "\r\n"))
	}

	for i, secret := range []string{username, password} {
		expect := "334"
		if i == 1 {
			expect = "235"
		}

		if err := s.writeLine(base64.StdEncoding.EncodeToString([]byte(secret))); err != nil {
			return err
		}
		reply, err := s.read()
		if err != nil {
			return err
		}
		if !strings.HasPrefix(reply, expect) {
			return fmt.Errorf("%w: %s", ErrAuthFailed, strings.TrimRight(reply, "\r\n"))
		}
	}

	return nil
}

// command writes one command line, reads one logical reply and checks
// its status code prefix.
func (s *Mailer) command(cmd, expect string) (string, error) {
	if err := s.writeLine(cmd); err != nil {
		return "", err
	}
	reply, err := s.read()
	if err != nil {
		return "", err
	}

	verb, _, _ := strings.Cut(cmd, " ")
	s.Log().Debug().Str("cmd", verb).Str("code", replyCode(reply)).Msg("smtp reply")

	if !strings.HasPrefix(reply, expect) {
		return reply, fmt.Errorf("%w: %s after %s",
			ErrInvalidResponse, strings.TrimRight(reply, "\r\n"), verb)
	}
	return reply, nil
}

// teardown closes the socket unconditionally and resets the session.
func (s *Mailer) teardown() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.state = stateDisconnected
}

// dotStuff applies the SMTP transparency rule to one physical line.
func dotStuff(line string) string {
	if strings.HasPrefix(line, ".") {
		return "." + line
	}
	return line
}

func replyCode(reply string) string {
	if len(reply) < 3 {
		return reply
	}
	return reply[:3]
}
