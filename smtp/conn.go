package smtp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	connectTimeout = 10 * time.Second
	ioTimeout      = 5 * time.Second

	// drainTimeout bounds the wait for further chunks of a reply whose
	// final line has not been seen yet.
	drainTimeout = 200 * time.Millisecond
)

var finalReplyLine = regexp.MustCompile(`^\d{3}( .*)?$`)

// replyComplete reports whether the accumulated bytes form a complete
// logical reply: the last received line is a status code followed by a
// space (or nothing), rather than the hyphen of a multi-line
// continuation.
func replyComplete(reply string) bool {
	if !strings.HasSuffix(reply, "\n") {
		return false
	}
	lines := strings.Split(strings.TrimRight(reply, "\r\n"), "\r\n")
	return finalReplyLine.MatchString(lines[len(lines)-1])
}

// read accumulates one logical reply from the socket. It blocks up to
// the I/O timeout for the first chunk, then keeps reading until the
// reply is complete; if completion cannot be determined it falls back
// to a short drain deadline and returns whatever arrived.
func (s *Mailer) read() (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(ioTimeout)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	var reply strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			reply.Write(buf[:n])
			if replyComplete(reply.String()) {
				return reply.String(), nil
			}
			if err := s.conn.SetReadDeadline(time.Now().Add(drainTimeout)); err != nil {
				return "", fmt.Errorf("%w: %v", ErrConnectionFailed, err)
			}
			continue
		}
		if err != nil {
			if reply.Len() > 0 && errors.Is(err, os.ErrDeadlineExceeded) {
				return reply.String(), nil
			}
			return "", fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
	}
}

// writeLine sends one line terminated by CRLF, looping until every byte
// is written.
func (s *Mailer) writeLine(line string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(ioTimeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	data := []byte(line + "\r\n")
	for len(data) > 0 {
		n, err := s.conn.Write(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		data = data[n:]
	}
	return nil
}

// startTLS upgrades the open connection in place and repeats the hello
// exchange over the encrypted channel.
func (s *Mailer) startTLS(serverName string) error {
	if _, err := s.command("STARTTLS", "220"); err != nil {
		return err
	}

	cfg := s.tlsConfig
	if cfg == nil {
		cfg = &tls.Config{ServerName: serverName}
	}
	s.conn = tls.Client(s.conn, cfg)
	return s.hello()
}
