// Package smtptest provides in-process SMTP servers for exercising the
// client over a real loopback socket: a capture server that accepts
// everything and records it, and a scripted server that replays
// canned replies for driving the client into specific protocol states.
package smtptest

import (
	"io"
	"net"
	"sync"

	"github.com/emersion/go-smtp"
)

// Envelope is one accepted mail transaction.
type Envelope struct {
	From string
	To   []string
	Data string
}

// CaptureServer accepts every transaction and records the envelopes
// for inspection. It listens on an ephemeral loopback port.
type CaptureServer struct {
	server   *smtp.Server
	listener net.Listener

	mu        sync.Mutex
	envelopes []Envelope
}

// NewCaptureServer starts a capture server on 127.0.0.1.
func NewCaptureServer() (*CaptureServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	cs := &CaptureServer{listener: listener}

	srv := smtp.NewServer(&captureBackend{store: cs})
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true
	cs.server = srv

	go func() {
		_ = srv.Serve(listener)
	}()

	return cs, nil
}

// Port returns the ephemeral port the server listens on.
func (cs *CaptureServer) Port() int {
	return cs.listener.Addr().(*net.TCPAddr).Port
}

// Envelopes returns a snapshot of the accepted transactions.
func (cs *CaptureServer) Envelopes() []Envelope {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]Envelope(nil), cs.envelopes...)
}

// Close shuts the server down.
func (cs *CaptureServer) Close() error {
	return cs.server.Close()
}

func (cs *CaptureServer) save(e Envelope) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.envelopes = append(cs.envelopes, e)
}

type captureBackend struct {
	store *CaptureServer
}

func (b *captureBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &captureSession{store: b.store}, nil
}

// captureSession implements smtp.Session, buffering one transaction at
// a time and handing completed envelopes to the store.
type captureSession struct {
	store *CaptureServer
	from  string
	to    []string
}

func (s *captureSession) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *captureSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

func (s *captureSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.store.save(Envelope{
		From: s.from,
		To:   append([]string(nil), s.to...),
		Data: string(data),
	})
	return nil
}

func (s *captureSession) Reset() {
	s.from = ""
	s.to = nil
}

func (s *captureSession) Logout() error {
	return nil
}
