package smtptest

import (
	"bufio"
	"crypto/tls"
	"net"
	"strings"
	"sync"
)

// Script describes the fixed exchange a ScriptedServer replays: the
// greeting, then one reply per client command, in order. A reply may
// span multiple lines (embed \r\n continuations). A reply beginning
// with 354 switches the server into data mode: everything up to the
// lone dot is recorded as payload, and the following reply answers the
// dot. When TLS is set, a STARTTLS command answered with a 220 reply
// upgrades the connection in place.
type Script struct {
	Greeting string
	Replies  []string
	TLS      *tls.Config
}

// ScriptedServer replays a Script against every accepted connection,
// recording the commands and data it receives. It makes protocol
// failure paths reproducible in a way a real server cannot.
type ScriptedServer struct {
	listener net.Listener
	script   Script

	mu         sync.Mutex
	commands   []string
	data       []string
	secureFrom int
}

// NewScriptedServer starts a scripted server on 127.0.0.1.
func NewScriptedServer(script Script) (*ScriptedServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	ss := &ScriptedServer{listener: listener, script: script, secureFrom: -1}
	go ss.serve()
	return ss, nil
}

// Port returns the ephemeral port the server listens on.
func (ss *ScriptedServer) Port() int {
	return ss.listener.Addr().(*net.TCPAddr).Port
}

// Commands returns the command lines received so far, dot included.
func (ss *ScriptedServer) Commands() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.commands...)
}

// TLSCommands returns the command lines received after a STARTTLS
// upgrade, or nil when no upgrade happened.
func (ss *ScriptedServer) TLSCommands() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.secureFrom < 0 {
		return nil
	}
	return append([]string(nil), ss.commands[ss.secureFrom:]...)
}

// Data returns the payload lines received during data mode.
func (ss *ScriptedServer) Data() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.data...)
}

// Close stops accepting connections.
func (ss *ScriptedServer) Close() error {
	return ss.listener.Close()
}

func (ss *ScriptedServer) serve() {
	for {
		conn, err := ss.listener.Accept()
		if err != nil {
			return
		}
		ss.handle(conn)
	}
}

func (ss *ScriptedServer) handle(conn net.Conn) {
	defer func() { conn.Close() }()

	reader := bufio.NewReader(conn)

	if _, err := conn.Write([]byte(ss.script.Greeting + "\r\n")); err != nil {
		return
	}

	inData := false
	for _, reply := range ss.script.Replies {
		var line string
		if inData {
			for {
				raw, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				line = strings.TrimRight(raw, "\r\n")
				if line == "." {
					ss.record(&ss.commands, line)
					break
				}
				ss.record(&ss.data, line)
			}
			inData = false
		} else {
			raw, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(raw, "\r\n")
			ss.record(&ss.commands, line)
		}

		if _, err := conn.Write([]byte(reply + "\r\n")); err != nil {
			return
		}

		switch {
		case strings.HasPrefix(reply, "354"):
			inData = true
		case ss.script.TLS != nil && strings.EqualFold(line, "STARTTLS") && strings.HasPrefix(reply, "220"):
			conn = tls.Server(conn, ss.script.TLS)
			reader = bufio.NewReader(conn)
			ss.markSecure()
		}
	}
}

func (ss *ScriptedServer) record(dst *[]string, line string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	*dst = append(*dst, line)
}

func (ss *ScriptedServer) markSecure() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.secureFrom = len(ss.commands)
}
