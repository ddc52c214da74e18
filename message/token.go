package message

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// randomToken returns 32 lowercase hex characters derived from 16
// cryptographically random bytes.
func randomToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("message: reading random bytes: %v", err))
	}

	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Boundary returns the MIME boundary for this message, generating it on
// first use. It is stable for the life of the message.
func (m *Message) Boundary() string {
	if m.boundary == "" {
		m.boundary = randomToken()
	}
	return m.boundary
}

// MessageID returns the Message-ID header value, generating it on first
// use. It is stable for the life of the message.
func (m *Message) MessageID() string {
	if m.messageID == "" {
		m.messageID = fmt.Sprintf("<%d%s@%s>", time.Now().Unix(), randomToken(), m.client)
	}
	return m.messageID
}
