package smtp

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mail "github.com/fyrelib/go-mail"
	"github.com/fyrelib/go-mail/smtptest"
)

// A TLS-configured send must upgrade after the 220 reply to STARTTLS
// and repeat the hello exchange over the encrypted channel before any
// envelope command.
func TestStartTLSUpgradeAndRehello(t *testing.T) {
	t.Parallel()

	serverCfg, pool, err := smtptest.SelfSignedPair()
	require.NoError(t, err)

	server, err := smtptest.NewScriptedServer(smtptest.Script{
		Greeting: "220 ready",
		TLS:      serverCfg,
		Replies: []string{
			"250 hello",
			"220 go ahead",
			"250 hello again",
			"250 ok", "250 ok", "354 go ahead", "250 queued", "221 bye",
		},
	})
	require.NoError(t, err)
	defer server.Close()

	s := &Mailer{Base: mail.NewBase(mail.Config{
		Host:   "127.0.0.1",
		Port:   server.Port(),
		TLS:    true,
		Client: "client.example.com",
	})}
	s.tlsConfig = &tls.Config{ServerName: "127.0.0.1", RootCAs: pool}

	err = s.Email().
		SetFrom("from@example.com", "").
		AddTo("to@example.com", "").
		SetBodyText("body").
		Send()
	require.NoError(t, err)

	commands := server.Commands()
	assert.Equal(t, "HELO client.example.com", commands[0])
	assert.Equal(t, "STARTTLS", commands[1])

	encrypted := server.TLSCommands()
	require.NotEmpty(t, encrypted)
	assert.Equal(t, "HELO client.example.com", encrypted[0])
	assert.Contains(t, encrypted, "MAIL FROM:<from@example.com>")
	assert.Contains(t, encrypted, "DATA")
}
