package sendmail_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mail "github.com/fyrelib/go-mail"
	"github.com/fyrelib/go-mail/message"
	"github.com/fyrelib/go-mail/sendmail"
)

type submission struct {
	to      string
	subject string
	body    string
	headers []message.Header
}

func capturingMailer(t *testing.T, captured *[]submission, fail error) mail.Mailer {
	t.Helper()

	mailer, err := sendmail.NewWithSubmit(mail.Config{Client: "test.example.com"},
		func(to, subject, body string, headers []message.Header) error {
			*captured = append(*captured, submission{to, subject, body, headers})
			return fail
		})
	require.NoError(t, err)
	return mailer
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	var captured []submission
	mailer := capturingMailer(t, &captured, nil)

	err := mailer.Email().
		SetFrom("from@example.com", "").
		AddTo("to@example.com", "").
		AddTo("other@example.com", "Other").
		SetSubject("Local delivery").
		SetBodyText("body text").
		Send()
	require.NoError(t, err)

	require.Len(t, captured, 1)
	sub := captured[0]
	assert.Equal(t, "to@example.com, Other <other@example.com>", sub.to)
	assert.Equal(t, "Local delivery", sub.subject)
	assert.NotEmpty(t, sub.body)

	// To and Subject travel as arguments, not headers
	for _, h := range sub.headers {
		assert.NotEqual(t, "To", h.Name)
		assert.NotEqual(t, "Subject", h.Name)
	}

	names := make([]string, 0, len(sub.headers))
	for _, h := range sub.headers {
		names = append(names, h.Name)
	}
	assert.Contains(t, names, "From")
	assert.Contains(t, names, "Content-Type")
}

func TestSubmitFailureWrapped(t *testing.T) {
	t.Parallel()

	var captured []submission
	mailer := capturingMailer(t, &captured, errors.New("sendmail: exit status 1"))

	err := mailer.Email().
		AddTo("to@example.com", "").
		SetBodyText("body").
		Send()
	assert.True(t, errors.Is(err, mail.ErrDeliveryFailed))
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestMissingRecipients(t *testing.T) {
	t.Parallel()

	var captured []submission
	mailer := capturingMailer(t, &captured, nil)

	err := mailer.Email().SetBodyText("body").Send()
	assert.True(t, errors.Is(err, mail.ErrMissingRecipients))
	assert.Empty(t, captured)
}

func TestNilSubmitRejected(t *testing.T) {
	t.Parallel()

	_, err := sendmail.NewWithSubmit(mail.Config{}, nil)
	assert.True(t, errors.Is(err, mail.ErrInvalidConfig))
}
