package message_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrelib/go-mail/message"
)

func headerValue(t *testing.T, headers []message.Header, name string) string {
	t.Helper()
	for _, h := range headers {
		if h.Name == name {
			require.Len(t, h.Values, 1)
			return h.Values[0]
		}
	}
	t.Fatalf("header %s not found", name)
	return ""
}

func hasHeader(headers []message.Header, name string) bool {
	for _, h := range headers {
		if h.Name == name {
			return true
		}
	}
	return false
}

func TestPlainTextMessage(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetFrom("from@example.com", "").
		AddTo("to@example.com", "").
		SetSubject("Test").
		SetBodyText("This is a test")

	headers, err := m.FullHeaders()
	require.NoError(t, err)

	assert.Equal(t, "text/plain; charset=utf-8", headerValue(t, headers, "Content-Type"))
	assert.Equal(t, "base64", headerValue(t, headers, "Content-Transfer-Encoding"))
	assert.Equal(t, "1.0", headerValue(t, headers, "MIME-Version"))
	assert.Equal(t, "Test", headerValue(t, headers, "Subject"))
	assert.Equal(t, "from@example.com", headerValue(t, headers, "From"))
	assert.Equal(t, "to@example.com", headerValue(t, headers, "To"))

	lines, err := m.FullBody()
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(strings.Join(lines, ""))
	require.NoError(t, err)
	assert.Equal(t, "This is a test", string(decoded))
}

func TestHeaderOrder(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetFrom("from@example.com", "").
		SetReturnPath("bounce@example.com", "").
		AddTo("to@example.com", "").
		AddCc("cc@example.com", "").
		SetSubject("Order")

	headers, err := m.FullHeaders()
	require.NoError(t, err)

	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = h.Name
	}

	assert.Equal(t, []string{
		"From", "Return-Path", "To", "Cc",
		"Date", "Message-ID", "Subject", "MIME-Version",
		"Content-Type", "Content-Transfer-Encoding",
	}, names)
}

func TestEmptyAddressHeadersOmitted(t *testing.T) {
	t.Parallel()

	m := newMessage().AddTo("to@example.com", "")

	headers, err := m.FullHeaders()
	require.NoError(t, err)

	for _, name := range []string{"From", "Reply-To", "Disposition-Notification-To", "Return-Path", "Cc", "Bcc", "Sender"} {
		assert.False(t, hasHeader(headers, name), "unexpected header %s", name)
	}
}

func TestSenderHeaderOnlyWhenDistinct(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetFrom("from@example.com", "").
		SetSender("from@example.com", "")
	headers, err := m.FullHeaders()
	require.NoError(t, err)
	assert.False(t, hasHeader(headers, "Sender"))

	m.SetSender("actual@example.com", "")
	headers, err = m.FullHeaders()
	require.NoError(t, err)
	assert.Equal(t, "actual@example.com", headerValue(t, headers, "Sender"))
}

func TestPriorityHeader(t *testing.T) {
	t.Parallel()

	m := newMessage().AddTo("to@example.com", "")
	headers, err := m.FullHeaders()
	require.NoError(t, err)
	assert.False(t, hasHeader(headers, "X-Priority"))

	m.SetPriority(1)
	headers, err = m.FullHeaders()
	require.NoError(t, err)
	assert.Equal(t, "1", headerValue(t, headers, "X-Priority"))
}

func TestContentTypeSelection(t *testing.T) {
	t.Parallel()

	m := newMessage()
	headers, err := m.FullHeaders()
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", headerValue(t, headers, "Content-Type"))

	m.SetFormat(message.FormatHTML)
	headers, err = m.FullHeaders()
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", headerValue(t, headers, "Content-Type"))

	m.SetFormat(message.FormatBoth)
	headers, err = m.FullHeaders()
	require.NoError(t, err)
	assert.Equal(t,
		`multipart/alternative; boundary="`+m.Boundary()+`"`,
		headerValue(t, headers, "Content-Type"))

	m.AddAttachment(message.Attachment{Name: "a.txt", Content: []byte("attached")})
	headers, err = m.FullHeaders()
	require.NoError(t, err)
	assert.Equal(t,
		`multipart/mixed; boundary="`+m.Boundary()+`"`,
		headerValue(t, headers, "Content-Type"))
}

func TestHeaderStringSkipsEmptyAndRepeats(t *testing.T) {
	t.Parallel()

	m := newMessage().
		AddTo("to@example.com", "").
		AddHeader("X-Empty", "").
		AddHeader("X-List", "one", "two")

	s, err := m.HeaderString()
	require.NoError(t, err)

	assert.NotContains(t, s, "X-Empty")
	assert.Contains(t, s, "X-List: one\r\nX-List: two")
	assert.Contains(t, s, "To: to@example.com")
}

func TestAlternativeBody(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetFormat(message.FormatBoth).
		SetBodyText("plain version").
		SetBodyHTML("<p>html version</p>")

	lines, err := m.FullBody()
	require.NoError(t, err)
	bodyStr := strings.Join(lines, "\r\n")

	boundary := m.Boundary()
	assert.Contains(t, bodyStr, "--"+boundary+"\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Transfer-Encoding: base64")
	assert.Contains(t, bodyStr, "--"+boundary+"\r\nContent-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: base64")
	assert.Contains(t, bodyStr, "--"+boundary+"--")
	assert.NotContains(t, bodyStr, "alt-boundary")

	assert.Contains(t, bodyStr, base64.StdEncoding.EncodeToString([]byte("plain version")))
	assert.Contains(t, bodyStr, base64.StdEncoding.EncodeToString([]byte("<p>html version</p>")))
}

func TestAttachmentBody(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetBodyText("body text").
		AddAttachment(message.Attachment{
			Name:     "data.bin",
			Content:  []byte{0x01, 0x02, 0x03},
			MimeType: "application/octet-stream",
		})

	lines, err := m.FullBody()
	require.NoError(t, err)
	bodyStr := strings.Join(lines, "\r\n")

	boundary := m.Boundary()
	assert.Contains(t, bodyStr, `Content-Type: application/octet-stream; name="data.bin"`)
	assert.Contains(t, bodyStr, "Content-Disposition: attachment")
	assert.NotContains(t, bodyStr, "Content-ID")
	assert.Contains(t, bodyStr, "--"+boundary+"--")
	assert.Contains(t, bodyStr, base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03}))
}

func TestInlineAndRegularAttachmentNesting(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetBodyText("body").
		AddAttachment(message.Attachment{
			Name:      "logo.png",
			Content:   []byte("pngbytes"),
			MimeType:  "image/png",
			ContentID: "logo",
		}).
		AddAttachment(message.Attachment{
			Name:     "report.txt",
			Content:  []byte("report"),
			MimeType: "text/plain",
		})

	lines, err := m.FullBody()
	require.NoError(t, err)
	bodyStr := strings.Join(lines, "\r\n")

	boundary := m.Boundary()
	related := "rel-" + boundary

	// exactly one related section nested under the outer boundary
	assert.Equal(t, 1, strings.Count(bodyStr, "Content-Type: multipart/related"))
	assert.Contains(t, bodyStr, "--"+boundary+"\r\nContent-Type: multipart/related; boundary=\""+related+"\"")
	assert.Contains(t, bodyStr, "--"+related+"--")

	// the inline attachment lives under the related boundary
	inlineIdx := strings.Index(bodyStr, `name="logo.png"`)
	relatedClose := strings.Index(bodyStr, "--"+related+"--")
	require.Greater(t, inlineIdx, -1)
	assert.Less(t, inlineIdx, relatedClose)
	assert.Contains(t, bodyStr, "Content-ID: <logo>")
	assert.Contains(t, bodyStr, "Content-Disposition: inline")

	// the regular attachment appears after the related part closes,
	// under the outer boundary only
	regularIdx := strings.Index(bodyStr, `name="report.txt"`)
	require.Greater(t, regularIdx, -1)
	assert.Greater(t, regularIdx, relatedClose)
	assert.Contains(t, bodyStr, "--"+boundary+"--")
}

func TestBothFormatWithAttachmentsUsesAltBoundary(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetFormat(message.FormatBoth).
		SetBodyText("plain").
		SetBodyHTML("<p>html</p>").
		AddAttachment(message.Attachment{Name: "a.txt", Content: []byte("a"), MimeType: "text/plain"})

	lines, err := m.FullBody()
	require.NoError(t, err)
	bodyStr := strings.Join(lines, "\r\n")

	assert.Contains(t, bodyStr, `Content-Type: multipart/alternative; boundary="alt-boundary"`)
	assert.Contains(t, bodyStr, "--alt-boundary\r\nContent-Type: text/plain")
	assert.Contains(t, bodyStr, "--alt-boundary\r\nContent-Type: text/html")
	assert.Contains(t, bodyStr, "--alt-boundary--")
}

func TestAttachmentWithoutContentFails(t *testing.T) {
	t.Parallel()

	m := newMessage().
		AddAttachment(message.Attachment{Name: "ghost.txt"})

	_, err := m.FullBody()
	assert.True(t, errors.Is(err, message.ErrInvalidAttachment))
	assert.Contains(t, err.Error(), "ghost.txt")
}

func TestAttachmentFromFile(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/attach.txt"
	require.NoError(t, writeFile(path, "file contents"))

	m := newMessage().
		SetBodyText("body").
		AddAttachment(message.Attachment{Name: "attach.txt", File: path})

	lines, err := m.FullBody()
	require.NoError(t, err)
	bodyStr := strings.Join(lines, "\r\n")

	assert.Contains(t, bodyStr, base64.StdEncoding.EncodeToString([]byte("file contents")))
	// sniffed from content
	assert.Contains(t, bodyStr, "Content-Type: text/plain; charset=utf-8; name=\"attach.txt\"")
}

func TestAssemblyIsRepeatable(t *testing.T) {
	t.Parallel()

	m := newMessage().
		SetFrom("from@example.com", "").
		AddTo("to@example.com", "").
		SetSubject("Stable").
		SetBodyText("same output")

	first, err := m.BodyString()
	require.NoError(t, err)
	second, err := m.BodyString()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStringJoinsHeadersAndBody(t *testing.T) {
	t.Parallel()

	m := newMessage().
		AddTo("to@example.com", "").
		SetBodyText("hi")

	s, err := m.String()
	require.NoError(t, err)
	assert.Contains(t, s, "\r\n\r\n")
	head, _, found := strings.Cut(s, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, head, "To: to@example.com")
}
