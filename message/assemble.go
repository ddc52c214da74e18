package message

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/fyrelib/go-mail/address"
	"github.com/fyrelib/go-mail/body"
	"github.com/fyrelib/go-mail/header"
)

// base64LineLength is the RFC 2045 chunk length for base64 body lines.
const base64LineLength = 76

// altBoundary is the literal boundary used for the nested alternative
// part when a both-format message also carries attachments. It is not
// derived from the message boundary; changing it changes wire output.
const altBoundary = "alt-boundary"

// FullHeaders assembles the complete ordered header block: address
// headers (omitted when their list is empty), a conditional Sender, a
// fresh Date, the memoized Message-ID, X-Priority when set, the encoded
// Subject, MIME-Version, the format-dependent Content-Type, the base64
// Content-Transfer-Encoding, and finally any caller-supplied headers.
func (m *Message) FullHeaders() ([]Header, error) {
	if m.err != nil {
		return nil, m.err
	}

	addressHeaders := []struct {
		name string
		list *address.List
	}{
		{"From", m.from},
		{"Reply-To", m.replyTo},
		{"Disposition-Notification-To", m.readReceipt},
		{"Return-Path", m.returnPath},
		{"To", m.to},
		{"Cc", m.cc},
		{"Bcc", m.bcc},
	}

	headers := make([]Header, 0, len(addressHeaders)+8+len(m.headers))
	for _, ah := range addressHeaders {
		if ah.list.Len() == 0 {
			continue
		}

		value, err := header.FormatAddressList(ah.list, m.charset)
		if err != nil {
			return nil, err
		}
		headers = append(headers, Header{Name: ah.name, Values: []string{value}})
	}

	if m.sender.FirstEmail() != m.from.FirstEmail() && m.sender.Len() > 0 {
		value, err := header.FormatAddressList(m.sender, m.charset)
		if err != nil {
			return nil, err
		}
		headers = append(headers, Header{Name: "Sender", Values: []string{value}})
	}

	headers = append(headers,
		Header{Name: "Date", Values: []string{time.Now().Format(time.RFC1123Z)}},
		Header{Name: "Message-ID", Values: []string{m.MessageID()}},
	)

	if m.priority != 0 {
		headers = append(headers, Header{Name: "X-Priority", Values: []string{strconv.Itoa(m.priority)}})
	}

	subject, err := header.EncodeText(m.subject, m.charset)
	if err != nil {
		return nil, err
	}

	headers = append(headers,
		Header{Name: "Subject", Values: []string{subject}},
		Header{Name: "MIME-Version", Values: []string{"1.0"}},
		Header{Name: "Content-Type", Values: []string{m.contentType()}},
		Header{Name: "Content-Transfer-Encoding", Values: []string{"base64"}},
	)

	return append(headers, m.Headers()...), nil
}

func (m *Message) contentType() string {
	switch {
	case len(m.attachments) > 0:
		return `multipart/mixed; boundary="` + m.Boundary() + `"`
	case m.format == FormatBoth:
		return `multipart/alternative; boundary="` + m.Boundary() + `"`
	case m.format == FormatHTML:
		return "text/html; charset=" + m.charset
	default:
		return "text/plain; charset=" + m.charset
	}
}

// HeaderString renders the assembled headers as CRLF-joined Name: value
// lines. Headers with empty values are skipped; multi-valued headers
// render as repeated lines.
func (m *Message) HeaderString() (string, error) {
	headers, err := m.FullHeaders()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(headers))
	for _, h := range headers {
		for _, value := range h.Values {
			if value == "" {
				continue
			}
			lines = append(lines, h.Name+": "+value)
		}
	}

	return strings.Join(lines, "\r\n"), nil
}

// FullBody assembles the message body as a sequence of wire lines.
//
// The structure nests at most three levels: the outer mixed or
// alternative boundary, a related part when inline attachments are
// present, and an alternative part when both formats combine with
// attachments. Text and HTML bodies are prepared, base64-encoded and
// chunked; inline attachments render under the related boundary,
// regular attachments under the outer boundary.
func (m *Message) FullBody() ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}

	hasAttachments := len(m.attachments) > 0
	hasInline := false
	for _, a := range m.attachments {
		if a.inline() {
			hasInline = true
			break
		}
	}
	multiPart := hasAttachments || m.format == FormatBoth

	boundary := m.Boundary()
	textBoundary := boundary
	relatedBoundary := boundary

	var lines []string

	if hasInline {
		relatedBoundary = "rel-" + boundary
		textBoundary = relatedBoundary

		lines = append(lines,
			"--"+boundary,
			`Content-Type: multipart/related; boundary="`+relatedBoundary+`"`,
			"",
		)
	}

	if m.format == FormatBoth && hasAttachments {
		textBoundary = altBoundary

		lines = append(lines,
			"--"+relatedBoundary,
			`Content-Type: multipart/alternative; boundary="`+altBoundary+`"`,
			"",
		)
	}

	if m.format == FormatText || m.format == FormatBoth {
		part, err := m.bodyPart(m.bodyText, "text/plain", textBoundary, multiPart)
		if err != nil {
			return nil, err
		}
		lines = append(lines, part...)
	}

	if m.format == FormatHTML || m.format == FormatBoth {
		part, err := m.bodyPart(m.bodyHTML, "text/html", textBoundary, multiPart)
		if err != nil {
			return nil, err
		}
		lines = append(lines, part...)
	}

	if textBoundary != relatedBoundary {
		lines = append(lines, "--"+textBoundary+"--", "")
	}

	if hasInline {
		attached, err := m.attachmentLines(relatedBoundary, true)
		if err != nil {
			return nil, err
		}
		lines = append(lines, attached...)
		lines = append(lines, "", "--"+relatedBoundary+"--", "")
	}

	if hasAttachments {
		attached, err := m.attachmentLines(boundary, false)
		if err != nil {
			return nil, err
		}
		lines = append(lines, attached...)
	}

	if multiPart {
		lines = append(lines, "", "--"+boundary+"--", "")
	}

	return lines, nil
}

// BodyString renders the assembled body as CRLF-joined lines.
func (m *Message) BodyString() (string, error) {
	lines, err := m.FullBody()
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\r\n"), nil
}

// String renders the complete wire form of the message: the header
// block, a blank line, and the body.
func (m *Message) String() (string, error) {
	headers, err := m.HeaderString()
	if err != nil {
		return "", err
	}
	bodyStr, err := m.BodyString()
	if err != nil {
		return "", err
	}
	return headers + "\r\n\r\n" + bodyStr, nil
}

// bodyPart renders one text or HTML part: an optional part header when
// the message is multipart, then the prepared content base64-encoded in
// 76-column chunks, then two blank lines.
func (m *Message) bodyPart(content, contentType, boundary string, multiPart bool) ([]string, error) {
	var lines []string
	if multiPart {
		lines = append(lines,
			"--"+boundary,
			"Content-Type: "+contentType+"; charset="+m.charset,
			"Content-Transfer-Encoding: base64",
			"",
		)
	}

	prepared, err := body.Prepare(content, m.appCharset, m.charset)
	if err != nil {
		return nil, err
	}

	lines = append(lines, base64Lines([]byte(strings.Join(prepared, "\r\n")))...)
	return append(lines, "", ""), nil
}

// attachmentLines renders either the inline or the regular attachments,
// in insertion order, under the given boundary.
func (m *Message) attachmentLines(boundary string, inline bool) ([]string, error) {
	var lines []string
	for _, a := range m.attachments {
		if a.inline() != inline {
			continue
		}

		a, err := a.resolve()
		if err != nil {
			return nil, err
		}

		lines = append(lines,
			"--"+boundary,
			`Content-Type: `+a.MimeType+`; name="`+a.Name+`"`,
			"Content-Disposition: "+a.Disposition,
			"Content-Transfer-Encoding: base64",
		)

		if a.ContentID != "" {
			lines = append(lines, "Content-ID: <"+a.ContentID+">")
		}

		lines = append(lines, "")
		lines = append(lines, base64Lines(a.Content)...)
		lines = append(lines, "")
	}

	return lines, nil
}

// base64Lines encodes data and splits the encoding into 76-column
// lines.
func base64Lines(data []byte) []string {
	encoded := base64.StdEncoding.EncodeToString(data)

	lines := make([]string, 0, len(encoded)/base64LineLength+1)
	for len(encoded) > base64LineLength {
		lines = append(lines, encoded[:base64LineLength])
		encoded = encoded[base64LineLength:]
	}
	return append(lines, encoded)
}
