// Package message provides the Message builder and its serialization
// into a full RFC 2822 header block and a MIME body. A Message is
// populated through fluent setters, then consumed by a delivery handler;
// producing the header and body strings is pure and may be repeated with
// identical results (the boundary and message id memoize on first use).
package message

import (
	"errors"
	"fmt"

	"github.com/fyrelib/go-mail/address"
)

// Format selects which bodies a message carries on the wire.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatBoth Format = "both"
)

// Errors reported during message construction and assembly.
var (
	// ErrInvalidFormat is returned when a format outside text, html and
	// both is given to SetFormat.
	ErrInvalidFormat = errors.New("message: invalid email format")

	// ErrInvalidAttachment is returned during body assembly when an
	// attachment has neither inline content nor a readable file.
	ErrInvalidAttachment = errors.New("message: invalid attachment")

	// ErrNoSender is returned by Send when the message is not bound to
	// a delivery handler.
	ErrNoSender = errors.New("message: no delivery handler bound")
)

// Sender delivers an assembled message. It is implemented by the
// transport handlers of this module.
type Sender interface {
	Send(*Message) error
}

// Header is a single name/value header field. Values holds more than
// one entry when the same header is to be emitted as repeated lines.
type Header struct {
	Name   string
	Values []string
}

// Options configures a new Message. The zero value yields a utf-8
// message attributed to localhost with no delivery handler bound.
type Options struct {
	// Charset is the message charset used on the wire.
	Charset string

	// AppCharset is the charset body content is supplied in.
	AppCharset string

	// Client is the hostname used in the Message-ID.
	Client string

	// Sender is the delivery handler Send delegates to.
	Sender Sender
}

// Message is a mutable email message under construction. Setters return
// the same instance for chaining. A Message instance must be confined
// to one goroutine; distinct instances are independent.
type Message struct {
	to          *address.List
	cc          *address.List
	bcc         *address.List
	replyTo     *address.List
	readReceipt *address.List
	returnPath  *address.List
	from        *address.List
	sender      *address.List

	subject    string
	format     Format
	charset    string
	appCharset string
	client     string
	bodyText   string
	bodyHTML   string
	priority   int

	headers     []Header
	headerIndex map[string]int

	attachments []Attachment
	attachIndex map[string]int

	boundary  string
	messageID string

	mailer Sender
	err    error
}

// New creates an empty Message from opts.
func New(opts Options) *Message {
	charset := opts.Charset
	if charset == "" {
		charset = "utf-8"
	}
	appCharset := opts.AppCharset
	if appCharset == "" {
		appCharset = "utf-8"
	}
	client := opts.Client
	if client == "" {
		client = "localhost"
	}

	return &Message{
		to:          address.NewList(),
		cc:          address.NewList(),
		bcc:         address.NewList(),
		replyTo:     address.NewList(),
		readReceipt: address.NewList(),
		returnPath:  address.NewList(),
		from:        address.NewList(),
		sender:      address.NewList(),
		format:      FormatText,
		charset:     charset,
		appCharset:  appCharset,
		client:      client,
		headerIndex: map[string]int{},
		attachIndex: map[string]int{},
		mailer:      opts.Sender,
	}
}

// Err returns the first builder error recorded so far, if any. The same
// error also surfaces from assembly and Send.
func (m *Message) Err() error {
	return m.err
}

// Send delivers the message through its bound handler.
func (m *Message) Send() error {
	if m.err != nil {
		return m.err
	}
	if m.mailer == nil {
		return ErrNoSender
	}
	return m.mailer.Send(m)
}

// To returns the To address list.
func (m *Message) To() *address.List { return m.to }

// Cc returns the Cc address list.
func (m *Message) Cc() *address.List { return m.cc }

// Bcc returns the Bcc address list.
func (m *Message) Bcc() *address.List { return m.bcc }

// ReplyTo returns the Reply-To address list.
func (m *Message) ReplyTo() *address.List { return m.replyTo }

// ReadReceipt returns the Disposition-Notification-To address list.
func (m *Message) ReadReceipt() *address.List { return m.readReceipt }

// ReturnPath returns the Return-Path address list.
func (m *Message) ReturnPath() *address.List { return m.returnPath }

// From returns the From address list.
func (m *Message) From() *address.List { return m.from }

// Sender returns the Sender address list.
func (m *Message) Sender() *address.List { return m.sender }

// Recipients returns the union of To, Cc and Bcc, in that order.
func (m *Message) Recipients() *address.List {
	return address.Merge(m.to, m.cc, m.bcc)
}

// AddTo adds a To recipient. Invalid addresses are dropped silently; an
// empty name defaults the display name to the address.
func (m *Message) AddTo(email, name string) *Message {
	m.to.Add(email, name)
	return m
}

// AddCc adds a Cc recipient.
func (m *Message) AddCc(email, name string) *Message {
	m.cc.Add(email, name)
	return m
}

// AddBcc adds a Bcc recipient.
func (m *Message) AddBcc(email, name string) *Message {
	m.bcc.Add(email, name)
	return m
}

// AddReplyTo adds a Reply-To address.
func (m *Message) AddReplyTo(email, name string) *Message {
	m.replyTo.Add(email, name)
	return m
}

// SetTo replaces the To list.
func (m *Message) SetTo(list *address.List) *Message {
	m.to = orEmpty(list)
	return m
}

// SetCc replaces the Cc list.
func (m *Message) SetCc(list *address.List) *Message {
	m.cc = orEmpty(list)
	return m
}

// SetBcc replaces the Bcc list.
func (m *Message) SetBcc(list *address.List) *Message {
	m.bcc = orEmpty(list)
	return m
}

// SetReplyTo replaces the Reply-To list.
func (m *Message) SetReplyTo(list *address.List) *Message {
	m.replyTo = orEmpty(list)
	return m
}

// SetFrom sets the From address, replacing any previous one.
func (m *Message) SetFrom(email, name string) *Message {
	m.from = address.NewList().Add(email, name)
	return m
}

// SetSender sets the Sender address, replacing any previous one.
func (m *Message) SetSender(email, name string) *Message {
	m.sender = address.NewList().Add(email, name)
	return m
}

// SetReturnPath sets the envelope return path, replacing any previous
// one.
func (m *Message) SetReturnPath(email, name string) *Message {
	m.returnPath = address.NewList().Add(email, name)
	return m
}

// SetReadReceipt sets the read-receipt address, replacing any previous
// one.
func (m *Message) SetReadReceipt(email, name string) *Message {
	m.readReceipt = address.NewList().Add(email, name)
	return m
}

// Subject returns the subject.
func (m *Message) Subject() string { return m.subject }

// SetSubject sets the subject.
func (m *Message) SetSubject(subject string) *Message {
	m.subject = subject
	return m
}

// Charset returns the message charset.
func (m *Message) Charset() string { return m.charset }

// SetCharset sets the message charset used on the wire.
func (m *Message) SetCharset(charset string) *Message {
	m.charset = charset
	return m
}

// Format returns the message format.
func (m *Message) Format() Format { return m.format }

// SetFormat sets the message format. A format outside text, html and
// both records ErrInvalidFormat, which surfaces from assembly and Send.
func (m *Message) SetFormat(format Format) *Message {
	switch format {
	case FormatText, FormatHTML, FormatBoth:
		m.format = format
	default:
		if m.err == nil {
			m.err = fmt.Errorf("%w: %q", ErrInvalidFormat, string(format))
		}
	}
	return m
}

// Priority returns the message priority, zero when unset.
func (m *Message) Priority() int { return m.priority }

// SetPriority sets the X-Priority value. Zero clears it.
func (m *Message) SetPriority(priority int) *Message {
	m.priority = priority
	return m
}

// BodyText returns the plain-text body.
func (m *Message) BodyText() string { return m.bodyText }

// SetBodyText sets the plain-text body.
func (m *Message) SetBodyText(content string) *Message {
	m.bodyText = content
	return m
}

// BodyHTML returns the HTML body.
func (m *Message) BodyHTML() string { return m.bodyHTML }

// SetBodyHTML sets the HTML body.
func (m *Message) SetBodyHTML(content string) *Message {
	m.bodyHTML = content
	return m
}

// Headers returns the additional caller-supplied headers, in insertion
// order.
func (m *Message) Headers() []Header {
	headers := make([]Header, len(m.headers))
	copy(headers, m.headers)
	return headers
}

// AddHeader adds an additional header appended after the generated
// ones. Multiple values render as repeated header lines. Re-adding a
// header name overwrites its values in place.
func (m *Message) AddHeader(name string, values ...string) *Message {
	if i, ok := m.headerIndex[name]; ok {
		m.headers[i].Values = values
		return m
	}
	m.headerIndex[name] = len(m.headers)
	m.headers = append(m.headers, Header{Name: name, Values: values})
	return m
}

// SetHeaders replaces all additional headers.
func (m *Message) SetHeaders(headers []Header) *Message {
	m.headers = nil
	m.headerIndex = map[string]int{}
	for _, h := range headers {
		m.AddHeader(h.Name, h.Values...)
	}
	return m
}

// Attachments returns the attachments in insertion order.
func (m *Message) Attachments() []Attachment {
	attachments := make([]Attachment, len(m.attachments))
	copy(attachments, m.attachments)
	return attachments
}

// AddAttachment adds an attachment keyed by its Name. Re-adding a name
// overwrites the attachment in place.
func (m *Message) AddAttachment(a Attachment) *Message {
	if i, ok := m.attachIndex[a.Name]; ok {
		m.attachments[i] = a
		return m
	}
	m.attachIndex[a.Name] = len(m.attachments)
	m.attachments = append(m.attachments, a)
	return m
}

// SetAttachments replaces all attachments.
func (m *Message) SetAttachments(attachments []Attachment) *Message {
	m.attachments = nil
	m.attachIndex = map[string]int{}
	for _, a := range attachments {
		m.AddAttachment(a)
	}
	return m
}

func orEmpty(list *address.List) *address.List {
	if list == nil {
		return address.NewList()
	}
	return list
}
