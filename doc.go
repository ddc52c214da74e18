// Package mail composes and delivers RFC 2822/MIME email messages: a
// fluent message builder on one side and a small set of interchangeable
// delivery handlers on the other.
//
// Rather than splitting the code along a builder/transport boundary in a
// single package, the code is split according to the part of a message
// each piece is responsible for. The address package holds validated,
// insertion-ordered address lists. The header package renders header
// field text, turning non-ASCII display names and subjects into RFC 2047
// encoded words in the message charset. The body package normalizes,
// transcodes, and wraps body content to the RFC 5322 line limit without
// ever splitting an HTML tag across lines. The message package ties these
// together into the Message builder, which can serialize itself into a
// full header block and a multipart MIME body at any time, as many times
// as you like, with identical results.
//
// Delivery is the job of a handler implementing the Mailer interface.
// Four are provided: smtp speaks the wire protocol directly over a
// socket (EHLO/STARTTLS/AUTH LOGIN/MAIL/RCPT/DATA), sendmail hands the
// assembled message to the local submission binary, ses submits the raw
// message bytes to AWS SES, and debug captures everything in memory for
// inspection in tests.
//
// Handlers are chosen by name through a Manager. The Manager is a plain
// registry object owned by application wiring: constructors are
// registered against a tag, configurations are keyed by handler name,
// and instances are built lazily and shared. Nothing in this module
// relies on process-wide mutable state.
//
//	mgr := mail.NewManager()
//	_ = mgr.Register("smtp", smtp.New)
//	_ = mgr.SetConfig("default", mail.Config{
//		Handler: "smtp",
//		Host:    "127.0.0.1",
//		Port:    587,
//		TLS:     true,
//	})
//
//	mailer, err := mgr.Use("default")
//	if err != nil {
//		// ...
//	}
//
//	err = mailer.Email().
//		SetFrom("news@example.com", "Example News").
//		AddTo("reader@example.net", "").
//		SetSubject("Hello").
//		SetBodyText("This is a test").
//		Send()
package mail
