package message

import (
	"fmt"
	"net/http"
	"os"
)

// Attachment dispositions.
const (
	DispositionInline     = "inline"
	DispositionAttachment = "attachment"
)

// Attachment is a file carried by a message. Content may be supplied
// directly or loaded lazily from File during assembly. MimeType is
// sniffed from the content when not set. Disposition defaults to inline
// when a ContentID is present and attachment otherwise.
type Attachment struct {
	// Name keys the attachment within the message and appears in the
	// part's Content-Type name parameter.
	Name string

	// Content is the raw attachment data.
	Content []byte

	// File is read at assembly time when Content is empty.
	File string

	// MimeType overrides content sniffing when set.
	MimeType string

	// Disposition is inline or attachment.
	Disposition string

	// ContentID marks the attachment as inline content referenced from
	// an HTML body via cid: links.
	ContentID string
}

// resolve returns a copy of the attachment with content loaded,
// MIME type detected and disposition defaulted. An attachment with
// neither content nor a readable file is an error.
func (a Attachment) resolve() (Attachment, error) {
	if len(a.Content) == 0 {
		if a.File == "" {
			return a, fmt.Errorf("%w: %s", ErrInvalidAttachment, a.Name)
		}

		content, err := os.ReadFile(a.File)
		if err != nil || len(content) == 0 {
			return a, fmt.Errorf("%w: %s", ErrInvalidAttachment, a.Name)
		}
		a.Content = content
	}

	if a.MimeType == "" {
		a.MimeType = http.DetectContentType(a.Content)
	}

	if a.Disposition == "" {
		if a.ContentID != "" {
			a.Disposition = DispositionInline
		} else {
			a.Disposition = DispositionAttachment
		}
	}

	return a, nil
}

// inline reports whether the attachment renders inside the related part
// rather than under the outer mixed boundary.
func (a Attachment) inline() bool {
	return a.ContentID != ""
}
