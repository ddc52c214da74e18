// Package header renders text for inclusion in message header fields.
// Display text that is not safe to place in a raw header is transcoded
// into the message charset and wrapped in RFC 2047 encoded words.
package header

import (
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/fyrelib/go-mail/address"
	"github.com/fyrelib/go-mail/charset"
)

// specials matches any character that disqualifies a display name from
// appearing unquoted in an address header.
var specials = regexp.MustCompile(`[^A-Za-z0-9 ]`)

// EncodeText prepares display text (a subject, a display name) for a
// header field. Text containing only printable ASCII is returned
// unchanged. Anything else is transcoded into cs and rendered as one or
// more B-encoded words labeled with that charset.
func EncodeText(text, cs string) (string, error) {
	encoded, err := charset.Encode(cs, text)
	if err != nil {
		return "", fmt.Errorf("header: encoding %q: %w", cs, err)
	}

	return mime.BEncoding.Encode(cs, string(encoded)), nil
}

// FormatAddressList renders an address list as a single header field
// value. Entries without a distinct display name appear as the bare
// address. Names are encoded via EncodeText; names that remain raw but
// contain characters outside letters, digits and spaces are quoted with
// backslash-escaped quotes. Entries are joined with ", " in list order.
func FormatAddressList(list *address.List, cs string) (string, error) {
	entries := list.Entries()
	formatted := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == entry.Email {
			formatted = append(formatted, entry.Email)
			continue
		}

		name, err := EncodeText(entry.Name, cs)
		if err != nil {
			return "", err
		}

		if name == entry.Name && specials.MatchString(name) {
			name = `"` + quoteEscaper.Replace(name) + `"`
		}

		formatted = append(formatted, name+" <"+entry.Email+">")
	}

	return strings.Join(formatted, ", "), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
