// Package body prepares message body content for the wire: line-ending
// normalization, charset transcoding, and word wrapping to the RFC 5322
// line-length limit. The wrapper is HTML-aware in one specific way: a
// <...> tag span is never split across two output lines.
package body

import (
	"regexp"
	"strings"

	"github.com/fyrelib/go-mail/charset"
)

// DefaultLimit is the RFC 5322 maximum length of a message line,
// excluding the CRLF.
const DefaultLimit = 998

var tags = regexp.MustCompile(`<[^>]*>`)

// Prepare normalizes the line endings of content, transcodes it from
// the application charset into the message charset, wraps it to
// DefaultLimit, strips trailing blank lines, and returns the result
// split into lines.
func Prepare(content, fromCharset, toCharset string) ([]string, error) {
	content = normalizeBreaks(content)

	content, err := charset.Transcode(content, fromCharset, toCharset)
	if err != nil {
		return nil, err
	}

	joined := strings.Join(Wrap(content, DefaultLimit), "\n")
	joined = strings.TrimRight(joined, "\n")

	return strings.Split(joined, "\n"), nil
}

// Wrap splits text into lines no longer than limit. Lines already
// within the limit pass through unchanged, as do empty lines. Overlong
// lines are cut at whitespace, with two exceptions that may exceed the
// limit: a single word longer than the limit is kept whole, and an HTML
// tag longer than the limit is emitted on its own line rather than
// split.
func Wrap(text string, limit int) []string {
	lines := strings.Split(normalizeBreaks(text), "\n")

	formatted := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) <= limit {
			formatted = append(formatted, line)
			continue
		}

		parts := splitTags(line)

		current := ""
		pending := true
		for _, part := range parts {
			if !pending {
				current = ""
				pending = true
			}

			if len(current)+len(part) <= limit {
				current += part
				continue
			}

			if part[0] == '<' && part[len(part)-1] == '>' {
				formatted = append(formatted, current)
				if len(part) <= limit {
					current = part
				} else {
					// the tag alone exceeds the limit; emit it whole
					formatted = append(formatted, part)
					pending = false
				}
				continue
			}

			formatted = append(formatted, current)
			wrapped := wordWrap(part, limit)
			current = wrapped[len(wrapped)-1]
			formatted = append(formatted, wrapped[:len(wrapped)-1]...)
		}

		if pending {
			formatted = append(formatted, current)
		}
	}

	return formatted
}

// normalizeBreaks reduces CRLF and bare CR line endings to LF.
func normalizeBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// splitTags cuts a line into alternating runs of plain text and <...>
// tag spans, dropping empty runs.
func splitTags(line string) []string {
	spans := tags.FindAllStringIndex(line, -1)

	parts := make([]string, 0, 2*len(spans)+1)
	last := 0
	for _, span := range spans {
		if span[0] > last {
			parts = append(parts, line[last:span[0]])
		}
		parts = append(parts, line[span[0]:span[1]])
		last = span[1]
	}
	if last < len(line) {
		parts = append(parts, line[last:])
	}

	return parts
}

// wordWrap greedily fills lines with space-separated words up to limit.
// A word longer than the limit occupies a line by itself, uncut. The
// result always has at least one element.
func wordWrap(s string, limit int) []string {
	words := strings.Split(s, " ")

	lines := make([]string, 0, len(s)/limit+1)
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= limit {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}

	return append(lines, current)
}
