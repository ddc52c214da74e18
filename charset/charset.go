// Package charset converts message text between character sets. It
// loads the encodings provided with:
//
// * golang.org/x/text/encoding/charmap
// * golang.org/x/text/encoding/ianaindex
//
// This makes compiled binaries considerably larger, but it also means a
// message charset can be pretty much anything a mail system might name,
// not just utf-8 and latin1.
package charset

import (
	"fmt"
	"strings"

	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Encode converts a native (UTF-8) string into bytes in the named
// character set.
func Encode(charset, s string) ([]byte, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	es, err := e.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}

	return []byte(es), nil
}

// Decode converts bytes in the named character set into a native
// (UTF-8) string.
func Decode(charset string, b []byte) (string, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return "", err
	}

	if e == nil {
		return "", fmt.Errorf("no encoding found for charset %q", charset)
	}

	db, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(db), nil
}

// Transcode converts a string of bytes in the from character set into a
// string of bytes in the to character set. It is a no-op when the two
// names match (case-insensitively) or when from is empty.
func Transcode(s, from, to string) (string, error) {
	if from == "" || strings.EqualFold(from, to) {
		return s, nil
	}

	native, err := Decode(from, []byte(s))
	if err != nil {
		return "", err
	}

	b, err := Encode(to, native)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
