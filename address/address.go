// Package address provides validated, insertion-ordered email address
// lists. A List is the backing store for every addressing field of a
// message (To, Cc, Bcc, Reply-To, and so on), so the iteration order of
// a List is the order addresses appear in the rendered header.
package address

import (
	"github.com/zostay/go-addr/pkg/addr"
)

// Entry is a single email/display-name pair held by a List. When no
// display name was given for an address, Name holds the address itself.
type Entry struct {
	Email string
	Name  string
}

// Validate checks that the given string is a syntactically valid
// RFC 5322 addr-spec. It returns the address and true when valid, or an
// empty string and false when not. Invalid input is never an error:
// callers are expected to drop it silently.
func Validate(email string) (string, bool) {
	spec, err := addr.ParseEmailAddrSpec(email)
	if err != nil {
		return "", false
	}
	return spec.String(), true
}

// List is an ordered mapping of email address to display name. Each
// address appears at most once. Re-adding an address that is already
// present overwrites its display name but keeps its original position;
// downstream header ordering depends on this.
//
// The zero value is not usable; create lists with NewList or Parse.
type List struct {
	keys  []string
	names map[string]string
}

// NewList returns an empty List.
func NewList() *List {
	return &List{names: map[string]string{}}
}

// Parse builds a List from bare email addresses. Each address is
// validated and invalid addresses are dropped. The display name of each
// entry defaults to the address itself.
func Parse(emails ...string) *List {
	l := NewList()
	for _, email := range emails {
		l.Add(email, "")
	}
	return l
}

// Merge returns a new List holding the entries of each given list in
// order. Later lists overwrite the display names of addresses they
// share with earlier ones without moving them.
func Merge(lists ...*List) *List {
	merged := NewList()
	for _, l := range lists {
		if l == nil {
			continue
		}
		for _, email := range l.keys {
			merged.insert(email, l.names[email])
		}
	}
	return merged
}

// Add validates email and inserts or overwrites its entry. An empty
// name leaves the display name defaulted to the address. Invalid
// addresses are a no-op. Add returns the List for chaining.
func (l *List) Add(email, name string) *List {
	email, ok := Validate(email)
	if !ok {
		return l
	}
	if name == "" {
		name = email
	}
	l.insert(email, name)
	return l
}

func (l *List) insert(email, name string) {
	if _, exists := l.names[email]; !exists {
		l.keys = append(l.keys, email)
	}
	l.names[email] = name
}

// Len returns the number of entries in the list.
func (l *List) Len() int {
	return len(l.keys)
}

// Has reports whether the list contains the given address.
func (l *List) Has(email string) bool {
	_, ok := l.names[email]
	return ok
}

// Name returns the display name stored for the given address.
func (l *List) Name(email string) (string, bool) {
	name, ok := l.names[email]
	return name, ok
}

// Emails returns the addresses in insertion order.
func (l *List) Emails() []string {
	emails := make([]string, len(l.keys))
	copy(emails, l.keys)
	return emails
}

// Entries returns the email/name pairs in insertion order.
func (l *List) Entries() []Entry {
	entries := make([]Entry, len(l.keys))
	for i, email := range l.keys {
		entries[i] = Entry{Email: email, Name: l.names[email]}
	}
	return entries
}

// First returns the first entry of the list, if any.
func (l *List) First() (Entry, bool) {
	if len(l.keys) == 0 {
		return Entry{}, false
	}
	return Entry{Email: l.keys[0], Name: l.names[l.keys[0]]}, true
}

// FirstEmail returns the address of the first entry or an empty string
// when the list is empty.
func (l *List) FirstEmail() string {
	if len(l.keys) == 0 {
		return ""
	}
	return l.keys[0]
}
