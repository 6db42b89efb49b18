package access

import (
	"errors"
	"strings"
)

// Default allow-list entries.
var (
	DefaultEmails  = []string{"philip@lightmilemedia.com"}
	DefaultDomains = []string{"evolutionofsmooth.com"}
)

// Domain errors
var (
	ErrNameRequired     = errors.New("please enter your first and last name")
	ErrAccessRestricted = errors.New("access restricted: this experience is limited to authorized email addresses")
)

// AllowList admits exact email addresses and whole email domains.
// Matching is case-insensitive.
type AllowList struct {
	emails  map[string]bool
	domains map[string]bool
}

// NewAllowList builds an allow-list from raw entries.
// PRE: none; blank entries are ignored
// POST: entries are stored lower-cased and trimmed; a leading "@" on a domain is dropped
func NewAllowList(emails, domains []string) AllowList {
	al := AllowList{
		emails:  make(map[string]bool, len(emails)),
		domains: make(map[string]bool, len(domains)),
	}
	for _, e := range emails {
		if e = Normalize(e); e != "" {
			al.emails[e] = true
		}
	}
	for _, d := range domains {
		d = strings.TrimPrefix(Normalize(d), "@")
		if d != "" {
			al.domains[d] = true
		}
	}
	return al
}

// DefaultAllowList returns the built-in allow-list.
func DefaultAllowList() AllowList {
	return NewAllowList(DefaultEmails, DefaultDomains)
}

// Allows reports whether email is on the list.
// INVARIANT: AllowList is not mutated
func (al AllowList) Allows(email string) bool {
	email = Normalize(email)
	if email == "" {
		return false
	}
	if al.emails[email] {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	return al.domains[email[at+1:]]
}

// Normalize lower-cases and trims an email address or domain.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
