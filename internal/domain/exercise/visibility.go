package exercise

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Visibility limits.
const (
	DefaultSubject   = "a signal of appreciation"
	MaxSubjectLength = 200
	MaxMessageLength = 5000
	MaxEmailLength   = 255
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Signal is the visibility exercise input.
type Signal struct {
	SenderEmail    string
	SenderName     string
	RecipientEmail string
	Subject        string
	Message        string
}

// WithDefaults trims fields and fills in the default subject.
func (s Signal) WithDefaults() Signal {
	s.SenderEmail = strings.TrimSpace(s.SenderEmail)
	s.RecipientEmail = strings.TrimSpace(s.RecipientEmail)
	s.Subject = strings.TrimSpace(s.Subject)
	if s.Subject == "" {
		s.Subject = DefaultSubject
	}
	return s
}

// Validate checks the signal.
// PRE: WithDefaults has been applied
// POST: Returns nil if both addresses are well formed and the message is non-blank and within limits
func (s Signal) Validate() error {
	if s.SenderEmail == "" || s.RecipientEmail == "" || strings.TrimSpace(s.Message) == "" {
		return ErrIncomplete
	}
	for _, addr := range []string{s.SenderEmail, s.RecipientEmail} {
		if utf8.RuneCountInString(addr) > MaxEmailLength {
			return ErrEmailTooLong
		}
		if !IsEmail(addr) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, addr)
		}
	}
	if utf8.RuneCountInString(s.Subject) > MaxSubjectLength {
		return ErrSubjectTooLong
	}
	if utf8.RuneCountInString(s.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ImpactNote renders the stored note body.
func (s Signal) ImpactNote() string {
	return fmt.Sprintf("Subject: %s\n\n%s", s.Subject, s.Message)
}

// IsEmail reports whether addr has the shape local@domain.tld.
func IsEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}
