package email

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// Branding used in appreciation mail.
const (
	BrandName       = "eos Products"
	BrandColor      = "#E91E8C"
	DefaultFromAddr = "onboarding@resend.dev"
)

// Domain errors
var (
	ErrEmptyRecipient = errors.New("recipient is required")
	ErrEmptySubject   = errors.New("email subject is required")
	ErrEmptyBody      = errors.New("email body is required")
	ErrEmptySender    = errors.New("sender email is required")
)

// Appreciation is a visibility note to be delivered to a colleague.
type Appreciation struct {
	SenderEmail    string `json:"sender_email"`
	SenderName     string `json:"sender_name"`
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
}

// Validate checks the required fields are present.
// PRE: Appreciation struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Appreciation) Validate() error {
	if strings.TrimSpace(a.RecipientEmail) == "" {
		return ErrEmptyRecipient
	}
	if strings.TrimSpace(a.SenderEmail) == "" {
		return ErrEmptySender
	}
	if strings.TrimSpace(a.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(a.Message) == "" {
		return ErrEmptyBody
	}
	return nil
}

// DisplayName is the sender name, or the sender email when no name is known.
func (a *Appreciation) DisplayName() string {
	if name := strings.TrimSpace(a.SenderName); name != "" {
		return name
	}
	return strings.TrimSpace(a.SenderEmail)
}

// Message is a fully composed email ready for a provider.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Compose renders the appreciation into a deliverable message. fromAddr is
// the verified sending address; replies go to the sender.
// PRE: a.Validate() returns nil
// POST: From is "<name> via eos Products <fromAddr>"; user text is HTML-escaped
func Compose(a Appreciation, fromAddr string) (Message, error) {
	if err := a.Validate(); err != nil {
		return Message{}, err
	}
	if fromAddr == "" {
		fromAddr = DefaultFromAddr
	}
	name := a.DisplayName()
	return Message{
		From:    fmt.Sprintf("%s via %s <%s>", name, BrandName, fromAddr),
		To:      strings.TrimSpace(a.RecipientEmail),
		ReplyTo: strings.TrimSpace(a.SenderEmail),
		Subject: a.Subject,
		HTML:    renderBody(a.Message, name),
	}, nil
}

func renderBody(message, name string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; max-width: 600px; margin: 0 auto; padding: 32px;">`)
	b.WriteString(`<p style="font-size: 16px; line-height: 1.6; color: #333; white-space: pre-wrap;">`)
	b.WriteString(html.EscapeString(message))
	b.WriteString(`</p>`)
	b.WriteString(`<hr style="border: none; border-top: 1px solid #eee; margin: 24px 0;" />`)
	b.WriteString(`<p style="font-size: 13px; color: #999;">Sent with appreciation by `)
	b.WriteString(html.EscapeString(name))
	fmt.Fprintf(&b, ` via <strong style="color: %s;">%s</strong></p>`, BrandColor, BrandName)
	b.WriteString(`</div>`)
	return b.String()
}
