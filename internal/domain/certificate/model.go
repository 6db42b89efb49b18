package certificate

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fixed certificate text.
const (
	Heading   = "CERTIFICATE OF COMPLETION"
	Subtitle  = "the inventor's playbook"
	Preamble  = "This certifies that"
	Body      = "has successfully completed all exercises in"
	Programme = "The Inventor's Playbook: A Cinematic Activation"
	Footer    = "lightmile media | eos Products"
	Filename  = "inventors-playbook-certificate.pdf"
	DateFmt   = "January 2, 2006"
)

// ErrEmptyName is returned when no display name can be derived.
var ErrEmptyName = errors.New("certificate needs a recipient name")

// Content is everything printed on a certificate.
type Content struct {
	Heading   string
	Subtitle  string
	Preamble  string
	Name      string
	Body      string
	Programme string
	Date      string
	Footer    string
}

// New builds certificate content for name, dated on issued.
// PRE: name is non-blank
// POST: Fixed text blocks populated; Date formatted like "January 2, 2006"
func New(name string, issued time.Time) (Content, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Content{}, ErrEmptyName
	}
	return Content{
		Heading:   Heading,
		Subtitle:  Subtitle,
		Preamble:  Preamble,
		Name:      name,
		Body:      Body,
		Programme: Programme,
		Date:      issued.Format(DateFmt),
		Footer:    Footer,
	}, nil
}

// DisplayName picks the name to print: title-cased "First Last" when any
// name is known, otherwise the email address unchanged.
func DisplayName(first, last, email string) string {
	full := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if full == "" {
		return strings.TrimSpace(email)
	}
	return cases.Title(language.English).String(full)
}
