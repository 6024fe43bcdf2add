package mailer

import (
	"fmt"
	"maps"
	"net/mail"
	"strings"
)

// Recipient is one addressee plus the variables used to personalize its
// message. Immutable once constructed; NewRecipient copies the variable map.
type Recipient struct {
	Email     string
	Name      string
	CC        []string
	Variables map[string]string
}

// NewRecipient builds a validated Recipient. It fails with
// ErrInvalidRecipient if the address is empty or structurally malformed.
func NewRecipient(email, name string, vars map[string]string, cc ...string) (Recipient, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Recipient{}, fmt.Errorf("%w: empty address", ErrInvalidRecipient)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Recipient{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecipient, email, err)
	}

	return Recipient{
		Email:     email,
		Name:      strings.TrimSpace(name),
		CC:        append([]string(nil), cc...),
		Variables: maps.Clone(vars),
	}, nil
}

// Address formats the recipient into RFC 5322 form.
// Returns "Name <email>" if a display name is set, otherwise just the email.
func (r Recipient) Address() string {
	if r.Name == "" {
		return r.Email
	}
	return fmt.Sprintf("%s <%s>", r.Name, r.Email)
}

// Attachment is one loaded file shared by every message in a run.
type Attachment struct {
	Filename    string // display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	Content     []byte // raw file content
}

// AttachmentSet is the ordered, run-wide attachment list. It is resolved
// once per run and shared read-only across all rendered messages.
type AttachmentSet []Attachment

// Message is a fully rendered, transport-ready email for one recipient.
// Created fresh per recipient and never mutated afterwards.
type Message struct {
	Recipient   Recipient
	Subject     string
	Text        string // plain-text body
	HTML        string // HTML body, empty when the template has no HTML variant
	Attachments AttachmentSet
}
