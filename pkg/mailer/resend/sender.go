// Package resend implements mailer.Sender using the Resend API.
package resend

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

// Config holds Resend provider configuration.
// Embed this in your app config for env parsing.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}

// Sender delivers messages through the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) error {
	from := s.config.SenderEmail
	if s.config.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.SenderName, s.config.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.Recipient.Address()},
		Cc:      msg.Recipient.CC,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if len(msg.Attachments) > 0 {
		req.Attachments = convertAttachments(msg.Attachments)
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return classify(fmt.Errorf("resend: failed to send email: %w", err), err)
	}
	return nil
}

// classify treats network-level failures as transient; an error the API
// itself returned is a rejection of this message and is not retried.
func classify(wrapped, cause error) error {
	var netErr net.Error
	if errors.As(cause, &netErr) {
		return mailer.Transient(wrapped)
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		return mailer.Transient(wrapped)
	}
	return mailer.Permanent(wrapped)
}

func convertAttachments(attachments mailer.AttachmentSet) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		}
	}
	return result
}
