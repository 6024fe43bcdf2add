// Package ses implements mailer.Sender using AWS Simple Email Service.
package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

// Config holds SES provider configuration.
// Embed this in your app config for env parsing.
type Config struct {
	SenderEmail string `env:"SES_FROM_EMAIL"`
	SenderName  string `env:"SES_FROM_NAME"`
}

// Sender delivers messages through AWS SES. Messages with attachments go
// through SendRawEmail since the structured SendEmail API has no
// attachment support.
type Sender struct {
	client *ses.Client
	config Config
}

// New creates a new SES sender from an already-configured SES client.
func New(client *ses.Client, cfg Config) *Sender {
	return &Sender{client: client, config: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) error {
	var err error
	if len(msg.Attachments) > 0 {
		err = s.sendRaw(ctx, msg)
	} else {
		err = s.sendStructured(ctx, msg)
	}
	if err != nil {
		return classify(fmt.Errorf("ses: failed to send email: %w", err), err)
	}
	return nil
}

func (s *Sender) sendStructured(ctx context.Context, msg *mailer.Message) error {
	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.from()),
		Destination: &types.Destination{
			ToAddresses: []string{msg.Recipient.Email},
			CcAddresses: msg.Recipient.CC,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

func (s *Sender) sendRaw(ctx context.Context, msg *mailer.Message) error {
	data, err := mailer.EncodeMessage(msg, s.from())
	if err != nil {
		return err
	}

	_, err = s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: data},
		Source:       aws.String(s.from()),
		Destinations: append([]string{msg.Recipient.Email}, msg.Recipient.CC...),
	})
	return err
}

func (s *Sender) from() string {
	if s.config.SenderName != "" {
		return fmt.Sprintf("%s <%s>", s.config.SenderName, s.config.SenderEmail)
	}
	return s.config.SenderEmail
}

// classify maps SES failures onto the transient/permanent split. Rejected
// messages and unverified identities never succeed on retry; throttling
// and server faults do.
func classify(wrapped, cause error) error {
	var rejected *types.MessageRejected
	if errors.As(cause, &rejected) {
		return mailer.Permanent(wrapped)
	}
	var unverified *types.MailFromDomainNotVerifiedException
	if errors.As(cause, &unverified) {
		return mailer.Permanent(wrapped)
	}

	var apiErr smithy.APIError
	if errors.As(cause, &apiErr) {
		if apiErr.ErrorFault() == smithy.FaultServer || apiErr.ErrorCode() == "Throttling" {
			return mailer.Transient(wrapped)
		}
		return mailer.Permanent(wrapped)
	}

	// No API error means the request never reached SES.
	return mailer.Transient(wrapped)
}
