package mailer

import (
	"context"
	"errors"
)

// Sender defines the minimal interface that delivery providers implement.
// It accepts a fully-prepared Message and hands it to the mail relay.
type Sender interface {
	// Send delivers one message. Implementations wrap failures with
	// Transient or Permanent so callers can decide whether to retry.
	Send(ctx context.Context, msg *Message) error
}

// SendError carries a transport failure together with its retry
// classification.
type SendError struct {
	Err       error
	Transient bool
}

func (e *SendError) Error() string { return e.Err.Error() }

func (e *SendError) Unwrap() error { return e.Err }

// Transient marks a transport error as retryable (timeouts, 4xx SMTP
// replies, throttling). Returns nil if err is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &SendError{Err: err, Transient: true}
}

// Permanent marks a transport error as non-retryable (rejected mailbox,
// rejected credentials). Returns nil if err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &SendError{Err: err}
}

// IsTransient reports whether err was classified as retryable by a Sender.
// Unclassified errors are treated as permanent.
func IsTransient(err error) bool {
	var se *SendError
	return errors.As(err, &se) && se.Transient
}
