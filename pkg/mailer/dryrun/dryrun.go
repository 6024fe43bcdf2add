// Package dryrun implements mailer.Sender as a no-op recorder.
//
// The dispatch engine swaps this in for dry-run mode so that rendering and
// validation run through the exact same code path as a live run; only the
// transmission step differs. Recorded messages let tests assert that
// dry-run and live-run rendered content is byte-identical.
package dryrun

import (
	"context"
	"sync"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

// Sender records every message it would have sent and never fails.
type Sender struct {
	mu   sync.Mutex
	sent []*mailer.Message
}

// New creates a new dry-run sender.
func New() *Sender {
	return &Sender{}
}

// Send implements mailer.Sender. It performs no network action.
func (s *Sender) Send(_ context.Context, msg *mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// Messages returns the messages recorded so far.
func (s *Sender) Messages() []*mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mailer.Message(nil), s.sent...)
}
