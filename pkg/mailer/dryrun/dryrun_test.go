package dryrun_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
	"github.com/dmitrymomot/massmailer/pkg/mailer/dryrun"
)

func TestSender_Records(t *testing.T) {
	t.Parallel()

	s := dryrun.New()
	msg := &mailer.Message{
		Recipient: mailer.Recipient{Email: "alice@example.com"},
		Subject:   "s",
		Text:      "body",
	}

	require.NoError(t, s.Send(context.Background(), msg))
	require.Equal(t, []*mailer.Message{msg}, s.Messages())
}

func TestSender_MessagesReturnsCopy(t *testing.T) {
	t.Parallel()

	s := dryrun.New()
	require.NoError(t, s.Send(context.Background(), &mailer.Message{Subject: "a"}))

	got := s.Messages()
	got[0] = nil
	require.NotNil(t, s.Messages()[0])
}

func TestSender_ConcurrentSends(t *testing.T) {
	t.Parallel()

	s := dryrun.New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Send(context.Background(), &mailer.Message{Subject: "x"})
		}()
	}
	wg.Wait()

	require.Len(t, s.Messages(), 20)
}
