package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/massmailer/pkg/logger"
	"github.com/dmitrymomot/massmailer/pkg/mailer"
	"github.com/dmitrymomot/massmailer/pkg/mailer/dryrun"
)

// Engine turns a shared template plus an ordered recipient list into a
// sequence of individually rendered, validated, and delivered messages.
type Engine struct {
	sender    mailer.Sender
	validator *mailer.Validator
	limiter   *rate.Limiter
	recorder  *dryrun.Sender // set in dry-run mode
	log       *slog.Logger
	cfg       Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine around the given transport. validator may be nil
// to disable pre-send validation. In dry-run mode the sender is replaced
// with a no-op recorder, so the caller's transport is never touched.
func New(sender mailer.Sender, validator *mailer.Validator, cfg Config, opts ...Option) *Engine {
	if cfg.RetryBackoffBase <= 0 {
		cfg.RetryBackoffBase = DefaultRetryBackoffBase
	}
	e := &Engine{
		sender:    sender,
		validator: validator,
		cfg:       cfg,
		log:       logger.NewNope(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.DryRun {
		e.recorder = dryrun.New()
		e.sender = e.recorder
	} else if cfg.SendRatePerSecond > 0 {
		// Burst of one so the configured rate caps the aggregate of all
		// workers, not each worker separately.
		e.limiter = rate.NewLimiter(rate.Limit(cfg.SendRatePerSecond), 1)
	}
	return e
}

// Recorded returns the messages captured by the dry-run recorder, or nil
// when the engine runs live.
func (e *Engine) Recorded() []*mailer.Message {
	if e.recorder == nil {
		return nil
	}
	return e.recorder.Messages()
}

// Run processes every recipient in input order and returns one outcome per
// recipient at its input position. The template and attachment set are
// shared read-only across the whole run; resolve attachments before
// calling Run, since a bad attachment is fatal to the run rather than to
// any single recipient.
//
// Cancelling ctx stops the run between recipients: recipients not yet
// started are recorded as skipped with ReasonCancelled.
func (e *Engine) Run(ctx context.Context, tmpl *mailer.Template, recipients []mailer.Recipient, attachments mailer.AttachmentSet) Report {
	report := Report{
		RunID:    uuid.New(),
		DryRun:   e.cfg.DryRun,
		Outcomes: make([]Outcome, len(recipients)),
	}

	log := e.log.With(
		slog.String("run_id", report.RunID.String()),
		slog.Bool("dry_run", e.cfg.DryRun),
	)
	log.InfoContext(ctx, "run started",
		slog.Int("recipients", len(recipients)),
		slog.Int("attachments", len(attachments)),
	)

	if e.cfg.Concurrency > 1 {
		var g errgroup.Group
		g.SetLimit(e.cfg.Concurrency)
		for i, r := range recipients {
			g.Go(func() error {
				report.Outcomes[i] = e.process(ctx, log, r, tmpl, attachments)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors; failures live in outcomes
	} else {
		for i, r := range recipients {
			report.Outcomes[i] = e.process(ctx, log, r, tmpl, attachments)
		}
	}

	sent, skipped, failed := report.Counts()
	log.InfoContext(ctx, "run finished",
		slog.Int("sent", sent),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
	)
	return report
}

// process takes one recipient through validate, render, and
// transmit-or-simulate, and converts every failure into an outcome.
func (e *Engine) process(ctx context.Context, log *slog.Logger, r mailer.Recipient, tmpl *mailer.Template, attachments mailer.AttachmentSet) Outcome {
	if ctx.Err() != nil {
		return Outcome{Recipient: r.Email, Status: StatusSkipped, Detail: ReasonCancelled}
	}

	if e.validator != nil {
		if reasons := e.validator.Validate(r); len(reasons) > 0 {
			log.WarnContext(ctx, "recipient skipped",
				slog.String("email", r.Email),
				slog.String("reasons", strings.Join(reasons, "; ")),
			)
			return Outcome{Recipient: r.Email, Status: StatusSkipped, Detail: strings.Join(reasons, "; ")}
		}
	}

	msg, err := mailer.Render(tmpl, r, attachments)
	if err != nil {
		log.ErrorContext(ctx, "render failed",
			slog.String("email", r.Email),
			slog.String("error", err.Error()),
		)
		return Outcome{Recipient: r.Email, Status: StatusFailed, Detail: err.Error()}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return Outcome{Recipient: r.Email, Status: StatusSkipped, Detail: ReasonCancelled}
		}
	}

	attempts, err := e.deliver(ctx, msg)
	if err != nil {
		log.ErrorContext(ctx, "delivery failed",
			slog.String("email", r.Email),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()),
		)
		return Outcome{Recipient: r.Email, Status: StatusFailed, Detail: err.Error(), Attempts: attempts}
	}

	log.InfoContext(ctx, "message sent",
		slog.String("email", r.Email),
		slog.Int("attempts", attempts),
	)
	return Outcome{Recipient: r.Email, Status: StatusSent, Attempts: attempts}
}

// deliver hands the message to the transport, retrying transient failures
// with exponential backoff. An in-flight delivery runs to completion or
// retry exhaustion even if ctx is cancelled; cancellation is honored
// between recipients, not mid-delivery.
func (e *Engine) deliver(ctx context.Context, msg *mailer.Message) (int, error) {
	attempts := 0
	op := func() error {
		attempts++
		err := e.sender.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if !mailer.IsTransient(err) || errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.RetryBackoffBase
	bo.MaxElapsedTime = 0 // bounded by MaxRetries, not wall clock

	err := backoff.Retry(op, backoff.WithMaxRetries(bo, uint64(e.cfg.MaxRetries)))
	return attempts, err
}
