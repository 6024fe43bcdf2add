// Package dispatch orchestrates a bulk email run: for each recipient, in
// input order, validate, render, then transmit or simulate, and record one
// outcome per recipient.
//
// The engine's core correctness property is partial-failure isolation: no
// single recipient's failure stops processing of the remaining recipients.
// Fatal conditions (a bad attachment path, an unreadable template) belong
// to the caller and abort before the engine ever starts; everything that
// happens per recipient ends up in the run report instead of propagating.
//
// # Usage
//
//	engine := dispatch.New(sender, validator, dispatch.Config{
//		MaxRetries:        3,
//		RetryBackoffBase:  500 * time.Millisecond,
//		SendRatePerSecond: 2,
//	}, dispatch.WithLogger(log))
//
//	report := engine.Run(ctx, tmpl, recipients, attachments)
//	for _, outcome := range report.Outcomes {
//		fmt.Println(outcome.Recipient, outcome.Status, outcome.Detail)
//	}
//
// The report always contains exactly one outcome per input recipient, at
// the recipient's input position, regardless of concurrency or failures.
//
// # Dry-run
//
// With Config.DryRun the engine swaps the sender for a no-op recorder and
// disables rate limiting; rendering and validation run unchanged, so a
// dry-run trace matches a live run byte for byte up to the transport.
//
// # Retries
//
// Transient transport failures are retried up to MaxRetries times with
// exponential backoff starting at RetryBackoffBase. Permanent failures are
// recorded on the first attempt with zero retries. Cancellation takes
// effect between recipients: an in-flight delivery completes or exhausts
// its retries, and recipients not yet started are recorded as skipped.
package dispatch
