package dispatch

import "time"

// DefaultRetryBackoffBase is the first retry delay when none is configured.
const DefaultRetryBackoffBase = 500 * time.Millisecond

// Config holds engine configuration.
// Embed this in your app config for env parsing.
type Config struct {
	// DryRun disables transport: outcomes report what would have been sent.
	DryRun bool `env:"DISPATCH_DRY_RUN" envDefault:"false"`
	// MaxRetries is the transient-failure retry ceiling per recipient.
	MaxRetries int `env:"DISPATCH_MAX_RETRIES" envDefault:"3"`
	// RetryBackoffBase is the first backoff delay; later delays grow
	// exponentially.
	RetryBackoffBase time.Duration `env:"DISPATCH_RETRY_BACKOFF_BASE" envDefault:"500ms"`
	// SendRatePerSecond throttles aggregate live sends. Zero means
	// unlimited. Ignored in dry-run mode.
	SendRatePerSecond float64 `env:"DISPATCH_SEND_RATE" envDefault:"0"`
	// Concurrency is the number of recipients processed in parallel.
	// Values below two keep processing sequential.
	Concurrency int `env:"DISPATCH_CONCURRENCY" envDefault:"1"`
}
