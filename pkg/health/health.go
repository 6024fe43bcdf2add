// Package health implements liveness and readiness probes for the HTTP
// front end.
//
// Liveness always reports OK while the process runs. Readiness executes a
// set of named checks, such as a dial to the configured mail relay, in
// parallel under a shared timeout and reports 503 when any of them fails.
//
// Probes respond with plain text by default; JSON is returned when the
// request carries Accept: application/json or ?format=json.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultTimeout = 5 * time.Second

const (
	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates at least one check failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency. Transport senders expose a compatible
// Healthcheck method.
type CheckFunc func(ctx context.Context) error

// Checks maps a check name to its probe.
type Checks map[string]CheckFunc

// Response is the JSON shape of a probe result.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check reports the outcome of a single named probe.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	log     *slog.Logger
	timeout time.Duration
}

// Option configures readiness probing.
type Option func(*config)

// WithTimeout bounds the execution of all checks together.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// runChecks executes every check in parallel and aggregates the results.
func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Check, len(checks))
		failed  bool
	)

	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
				cfg.log.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = result
			failed = failed || result.Status == StatusUnhealthy
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := StatusHealthy
	if failed {
		status = StatusUnhealthy
	}
	return &Response{Status: status, Checks: results}
}
