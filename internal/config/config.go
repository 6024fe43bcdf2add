// Package config loads the process configuration from the environment,
// once, at startup. Components receive explicit Config values instead of
// reading ambient state, which keeps them independently testable.
package config

import (
	"github.com/dmitrymomot/massmailer/pkg/dispatch"
	"github.com/dmitrymomot/massmailer/pkg/logger"
	"github.com/dmitrymomot/massmailer/pkg/mailer"
	"github.com/dmitrymomot/massmailer/pkg/mailer/resend"
	"github.com/dmitrymomot/massmailer/pkg/mailer/ses"
	"github.com/dmitrymomot/massmailer/pkg/mailer/smtp"
)

// Config aggregates every component's configuration.
type Config struct {
	// Provider selects the live transport: smtp, resend, or ses.
	Provider string

	Logger    logger.Config
	Sentry    logger.SentryConfig
	SMTP      smtp.Config
	Resend    resend.Config
	SES       ses.Config
	Dispatch  dispatch.Config
	Resolver  mailer.ResolverConfig
	Validator mailer.ValidatorConfig

	// ListenAddr is the HTTP front end bind address.
	ListenAddr string
}

// Load reads the full configuration from the environment. Unset variables
// fall back to the documented defaults; nothing here fails, so missing
// credentials surface as transport errors rather than startup panics.
func Load() Config {
	return Config{
		Provider: String("MAILER_PROVIDER", "smtp"),
		Logger: logger.Config{
			Level: String("LOG_LEVEL", "info"),
		},
		Sentry: logger.SentryConfig{
			DSN:         String("SENTRY_DSN", ""),
			Environment: String("SENTRY_ENVIRONMENT", "production"),
		},
		SMTP: smtp.Config{
			Host:        String("SMTP_HOST", "localhost"),
			Port:        Int("SMTP_PORT", 587),
			Username:    String("SMTP_USERNAME", ""),
			Password:    String("SMTP_PASSWORD", ""),
			From:        String("SMTP_FROM", ""),
			FromName:    String("SMTP_FROM_NAME", ""),
			StartTLS:    Bool("SMTP_STARTTLS", true),
			DialTimeout: Duration("SMTP_DIAL_TIMEOUT", smtp.DefaultDialTimeout),
		},
		Resend: resend.Config{
			APIKey:      String("RESEND_API_KEY", ""),
			SenderEmail: String("RESEND_FROM_EMAIL", ""),
			SenderName:  String("RESEND_FROM_NAME", ""),
		},
		SES: ses.Config{
			SenderEmail: String("SES_FROM_EMAIL", ""),
			SenderName:  String("SES_FROM_NAME", ""),
		},
		Dispatch: dispatch.Config{
			DryRun:            Bool("DISPATCH_DRY_RUN", false),
			MaxRetries:        Int("DISPATCH_MAX_RETRIES", 3),
			RetryBackoffBase:  Duration("DISPATCH_RETRY_BACKOFF_BASE", dispatch.DefaultRetryBackoffBase),
			SendRatePerSecond: Float("DISPATCH_SEND_RATE", 0),
			Concurrency:       Int("DISPATCH_CONCURRENCY", 1),
		},
		Resolver: mailer.ResolverConfig{
			MaxFileSize:  Int64("MAILER_MAX_ATTACHMENT_SIZE", 10<<20),
			MaxTotalSize: Int64("MAILER_MAX_TOTAL_ATTACHMENT_SIZE", 25<<20),
		},
		Validator: mailer.ValidatorConfig{
			AllowedDomain:      String("MAILER_ALLOWED_DOMAIN", ""),
			RejectPlaceholders: Bool("MAILER_REJECT_PLACEHOLDERS", false),
		},
		ListenAddr: String("LISTEN_ADDR", ":8080"),
	}
}
