// Package smtp implements mailer.Sender against a plain SMTP relay with
// optional STARTTLS and PLAIN authentication.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

// DefaultDialTimeout bounds the initial TCP connect when no timeout is
// configured.
const DefaultDialTimeout = 30 * time.Second

// Config holds SMTP relay configuration.
// Embed this in your app config for env parsing.
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	FromName string `env:"SMTP_FROM_NAME"`
	// StartTLS upgrades the connection when the relay advertises it.
	StartTLS bool `env:"SMTP_STARTTLS" envDefault:"true"`
	// DialTimeout bounds the initial TCP connect.
	DialTimeout time.Duration `env:"SMTP_DIAL_TIMEOUT" envDefault:"30s"`
}

// Addr returns the host:port relay address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Sender delivers messages through one SMTP relay. Failures are classified
// for the dispatch engine: 4xx replies and network errors are transient,
// 5xx replies are permanent.
type Sender struct {
	cfg Config
}

// New creates a new SMTP sender.
func New(cfg Config) *Sender {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	return &Sender{cfg: cfg}
}

// Send implements mailer.Sender. Each call opens a fresh connection; bulk
// pacing is the caller's concern, not the transport's.
func (s *Sender) Send(ctx context.Context, msg *mailer.Message) error {
	data, err := mailer.EncodeMessage(msg, s.from())
	if err != nil {
		return mailer.Permanent(fmt.Errorf("encode message: %w", err))
	}

	dialer := &net.Dialer{Timeout: s.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return mailer.Transient(fmt.Errorf("dial %s: %w", s.cfg.Addr(), err))
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return mailer.Transient(fmt.Errorf("set deadline: %w", err))
		}
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return classify(fmt.Errorf("new client: %w", err), err)
	}
	defer client.Close()

	if s.cfg.StartTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConf := &tls.Config{
				ServerName: s.cfg.Host,
				MinVersion: tls.VersionTLS12,
			}
			if err := client.StartTLS(tlsConf); err != nil {
				return classify(fmt.Errorf("starttls: %w", err), err)
			}
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return classify(fmt.Errorf("auth: %w", err), err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return classify(fmt.Errorf("mail from: %w", err), err)
	}
	for _, rcpt := range append([]string{msg.Recipient.Email}, msg.Recipient.CC...) {
		if err := client.Rcpt(rcpt); err != nil {
			return classify(fmt.Errorf("rcpt to %s: %w", rcpt, err), err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return classify(fmt.Errorf("data start: %w", err), err)
	}
	if _, err := w.Write(data); err != nil {
		return classify(fmt.Errorf("data write: %w", err), err)
	}
	if err := w.Close(); err != nil {
		return classify(fmt.Errorf("data close: %w", err), err)
	}

	if err := client.Quit(); err != nil {
		// The relay accepted the message; a failed QUIT is not a delivery failure.
		return nil
	}
	return nil
}

// Healthcheck dials the relay and issues a NOOP. Used by the readiness
// probe in serve mode.
func (s *Sender) Healthcheck(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: s.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.cfg.Addr(), err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set deadline: %w", err)
		}
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	defer client.Close()

	if err := client.Noop(); err != nil {
		return fmt.Errorf("noop: %w", err)
	}
	return client.Quit()
}

func (s *Sender) from() string {
	if s.cfg.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}
	return s.cfg.From
}
