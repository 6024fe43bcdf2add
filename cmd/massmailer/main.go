// Command massmailer sends a personalized bulk mailing: recipients from a
// CSV spreadsheet, one shared template, optional run-wide attachments.
//
//	massmailer -recipients list.csv -template welcome.md -attach terms.pdf -dry-run
//
// With -serve it instead starts the HTTP front end and waits for runs to
// be triggered over the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsses "github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/massmailer/internal/config"
	"github.com/dmitrymomot/massmailer/internal/server"
	"github.com/dmitrymomot/massmailer/pkg/dispatch"
	"github.com/dmitrymomot/massmailer/pkg/logger"
	"github.com/dmitrymomot/massmailer/pkg/mailer"
	"github.com/dmitrymomot/massmailer/pkg/mailer/resend"
	"github.com/dmitrymomot/massmailer/pkg/mailer/ses"
	"github.com/dmitrymomot/massmailer/pkg/mailer/smtp"
	"github.com/dmitrymomot/massmailer/pkg/spreadsheet"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var (
		recipientsPath = flag.String("recipients", "", "path to the recipients CSV")
		templatePath   = flag.String("template", "", "path to the message template (.md, .html, or .txt)")
		subject        = flag.String("subject", "", "subject template; overridden by template frontmatter")
		dryRun         = flag.Bool("dry-run", false, "render and validate without sending")
		rateLimit      = flag.Float64("rate", -1, "max messages per second (0 = unlimited)")
		maxRetries     = flag.Int("max-retries", -1, "transient-failure retry ceiling")
		concurrency    = flag.Int("concurrency", 0, "recipients processed in parallel")
		serve          = flag.Bool("serve", false, "start the HTTP front end instead of running once")
	)
	var attachments attachList
	flag.Var(&attachments, "attach", "attachment path; repeat for multiple files")
	flag.Parse()

	cfg := config.Load()
	if *dryRun {
		cfg.Dispatch.DryRun = true
	}
	if *rateLimit >= 0 {
		cfg.Dispatch.SendRatePerSecond = *rateLimit
	}
	if *maxRetries >= 0 {
		cfg.Dispatch.MaxRetries = *maxRetries
	}
	if *concurrency > 0 {
		cfg.Dispatch.Concurrency = *concurrency
	}

	log := logger.NewWithSentry(cfg.Logger, cfg.Sentry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender, err := buildSender(ctx, cfg)
	if err != nil {
		fatal(log, "failed to configure transport", err)
	}

	if *serve {
		if err := server.New(cfg, sender, log).Start(ctx); err != nil {
			fatal(log, "http server failed", err)
		}
		return
	}

	if *recipientsPath == "" || *templatePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	report, err := runOnce(ctx, cfg, sender, log, *recipientsPath, *templatePath, *subject, attachments)
	if err != nil {
		fatal(log, "run aborted", err)
	}

	printReport(report)
	if report.HasFailures() {
		os.Exit(1)
	}
}

// runOnce loads the run inputs and executes a single dispatch run. Any
// error here is fatal and happens before the first recipient is processed.
func runOnce(ctx context.Context, cfg config.Config, sender mailer.Sender, log *slog.Logger, recipientsPath, templatePath, subject string, attachments []string) (dispatch.Report, error) {
	f, err := os.Open(recipientsPath)
	if err != nil {
		return dispatch.Report{}, fmt.Errorf("open recipients: %w", err)
	}
	recipients, err := spreadsheet.Load(f)
	f.Close()
	if err != nil {
		return dispatch.Report{}, fmt.Errorf("load recipients: %w", err)
	}

	dir, name := filepath.Split(templatePath)
	if dir == "" {
		dir = "."
	}
	tmpl, err := mailer.LoadTemplate(os.DirFS(dir), name, subject)
	if err != nil {
		return dispatch.Report{}, fmt.Errorf("load template: %w", err)
	}

	attachmentSet, err := mailer.ResolveAttachments(attachments, cfg.Resolver)
	if err != nil {
		return dispatch.Report{}, fmt.Errorf("resolve attachments: %w", err)
	}

	engine := dispatch.New(
		sender,
		mailer.NewValidator(tmpl, cfg.Validator),
		cfg.Dispatch,
		dispatch.WithLogger(log),
	)
	return engine.Run(ctx, tmpl, recipients, attachmentSet), nil
}

// buildSender picks the live transport. Dry-run mode replaces it inside
// the engine, so building it here is harmless either way.
func buildSender(ctx context.Context, cfg config.Config) (mailer.Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return smtp.New(cfg.SMTP), nil
	case "resend":
		return resend.New(cfg.Resend), nil
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return ses.New(awsses.NewFromConfig(awsCfg), cfg.SES), nil
	default:
		return nil, fmt.Errorf("unknown mailer provider %q", cfg.Provider)
	}
}

func printReport(report dispatch.Report) {
	fmt.Printf("run %s\n", report.RunID)
	for _, o := range report.Outcomes {
		line := fmt.Sprintf("%-8s %s", strings.ToUpper(string(o.Status)), o.Recipient)
		if o.Detail != "" {
			line += ": " + o.Detail
		}
		fmt.Println(line)
	}
	sent, skipped, failed := report.Counts()
	fmt.Printf("sent %d, skipped %d, failed %d\n", sent, skipped, failed)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.String("error", err.Error()))
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// attachList collects repeated -attach flags.
type attachList []string

func (a *attachList) String() string { return strings.Join(*a, ",") }

func (a *attachList) Set(v string) error {
	*a = append(*a, v)
	return nil
}
