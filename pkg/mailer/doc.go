// Package mailer provides the building blocks for bulk email dispatch:
// recipients, templates, attachments, rendering, and validation.
//
// The package separates message preparation from delivery. Rendering binds
// one recipient's variables into a shared template and produces a
// transport-ready Message; delivery is performed by a Sender implementation
// (SMTP relay, Resend, SES, or the dry-run recorder).
//
// # Architecture
//
//   - Recipient: one addressee plus its template variables, immutable
//   - Template: shared subject/text/HTML templates with {{variable}} placeholders
//   - ResolveAttachments: loads the run-wide attachment set once, with size limits
//   - Render: pure function producing a Message for one recipient
//   - Validator: collects every problem with a recipient before any network action
//   - Sender: the minimal delivery interface providers implement
//
// # Usage
//
//	tmpl, err := mailer.NewTemplate("Hello {{name}}", "Hi {{name}}, welcome!", "")
//	if err != nil {
//		panic(err)
//	}
//
//	rec, err := mailer.NewRecipient("alice@example.com", "Alice", map[string]string{"name": "Alice"})
//	if err != nil {
//		panic(err)
//	}
//
//	msg, err := mailer.Render(tmpl, rec, nil)
//	if err != nil {
//		panic(err)
//	}
//
//	sender := smtp.New(smtp.Config{Host: "relay.example.com", Port: 587})
//	err = sender.Send(ctx, msg)
//
// Templates can also be loaded from files with LoadTemplate. Markdown files
// with YAML frontmatter get an HTML variant rendered via goldmark, with the
// markdown source kept as the plain-text alternative:
//
//	---
//	Subject: Welcome {{name}}!
//	---
//
//	# Welcome
//
//	Hello {{name}}, welcome aboard.
//
// # Transport errors
//
// Sender implementations classify failures as transient (retryable) or
// permanent by wrapping them with Transient or Permanent. The dispatch
// engine retries only transient failures. Unclassified errors are treated
// as permanent so unknown failures are never retried blindly.
package mailer
