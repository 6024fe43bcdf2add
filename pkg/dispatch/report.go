package dispatch

import "github.com/google/uuid"

// Status is the terminal state recorded for one recipient within a run.
type Status string

const (
	// StatusSent means the relay accepted the message, or, in dry-run
	// mode, that the message would have been sent.
	StatusSent Status = "sent"
	// StatusSkipped means validation rejected the recipient before any
	// network action, or the run was cancelled before reaching it.
	StatusSkipped Status = "skipped"
	// StatusFailed means rendering or transport failed for this recipient.
	StatusFailed Status = "failed"
)

// ReasonCancelled is the outcome detail recorded for recipients the run
// never reached because of cancellation.
const ReasonCancelled = "cancelled"

// Outcome is the result for one recipient. Outcomes sit at their
// recipient's input position in the report.
type Outcome struct {
	Recipient string `json:"recipient_email"`
	Status    Status `json:"status"`
	Detail    string `json:"detail,omitempty"`
	// Attempts counts transport attempts, including retries. Zero for
	// recipients that never reached the transport step.
	Attempts int `json:"attempts,omitempty"`
}

// Report is the ordered aggregate of per-recipient outcomes for one run.
// len(Outcomes) always equals the number of input recipients.
type Report struct {
	RunID    uuid.UUID `json:"run_id"`
	DryRun   bool      `json:"dry_run"`
	Outcomes []Outcome `json:"outcomes"`
}

// Counts returns the number of sent, skipped, and failed outcomes.
func (r Report) Counts() (sent, skipped, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSent:
			sent++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return sent, skipped, failed
}

// HasFailures reports whether any recipient failed.
func (r Report) HasFailures() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}
