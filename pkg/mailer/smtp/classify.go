package smtp

import (
	"errors"
	"net"
	"net/textproto"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

// classify maps an SMTP failure onto the transient/permanent split the
// dispatch engine retries on. wrapped is the error to return, cause the
// underlying error to inspect (net/smtp surfaces protocol replies as
// *textproto.Error).
//
// 4xx replies mean "try again later" per RFC 5321; 5xx replies (mailbox
// rejected, credentials rejected) never succeed on retry. Network-level
// errors are treated as transient.
func classify(wrapped, cause error) error {
	var proto *textproto.Error
	if errors.As(cause, &proto) {
		if proto.Code >= 500 {
			return mailer.Permanent(wrapped)
		}
		return mailer.Transient(wrapped)
	}

	var netErr net.Error
	if errors.As(cause, &netErr) {
		return mailer.Transient(wrapped)
	}

	return mailer.Transient(wrapped)
}
