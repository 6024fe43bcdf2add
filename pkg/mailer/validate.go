package mailer

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidatorConfig controls the per-recipient checks.
// Embed this in your app config for env parsing.
type ValidatorConfig struct {
	// AllowedDomain restricts recipients to one domain when set
	// (e.g., "example.com" for an internal-only mailing).
	AllowedDomain string `env:"MAILER_ALLOWED_DOMAIN"`
	// RejectPlaceholders rejects obviously-fake addresses such as
	// user@example.com or test@test.
	RejectPlaceholders bool `env:"MAILER_REJECT_PLACEHOLDERS" envDefault:"false"`
}

// placeholderDomains are domains that only ever appear in sample data.
var placeholderDomains = map[string]struct{}{
	"example.com": {},
	"example.org": {},
	"example.net": {},
	"test.com":    {},
	"test":        {},
	"localhost":   {},
	"invalid":     {},
}

// Validator checks recipients before any network action is attempted.
// It collects every applicable failure reason instead of stopping at the
// first, so a bad spreadsheet can be fixed in one pass.
type Validator struct {
	cfg  ValidatorConfig
	tmpl *Template
}

// NewValidator builds a Validator. tmpl may be nil, in which case the
// required-variable check is skipped and missing variables surface as
// render failures instead.
func NewValidator(tmpl *Template, cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg, tmpl: tmpl}
}

// Validate returns every reason the recipient must not be sent to, in
// check order: address syntax, placeholder address, domain restriction,
// required template variables. A nil result means the recipient is valid.
// Validate never fails; malformed input produces reasons, not errors.
func (v *Validator) Validate(r Recipient) []string {
	var reasons []string

	domain, ok := v.checkSyntax(r.Email, &reasons)
	if ok {
		if v.cfg.RejectPlaceholders {
			if _, fake := placeholderDomains[domain]; fake {
				reasons = append(reasons, fmt.Sprintf("placeholder address %s", r.Email))
			}
		}
		if v.cfg.AllowedDomain != "" && !strings.EqualFold(domain, v.cfg.AllowedDomain) {
			reasons = append(reasons, fmt.Sprintf("address %s is outside allowed domain %s", r.Email, v.cfg.AllowedDomain))
		}
	}

	for _, cc := range r.CC {
		if _, err := mail.ParseAddress(cc); err != nil {
			reasons = append(reasons, fmt.Sprintf("invalid cc address %q", cc))
		}
	}

	if v.tmpl != nil {
		for _, name := range v.tmpl.vars {
			if _, ok := r.Variables[name]; !ok {
				reasons = append(reasons, fmt.Sprintf("missing template variable %q", name))
			}
		}
	}

	return reasons
}

// checkSyntax validates address well-formedness and returns the lowercased
// domain part when the address parses.
func (v *Validator) checkSyntax(email string, reasons *[]string) (string, bool) {
	if strings.TrimSpace(email) == "" {
		*reasons = append(*reasons, "empty address")
		return "", false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		*reasons = append(*reasons, fmt.Sprintf("malformed address %q", email))
		return "", false
	}

	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || at == len(addr.Address)-1 {
		*reasons = append(*reasons, fmt.Sprintf("address %q has no domain", email))
		return "", false
	}

	return strings.ToLower(addr.Address[at+1:]), true
}
