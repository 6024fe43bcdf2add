package mailer

// Render binds one recipient's variables into the shared template and
// produces a transport-ready Message referencing the shared attachment set.
//
// Render is pure: identical (template, recipient) input always yields an
// identical Message, which is what makes dry-run and live-run traces
// comparable byte for byte. It fails with a MissingVariableError if any
// template placeholder has no entry in recipient.Variables; an empty-string
// entry substitutes as empty and is not an error.
func Render(t *Template, r Recipient, attachments AttachmentSet) (*Message, error) {
	for _, name := range t.vars {
		if _, ok := r.Variables[name]; !ok {
			return nil, &MissingVariableError{Name: name}
		}
	}

	return &Message{
		Recipient:   r,
		Subject:     substitute(t.Subject, r.Variables),
		Text:        substitute(t.Text, r.Variables),
		HTML:        substitute(t.HTML, r.Variables),
		Attachments: attachments,
	}, nil
}

// substitute replaces every {{name}} token with its value. Callers have
// already checked that every referenced variable exists.
func substitute(s string, vars map[string]string) string {
	if s == "" {
		return ""
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(token string) string {
		name := placeholderRe.FindStringSubmatch(token)[1]
		return vars[name]
	})
}
