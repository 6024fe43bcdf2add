package mailer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecipient indicates a structurally malformed recipient address.
	ErrInvalidRecipient = errors.New("invalid recipient address")

	// ErrMissingVariable indicates the template references a variable the
	// recipient does not carry.
	ErrMissingVariable = errors.New("missing template variable")

	// ErrEmptyTemplate indicates a template with no subject or body.
	ErrEmptyTemplate = errors.New("template must have a subject and a body")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrAttachmentNotFound indicates an attachment path could not be read.
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrAttachmentTooLarge indicates an attachment exceeds the configured size limit.
	ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")
)

// MissingVariableError reports which template variable a recipient lacks.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing template variable %q", e.Name)
}

// Unwrap makes errors.Is(err, ErrMissingVariable) work.
func (e *MissingVariableError) Unwrap() error { return ErrMissingVariable }

// AttachmentSizeError reports an attachment that exceeds a size ceiling.
// Limit is the configured per-file or aggregate ceiling that was crossed.
type AttachmentSizeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *AttachmentSizeError) Error() string {
	return fmt.Sprintf("attachment %s is %d bytes, limit is %d", e.Path, e.Size, e.Limit)
}

// Unwrap makes errors.Is(err, ErrAttachmentTooLarge) work.
func (e *AttachmentSizeError) Unwrap() error { return ErrAttachmentTooLarge }
