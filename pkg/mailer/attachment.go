package mailer

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// ResolverConfig holds attachment size ceilings.
// Embed this in your app config for env parsing.
type ResolverConfig struct {
	// MaxFileSize is the per-file ceiling in bytes. Zero disables the check.
	MaxFileSize int64 `env:"MAILER_MAX_ATTACHMENT_SIZE" envDefault:"10485760"`
	// MaxTotalSize is the aggregate ceiling in bytes. Zero disables the check.
	MaxTotalSize int64 `env:"MAILER_MAX_TOTAL_ATTACHMENT_SIZE" envDefault:"26214400"`
}

// ResolveAttachments reads each path exactly once and returns the ordered,
// run-wide attachment set. A failure here is fatal to the whole run:
// attachments are shared by every recipient, so a bad path cannot be
// skipped for one recipient only.
func ResolveAttachments(paths []string, cfg ResolverConfig) (AttachmentSet, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	set := make(AttachmentSet, 0, len(paths))
	var total int64
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAttachmentNotFound, path, err)
		}

		size := int64(len(content))
		if cfg.MaxFileSize > 0 && size > cfg.MaxFileSize {
			return nil, &AttachmentSizeError{Path: path, Size: size, Limit: cfg.MaxFileSize}
		}
		total += size
		if cfg.MaxTotalSize > 0 && total > cfg.MaxTotalSize {
			return nil, &AttachmentSizeError{Path: path, Size: total, Limit: cfg.MaxTotalSize}
		}

		set = append(set, Attachment{
			Filename:    filepath.Base(path),
			ContentType: contentTypeFor(path),
			Content:     content,
		})
	}
	return set, nil
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
