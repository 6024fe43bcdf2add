package mailer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestResolveAttachments_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pdf := writeFile(t, dir, "kra.pdf", 128)
	bin := writeFile(t, dir, "data.bin", 64)

	set, err := mailer.ResolveAttachments([]string{pdf, bin}, mailer.ResolverConfig{})
	require.NoError(t, err)
	require.Len(t, set, 2)
	require.Equal(t, "kra.pdf", set[0].Filename)
	require.Equal(t, "application/pdf", set[0].ContentType)
	require.Len(t, set[0].Content, 128)
	require.Equal(t, "application/octet-stream", set[1].ContentType)
}

func TestResolveAttachments_NotFound(t *testing.T) {
	t.Parallel()

	_, err := mailer.ResolveAttachments([]string{"/nonexistent/file.pdf"}, mailer.ResolverConfig{})
	require.ErrorIs(t, err, mailer.ErrAttachmentNotFound)
}

func TestResolveAttachments_FileTooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	big := writeFile(t, dir, "big.pdf", 2048)

	_, err := mailer.ResolveAttachments([]string{big}, mailer.ResolverConfig{MaxFileSize: 1024})
	require.ErrorIs(t, err, mailer.ErrAttachmentTooLarge)

	var sizeErr *mailer.AttachmentSizeError
	require.ErrorAs(t, err, &sizeErr)
	require.Equal(t, big, sizeErr.Path)
	require.EqualValues(t, 2048, sizeErr.Size)
	require.EqualValues(t, 1024, sizeErr.Limit)
}

func TestResolveAttachments_AggregateTooLarge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", 600)
	b := writeFile(t, dir, "b.pdf", 600)

	_, err := mailer.ResolveAttachments([]string{a, b}, mailer.ResolverConfig{MaxFileSize: 1024, MaxTotalSize: 1000})
	require.ErrorIs(t, err, mailer.ErrAttachmentTooLarge)
}

func TestResolveAttachments_NoPaths(t *testing.T) {
	t.Parallel()

	set, err := mailer.ResolveAttachments(nil, mailer.ResolverConfig{})
	require.NoError(t, err)
	require.Nil(t, set)
}
