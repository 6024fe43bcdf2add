package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/massmailer/internal/config"
	"github.com/dmitrymomot/massmailer/pkg/dispatch"
	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

type captureSender struct {
	mu   sync.Mutex
	sent []*mailer.Message
}

func (c *captureSender) Send(_ context.Context, msg *mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func testServer(sender mailer.Sender) *Server {
	cfg := config.Config{
		Dispatch: dispatch.Config{MaxRetries: 1, RetryBackoffBase: 1},
	}
	return New(cfg, sender, slog.New(slog.DiscardHandler))
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testServer(&captureSender{}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "OK", string(body))
}

type unreachableSender struct {
	captureSender
}

func (u *unreachableSender) Healthcheck(context.Context) error {
	return errors.New("dial relay:587: connection refused")
}

func TestReadyz_TransportDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testServer(&unreachableSender{}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReadyz_SenderWithoutHealthcheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testServer(&captureSender{}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, val := range fields {
		require.NoError(t, w.WriteField(key, val))
	}
	for field, nameAndContent := range files {
		part, err := w.CreateFormFile(field, nameAndContent[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(nameAndContent[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandleRun_DryRun(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	srv := httptest.NewServer(testServer(sender).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"subject": "Welcome {{name}}", "dry_run": "true"},
		map[string][2]string{
			"recipients": {"recipients.csv", "email,name\nalice@example.com,Alice\nbob@example.com,Bob\n"},
			"template":   {"welcome.txt", "Hello {{name}}!"},
		},
	)

	resp, err := http.Post(srv.URL+"/runs", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		RunID    string             `json:"run_id"`
		DryRun   bool               `json:"dry_run"`
		Outcomes []dispatch.Outcome `json:"outcomes"`
		Sent     int                `json:"sent"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.True(t, result.DryRun)
	require.Len(t, result.Outcomes, 2)
	require.Equal(t, "alice@example.com", result.Outcomes[0].Recipient)
	require.Equal(t, dispatch.StatusSent, result.Outcomes[0].Status)
	require.Equal(t, 2, result.Sent)

	// Dry-run never reaches the live transport.
	require.Empty(t, sender.sent)
}

func TestHandleRun_LiveRun(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	srv := httptest.NewServer(testServer(sender).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"subject": "Hi"},
		map[string][2]string{
			"recipients": {"recipients.csv", "email\nalice@example.com\n"},
			"template":   {"note.txt", "no variables here"},
		},
	)

	resp, err := http.Post(srv.URL+"/runs", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, sender.sent, 1)
	require.Equal(t, "alice@example.com", sender.sent[0].Recipient.Email)
	require.Equal(t, "no variables here", sender.sent[0].Text)
}

func TestHandleRun_MissingRecipientsFile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testServer(&captureSender{}).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"subject": "Hi"},
		map[string][2]string{
			"template": {"note.txt", "body"},
		},
	)

	resp, err := http.Post(srv.URL+"/runs", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRun_SpreadsheetWithoutEmailColumn(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testServer(&captureSender{}).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"subject": "Hi"},
		map[string][2]string{
			"recipients": {"recipients.csv", "name\nAlice\n"},
			"template":   {"note.txt", "body"},
		},
	)

	resp, err := http.Post(srv.URL+"/runs", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	require.Contains(t, errBody["error"], "no email column")
}

func TestSaveUpload_StripsPathComponents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name, err := saveUpload(dir, "../../etc/passwd", bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	require.Equal(t, "passwd", name)
}
