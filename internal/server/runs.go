package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/massmailer/pkg/dispatch"
	"github.com/dmitrymomot/massmailer/pkg/mailer"
	"github.com/dmitrymomot/massmailer/pkg/spreadsheet"
)

// maxUploadBytes caps the whole multipart request body.
const maxUploadBytes = 64 << 20

// runResponse is the JSON shape returned to the front end.
type runResponse struct {
	dispatch.Report
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// handleRun accepts a multipart form with a "recipients" CSV file, a
// "template" file, optional repeated "attachments" files, an optional
// "subject" field, and a "dry_run" flag. Fatal input problems return 400
// before any recipient is processed; everything per-recipient lands in the
// report.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	recipients, err := s.loadRecipients(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workDir, err := os.MkdirTemp("", "massmailer-run-")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "create workspace: "+err.Error())
		return
	}
	defer os.RemoveAll(workDir)

	tmpl, err := s.loadTemplate(r, workDir)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	attachments, err := s.loadAttachments(r, workDir)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	engineCfg := s.cfg.Dispatch
	if r.FormValue("dry_run") == "true" {
		engineCfg.DryRun = true
	}

	engine := dispatch.New(
		s.sender,
		mailer.NewValidator(tmpl, s.cfg.Validator),
		engineCfg,
		dispatch.WithLogger(s.log),
	)
	report := engine.Run(r.Context(), tmpl, recipients, attachments)

	sent, skipped, failed := report.Counts()
	s.writeJSON(w, http.StatusOK, runResponse{
		Report:  report,
		Sent:    sent,
		Skipped: skipped,
		Failed:  failed,
	})
}

func (s *Server) loadRecipients(r *http.Request) ([]mailer.Recipient, error) {
	file, _, err := r.FormFile("recipients")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return spreadsheet.Load(file)
}

func (s *Server) loadTemplate(r *http.Request, workDir string) (*mailer.Template, error) {
	file, header, err := r.FormFile("template")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	name, err := saveUpload(workDir, header.Filename, file)
	if err != nil {
		return nil, err
	}
	return mailer.LoadTemplate(os.DirFS(workDir), name, r.FormValue("subject"))
}

func (s *Server) loadAttachments(r *http.Request, workDir string) (mailer.AttachmentSet, error) {
	headers := r.MultipartForm.File["attachments"]
	if len(headers) == 0 {
		return nil, nil
	}

	paths := make([]string, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		name, err := saveUpload(workDir, header.Filename, file)
		file.Close()
		if err != nil {
			return nil, err
		}
		paths = append(paths, filepath.Join(workDir, name))
	}
	return mailer.ResolveAttachments(paths, s.cfg.Resolver)
}

// saveUpload writes one uploaded file into dir, stripping any path
// components from the client-supplied name.
func saveUpload(dir, filename string, src io.Reader) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
