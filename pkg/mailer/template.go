package mailer

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// placeholderRe matches {{variable_name}} tokens, with optional inner
// whitespace, as produced by spreadsheet-driven templates.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Template holds the shared subject, plain-text, and optional HTML
// templates for a run. Loaded once, read-only afterwards, and safe to share
// across recipients without locking.
type Template struct {
	Subject string
	Text    string
	HTML    string // empty means the rendered messages are plain-text only

	vars []string // union of placeholders across all three templates
}

// NewTemplate builds a Template from raw template strings and records the
// set of variables the templates reference. html may be empty.
func NewTemplate(subject, text, html string) (*Template, error) {
	if strings.TrimSpace(subject) == "" || (strings.TrimSpace(text) == "" && strings.TrimSpace(html) == "") {
		return nil, ErrEmptyTemplate
	}

	t := &Template{Subject: subject, Text: text, HTML: html}
	t.vars = collectVars(subject, text, html)
	return t, nil
}

// Vars returns the sorted set of variable names the template references.
// The validator checks recipients against this set.
func (t *Template) Vars() []string {
	return append([]string(nil), t.vars...)
}

// LoadTemplate reads one template file from fsys.
//
// Markdown files (.md) may carry YAML frontmatter with a Subject key; the
// body is rendered to HTML via goldmark and the markdown source becomes the
// plain-text alternative. HTML files (.html, .htm) become the HTML variant
// with frontmatter handled the same way. Anything else is treated as a
// plain-text template. Files without a frontmatter Subject get subject.
func LoadTemplate(fsys fs.FS, name, subject string) (*Template, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	meta, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if s, ok := meta["Subject"].(string); ok && s != "" {
		subject = s
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		var html bytes.Buffer
		if err := goldmark.Convert(body, &html); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
		}
		return NewTemplate(subject, string(body), html.String())
	case ".html", ".htm":
		return NewTemplate(subject, "", string(body))
	default:
		return NewTemplate(subject, string(body), "")
	}
}

// splitFrontmatter extracts YAML frontmatter delimited by "---" lines.
// Content without a leading delimiter is returned untouched with empty
// metadata.
func splitFrontmatter(content []byte) (map[string]any, []byte, error) {
	delimiter := []byte("---")
	if !bytes.HasPrefix(content, delimiter) {
		return map[string]any{}, content, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, delimiter), "\r\n")
	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return nil, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	meta := map[string]any{}
	if raw := bytes.TrimSpace(rest[:end]); len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	body := rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r\n"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, body, nil
}

// collectVars returns the sorted union of placeholder names across the
// given template strings.
func collectVars(templates ...string) []string {
	seen := map[string]struct{}{}
	for _, s := range templates {
		for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
			seen[m[1]] = struct{}{}
		}
	}

	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}
