// Package spreadsheet loads the ordered recipient list from tabular data.
//
// The first row is a header. One column must be the recipient address
// ("email", case-insensitive, or any header ending in "email"); a "name"
// column becomes the display name; columns whose header starts with "cc"
// become carbon-copy addresses; every other column becomes a template
// variable keyed by the normalized header (lowercased, spaces replaced
// with underscores).
//
// Rows are returned in file order and are deliberately not validated here:
// the dispatch engine's validator reports problems per recipient so a bad
// row yields a skipped outcome instead of aborting the load.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrymomot/massmailer/pkg/mailer"
)

var (
	// ErrNoHeader indicates an empty input with no header row.
	ErrNoHeader = errors.New("spreadsheet has no header row")

	// ErrNoEmailColumn indicates the header row has no email column.
	ErrNoEmailColumn = errors.New("spreadsheet has no email column")
)

// Load reads recipients from CSV data. Each input row produces exactly one
// recipient; duplicates are preserved so the run report stays positionally
// aligned with the source rows.
func Load(r io.Reader) ([]mailer.Recipient, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var recipients []mailer.Recipient
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		recipients = append(recipients, cols.recipient(row))
	}
	return recipients, nil
}

// columnMap records what each CSV column feeds into.
type columnMap struct {
	email int
	name  int // -1 when absent
	cc    []int
	vars  map[int]string // column index -> variable name
}

func mapColumns(header []string) (*columnMap, error) {
	cols := &columnMap{email: -1, name: -1, vars: map[int]string{}}
	for i, h := range header {
		key := normalize(h)
		switch {
		case cols.email == -1 && (key == "email" || strings.HasSuffix(key, "_email")):
			cols.email = i
		case cols.name == -1 && key == "name":
			cols.name = i
		case strings.HasPrefix(key, "cc"):
			cols.cc = append(cols.cc, i)
		default:
			cols.vars[i] = key
		}
	}
	if cols.email == -1 {
		return nil, ErrNoEmailColumn
	}
	return cols, nil
}

func (c *columnMap) recipient(row []string) mailer.Recipient {
	rec := mailer.Recipient{
		Email:     field(row, c.email),
		Variables: make(map[string]string, len(c.vars)),
	}
	if c.name >= 0 {
		rec.Name = field(row, c.name)
	}
	for _, i := range c.cc {
		if cc := field(row, i); cc != "" {
			rec.CC = append(rec.CC, cc)
		}
	}
	for i, name := range c.vars {
		rec.Variables[name] = field(row, i)
	}
	return rec
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalize(header string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
}
