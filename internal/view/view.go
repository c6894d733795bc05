// Package view renders upload sessions for the terminal.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dev-shimada/regscan/internal/csv"
	"github.com/dev-shimada/regscan/internal/session"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// DefaultRows is how many records a preview shows.
const DefaultRows = 5

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q: want table, json or yaml", s)
	}
}

type Renderer struct {
	format Format
	rows   int
}

// New returns a renderer showing at most rows records per session. rows <= 0
// shows every record.
func New(format Format, rows int) *Renderer {
	return &Renderer{format: format, rows: rows}
}

type preview struct {
	File    string       `json:"file" yaml:"file"`
	Records int          `json:"records" yaml:"records"`
	Headers []string     `json:"headers" yaml:"headers"`
	Rows    []csv.Record `json:"rows" yaml:"rows"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty"`
}

func newPreview(s *session.Session, rows int) preview {
	p := preview{
		File:    s.FileName,
		Records: s.Len(),
		Headers: []string{},
		Rows:    []csv.Record{},
	}
	if s.Err != nil {
		p.Error = s.Err.Error()
	}
	if s.Table != nil {
		p.Headers = s.Table.Columns()
		p.Rows = append(p.Rows, s.Preview(rows)...)
	}
	return p
}

func (r *Renderer) Render(w io.Writer, s *session.Session) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newPreview(s, r.rows))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newPreview(s, r.rows)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.renderTable(w, s)
	}
}

func (r *Renderer) renderTable(w io.Writer, s *session.Session) error {
	prefix := ""
	if s.FileName != "" {
		prefix = s.FileName + ": "
	}
	switch {
	case s.Err != nil:
		_, err := fmt.Fprintf(w, "%serror: %v\n", prefix, s.Err)
		return err
	case s.Loading:
		_, err := fmt.Fprintf(w, "%sloading...\n", prefix)
		return err
	case !s.HasData():
		_, err := fmt.Fprintf(w, "%sNo data uploaded yet\nUpload a CSV file to see the preview\n", prefix)
		return err
	}

	total := s.Len()
	if _, err := fmt.Fprintf(w, "%s%d records loaded\n", prefix, total); err != nil {
		return err
	}

	// column names are shown exactly as parsed
	table := tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header(s.Table.Columns())
	rows := s.Preview(r.rows)
	for _, rec := range rows {
		if err := table.Append(rec.Values()); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(rows) < total {
		if _, err := fmt.Fprintf(w, "Showing first %d rows of %d total records\n", len(rows), total); err != nil {
			return err
		}
	}
	return nil
}

// RenderAll renders each session in turn, separated by a blank line in table
// format.
func (r *Renderer) RenderAll(w io.Writer, sessions []*session.Session) error {
	for i, s := range sessions {
		if i > 0 && r.format == FormatTable {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := r.Render(w, s); err != nil {
			return err
		}
	}
	return nil
}
