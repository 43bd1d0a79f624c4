package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// Writer renders a Document.
type Writer interface {
	Write(w io.Writer, doc *Document) error
}

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Formats lists every name accepted by NewWriter.
var Formats = []string{FormatText, FormatJSON, FormatCSV}

// NewWriter returns the writer for format.
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatText:
		return TextWriter{}, nil
	case FormatJSON:
		return JSONWriter{Indent: "  "}, nil
	case FormatCSV:
		return CSVWriter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// TextWriter prints the groups and then the unmet asks.
type TextWriter struct{}

func (TextWriter) Write(w io.Writer, doc *Document) error {
	var b strings.Builder
	b.WriteString("Groups:\n")
	for _, g := range doc.Groups {
		names := make([]string, len(g.Students))
		for i, s := range g.Students {
			names[i] = s.Name
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteByte('\n')
	}

	b.WriteString("\nStudents whose asks were not met:\n")
	if len(doc.Unmet) == 0 {
		b.WriteString("(none)\n")
	}
	for _, u := range doc.Unmet {
		fmt.Fprintf(&b, "%s -> %s\n", u.Requester.Name, u.Requested.Name)
	}

	for _, warning := range doc.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", warning)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONWriter encodes the whole document.
type JSONWriter struct {
	Indent string
}

func (jw JSONWriter) Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	if jw.Indent != "" {
		enc.SetIndent("", jw.Indent)
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// CSVWriter writes one row per student: group number, id, name, and the names
// of that student's unmet asks joined with "; ".
type CSVWriter struct{}

func (CSVWriter) Write(w io.Writer, doc *Document) error {
	unmetBy := make(map[models.StudentID][]string)
	for _, u := range doc.Unmet {
		unmetBy[u.Requester.ID] = append(unmetBy[u.Requester.ID], u.Requested.Name)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group", "student_id", "student", "unmet_requests"}); err != nil {
		return err
	}
	for _, g := range doc.Groups {
		for _, s := range g.Students {
			record := []string{strconv.Itoa(g.Number), strconv.Itoa(int(s.ID)), s.Name, strings.Join(unmetBy[s.ID], "; ")}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
