// Package ingest reads survey responses into submissions for the graph builder.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gilchrisn/peer-grouping/pkg/prefgraph"
)

// Columns names the header cells to read. Either FullName or both FirstName and
// LastName must be present in the file.
type Columns struct {
	FirstName string   `json:"first_name" mapstructure:"first_name_column"`
	LastName  string   `json:"last_name" mapstructure:"last_name_column"`
	FullName  string   `json:"full_name,omitempty" mapstructure:"full_name_column"`
	Requested []string `json:"requested" mapstructure:"requested_columns"`
}

// DefaultColumns matches the questions of the peer-preference survey form.
func DefaultColumns() Columns {
	return Columns{
		FirstName: "What is your FIRST name?",
		LastName:  "What is your LAST name?",
		Requested: []string{
			"Who is ONE other student in your class that you want to work with?",
			"Who is ANOTHER other student in your class that you want to work with?",
			"Who is a THIRD student in your class that you want to work with?",
			"OPTIONAL: Who is a FOURTH student in your section that you want to work with?",
		},
	}
}

// ErrMissingColumn is returned when the header lacks the requester columns.
var ErrMissingColumn = errors.New("missing column")

// Result is what ReadCSV produced. MissingColumns lists requested columns that
// were absent from the header; their cells are treated as empty.
type Result struct {
	Submissions    []prefgraph.Submission
	MissingColumns []string
}

// ReadFile opens path and reads it with ReadCSV.
func ReadFile(path string, cols Columns) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open responses file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, cols)
}

// ReadCSV parses a header row and one submission per following record. Header
// cells are trimmed before matching. Rows whose requester cells are all empty
// are skipped.
func ReadCSV(r io.Reader, cols Columns) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	lookup := func(name string) (int, bool) {
		i, ok := index[strings.TrimSpace(name)]
		return i, ok
	}

	var nameCols []int
	if i, ok := lookup(cols.FullName); cols.FullName != "" && ok {
		nameCols = []int{i}
	} else {
		first, okFirst := lookup(cols.FirstName)
		last, okLast := lookup(cols.LastName)
		if !okFirst || !okLast {
			return nil, fmt.Errorf("%w: need %q and %q", ErrMissingColumn, cols.FirstName, cols.LastName)
		}
		nameCols = []int{first, last}
	}

	result := &Result{}
	var requestedCols []int
	for _, c := range cols.Requested {
		i, ok := lookup(c)
		if !ok {
			result.MissingColumns = append(result.MissingColumns, c)
			continue
		}
		requestedCols = append(requestedCols, i)
	}

	cell := func(record []string, i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read responses: %w", err)
		}
		line, _ := reader.FieldPos(0)

		parts := make([]string, 0, len(nameCols))
		for _, i := range nameCols {
			if v := cell(record, i); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			continue
		}

		sub := prefgraph.Submission{
			Requester: strings.Join(parts, " "),
			Line:      line,
		}
		if len(nameCols) == 2 && len(parts) == 2 {
			sub.RequesterFirst, sub.RequesterLast = parts[0], parts[1]
		}
		for _, i := range requestedCols {
			sub.Requested = append(sub.Requested, cell(record, i))
		}
		result.Submissions = append(result.Submissions, sub)
	}

	return result, nil
}
