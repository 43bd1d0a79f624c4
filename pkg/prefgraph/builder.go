// Package prefgraph converts raw submissions into request rows keyed by student id.
package prefgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gilchrisn/peer-grouping/pkg/identity"
	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// MaxRequests is the number of peers a student may name.
const MaxRequests = 4

// ErrDuplicateSubmission marks a row whose requester already submitted earlier.
var ErrDuplicateSubmission = errors.New("student already submitted")

// Submission is one raw survey response. Empty Requested entries mean "no request".
// When RequesterFirst and RequesterLast are both set they are used as-is instead of
// splitting Requester, so multi-word first or last names survive.
type Submission struct {
	Requester      string   `json:"requester"`
	RequesterFirst string   `json:"requester_first,omitempty"`
	RequesterLast  string   `json:"requester_last,omitempty"`
	Requested      []string `json:"requested"`
	// Line is the source line for error reporting; zero when unknown.
	Line int `json:"line,omitempty"`
}

// RowError is a recoverable per-row failure. Field is "requester" or "requested[i]".
type RowError struct {
	Row   int
	Line  int
	Field string
	Err   error
}

func (e RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d (line %d) %s: %v", e.Row, e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d %s: %v", e.Row, e.Field, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Graph is the output of the builder: accepted rows plus the id registry.
type Graph struct {
	Rows      []models.RequestRow
	Registry  *Registry
	RowErrors []RowError
	// Source maps each accepted row back to its submission index.
	Source []int
}

// N is the number of distinct students.
func (g *Graph) N() int {
	return g.Registry.Len()
}

// Builder owns the id registry while rows are added.
type Builder struct {
	registry  *Registry
	submitted map[string]int
	rows      []models.RequestRow
	source    []int
	errs      []RowError
}

// NewBuilder creates a builder with an empty registry.
func NewBuilder() *Builder {
	return &Builder{registry: NewRegistry(), submitted: make(map[string]int)}
}

// Add resolves one submission. Names are resolved before any id is allocated so a
// skipped row never grows the registry. A malformed requester skips the row; a
// malformed requested name is dropped and the rest of the row is kept. Only the
// first submission of each requester is kept; later ones are reported and skipped.
func (b *Builder) Add(index int, sub Submission) (models.RequestRow, []RowError, bool) {
	var errs []RowError

	requester, err := resolveRequester(sub)
	if err == nil {
		if prev, dup := b.submitted[requester.Key()]; dup {
			err = fmt.Errorf("%w in row %d", ErrDuplicateSubmission, prev)
		}
	}
	if err != nil {
		errs = append(errs, RowError{Row: index, Line: sub.Line, Field: "requester", Err: err})
		b.errs = append(b.errs, errs...)
		return models.RequestRow{}, errs, false
	}
	b.submitted[requester.Key()] = index

	requested := make([]identity.StudentIdentity, 0, len(sub.Requested))
	seen := map[string]bool{requester.Key(): true}
	for i, raw := range sub.Requested {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, err := identity.Resolve(raw)
		if err != nil {
			errs = append(errs, RowError{Row: index, Line: sub.Line, Field: fmt.Sprintf("requested[%d]", i), Err: err})
			continue
		}
		if seen[s.Key()] {
			continue
		}
		if len(requested) == MaxRequests {
			errs = append(errs, RowError{
				Row:   index,
				Line:  sub.Line,
				Field: fmt.Sprintf("requested[%d]", i),
				Err:   fmt.Errorf("more than %d requests, ignoring %q", MaxRequests, raw),
			})
			continue
		}
		seen[s.Key()] = true
		requested = append(requested, s)
	}

	row := models.RequestRow{Requester: b.registry.Intern(requester)}
	for _, s := range requested {
		row.Requested = append(row.Requested, b.registry.Intern(s))
	}

	b.rows = append(b.rows, row)
	b.source = append(b.source, index)
	b.errs = append(b.errs, errs...)
	return row, errs, true
}

func resolveRequester(sub Submission) (identity.StudentIdentity, error) {
	first, last := strings.TrimSpace(sub.RequesterFirst), strings.TrimSpace(sub.RequesterLast)
	if first != "" && last != "" {
		return identity.New(first, "", last), nil
	}
	return identity.Resolve(sub.Requester)
}

// Graph returns the rows accepted so far.
func (b *Builder) Graph() *Graph {
	return &Graph{
		Rows:      b.rows,
		Registry:  b.registry,
		RowErrors: b.errs,
		Source:    b.source,
	}
}

// Build runs every submission through a fresh builder.
func Build(subs []Submission) *Graph {
	b := NewBuilder()
	for i, sub := range subs {
		b.Add(i, sub)
	}
	return b.Graph()
}
