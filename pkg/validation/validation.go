// Package validation checks a built preference graph and produces the
// pre-grouping diagnostics: popular students, likely typos, isolated students.
package validation

import (
	"fmt"

	"github.com/gilchrisn/peer-grouping/pkg/models"
	"github.com/gilchrisn/peer-grouping/pkg/prefgraph"
)

// ValidateGraphStructure checks that every row references allocated ids, never
// names its own requester and has no repeated request.
func ValidateGraphStructure(graph *prefgraph.Graph) error {
	var errors models.ValidationErrors

	if graph == nil || graph.Registry == nil {
		return models.ValidationError{Field: "graph", Message: "graph and registry cannot be nil"}
	}

	if len(graph.Source) != len(graph.Rows) {
		errors = append(errors, models.ValidationError{
			Field:   "source",
			Message: "source index must have one entry per row",
			Value:   fmt.Sprintf("%d != %d", len(graph.Source), len(graph.Rows)),
		})
	}

	n := graph.N()
	requesters := make(map[models.StudentID]int)
	for i, row := range graph.Rows {
		if err := validateRow(i, row, n); err != nil {
			if ve, ok := err.(models.ValidationErrors); ok {
				errors = append(errors, ve...)
			}
		}
		if prev, dup := requesters[row.Requester]; dup {
			errors = append(errors, models.ValidationError{
				Field:   fmt.Sprintf("rows[%d].requester", i),
				Message: fmt.Sprintf("student already submitted in row %d", prev),
				Value:   fmt.Sprint(row.Requester),
			})
		}
		requesters[row.Requester] = i
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// validateRow checks a single request row against the id range [0, n)
func validateRow(index int, row models.RequestRow, n int) error {
	var errors models.ValidationErrors

	inRange := func(id models.StudentID) bool { return id >= 0 && int(id) < n }

	if !inRange(row.Requester) {
		errors = append(errors, models.ValidationError{
			Field:   fmt.Sprintf("rows[%d].requester", index),
			Message: "id out of range",
			Value:   fmt.Sprint(row.Requester),
		})
	}

	if len(row.Requested) > prefgraph.MaxRequests {
		errors = append(errors, models.ValidationError{
			Field:   fmt.Sprintf("rows[%d].requested", index),
			Message: fmt.Sprintf("at most %d requests allowed", prefgraph.MaxRequests),
			Value:   fmt.Sprint(len(row.Requested)),
		})
	}

	seen := make(map[models.StudentID]bool)
	for j, q := range row.Requested {
		field := fmt.Sprintf("rows[%d].requested[%d]", index, j)
		switch {
		case !inRange(q):
			errors = append(errors, models.ValidationError{Field: field, Message: "id out of range", Value: fmt.Sprint(q)})
		case q == row.Requester:
			errors = append(errors, models.ValidationError{Field: field, Message: "self request", Value: fmt.Sprint(q)})
		case seen[q]:
			errors = append(errors, models.ValidationError{Field: field, Message: "duplicate request", Value: fmt.Sprint(q)})
		}
		seen[q] = true
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
