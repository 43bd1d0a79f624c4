// Package report lists unmet requests and renders grouping results.
package report

import (
	"fmt"

	"github.com/gilchrisn/peer-grouping/pkg/grouping"
	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// Unmet returns every direct ask whose two students ended in different groups,
// in row order and then request order. Repeats across rows are kept.
func Unmet(rows []models.RequestRow, result *grouping.Result) ([]models.UnmetRequest, error) {
	var unmet []models.UnmetRequest
	for i, row := range rows {
		gr, ok := result.GroupOf(row.Requester)
		if !ok {
			return nil, outOfRange(i, row.Requester, result.N())
		}
		for _, q := range row.Requested {
			gq, ok := result.GroupOf(q)
			if !ok {
				return nil, outOfRange(i, q, result.N())
			}
			if gr != gq {
				unmet = append(unmet, models.UnmetRequest{Requester: row.Requester, Requested: q})
			}
		}
	}
	return unmet, nil
}

func outOfRange(row int, id models.StudentID, n int) error {
	return &models.InvariantViolationError{
		Op:     "report.Unmet",
		Detail: fmt.Sprintf("row %d references id %d outside the clustered range [0,%d)", row, id, n),
	}
}
