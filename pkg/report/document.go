package report

import (
	"strconv"
	"time"

	"github.com/gilchrisn/peer-grouping/pkg/grouping"
	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// NameFunc resolves a student id to a display name.
type NameFunc func(models.StudentID) (string, bool)

// Student is an id paired with its display name.
type Student struct {
	ID   models.StudentID `json:"id"`
	Name string           `json:"name"`
}

// Group is one output group.
type Group struct {
	Number   int       `json:"number"`
	Students []Student `json:"students"`
}

// UnmetAsk is an unmet request with names attached.
type UnmetAsk struct {
	Requester Student `json:"requester"`
	Requested Student `json:"requested"`
}

// Document is the export view of a run.
type Document struct {
	RunID        string              `json:"run_id,omitempty"`
	GeneratedAt  time.Time           `json:"generated_at"`
	MaxGroupSize int                 `json:"max_group_size"`
	Groups       []Group             `json:"groups"`
	Unmet        []UnmetAsk          `json:"unmet"`
	Statistics   grouping.Statistics `json:"statistics"`
	Modularity   float64             `json:"modularity"`
	Warnings     []string            `json:"warnings,omitempty"`
}

// NewDocument resolves every id through names. Unknown ids render as "#<id>".
func NewDocument(runID string, result *grouping.Result, unmet []models.UnmetRequest, names NameFunc) *Document {
	doc := &Document{
		RunID:        runID,
		GeneratedAt:  time.Now().UTC(),
		MaxGroupSize: result.MaxGroupSize,
		Statistics:   result.Statistics,
	}

	student := func(id models.StudentID) Student {
		name, ok := names(id)
		if !ok {
			name = "#" + strconv.Itoa(int(id))
		}
		return Student{ID: id, Name: name}
	}

	for i, members := range result.Groups {
		g := Group{Number: i + 1}
		for _, id := range members {
			g.Students = append(g.Students, student(id))
		}
		doc.Groups = append(doc.Groups, g)
	}
	for _, u := range unmet {
		doc.Unmet = append(doc.Unmet, UnmetAsk{Requester: student(u.Requester), Requested: student(u.Requested)})
	}
	return doc
}
