package validation

import (
	"sort"

	"github.com/agext/levenshtein"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/gilchrisn/peer-grouping/pkg/identity"
	"github.com/gilchrisn/peer-grouping/pkg/models"
	"github.com/gilchrisn/peer-grouping/pkg/prefgraph"
	"github.com/gilchrisn/peer-grouping/pkg/weights"
)

// Options tunes the diagnostics.
type Options struct {
	// TypoTolerance is the total edit distance allowed between two names.
	TypoTolerance int `json:"typo_tolerance"`
	// TopPopular is how many of the most requested students to list.
	TopPopular int `json:"top_popular"`
}

// DefaultOptions returns tolerance 4 and the top 3 students.
func DefaultOptions() Options {
	return Options{TypoTolerance: 4, TopPopular: 3}
}

// Popularity counts how often a student was requested.
type Popularity struct {
	ID    models.StudentID `json:"id"`
	Name  string           `json:"name"`
	Count int              `json:"count"`
}

// TypoPair is two distinct identities whose names are close enough to be the same person.
type TypoPair struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Distance int    `json:"distance"`
}

// Report is the diagnostic summary printed before grouping.
type Report struct {
	Rows           int                `json:"rows"`
	RowErrors      int                `json:"row_errors"`
	Mentions       int                `json:"mentions"`
	UniqueStudents int                `json:"unique_students"`
	Popular        []Popularity       `json:"popular"`
	PotentialTypos []TypoPair         `json:"potential_typos"`
	Isolated       []models.StudentID `json:"isolated"`
	NonResponders  []models.StudentID `json:"non_responders"`
	Components     int                `json:"components"`
}

// Analyze builds the diagnostic report. It never changes the graph; grouping
// does not depend on anything it finds.
func Analyze(graph *prefgraph.Graph, acc *weights.Accumulator, opts Options) *Report {
	n := graph.N()
	report := &Report{
		Rows:           len(graph.Rows),
		RowErrors:      len(graph.RowErrors),
		UniqueStudents: n,
	}

	requestedCount := make([]int, n)
	responded := make([]bool, n)
	for _, row := range graph.Rows {
		report.Mentions += 1 + len(row.Requested)
		responded[row.Requester] = true
		for _, q := range row.Requested {
			requestedCount[q]++
		}
	}

	report.Popular = topRequested(graph.Registry, requestedCount, opts.TopPopular)
	report.PotentialTypos = potentialTypos(graph.Registry, opts.TypoTolerance)

	for id := 0; id < n; id++ {
		if !responded[id] {
			report.NonResponders = append(report.NonResponders, models.StudentID(id))
		}
	}

	components := topo.ConnectedComponents(acc.Graph(n))
	report.Components = len(components)
	for _, c := range components {
		if len(c) == 1 {
			report.Isolated = append(report.Isolated, models.StudentID(c[0].ID()))
		}
	}
	sort.Slice(report.Isolated, func(i, j int) bool { return report.Isolated[i] < report.Isolated[j] })

	return report
}

func topRequested(reg *prefgraph.Registry, counts []int, limit int) []Popularity {
	var popular []Popularity
	for id, count := range counts {
		if count == 0 {
			continue
		}
		name, _ := reg.Name(models.StudentID(id))
		popular = append(popular, Popularity{ID: models.StudentID(id), Name: name, Count: count})
	}
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Count > popular[j].Count
	})
	if limit >= 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular
}

func potentialTypos(reg *prefgraph.Registry, tolerance int) []TypoPair {
	var pairs []TypoPair
	for i := 0; i < reg.Len(); i++ {
		a, _ := reg.Identity(models.StudentID(i))
		for j := i + 1; j < reg.Len(); j++ {
			b, _ := reg.Identity(models.StudentID(j))
			if d, ok := PersonNameMatch(a, b, tolerance); ok {
				pairs = append(pairs, TypoPair{A: a.FullName(), B: b.FullName(), Distance: d})
			}
		}
	}
	return pairs
}

// PersonNameMatch reports whether two identities probably name the same person.
// Middle names are ignored. First and last names may each differ by at most half
// the tolerance, and their combined edit distance by at most the tolerance.
func PersonNameMatch(a, b identity.StudentIdentity, tolerance int) (int, bool) {
	if tolerance < 0 || a.Key() == b.Key() {
		return 0, false
	}
	half := tolerance / 2
	first := levenshtein.Distance(a.First, b.First, nil)
	last := levenshtein.Distance(a.Last, b.Last, nil)
	if first > half || last > half {
		return first + last, false
	}
	// Edits must not rewrite a whole component.
	if (first > 0 && first >= minLen(a.First, b.First)) || (last > 0 && last >= minLen(a.Last, b.Last)) {
		return first + last, false
	}
	return first + last, first+last <= tolerance
}

func minLen(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	if la < lb {
		return la
	}
	return lb
}
