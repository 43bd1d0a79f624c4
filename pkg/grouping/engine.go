// Package grouping partitions students into size-bounded groups by merging
// components along priority edges, strongest tier first.
//
// The engine is a greedy heuristic: a merge is never undone, and an edge whose
// merge would exceed the size cap is skipped rather than treated as an error.
// Tier 1 is fully drained before tier 2 starts, so an early merge can only block
// a later edge of the same or a weaker tier.
package grouping

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// Outcome is what happened to one edge.
type Outcome int

const (
	Merged Outcome = iota
	Rejected
	AlreadyJoined
)

func (o Outcome) String() string {
	switch o {
	case Merged:
		return "merged"
	case Rejected:
		return "rejected"
	case AlreadyJoined:
		return "already_joined"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText renders the outcome name in JSON reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Decision records one processed edge with the component sizes seen before it.
type Decision struct {
	Edge    models.PriorityEdge `json:"edge"`
	Outcome Outcome             `json:"outcome"`
	SizeA   int                 `json:"size_a"`
	SizeB   int                 `json:"size_b"`
}

// TierStats counts outcomes per tier.
type TierStats struct {
	Tier          models.Tier `json:"tier"`
	Edges         int         `json:"edges"`
	Merges        int         `json:"merges"`
	Rejections    int         `json:"rejections"`
	AlreadyJoined int         `json:"already_joined"`
}

// Statistics summarizes a clustering run.
type Statistics struct {
	NumStudents  int         `json:"num_students"`
	NumEdges     int         `json:"num_edges"`
	NumGroups    int         `json:"num_groups"`
	NumSingleton int         `json:"num_singleton"`
	Tiers        []TierStats `json:"tiers"`
	RuntimeMS    int64       `json:"runtime_ms"`
}

// Result is the final partition. Every id in [0, N) appears in exactly one group.
type Result struct {
	Groups       [][]models.StudentID `json:"groups"`
	MaxGroupSize int                  `json:"max_group_size"`
	Decisions    []Decision           `json:"decisions,omitempty"`
	Statistics   Statistics           `json:"statistics"`

	groupOf []int
}

// N is the number of students covered.
func (r *Result) N() int {
	return len(r.groupOf)
}

// GroupOf returns the index into Groups holding id.
func (r *Result) GroupOf(id models.StudentID) (int, bool) {
	if id < 0 || int(id) >= len(r.groupOf) {
		return 0, false
	}
	return r.groupOf[id], true
}

// Engine runs the priority-constrained clustering.
type Engine struct {
	opts   Options
	logger zerolog.Logger
}

// NewEngine validates opts. An invalid group size fails here, before any edge is seen.
func NewEngine(opts Options, logger zerolog.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts, logger: logger}, nil
}

// Options returns the validated options.
func (e *Engine) Options() Options {
	return e.opts
}

// Cluster merges n singleton components along edges and returns the partition.
func (e *Engine) Cluster(n int, edges []models.PriorityEdge) (*Result, error) {
	startTime := time.Now()

	if n < 0 {
		return nil, &models.InvariantViolationError{Op: "grouping.Cluster", Detail: fmt.Sprintf("negative student count %d", n)}
	}
	for _, edge := range edges {
		if err := checkEdge(edge, n); err != nil {
			return nil, err
		}
	}

	e.logger.Info().
		Int("students", n).
		Int("edges", len(edges)).
		Int("max_group_size", e.opts.MaxGroupSize).
		Str("tie_break", string(e.opts.TieBreak)).
		Msg("Starting priority clustering")

	uf := newBoundedUnionFind(n, e.opts.MaxGroupSize)
	sorted := SortEdges(edges, e.opts.TieBreak)

	tiers := make([]TierStats, 4)
	for i := range tiers {
		tiers[i].Tier = models.Tier(i + 1)
	}

	var decisions []Decision
	for _, edge := range sorted {
		a, b := int(edge.A), int(edge.B)
		sizeA, sizeB := uf.componentSize(a), uf.componentSize(b)
		outcome := uf.union(a, b)

		stats := &tiers[edge.Tier-1]
		stats.Edges++
		switch outcome {
		case Merged:
			stats.Merges++
		case Rejected:
			stats.Rejections++
			e.logger.Debug().
				Int("a", a).
				Int("b", b).
				Int("tier", int(edge.Tier)).
				Int("merged_size", sizeA+sizeB).
				Msg("Merge rejected by size cap")
		case AlreadyJoined:
			stats.AlreadyJoined++
		}

		if e.opts.RecordDecisions {
			decisions = append(decisions, Decision{Edge: edge, Outcome: outcome, SizeA: sizeA, SizeB: sizeB})
		}
	}

	result := &Result{
		MaxGroupSize: e.opts.MaxGroupSize,
		Decisions:    decisions,
		groupOf:      make([]int, n),
	}
	for g, members := range uf.components() {
		group := make([]models.StudentID, len(members))
		for i, id := range members {
			group[i] = models.StudentID(id)
			result.groupOf[id] = g
		}
		result.Groups = append(result.Groups, group)
		if len(group) == 1 {
			result.Statistics.NumSingleton++
		}
	}

	result.Statistics.NumStudents = n
	result.Statistics.NumEdges = len(edges)
	result.Statistics.NumGroups = len(result.Groups)
	result.Statistics.Tiers = tiers
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()

	for _, ts := range tiers {
		if ts.Edges == 0 {
			continue
		}
		e.logger.Debug().
			Int("tier", int(ts.Tier)).
			Int("edges", ts.Edges).
			Int("merges", ts.Merges).
			Int("rejections", ts.Rejections).
			Msg("Tier drained")
	}
	e.logger.Info().
		Int("groups", result.Statistics.NumGroups).
		Int("singletons", result.Statistics.NumSingleton).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Priority clustering completed")

	return result, nil
}

// SortEdges orders edges by tier ascending. Within a tier the order follows tb.
// The input slice is left untouched.
func SortEdges(edges []models.PriorityEdge, tb TieBreak) []models.PriorityEdge {
	sorted := make([]models.PriorityEdge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Tier != sorted[j].Tier {
			return sorted[i].Tier < sorted[j].Tier
		}
		if tb == Lexicographic {
			return sorted[i].Key().Less(sorted[j].Key())
		}
		return false
	})
	return sorted
}

func checkEdge(edge models.PriorityEdge, n int) error {
	switch {
	case edge.A < 0 || int(edge.A) >= n || edge.B < 0 || int(edge.B) >= n:
		return &models.InvariantViolationError{
			Op:     "grouping.Cluster",
			Detail: fmt.Sprintf("edge (%d,%d) references an id outside [0,%d)", edge.A, edge.B, n),
		}
	case edge.A == edge.B:
		return &models.InvariantViolationError{
			Op:     "grouping.Cluster",
			Detail: fmt.Sprintf("self edge on %d", edge.A),
		}
	case !edge.Tier.Valid():
		return &models.InvariantViolationError{
			Op:     "grouping.Cluster",
			Detail: fmt.Sprintf("edge (%d,%d) has unknown tier %d", edge.A, edge.B, edge.Tier),
		}
	}
	return nil
}
