package grouping

import (
	"fmt"

	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// TieBreak orders edges that share a tier.
type TieBreak string

const (
	// Lexicographic sorts equal-tier edges by their canonical (low, high) pair.
	Lexicographic TieBreak = "lexicographic"
	// InputOrder keeps equal-tier edges in the order they were classified.
	InputOrder TieBreak = "input"
)

// DefaultMaxGroupSize is the group cap used when none is configured.
const DefaultMaxGroupSize = 4

// Options configures the clustering engine.
type Options struct {
	MaxGroupSize int      `json:"max_group_size"`
	TieBreak     TieBreak `json:"tie_break"`
	// RecordDecisions keeps a per-edge trace in Result.Decisions.
	RecordDecisions bool `json:"record_decisions"`
}

// DefaultOptions returns M=4 with a lexicographic tie-break.
func DefaultOptions() Options {
	return Options{
		MaxGroupSize:    DefaultMaxGroupSize,
		TieBreak:        Lexicographic,
		RecordDecisions: true,
	}
}

// Validate rejects options before any processing starts.
func (o Options) Validate() error {
	if o.MaxGroupSize < 1 {
		return &models.InvalidConfigError{Field: "grouping.max_group_size", Value: o.MaxGroupSize, Reason: "must be at least 1"}
	}
	switch o.TieBreak {
	case Lexicographic, InputOrder:
	default:
		return &models.InvalidConfigError{
			Field:  "grouping.tie_break",
			Value:  o.TieBreak,
			Reason: fmt.Sprintf("must be %q or %q", Lexicographic, InputOrder),
		}
	}
	return nil
}
