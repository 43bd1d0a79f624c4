// Package priority maps accumulated pair weight to a discrete tier.
package priority

import (
	"fmt"

	"github.com/gilchrisn/peer-grouping/pkg/models"
	"github.com/gilchrisn/peer-grouping/pkg/weights"
)

// Thresholds are the weight cut-points. Tier1Min..Tier3Min are inclusive lower
// bounds; Tier4Exact is the only weight accepted below Tier3Min and must be a
// multiple of 0.5, since no other weight can be accumulated.
type Thresholds struct {
	Tier1Min   float64 `json:"tier1_min" mapstructure:"tier1_min"`
	Tier2Min   float64 `json:"tier2_min" mapstructure:"tier2_min"`
	Tier3Min   float64 `json:"tier3_min" mapstructure:"tier3_min"`
	Tier4Exact float64 `json:"tier4_exact" mapstructure:"tier4_exact"`
}

// DefaultThresholds returns 3.0 / 2.0 / 1.0 / 0.5.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Tier1Min:   3.0,
		Tier2Min:   2.0,
		Tier3Min:   1.0,
		Tier4Exact: 0.5,
	}
}

// Validate requires strictly descending, positive cut-points and a half-step Tier4Exact.
func (t Thresholds) Validate() error {
	switch {
	case t.Tier4Exact <= 0:
		return &models.InvalidConfigError{Field: "priority.tier4_exact", Value: t.Tier4Exact, Reason: "must be positive"}
	case !weights.IsHalfStep(t.Tier4Exact):
		return &models.InvalidConfigError{Field: "priority.tier4_exact", Value: t.Tier4Exact, Reason: "must be a multiple of 0.5"}
	case t.Tier3Min <= t.Tier4Exact:
		return &models.InvalidConfigError{Field: "priority.tier3_min", Value: t.Tier3Min, Reason: "must exceed tier4_exact"}
	case t.Tier2Min <= t.Tier3Min:
		return &models.InvalidConfigError{Field: "priority.tier2_min", Value: t.Tier2Min, Reason: "must exceed tier3_min"}
	case t.Tier1Min <= t.Tier2Min:
		return &models.InvalidConfigError{Field: "priority.tier1_min", Value: t.Tier1Min, Reason: "must exceed tier2_min"}
	}
	return nil
}

// Tier classifies a weight. Anything that is not a positive multiple of 0.5, or
// that falls below Tier3Min without equalling Tier4Exact, is an invariant violation.
func (t Thresholds) Tier(weight float64) (models.Tier, error) {
	if !weights.IsHalfStep(weight) {
		return 0, &models.InvariantViolationError{
			Op:     "priority.Tier",
			Detail: fmt.Sprintf("weight %v is not a positive multiple of 0.5", weight),
		}
	}
	switch {
	case weight >= t.Tier1Min:
		return models.Tier1, nil
	case weight >= t.Tier2Min:
		return models.Tier2, nil
	case weight >= t.Tier3Min:
		return models.Tier3, nil
	case weight == t.Tier4Exact:
		return models.Tier4, nil
	}
	return 0, &models.InvariantViolationError{
		Op:     "priority.Tier",
		Detail: fmt.Sprintf("weight %v matches no tier", weight),
	}
}

// Classify emits one PriorityEdge per pair in acc, in first-written order.
func Classify(acc *weights.Accumulator, t Thresholds) ([]models.PriorityEdge, error) {
	pairs := acc.Pairs()
	edges := make([]models.PriorityEdge, 0, len(pairs))
	for _, key := range pairs {
		w, _ := acc.Weight(key.Low, key.High)
		tier, err := t.Tier(w)
		if err != nil {
			return nil, fmt.Errorf("pair %s: %w", key, err)
		}
		edges = append(edges, models.PriorityEdge{A: key.Low, B: key.High, Tier: tier})
	}
	return edges, nil
}
