// Package weights accumulates co-presence and direct-ask weight per student pair.
package weights

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/peer-grouping/pkg/models"
)

const (
	// CoPresence is added for every pair named together in one submission.
	CoPresence = 0.5
	// DirectAsk is added on top of CoPresence for every requester -> requested pair.
	DirectAsk = 0.5
)

// Accumulator maps PairKey to weight. Weights only grow, always in steps of 0.5.
type Accumulator struct {
	weights map[models.PairKey]float64
	order   []models.PairKey
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		weights: make(map[models.PairKey]float64),
	}
}

// Accumulate adds every row to a fresh accumulator.
func Accumulate(rows []models.RequestRow) *Accumulator {
	acc := NewAccumulator()
	for _, row := range rows {
		acc.AddRow(row)
	}
	return acc
}

// AddRow adds the co-presence signal for every pair among the requester and the
// requested ids, then the direct-ask signal for each requester -> requested pair.
// Repeated ids in a row count once.
func (a *Accumulator) AddRow(row models.RequestRow) {
	members := dedupe(row.Members())

	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a.add(models.NewPairKey(members[i], members[j]), CoPresence)
		}
	}

	for _, q := range members[1:] {
		a.add(models.NewPairKey(row.Requester, q), DirectAsk)
	}
}

func (a *Accumulator) add(key models.PairKey, w float64) {
	if _, ok := a.weights[key]; !ok {
		a.order = append(a.order, key)
	}
	a.weights[key] += w
}

// Weight returns the weight of (x, y). Absent pairs report false.
func (a *Accumulator) Weight(x, y models.StudentID) (float64, bool) {
	w, ok := a.weights[models.NewPairKey(x, y)]
	return w, ok
}

// Pairs returns every pair in the order it was first written.
func (a *Accumulator) Pairs() []models.PairKey {
	out := make([]models.PairKey, len(a.order))
	copy(out, a.order)
	return out
}

// Len is the number of distinct pairs.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// TotalWeight sums every pair weight.
func (a *Accumulator) TotalWeight() float64 {
	total := 0.0
	for _, w := range a.weights {
		total += w
	}
	return total
}

// IsHalfStep reports whether w is a positive multiple of 0.5.
func IsHalfStep(w float64) bool {
	doubled := w * 2
	return w > 0 && doubled == math.Trunc(doubled)
}

// Graph exports the weights as an undirected gonum graph with nodes 0..n-1.
// Students without any pair stay as isolated nodes.
func (a *Accumulator) Graph(n int) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, key := range a.order {
		if int(key.High) >= n || key.Low == key.High {
			continue
		}
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(int64(key.Low)),
			T: simple.Node(int64(key.High)),
			W: a.weights[key],
		})
	}
	return g
}

func dedupe(ids []models.StudentID) []models.StudentID {
	seen := make(map[models.StudentID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
