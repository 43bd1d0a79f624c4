// Package models holds the data types shared by every stage of the grouping pipeline.
package models

import "fmt"

// StudentID is a dense integer in [0, N) allocated in first-seen order.
type StudentID int

// RequestRow is one student's submission after identity resolution.
// Requested keeps submission order, has no duplicates and never contains Requester.
type RequestRow struct {
	Requester StudentID   `json:"requester"`
	Requested []StudentID `json:"requested"`
}

// Members returns the requester followed by every requested id.
func (r RequestRow) Members() []StudentID {
	members := make([]StudentID, 0, len(r.Requested)+1)
	members = append(members, r.Requester)
	return append(members, r.Requested...)
}

// PairKey is an unordered pair of students, stored with Low <= High.
type PairKey struct {
	Low  StudentID `json:"low"`
	High StudentID `json:"high"`
}

// NewPairKey canonicalizes (a, b) so that NewPairKey(a, b) == NewPairKey(b, a).
func NewPairKey(a, b StudentID) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

func (p PairKey) String() string {
	return fmt.Sprintf("%d_%d", p.Low, p.High)
}

// Less orders pairs lexicographically on (Low, High).
func (p PairKey) Less(o PairKey) bool {
	if p.Low != o.Low {
		return p.Low < o.Low
	}
	return p.High < o.High
}

// Tier is a priority bucket; 1 is the strongest link and 4 the weakest.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
)

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	return t >= Tier1 && t <= Tier4
}

// PriorityEdge links two students with a tier derived from their accumulated weight.
type PriorityEdge struct {
	A    StudentID `json:"a"`
	B    StudentID `json:"b"`
	Tier Tier      `json:"tier"`
}

// Key returns the canonical pair for the edge.
func (e PriorityEdge) Key() PairKey {
	return NewPairKey(e.A, e.B)
}

// UnmetRequest is a direct ask whose two students ended up in different groups.
type UnmetRequest struct {
	Requester StudentID `json:"requester"`
	Requested StudentID `json:"requested"`
}
