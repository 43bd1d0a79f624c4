package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewPairKeyIsUnordered(t *testing.T) {
	cases := [][2]StudentID{{0, 1}, {5, 2}, {3, 3}, {10, 0}}
	for _, c := range cases {
		if NewPairKey(c[0], c[1]) != NewPairKey(c[1], c[0]) {
			t.Errorf("PairKey(%d,%d) != PairKey(%d,%d)", c[0], c[1], c[1], c[0])
		}
		k := NewPairKey(c[0], c[1])
		if k.Low > k.High {
			t.Errorf("pair %v not canonical", k)
		}
	}
}

func TestPairKeyLess(t *testing.T) {
	if !NewPairKey(0, 4).Less(NewPairKey(1, 2)) {
		t.Error("expected (0,4) < (1,2)")
	}
	if !NewPairKey(1, 2).Less(NewPairKey(1, 3)) {
		t.Error("expected (1,2) < (1,3)")
	}
	if NewPairKey(1, 3).Less(NewPairKey(3, 1)) {
		t.Error("equal pairs must not be less")
	}
}

func TestErrorKindsUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"malformed", &MalformedNameError{Raw: "a b c d e", Tokens: 5}, ErrMalformedName},
		{"config", &InvalidConfigError{Field: "max_group_size", Value: 0, Reason: "must be >= 1"}, ErrInvalidConfig},
		{"invariant", &InvariantViolationError{Op: "tier", Detail: "weight 0"}, ErrInvariantViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("row 3: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Fatalf("errors.Is(%v, %v) = false", wrapped, tt.sentinel)
			}
		})
	}
}

func TestRequestRowMembers(t *testing.T) {
	row := RequestRow{Requester: 2, Requested: []StudentID{0, 5}}
	got := row.Members()
	want := []StudentID{2, 0, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
