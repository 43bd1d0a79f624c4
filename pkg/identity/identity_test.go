package identity

import (
	"errors"
	"testing"

	"github.com/gilchrisn/peer-grouping/pkg/models"
)

func TestResolveIsCaseAndWhitespaceInsensitive(t *testing.T) {
	a, err := Resolve("Jane Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Resolve("  jane   doe ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("expected %v == %v", a, b)
	}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}

func TestResolveMiddleNameDistinguishes(t *testing.T) {
	withMiddle, err := Resolve("Jane Q Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	without, _ := Resolve("Jane Doe")
	if withMiddle == without {
		t.Errorf("expected %v != %v", withMiddle, without)
	}
	if withMiddle.Middle != "q" {
		t.Errorf("middle = %q, want q", withMiddle.Middle)
	}
	if got := withMiddle.FullName(); got != "jane q doe" {
		t.Errorf("FullName = %q", got)
	}
}

func TestResolveTokenCounts(t *testing.T) {
	tests := []struct {
		raw    string
		tokens int
		ok     bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"Cher", 1, false},
		{"Ada Lovelace", 2, true},
		{"Ada K Lovelace", 3, true},
		{"Jane Q R Doe", 4, false},
		{"Jane Q R S Doe", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := Resolve(tt.raw)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var malformed *models.MalformedNameError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedNameError, got %v", err)
			}
			if malformed.Tokens != tt.tokens {
				t.Errorf("Tokens = %d, want %d", malformed.Tokens, tt.tokens)
			}
			if !errors.Is(err, models.ErrMalformedName) {
				t.Error("expected errors.Is ErrMalformedName")
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		a, _ := Resolve("ÉMILE  Zola")
		b, _ := Resolve("émile zola")
		if a != b {
			t.Fatalf("iteration %d: %v != %v", i, a, b)
		}
	}
}

func TestNewKeepsMultiWordComponents(t *testing.T) {
	id := New("Mary  Ann", "", " Van Der Berg")
	if got := id.FullName(); got != "mary ann van der berg" {
		t.Errorf("FullName = %q", got)
	}
	if id.First != "mary ann" || id.Last != "van der berg" {
		t.Errorf("components = %+v", id)
	}
}

func TestDisplayName(t *testing.T) {
	id := New(" JANE ", "", "doe")
	if got := id.DisplayName(); got != "Jane Doe" {
		t.Errorf("DisplayName = %q", got)
	}
}
