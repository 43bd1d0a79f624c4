// Package identity turns free-text student names into canonical identities.
package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// StudentIdentity is a normalized name. Middle is empty when the name has two tokens.
type StudentIdentity struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

// New builds an identity from already separated components, normalizing each one.
// A component may hold several words; runs of whitespace collapse to one space.
func New(first, middle, last string) StudentIdentity {
	return StudentIdentity{
		First:  normalize(first),
		Middle: normalize(middle),
		Last:   normalize(last),
	}
}

// Resolve parses a raw name. The first token is the first name, the last token the
// last name, and a third token (only when exactly three are present) the middle name.
func Resolve(raw string) (StudentIdentity, error) {
	tokens := strings.Fields(norm.NFKC.String(raw))
	switch len(tokens) {
	case 2:
		return New(tokens[0], "", tokens[1]), nil
	case 3:
		return New(tokens[0], tokens[1], tokens[2]), nil
	default:
		return StudentIdentity{}, &models.MalformedNameError{Raw: raw, Tokens: len(tokens)}
	}
}

// Key is the hashing key over (first, middle-or-empty, last).
func (s StudentIdentity) Key() string {
	return s.First + "\x00" + s.Middle + "\x00" + s.Last
}

// FullName joins the components with single spaces, skipping an empty middle name.
func (s StudentIdentity) FullName() string {
	if s.Middle == "" {
		return s.First + " " + s.Last
	}
	return s.First + " " + s.Middle + " " + s.Last
}

// DisplayName is FullName in title case.
func (s StudentIdentity) DisplayName() string {
	return cases.Title(language.Und).String(s.FullName())
}

func (s StudentIdentity) String() string {
	return s.FullName()
}

func normalize(part string) string {
	part = strings.Join(strings.Fields(norm.NFKC.String(part)), " ")
	return cases.Lower(language.Und).String(part)
}
