package prefgraph

import (
	"github.com/gilchrisn/peer-grouping/pkg/identity"
	"github.com/gilchrisn/peer-grouping/pkg/models"
)

// Registry is the bidirectional StudentIdentity <-> StudentID mapping.
// Ids are allocated in first-seen order and never reassigned.
type Registry struct {
	ids        map[string]models.StudentID
	identities []identity.StudentIdentity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids: make(map[string]models.StudentID),
	}
}

// Intern returns the id for s, allocating the next dense id if s is new.
func (r *Registry) Intern(s identity.StudentIdentity) models.StudentID {
	if id, ok := r.ids[s.Key()]; ok {
		return id
	}
	id := models.StudentID(len(r.identities))
	r.ids[s.Key()] = id
	r.identities = append(r.identities, s)
	return id
}

// Lookup returns the id of s without allocating.
func (r *Registry) Lookup(s identity.StudentIdentity) (models.StudentID, bool) {
	id, ok := r.ids[s.Key()]
	return id, ok
}

// Identity returns the identity behind id.
func (r *Registry) Identity(id models.StudentID) (identity.StudentIdentity, bool) {
	if id < 0 || int(id) >= len(r.identities) {
		return identity.StudentIdentity{}, false
	}
	return r.identities[id], true
}

// Name returns the normalized full name for id.
func (r *Registry) Name(id models.StudentID) (string, bool) {
	s, ok := r.Identity(id)
	if !ok {
		return "", false
	}
	return s.FullName(), true
}

// Len is N, the number of distinct identities seen so far.
func (r *Registry) Len() int {
	return len(r.identities)
}

// Names returns every full name indexed by id.
func (r *Registry) Names() []string {
	names := make([]string, len(r.identities))
	for i, s := range r.identities {
		names[i] = s.FullName()
	}
	return names
}
