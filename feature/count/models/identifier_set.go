package models

import "encoding/json"

// IdentifierSet is a uniqueness-enforcing collection of identifiers.
//
// It serializes to JSON as a plain list in insertion order and is rebuilt
// into a set on load; callers must not attach meaning to iteration order
// beyond determinism.
type IdentifierSet struct {
	members []string
	index   map[string]struct{}
}

// NewIdentifierSet creates a set containing the given identifiers.
// Duplicates are dropped.
func NewIdentifierSet(identifiers ...string) IdentifierSet {
	var s IdentifierSet
	for _, id := range identifiers {
		s.Add(id)
	}
	return s
}

// Add inserts identifier and reports whether it was newly added.
func (s *IdentifierSet) Add(identifier string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, exists := s.index[identifier]; exists {
		return false
	}
	s.index[identifier] = struct{}{}
	s.members = append(s.members, identifier)
	return true
}

// Remove deletes identifier and reports whether it was present.
func (s *IdentifierSet) Remove(identifier string) bool {
	if _, exists := s.index[identifier]; !exists {
		return false
	}
	delete(s.index, identifier)
	for i, m := range s.members {
		if m == identifier {
			s.members = append(s.members[:i], s.members[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether identifier is a member.
func (s *IdentifierSet) Has(identifier string) bool {
	_, exists := s.index[identifier]
	return exists
}

// Len returns the number of members.
func (s *IdentifierSet) Len() int {
	return len(s.members)
}

// Values returns the members in insertion order. The slice is a copy.
func (s *IdentifierSet) Values() []string {
	out := make([]string, len(s.members))
	copy(out, s.members)
	return out
}

func (s IdentifierSet) clone() IdentifierSet {
	return NewIdentifierSet(s.members...)
}

// MarshalJSON encodes the set as an explicit list.
func (s IdentifierSet) MarshalJSON() ([]byte, error) {
	if s.members == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.members)
}

// UnmarshalJSON rebuilds the set from a list, enforcing uniqueness.
func (s *IdentifierSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = NewIdentifierSet(members...)
	return nil
}
