package domain

// IDSet is a deduplicated set of identifiers that remembers insertion order.
// The zero value is an empty set.
type IDSet struct {
	ids   []string
	index map[string]struct{}
}

// NewIDSet builds a set from ids, dropping duplicates and empty strings.
func NewIDSet(ids ...string) IDSet {
	set := IDSet{
		ids:   make([]string, 0, len(ids)),
		index: make(map[string]struct{}, len(ids)),
	}
	for _, id := range ids {
		set.add(id)
	}
	return set
}

func (s *IDSet) add(id string) {
	if id == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int {
	return len(s.ids)
}

// Contains reports whether id is a member.
func (s IDSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns a copy of the members in insertion order.
func (s IDSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Intersect returns the members of s that are also in other, in s's order.
func (s IDSet) Intersect(other IDSet) IDSet {
	out := NewIDSet()
	for _, id := range s.ids {
		if other.Contains(id) {
			out.add(id)
		}
	}
	return out
}

// Equal reports whether both sets hold the same members regardless of order.
func (s IDSet) Equal(other IDSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, id := range s.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// IntersectPtr intersects two optional sets. A nil operand means
// "unconstrained", so the other operand is returned as-is.
func IntersectPtr(a, b *IDSet) *IDSet {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		out := NewIDSet(b.ids...)
		return &out
	case b == nil:
		out := NewIDSet(a.ids...)
		return &out
	}
	out := a.Intersect(*b)
	return &out
}
