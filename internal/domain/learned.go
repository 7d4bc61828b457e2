package domain

import "sort"

// LearnedSet is the set of node ids the viewer has marked as learned.
type LearnedSet map[string]struct{}

// NewLearnedSet builds a set from ids.
func NewLearnedSet(ids ...string) LearnedSet {
	s := make(LearnedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is learned.
func (s LearnedSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add marks id as learned.
func (s LearnedSet) Add(id string) {
	s[id] = struct{}{}
}

// Remove unmarks id.
func (s LearnedSet) Remove(id string) {
	delete(s, id)
}

// IDs returns the ids in sorted order.
func (s LearnedSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
