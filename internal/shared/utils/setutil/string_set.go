// Package setutil provides set utilities for tag collections.
package setutil

// StringSet is a set of strings that remembers insertion order.
type StringSet struct {
	items map[string]struct{}
	order []string
}

// NewStringSet creates a set holding items.
func NewStringSet(items ...string) *StringSet {
	s := &StringSet{items: make(map[string]struct{}, len(items))}
	s.AddAll(items)
	return s
}

// Add adds item and reports whether it was new.
func (s *StringSet) Add(item string) bool {
	if _, ok := s.items[item]; ok {
		return false
	}
	s.items[item] = struct{}{}
	s.order = append(s.order, item)
	return true
}

// AddAll adds all items to the set.
func (s *StringSet) AddAll(items []string) {
	for _, item := range items {
		s.Add(item)
	}
}

// Has returns true if item exists in the set.
func (s *StringSet) Has(item string) bool {
	_, ok := s.items[item]
	return ok
}

// ToSlice returns the items in insertion order.
func (s *StringSet) ToSlice() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of elements in the set.
func (s *StringSet) Len() int {
	return len(s.items)
}
