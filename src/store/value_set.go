package store

import "sort"

// ValueSet is a set of broadcast values.
type ValueSet map[uint32]struct{}

// NewValueSet creates a ValueSet containing values.
func NewValueSet(values ...uint32) ValueSet {
	s := make(ValueSet, len(values))
	s.AddAll(values)
	return s
}

// Add inserts v and reports whether it was new.
func (s ValueSet) Add(v uint32) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// AddAll inserts every value and returns how many were new.
func (s ValueSet) AddAll(values []uint32) int {
	added := 0
	for _, v := range values {
		if s.Add(v) {
			added++
		}
	}
	return added
}

// Contains reports whether v is in the set.
func (s ValueSet) Contains(v uint32) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of values in the set.
func (s ValueSet) Len() int {
	return len(s)
}

// Values returns the members in ascending order. The result is never nil.
func (s ValueSet) Values() []uint32 {
	res := make([]uint32, 0, len(s))
	for v := range s {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Missing returns, in ascending order, the values of from that are not in s.
func (s ValueSet) Missing(from []uint32) []uint32 {
	res := make([]uint32, 0)
	for _, v := range from {
		if !s.Contains(v) {
			res = append(res, v)
		}
	}
	return res
}

// Clone returns an independent copy of s.
func (s ValueSet) Clone() ValueSet {
	c := make(ValueSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// IsSubsetOf reports whether every member of s is also in other.
func (s ValueSet) IsSubsetOf(other ValueSet) bool {
	if len(s) > len(other) {
		return false
	}
	for v := range s {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}
