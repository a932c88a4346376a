package topology

import (
	"github.com/mosaicnetworks/rumor/src/store"
)

// NeighborTable maps each neighbor of a node to the set of values that neighbor
// is known to hold. Neighbors are kept in order of first insertion.
type NeighborTable struct {
	order []string
	acks  map[string]store.ValueSet
}

// NewNeighborTable creates an empty NeighborTable.
func NewNeighborTable() *NeighborTable {
	return &NeighborTable{
		order: []string{},
		acks:  make(map[string]store.ValueSet),
	}
}

// Apply adds the neighbors assigned to self. Neighbors that are already in the
// table keep their acknowledgment sets, self is never added as its own
// neighbor, and duplicate ids are ignored. A node with no entry in the
// assignment is left with whatever neighbors it already had. Apply returns the
// neighbors that were added.
func (t *NeighborTable) Apply(self string, a Assignment) []string {
	added := []string{}
	for _, id := range a[self] {
		if id == self {
			continue
		}
		if t.Add(id) {
			added = append(added, id)
		}
	}
	return added
}

// Add inserts a neighbor with an empty acknowledgment set. It returns false,
// and leaves the existing entry untouched, if the neighbor is already known.
func (t *NeighborTable) Add(id string) bool {
	if _, ok := t.acks[id]; ok {
		return false
	}
	t.acks[id] = store.NewValueSet()
	t.order = append(t.order, id)
	return true
}

// Has reports whether id is a neighbor.
func (t *NeighborTable) Has(id string) bool {
	_, ok := t.acks[id]
	return ok
}

// Neighbors returns a copy of the neighbor ids in insertion order.
func (t *NeighborTable) Neighbors() []string {
	res := make([]string, len(t.order))
	copy(res, t.order)
	return res
}

// Len returns the number of neighbors.
func (t *NeighborTable) Len() int {
	return len(t.order)
}

// Ack records that neighbor id holds values. It returns false if id is not a
// neighbor, in which case nothing is recorded.
func (t *NeighborTable) Ack(id string, values ...uint32) bool {
	acks, ok := t.acks[id]
	if !ok {
		return false
	}
	acks.AddAll(values)
	return true
}

// Acked returns a copy of the acknowledgment set of neighbor id, or nil if id is
// not a neighbor.
func (t *NeighborTable) Acked(id string) store.ValueSet {
	acks, ok := t.acks[id]
	if !ok {
		return nil
	}
	return acks.Clone()
}

// Unseen returns the values of s that neighbor id is not known to hold, in
// ascending order. The result is empty, never nil, when there is nothing to
// send, and nil when id is not a neighbor.
func (t *NeighborTable) Unseen(id string, s store.Store) []uint32 {
	acks, ok := t.acks[id]
	if !ok {
		return nil
	}
	return acks.Missing(s.Values())
}

// Shared returns, in ascending order, the values of s that neighbor id is known
// to hold.
func (t *NeighborTable) Shared(id string, s store.Store) []uint32 {
	acks := t.acks[id]
	res := []uint32{}
	for _, v := range s.Values() {
		if acks.Contains(v) {
			res = append(res, v)
		}
	}
	return res
}
