package store

import (
	"reflect"
	"testing"
)

func TestInmemStoreIdempotence(t *testing.T) {
	once := NewInmemStore()
	once.Add(42)

	twice := NewInmemStore()
	twice.Add(42)
	twice.AddAll([]uint32{42})
	twice.Add(42)

	if !reflect.DeepEqual(once.Values(), twice.Values()) {
		t.Fatalf("inserting twice should yield %v, not %v", once.Values(), twice.Values())
	}
}

func TestInmemStoreMonotonic(t *testing.T) {
	s := NewInmemStore()

	batches := [][]uint32{
		{5},
		{1, 2},
		{},
		{2, 9, 5},
	}

	prev := NewValueSet()
	for i, b := range batches {
		s.AddAll(b)

		cur := NewValueSet(s.Values()...)
		if !prev.IsSubsetOf(cur) {
			t.Fatalf("batch %d: store shrank from %v to %v", i, prev.Values(), cur.Values())
		}
		prev = cur
	}

	if s.Len() != 4 {
		t.Fatalf("Len should be 4, not %d", s.Len())
	}
	if !s.Contains(9) || s.Contains(3) {
		t.Fatalf("Contains reports wrong membership for %v", s.Values())
	}
}
