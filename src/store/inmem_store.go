package store

// InmemStore implements the Store interface with a ValueSet. It is owned by a
// single node and lives as long as the process; nothing is persisted.
type InmemStore struct {
	values ValueSet
}

// NewInmemStore creates an empty InmemStore.
func NewInmemStore() *InmemStore {
	return &InmemStore{
		values: NewValueSet(),
	}
}

// Add implements the Store interface.
func (s *InmemStore) Add(v uint32) bool {
	return s.values.Add(v)
}

// AddAll implements the Store interface.
func (s *InmemStore) AddAll(values []uint32) int {
	return s.values.AddAll(values)
}

// Contains implements the Store interface.
func (s *InmemStore) Contains(v uint32) bool {
	return s.values.Contains(v)
}

// Values implements the Store interface.
func (s *InmemStore) Values() []uint32 {
	return s.values.Values()
}

// Len implements the Store interface.
func (s *InmemStore) Len() int {
	return s.values.Len()
}
