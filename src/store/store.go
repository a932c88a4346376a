package store

// Store is an interface for the set of values a node has observed.
type Store interface {
	// Add inserts a value and reports whether it was previously unknown.
	Add(v uint32) bool
	// AddAll inserts values and returns the number of previously unknown ones.
	AddAll(values []uint32) int
	// Contains reports whether a value is known.
	Contains(v uint32) bool
	// Values returns all known values in ascending order, never nil.
	Values() []uint32
	// Len returns the number of known values.
	Len() int
}
