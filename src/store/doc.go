// Package store holds the set of broadcast values a node has observed.
//
// A Store only ever grows: values are added, never removed, and adding a value
// that is already present is a no-op. The same ValueSet type is used for the
// per-neighbor acknowledgment sets kept by the topology package, so all of the
// set arithmetic of the anti-entropy protocol lives here.
package store
