// Package topology manages the neighbors of a node.
//
// The neighbor assignment is computed outside the node and delivered once, as a
// map from node identity to the list of identities that node may talk to. A
// node looks up its own entry and builds a NeighborTable from it. Each entry of
// the table carries an acknowledgment set: the values that neighbor is known to
// hold, either because it offered them to us or because it confirmed them. The
// table never loses entries and acknowledgment sets only ever grow.
//
// Assignments can also be read from a topology.json file in a data directory,
// which is how the simulate command of the CLI builds a cluster.
package topology
