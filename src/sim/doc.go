// Package sim runs a cluster of node cores inside one process, under a seeded
// scheduler that can drop, duplicate and reorder messages.
//
// The simulation is driven by rounds. In each round every node serves one read,
// which triggers an anti-entropy sweep, and then every message in flight is
// delivered or lost, in an order chosen by the scheduler, until nothing is
// left. Each delivery is encoded and decoded with the proto package. Given the
// same seed, assignment and broadcasts, two runs produce the same result.
package sim
