// Package node implements the reactive component of a rumor node.
//
// A node holds a set of values and a fixed set of neighbors, and makes sure
// that every value broadcast anywhere in a connected cluster eventually reaches
// every node, even if individual messages are lost, duplicated or reordered.
//
// Core
//
// The Core owns the state of one node: the store of values, the neighbor table
// with one acknowledgment set per neighbor, and the id generator. It knows
// nothing about transports; each operation returns the gossip messages the
// node should send, and the Node sends them.
//
// Anti-entropy
//
// After every local broadcast and every read, the node computes for each
// neighbor the values it holds that the neighbor is not known to hold, and
// sends them in a gossip message. The neighbor adds the offered values to its
// own store, records that the sender holds them, and answers with gossip_ok
// carrying every value both sides are now known to share. The sender records
// those values in turn. Nothing is ever retransmitted explicitly: a lost
// message simply leaves the difference non-empty, so the values are offered
// again on the next sweep. As acknowledgments accumulate, the differences, and
// with them the gossip messages, shrink back to empty.
//
// By default a gossip message is sent to every neighbor on every sweep, even
// when it carries no values. The SkipEmptyGossip option suppresses those.
//
// Sweeps can also be driven by a timer, set with the SyncInterval option, so
// that a quiet cluster still converges after losses.
//
// Node
//
// The Node consumes the RPCs of a transport one at a time, in a single control
// loop, and hands them to the Core. Failing to write to the transport is fatal
// and ends the loop with an error; so does an inbound message that cannot be
// decoded. Gossip from a node that is not a neighbor is dropped without an
// answer.
package node
