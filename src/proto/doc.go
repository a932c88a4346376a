// Package proto defines the bodies exchanged between nodes and clients and
// their JSON encoding.
//
// Every body carries a Header with its type and optional message ids, followed
// by the fields of one Payload. The set of payloads is closed: Marshal and
// Unmarshal switch exhaustively over it, and decoding fails on unknown types,
// missing required fields, or values that do not fit in a uint32. Collections
// are always encoded as arrays, never as null.
//
// Bodies travel inside the newline-delimited envelopes of the node runtime,
// represented here by Message.
package proto
