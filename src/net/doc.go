// Package net implements the transports that carry protocol bodies between a
// node, its neighbors and its clients.
//
// A Transport decodes inbound messages into RPCs, delivered in arrival order on
// the channel returned by Consumer. Requests can be answered with RPC.Respond;
// messages that are themselves replies (gossip_ok, for example) are delivered
// the same way but cannot be responded to. Outbound messages are sent with
// Send and never wait for an answer: a reply, if any, comes back as another
// inbound RPC.
//
// There are two implementations:
//
// - Inmem: in-process routing between transports, used by tests and by
// clusters that run inside one process. Every delivery is encoded and decoded
// with the proto package, so it exercises the same codec as the wire.
//
// - Maelstrom: newline-delimited JSON over stdin and stdout. Lines are read
// one at a time and delivered in input order. The init message assigns the
// node its identity and must come first. The Maelstrom node runtime writes
// every outbound envelope.
//
// Listen blocks until the transport is closed, its input is exhausted, or an
// inbound message cannot be decoded. Undecodable input is fatal: Listen returns
// the decoding error and the message is never delivered.
package net
