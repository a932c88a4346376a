// Package rumor assembles a complete node from a config.Config: an in-memory
// store, a transport, the node itself and the optional HTTP service.
//
// By default the transport speaks the Maelstrom protocol over stdin and
// stdout. Tests and simulations may set Rumor.Transport before calling Init to
// use another one.
package rumor
