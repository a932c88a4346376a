package net

import (
	"github.com/mosaicnetworks/rumor/src/proto"
)

// RPC encapsulates an inbound message and provides a response mechanism.
type RPC struct {
	From      string
	MsgID     int
	InReplyTo int
	Command   proto.Payload

	respond func(proto.Payload) error
}

// Respond sends p back to the originator of the RPC, in reply to its message
// id.
func (r *RPC) Respond(p proto.Payload) error {
	if r.respond == nil {
		return ErrNoResponder
	}
	return r.respond(p)
}

// IsReply reports whether the RPC answers a message we sent.
func (r *RPC) IsReply() bool {
	return r.InReplyTo != 0
}
