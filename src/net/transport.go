package net

import (
	"errors"

	"github.com/mosaicnetworks/rumor/src/proto"
)

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")

	// ErrNoResponder is returned when responding to an RPC that is itself a
	// reply.
	ErrNoResponder = errors.New("rpc cannot be responded to")
)

// Transport provides an interface for network transports
// to allow a node to communicate with other nodes and clients.
type Transport interface {

	// Listen starts the transport and blocks until it stops. It returns nil
	// when the transport is closed or its input ends, and an error when an
	// inbound message is malformed or the input fails.
	Listen() error

	// Consumer returns a channel that can be used to
	// consume and respond to RPC requests.
	Consumer() <-chan RPC

	// LocalAddr is used to return our local address. It may be empty until
	// the transport has learnt its identity.
	LocalAddr() string

	// Peers returns the addresses of every node the transport knows about,
	// including its own.
	Peers() []string

	// Send transmits a body to target without waiting for an answer.
	Send(target string, p proto.Payload) error

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
