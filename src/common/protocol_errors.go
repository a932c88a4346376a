package common

import (
	"errors"
	"fmt"
)

// ProtocolErrType classifies a ProtocolErr.
type ProtocolErrType uint32

const (
	// UnknownType is a message body whose "type" is not part of the protocol.
	UnknownType ProtocolErrType = iota
	// MissingField is a body lacking a field its type requires.
	MissingField
	// Malformed is a body or envelope that cannot be decoded at all.
	Malformed
	// UnknownPeer is a message addressed to, or received from, a node the
	// local node cannot route to.
	UnknownPeer
)

// ProtocolErr describes a message that the node refuses to process.
type ProtocolErr struct {
	msgType string
	errType ProtocolErrType
	detail  string
}

// NewProtocolErr ...
func NewProtocolErr(msgType string, errType ProtocolErrType, detail string) ProtocolErr {
	return ProtocolErr{
		msgType: msgType,
		errType: errType,
		detail:  detail,
	}
}

// Error ...
func (e ProtocolErr) Error() string {
	m := ""
	switch e.errType {
	case UnknownType:
		m = "Unknown Type"
	case MissingField:
		m = "Missing Field"
	case Malformed:
		m = "Malformed"
	case UnknownPeer:
		m = "Unknown Peer"
	}

	return fmt.Sprintf("%s, %s, %s", e.msgType, e.detail, m)
}

// IsProtocol checks that an error is, or wraps, a ProtocolErr and that its
// code matches the provided ProtocolErr code.
func IsProtocol(err error, t ProtocolErrType) bool {
	var protoErr ProtocolErr
	return errors.As(err, &protoErr) && protoErr.errType == t
}
