package proto

import (
	"encoding/json"

	maelstrom "github.com/jepsen-io/maelstrom/demo/go"
	"github.com/mosaicnetworks/rumor/src/common"
)

// Message is the envelope of the node runtime: a source, a destination and an
// opaque body.
type Message = maelstrom.Message

// NewMessage encodes a body into an envelope.
func NewMessage(src, dest string, h Header, p Payload) (Message, error) {
	body, err := Marshal(h, p)
	if err != nil {
		return Message{}, err
	}
	return Message{Src: src, Dest: dest, Body: body}, nil
}

// MarshalMessage encodes an envelope as a single line, without the trailing
// newline.
func MarshalMessage(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalMessage decodes an envelope and its body.
func UnmarshalMessage(line []byte) (Message, Header, Payload, error) {
	var m Message
	if err := json.Unmarshal(line, &m); err != nil {
		return Message{}, Header{}, nil, common.NewProtocolErr("", common.Malformed, err.Error())
	}

	h, p, err := Unmarshal(m.Body)
	if err != nil {
		return Message{}, Header{}, nil, err
	}

	return m, h, p, nil
}
