package proto

import (
	"bytes"
	"fmt"
	"math"
	"reflect"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/ugorji/go/codec"
)

func newHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	return jh
}

// newNakedHandle decodes objects into map[string]interface{}, so that the kind
// of every field can be checked before the typed decode.
func newNakedHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.MapType = reflect.TypeOf(map[string]interface{}(nil))
	jh.SliceType = reflect.TypeOf([]interface{}(nil))
	return jh
}

func encode(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, newHandle())

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	dec := codec.NewDecoder(b, newHandle())

	return dec.Decode(v)
}

// Marshal encodes a body. The type field is always taken from the payload.
func Marshal(h Header, p Payload) ([]byte, error) {
	var v interface{}

	switch p := p.(type) {
	case Broadcast:
		h.Type = TypeBroadcast
		v = struct {
			Header
			Broadcast
		}{h, p}
	case BroadcastOk:
		h.Type = TypeBroadcastOk
		v = h
	case Read:
		h.Type = TypeRead
		v = h
	case ReadOk:
		h.Type = TypeReadOk
		v = struct {
			Header
			ReadOk
		}{h, ReadOk{Messages: nonNil(p.Messages)}}
	case Gossip:
		h.Type = TypeGossip
		v = struct {
			Header
			Gossip
		}{h, Gossip{Seen: nonNil(p.Seen)}}
	case GossipOk:
		h.Type = TypeGossipOk
		v = struct {
			Header
			GossipOk
		}{h, GossipOk{Seen: nonNil(p.Seen)}}
	case Topology:
		h.Type = TypeTopology
		t := make(map[string][]string, len(p.Topology))
		for k, ns := range p.Topology {
			if ns == nil {
				ns = []string{}
			}
			t[k] = ns
		}
		v = struct {
			Header
			Topology
		}{h, Topology{Topology: t}}
	case TopologyOk:
		h.Type = TypeTopologyOk
		v = h
	case Generate:
		h.Type = TypeGenerate
		v = h
	case GenerateOk:
		h.Type = TypeGenerateOk
		v = struct {
			Header
			GenerateOk
		}{h, p}
	case Error:
		h.Type = TypeError
		v = struct {
			Header
			Error
		}{h, p}
	default:
		return nil, fmt.Errorf("cannot marshal payload of type %T", p)
	}

	return encode(v)
}

type wireValue struct {
	Message *uint64 `json:"message"`
}

type wireSeen struct {
	Seen *[]uint64 `json:"seen"`
}

type wireMessages struct {
	Messages *[]uint64 `json:"messages"`
}

type wireTopology struct {
	Topology map[string][]string `json:"topology"`
}

type wireGenerateOk struct {
	ID *string `json:"id"`
}

// Unmarshal decodes a body. It returns a common.ProtocolErr if the body is not
// a JSON object, if its type is unknown, or if a required field is absent or
// out of range.
func Unmarshal(data []byte) (Header, Payload, error) {
	if err := checkKinds(data); err != nil {
		return Header{}, nil, err
	}

	var h Header
	if err := decode(data, &h); err != nil {
		return Header{}, nil, common.NewProtocolErr("", common.Malformed, err.Error())
	}

	p, err := unmarshalPayload(h.Type, data)
	if err != nil {
		return Header{}, nil, err
	}

	return h, p, nil
}

func unmarshalPayload(t string, data []byte) (Payload, error) {
	switch t {
	case "":
		return nil, common.NewProtocolErr(t, common.MissingField, "type")
	case TypeBroadcast:
		var w wireValue
		if err := decodeFields(t, data, &w); err != nil {
			return nil, err
		}
		if w.Message == nil {
			return nil, common.NewProtocolErr(t, common.MissingField, "message")
		}
		v, err := toValue(t, *w.Message)
		if err != nil {
			return nil, err
		}
		return Broadcast{Message: v}, nil
	case TypeBroadcastOk:
		return BroadcastOk{}, nil
	case TypeRead:
		return Read{}, nil
	case TypeReadOk:
		var w wireMessages
		if err := decodeFields(t, data, &w); err != nil {
			return nil, err
		}
		if w.Messages == nil {
			return nil, common.NewProtocolErr(t, common.MissingField, "messages")
		}
		vs, err := toValues(t, *w.Messages)
		if err != nil {
			return nil, err
		}
		return ReadOk{Messages: vs}, nil
	case TypeGossip, TypeGossipOk:
		var w wireSeen
		if err := decodeFields(t, data, &w); err != nil {
			return nil, err
		}
		if w.Seen == nil {
			return nil, common.NewProtocolErr(t, common.MissingField, "seen")
		}
		vs, err := toValues(t, *w.Seen)
		if err != nil {
			return nil, err
		}
		if t == TypeGossip {
			return Gossip{Seen: vs}, nil
		}
		return GossipOk{Seen: vs}, nil
	case TypeTopology:
		var w wireTopology
		if err := decodeFields(t, data, &w); err != nil {
			return nil, err
		}
		if w.Topology == nil {
			return nil, common.NewProtocolErr(t, common.MissingField, "topology")
		}
		return Topology{Topology: w.Topology}, nil
	case TypeTopologyOk:
		return TopologyOk{}, nil
	case TypeGenerate:
		return Generate{}, nil
	case TypeGenerateOk:
		var w wireGenerateOk
		if err := decodeFields(t, data, &w); err != nil {
			return nil, err
		}
		if w.ID == nil {
			return nil, common.NewProtocolErr(t, common.MissingField, "id")
		}
		return GenerateOk{ID: *w.ID}, nil
	case TypeError:
		var e Error
		if err := decodeFields(t, data, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, common.NewProtocolErr(t, common.UnknownType, "type")
	}
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindUint
	kindUints
	kindTopology
)

// fieldKinds lists the JSON kind of every known body field. The typed decode
// would otherwise accept "7" or 1e3 where an integer is expected.
var fieldKinds = map[string]fieldKind{
	"type":        kindString,
	"msg_id":      kindUint,
	"in_reply_to": kindUint,
	"code":        kindUint,
	"text":        kindString,
	"id":          kindString,
	"message":     kindUint,
	"seen":        kindUints,
	"messages":    kindUints,
	"topology":    kindTopology,
}

func checkKinds(data []byte) error {
	var naked interface{}
	if err := codec.NewDecoderBytes(data, newNakedHandle()).Decode(&naked); err != nil {
		return common.NewProtocolErr("", common.Malformed, err.Error())
	}

	fields, ok := naked.(map[string]interface{})
	if !ok {
		return common.NewProtocolErr("", common.Malformed, "body is not an object")
	}

	t, _ := fields["type"].(string)

	for name, v := range fields {
		k, known := fieldKinds[name]
		if !known || v == nil {
			continue
		}
		if !hasKind(v, k) {
			return common.NewProtocolErr(t, common.Malformed,
				fmt.Sprintf("field %s has the wrong kind", name))
		}
	}

	return nil
}

func hasKind(v interface{}, k fieldKind) bool {
	switch k {
	case kindString:
		_, ok := v.(string)
		return ok
	case kindUint:
		return isUint(v)
	case kindUints:
		vs, ok := v.([]interface{})
		if !ok {
			return false
		}
		for _, x := range vs {
			if !isUint(x) {
				return false
			}
		}
		return true
	case kindTopology:
		m, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		for _, ns := range m {
			if ns == nil {
				continue
			}
			l, ok := ns.([]interface{})
			if !ok {
				return false
			}
			for _, n := range l {
				if _, ok := n.(string); !ok {
					return false
				}
			}
		}
		return true
	}
	return false
}

// isUint accepts non-negative integer tokens only.
func isUint(v interface{}) bool {
	switch x := v.(type) {
	case uint64:
		return true
	case int64:
		return x >= 0
	}
	return false
}

func decodeFields(t string, data []byte, v interface{}) error {
	if err := decode(data, v); err != nil {
		return common.NewProtocolErr(t, common.Malformed, err.Error())
	}
	return nil
}

func toValue(t string, v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, common.NewProtocolErr(t, common.Malformed,
			fmt.Sprintf("value %d overflows uint32", v))
	}
	return uint32(v), nil
}

func toValues(t string, vs []uint64) ([]uint32, error) {
	res := make([]uint32, 0, len(vs))
	for _, v := range vs {
		u, err := toValue(t, v)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, nil
}

func nonNil(vs []uint32) []uint32 {
	if vs == nil {
		return []uint32{}
	}
	return vs
}
