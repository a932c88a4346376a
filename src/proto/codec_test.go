package proto

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mosaicnetworks/rumor/src/common"
)

func TestMarshalFlattensHeader(t *testing.T) {
	data, err := Marshal(Header{MsgID: 3}, Broadcast{Message: 7})
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Marshal should produce valid JSON: %v (%s)", err, data)
	}

	expected := map[string]interface{}{
		"type":    "broadcast",
		"msg_id":  float64(3),
		"message": float64(7),
	}
	if !reflect.DeepEqual(m, expected) {
		t.Fatalf("body should be %v, not %v", expected, m)
	}
}

func TestMarshalTypeFromPayload(t *testing.T) {
	data, err := Marshal(Header{Type: "bogus", InReplyTo: 1}, TopologyOk{})
	if err != nil {
		t.Fatal(err)
	}

	h, p, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if h.Type != TypeTopologyOk || h.InReplyTo != 1 {
		t.Fatalf("header should be topology_ok in reply to 1, not %+v", h)
	}
	if _, ok := p.(TopologyOk); !ok {
		t.Fatalf("payload should be TopologyOk, not %T", p)
	}
}

func TestMarshalEmptyCollections(t *testing.T) {
	cases := []Payload{
		ReadOk{},
		Gossip{},
		GossipOk{},
		Topology{Topology: map[string][]string{"n1": nil}},
	}

	for _, c := range cases {
		data, err := Marshal(Header{}, c)
		if err != nil {
			t.Fatal(err)
		}

		var m map[string]interface{}
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatal(err)
		}
		for k, v := range m {
			if v == nil {
				t.Fatalf("%s: field %s should not be null (%s)", c.Type(), k, data)
			}
		}
		if top, ok := m["topology"].(map[string]interface{}); ok && top["n1"] == nil {
			t.Fatalf("topology lists should not be null (%s)", data)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []Payload{
		Broadcast{Message: 4294967295},
		BroadcastOk{},
		Read{},
		ReadOk{Messages: []uint32{1, 2, 3}},
		Gossip{Seen: []uint32{9}},
		GossipOk{Seen: []uint32{}},
		Topology{Topology: map[string][]string{"n1": {"n2"}, "n2": {"n1"}}},
		TopologyOk{},
		Generate{},
		GenerateOk{ID: "n1-0"},
		Error{Code: 13, Text: "crash"},
	}

	for _, c := range cases {
		data, err := Marshal(Header{MsgID: 2}, c)
		if err != nil {
			t.Fatalf("%s: %v", c.Type(), err)
		}
		h, p, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("%s: %v", c.Type(), err)
		}
		if h.MsgID != 2 || h.Type != c.Type() {
			t.Fatalf("%s: wrong header %+v", c.Type(), h)
		}
		if !reflect.DeepEqual(p, c) {
			t.Fatalf("%s: payload should be %#v, not %#v", c.Type(), c, p)
		}
	}
}

func TestUnmarshalErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind common.ProtocolErrType
	}{
		{"unknown type", `{"type":"frobnicate"}`, common.UnknownType},
		{"no type", `{"message":1}`, common.MissingField},
		{"broadcast without message", `{"type":"broadcast","msg_id":1}`, common.MissingField},
		{"topology without topology", `{"type":"topology"}`, common.MissingField},
		{"gossip without seen", `{"type":"gossip"}`, common.MissingField},
		{"read_ok without messages", `{"type":"read_ok"}`, common.MissingField},
		{"overflow", `{"type":"broadcast","message":4294967296}`, common.Malformed},
		{"seen overflow", `{"type":"gossip","seen":[1,4294967296]}`, common.Malformed},
		{"wrong field type", `{"type":"gossip","seen":"nope"}`, common.Malformed},
		{"not an object", `"hello"`, common.Malformed},
		{"string message", `{"type":"broadcast","msg_id":1,"message":"7"}`, common.Malformed},
		{"float message", `{"type":"broadcast","msg_id":1,"message":1e3}`, common.Malformed},
		{"fractional message", `{"type":"broadcast","message":7.5}`, common.Malformed},
		{"string in seen", `{"type":"gossip","seen":[1,"2"]}`, common.Malformed},
		{"float in messages", `{"type":"read_ok","messages":[1.0]}`, common.Malformed},
		{"string msg_id", `{"type":"read","msg_id":"5"}`, common.Malformed},
		{"numeric type", `{"type":5}`, common.Malformed},
		{"numeric neighbor", `{"type":"topology","topology":{"n1":[2]}}`, common.Malformed},
		{"string in_reply_to", `{"type":"gossip_ok","in_reply_to":"3","seen":[]}`, common.Malformed},
		{"truncated", `{"type":"br`, common.Malformed},
	}

	for _, c := range cases {
		_, p, err := Unmarshal([]byte(c.body))
		if err == nil {
			t.Fatalf("%s: should fail, got %#v", c.name, p)
		}
		if !common.IsProtocol(err, c.kind) {
			t.Fatalf("%s: wrong error kind: %v", c.name, err)
		}
		if p != nil {
			t.Fatalf("%s: no payload should be returned on error", c.name)
		}
	}
}

func TestUnmarshalNegative(t *testing.T) {
	_, _, err := Unmarshal([]byte(`{"type":"broadcast","message":-1}`))
	if !common.IsProtocol(err, common.Malformed) {
		t.Fatalf("a negative value should be Malformed, not %v", err)
	}
}

func TestUnmarshalIgnoresExtraFields(t *testing.T) {
	h, p, err := Unmarshal([]byte(`{"type":"read","msg_id":5,"extra":[1]}`))
	if err != nil {
		t.Fatal(err)
	}
	if h.MsgID != 5 {
		t.Fatalf("msg_id should be 5, not %d", h.MsgID)
	}
	if _, ok := p.(Read); !ok {
		t.Fatalf("payload should be Read, not %T", p)
	}
}
