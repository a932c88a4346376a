package proto

import (
	"testing"

	"github.com/mosaicnetworks/rumor/src/common"
)

func TestMessageRoundTrip(t *testing.T) {
	m, err := NewMessage("n1", "n2", Header{MsgID: 1}, Gossip{Seen: []uint32{3, 4}})
	if err != nil {
		t.Fatal(err)
	}

	line, err := MarshalMessage(m)
	if err != nil {
		t.Fatal(err)
	}

	got, h, p, err := UnmarshalMessage(line)
	if err != nil {
		t.Fatal(err)
	}
	if got.Src != "n1" || got.Dest != "n2" {
		t.Fatalf("envelope should be n1->n2, not %s->%s", got.Src, got.Dest)
	}
	if h.Type != TypeGossip || h.MsgID != 1 {
		t.Fatalf("wrong header %+v", h)
	}
	g, ok := p.(Gossip)
	if !ok || len(g.Seen) != 2 {
		t.Fatalf("payload should be a Gossip with 2 values, not %#v", p)
	}
}

func TestUnmarshalMessageMalformed(t *testing.T) {
	_, _, _, err := UnmarshalMessage([]byte(`{"src":"n1",`))
	if !common.IsProtocol(err, common.Malformed) {
		t.Fatalf("a truncated envelope should be Malformed, not %v", err)
	}

	_, _, _, err = UnmarshalMessage([]byte(`{"src":"c1","dest":"n1","body":{"type":"nope"}}`))
	if !common.IsProtocol(err, common.UnknownType) {
		t.Fatalf("an unknown body type should be UnknownType, not %v", err)
	}
}
