package net

import (
	"reflect"
	"testing"
	"time"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/mosaicnetworks/rumor/src/proto"
)

func receive(t *testing.T, trans Transport) RPC {
	t.Helper()
	select {
	case rpc := <-trans.Consumer():
		return rpc
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %s to receive", trans.LocalAddr())
	}
	return RPC{}
}

func TestInmemTransport_StartStop(t *testing.T) {
	_, trans := NewInmemTransport("")

	done := make(chan error)
	go func() {
		done <- trans.Listen()
	}()

	if err := trans.Close(); err != nil {
		t.Fatalf("err: %v", err)
	}
	if err := trans.Close(); err != nil {
		t.Fatalf("closing twice should be harmless: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Listen should return nil after Close, not %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Listen should return after Close")
	}

	if err := trans.Send("nobody", proto.Read{}); err != ErrTransportShutdown {
		t.Fatalf("Send after Close should fail with ErrTransportShutdown, not %v", err)
	}
}

func TestInmemTransport_Gossip(t *testing.T) {
	addr1, trans1 := NewInmemTransport("n1")
	addr2, trans2 := NewInmemTransport("n2")
	defer trans1.Close()
	defer trans2.Close()

	ConnectAll(trans1, trans2)

	if err := trans1.Send(addr2, proto.Gossip{Seen: []uint32{1, 2}}); err != nil {
		t.Fatalf("err: %v", err)
	}

	req := receive(t, trans2)
	if req.From != addr1 {
		t.Fatalf("request should come from %s, not %s", addr1, req.From)
	}
	if req.MsgID == 0 || req.IsReply() {
		t.Fatalf("request should carry a msg_id and no in_reply_to: %+v", req)
	}
	if !reflect.DeepEqual(req.Command, proto.Gossip{Seen: []uint32{1, 2}}) {
		t.Fatalf("command mismatch: %#v", req.Command)
	}

	if err := req.Respond(proto.GossipOk{Seen: []uint32{1, 2}}); err != nil {
		t.Fatalf("err: %v", err)
	}

	resp := receive(t, trans1)
	if resp.From != addr2 {
		t.Fatalf("response should come from %s, not %s", addr2, resp.From)
	}
	if resp.InReplyTo != req.MsgID {
		t.Fatalf("in_reply_to should be %d, not %d", req.MsgID, resp.InReplyTo)
	}
	if resp.MsgID == 0 {
		t.Fatalf("response should carry its own msg_id")
	}
	if !reflect.DeepEqual(resp.Command, proto.GossipOk{Seen: []uint32{1, 2}}) {
		t.Fatalf("command mismatch: %#v", resp.Command)
	}

	if err := resp.Respond(proto.GossipOk{}); err != ErrNoResponder {
		t.Fatalf("responding to a reply should fail with ErrNoResponder, not %v", err)
	}
}

func TestInmemTransport_UnknownPeer(t *testing.T) {
	_, trans1 := NewInmemTransport("n1")
	_, trans2 := NewInmemTransport("n2")
	defer trans1.Close()
	defer trans2.Close()

	ConnectAll(trans1, trans2)
	trans1.Disconnect("n2")

	err := trans1.Send("n2", proto.Gossip{})
	if !common.IsProtocol(err, common.UnknownPeer) {
		t.Fatalf("Send to a disconnected peer should be UnknownPeer, not %v", err)
	}

	peers := trans2.Peers()
	if len(peers) != 2 {
		t.Fatalf("n2 should know 2 peers, not %v", peers)
	}

	trans2.DisconnectAll()
	if peers := trans2.Peers(); !reflect.DeepEqual(peers, []string{"n2"}) {
		t.Fatalf("peers should be [n2], not %v", peers)
	}
}

func TestInmemTransport_MalformedIsFatal(t *testing.T) {
	_, trans := NewInmemTransport("n1")
	defer trans.Close()

	done := make(chan error)
	go func() {
		done <- trans.Listen()
	}()

	trans.deliver([]byte(`{"src":"c1","dest":"n1","body":{"type":"broadcast"}}`))

	select {
	case err := <-done:
		if !common.IsProtocol(err, common.MissingField) {
			t.Fatalf("Listen should fail with MissingField, not %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Listen should return on a malformed message")
	}

	select {
	case rpc := <-trans.Consumer():
		t.Fatalf("a malformed message should not be delivered: %+v", rpc)
	default:
	}
}
