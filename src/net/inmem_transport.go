package net

import (
	"crypto/rand"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/mosaicnetworks/rumor/src/proto"
)

// NewInmemAddr returns a new in-memory addr with
// a randomly generate UUID as the ID.
func NewInmemAddr() string {
	return generateUUID()
}

// generateUUID is used to generate a random UUID.
func generateUUID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("failed to read random bytes: %v", err))
	}

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%12x",
		buf[0:4],
		buf[4:6],
		buf[6:8],
		buf[8:10],
		buf[10:16])
}

// InmemTransport Implements the Transport interface, to allow nodes to be
// tested in-memory without going over a network. Messages are delivered
// asynchronously, so two messages sent back to back may arrive in either
// order.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan RPC
	fatalCh    chan error
	localAddr  string
	peers      map[string]*InmemTransport
	nextMsgID  int64

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewInmemTransport is used to initialize a new transport
// and generates a random local address if none is specified
func NewInmemTransport(addr string) (string, *InmemTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}
	trans := &InmemTransport{
		consumerCh: make(chan RPC, 16),
		fatalCh:    make(chan error, 1),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
		shutdownCh: make(chan struct{}),
	}
	return addr, trans
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan RPC {
	return i.consumerCh
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// Peers implements the Transport interface.
func (i *InmemTransport) Peers() []string {
	i.RLock()
	defer i.RUnlock()

	res := []string{i.localAddr}
	for addr := range i.peers {
		res = append(res, addr)
	}
	return res
}

// Send implements the Transport interface. Sending to a peer that is not
// connected returns a common.ProtocolErr of kind UnknownPeer.
func (i *InmemTransport) Send(target string, p proto.Payload) error {
	return i.send(target, proto.Header{}, p)
}

func (i *InmemTransport) send(target string, h proto.Header, p proto.Payload) error {
	select {
	case <-i.shutdownCh:
		return ErrTransportShutdown
	default:
	}

	i.RLock()
	peer, ok := i.peers[target]
	i.RUnlock()

	if !ok {
		return common.NewProtocolErr(p.Type(), common.UnknownPeer, target)
	}

	h.MsgID = int(atomic.AddInt64(&i.nextMsgID, 1))

	msg, err := proto.NewMessage(i.localAddr, target, h, p)
	if err != nil {
		return err
	}

	line, err := proto.MarshalMessage(msg)
	if err != nil {
		return err
	}

	go peer.deliver(line)

	return nil
}

// deliver decodes a line the way a wire transport would and hands the result
// to the consumer.
func (i *InmemTransport) deliver(line []byte) {
	msg, h, p, err := proto.UnmarshalMessage(line)
	if err != nil {
		select {
		case i.fatalCh <- fmt.Errorf("decoding message: %w", err):
		default:
		}
		return
	}

	rpc := RPC{
		From:      msg.Src,
		MsgID:     h.MsgID,
		InReplyTo: h.InReplyTo,
		Command:   p,
	}

	if !rpc.IsReply() {
		rpc.respond = func(resp proto.Payload) error {
			return i.send(msg.Src, proto.Header{InReplyTo: h.MsgID}, resp)
		}
	}

	select {
	case i.consumerCh <- rpc:
	case <-i.shutdownCh:
	}
}

// Connect is used to connect this transport to another transport for
// a given peer name. This allows for local routing.
func (i *InmemTransport) Connect(peer string, t Transport) {
	trans := t.(*InmemTransport)
	i.Lock()
	defer i.Unlock()
	i.peers[peer] = trans
}

// Disconnect is used to remove the ability to route to a given peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	defer i.Unlock()
	delete(i.peers, peer)
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// Close is used to permanently disable the transport
func (i *InmemTransport) Close() error {
	i.shutdownOnce.Do(func() {
		close(i.shutdownCh)
	})
	i.DisconnectAll()
	return nil
}

// Listen implements the Transport interface. There is nothing to start, so it
// only waits for the transport to be closed or for a delivery to fail.
func (i *InmemTransport) Listen() error {
	select {
	case <-i.shutdownCh:
		return nil
	case err := <-i.fatalCh:
		return err
	}
}

// ConnectAll connects every pair of transports to each other.
func ConnectAll(transports ...*InmemTransport) {
	for _, a := range transports {
		for _, b := range transports {
			if a != b {
				a.Connect(b.LocalAddr(), b)
			}
		}
	}
}
