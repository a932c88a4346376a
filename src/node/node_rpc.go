package node

import (
	"errors"
	"time"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/mosaicnetworks/rumor/src/net"
	"github.com/mosaicnetworks/rumor/src/proto"
	"github.com/mosaicnetworks/rumor/src/telemetry"
	"github.com/mosaicnetworks/rumor/src/topology"
	"github.com/sirupsen/logrus"
)

// processRPC handles one inbound message. It only returns an error when
// writing to the transport failed, which is fatal.
func (n *Node) processRPC(rpc net.RPC) error {
	start := time.Now()

	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	n.messagesReceived++
	defer n.metrics.ObserveHandle(rpc.Command.Type(), start)

	var err error

	switch cmd := rpc.Command.(type) {
	case proto.Broadcast:
		err = n.processBroadcast(rpc, cmd)
	case proto.Read:
		err = n.processRead(rpc)
	case proto.Gossip:
		err = n.processGossip(rpc, cmd)
	case proto.GossipOk:
		n.processGossipOk(rpc, cmd)
	case proto.Topology:
		err = n.processTopology(rpc, cmd)
	case proto.Generate:
		err = n.processGenerate(rpc)
	case proto.BroadcastOk, proto.ReadOk, proto.TopologyOk, proto.GenerateOk:
		n.log().WithFields(logrus.Fields{
			"from": rpc.From,
			"type": rpc.Command.Type(),
		}).Debug("Ignoring reply")
		n.drop(telemetry.DropUnexpected)
	case proto.Error:
		n.log().WithFields(logrus.Fields{
			"from": rpc.From,
			"code": cmd.Code,
			"text": cmd.Text,
		}).Warn("Received error")
		n.drop(telemetry.DropUnexpected)
	default:
		n.log().WithField("cmd", rpc.Command).Error("Unexpected RPC command")
		n.drop(telemetry.DropUnexpected)
	}

	n.metrics.StoreValues.Set(float64(n.core.Len()))

	return err
}

func (n *Node) processBroadcast(rpc net.RPC, cmd proto.Broadcast) error {
	n.log().WithFields(logrus.Fields{
		"from":  rpc.From,
		"value": cmd.Message,
	}).Debug("process Broadcast")

	out := n.core.Broadcast(cmd.Message)

	if err := n.respond(rpc, proto.BroadcastOk{}); err != nil {
		return err
	}

	return n.sendGossip(out)
}

func (n *Node) processRead(rpc net.RPC) error {
	n.log().WithField("from", rpc.From).Debug("process Read")

	out, values := n.core.Read()

	if err := n.sendGossip(out); err != nil {
		return err
	}

	return n.respond(rpc, proto.ReadOk{Messages: values})
}

func (n *Node) processGossip(rpc net.RPC, cmd proto.Gossip) error {
	confirmed, ok := n.core.Gossip(rpc.From, cmd.Seen)
	if !ok {
		n.log().WithField("from", rpc.From).Debug("Gossip from unknown neighbor")
		n.drop(telemetry.DropUnknownPeer)
		return nil
	}

	return n.respond(rpc, proto.GossipOk{Seen: confirmed})
}

func (n *Node) processGossipOk(rpc net.RPC, cmd proto.GossipOk) {
	if !n.core.GossipOk(rpc.From, cmd.Seen) {
		n.log().WithField("from", rpc.From).Debug("GossipOk from unknown neighbor")
		n.drop(telemetry.DropUnknownPeer)
	}
}

func (n *Node) processTopology(rpc net.RPC, cmd proto.Topology) error {
	n.core.ApplyTopology(n.trans.LocalAddr(), topology.Assignment(cmd.Topology))

	n.metrics.Neighbors.Set(float64(len(n.core.Neighbors())))

	n.log().WithField("neighbors", n.core.Neighbors()).Info("Topology")

	return n.respond(rpc, proto.TopologyOk{})
}

func (n *Node) processGenerate(rpc net.RPC) error {
	id := n.core.Generate(n.trans.LocalAddr())
	return n.respond(rpc, proto.GenerateOk{ID: id})
}

// respond answers rpc. Requests that cannot be answered are logged and
// dropped.
func (n *Node) respond(rpc net.RPC, p proto.Payload) error {
	err := rpc.Respond(p)
	return n.checkWrite(rpc.From, p, err)
}

// sendGossip sends each outgoing gossip message.
func (n *Node) sendGossip(out []Outgoing) error {
	for _, o := range out {
		sendErr := n.trans.Send(o.To, proto.Gossip{Seen: o.Seen})
		if err := n.checkWrite(o.To, proto.Gossip{}, sendErr); err != nil {
			return err
		}
		if sendErr == nil {
			n.gossipSent++
			n.metrics.ObserveGossip(len(o.Seen))
		}
	}
	return nil
}

// checkWrite classifies a send error. Destinations the transport cannot route
// to, and replies to messages that do not accept one, are dropped; anything
// else is a write failure and is returned.
func (n *Node) checkWrite(to string, p proto.Payload, err error) error {
	switch {
	case err == nil:
		return nil
	case common.IsProtocol(err, common.UnknownPeer):
		n.log().WithFields(logrus.Fields{
			"to":   to,
			"type": p.Type(),
		}).Debug("Unroutable")
		n.drop(telemetry.DropUnroutable)
		return nil
	case errors.Is(err, net.ErrNoResponder):
		n.log().WithField("to", to).Debug("Cannot respond")
		n.drop(telemetry.DropUnexpected)
		return nil
	case errors.Is(err, net.ErrTransportShutdown):
		n.log().WithField("to", to).Debug("Transport shut down")
		return nil
	default:
		return err
	}
}

func (n *Node) drop(reason string) {
	n.dropped++
	n.metrics.Drop(reason)
}
