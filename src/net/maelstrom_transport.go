package net

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	maelstrom "github.com/jepsen-io/maelstrom/demo/go"
	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/mosaicnetworks/rumor/src/proto"
	"github.com/sirupsen/logrus"
)

// maxLineSize bounds a single input envelope.
const maxLineSize = 16 << 20

// MaelstromTransport implements the Transport interface on top of the
// Maelstrom node runtime. It reads envelopes from its input one line at a time
// and hands them to the consumer in input order; the runtime handles identity
// and writes every outbound envelope.
type MaelstromTransport struct {
	node       *maelstrom.Node
	in         io.Reader
	consumerCh chan RPC
	nextMsgID  int64

	idLock  sync.RWMutex
	id      string
	nodeIDs []string

	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	logger *logrus.Entry
}

// NewMaelstromTransport creates a transport reading from in and writing to
// out, usually os.Stdin and os.Stdout.
func NewMaelstromTransport(in io.Reader, out io.Writer, logger *logrus.Entry) *MaelstromTransport {
	node := maelstrom.NewNode()
	node.Stdout = out

	return &MaelstromTransport{
		node:       node,
		in:         in,
		consumerCh: make(chan RPC, 64),
		shutdownCh: make(chan struct{}),
		logger:     logger,
	}
}

func (m *MaelstromTransport) newMsgID() int {
	return int(atomic.AddInt64(&m.nextMsgID, 1))
}

func (m *MaelstromTransport) initialised() bool {
	m.idLock.RLock()
	defer m.idLock.RUnlock()
	return m.id != ""
}

// read consumes the input until it ends, the transport is closed, or a line
// cannot be decoded. Lines are handled one after the other, so init is fully
// processed before the next message is looked at.
func (m *MaelstromTransport) read() error {
	scanner := bufio.NewScanner(m.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var msg maelstrom.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return common.NewProtocolErr("", common.Malformed, err.Error())
		}

		if msg.Type() == "init" {
			if err := m.handleInit(msg); err != nil {
				return err
			}
			continue
		}

		if !m.initialised() {
			return common.NewProtocolErr(msg.Type(), common.Malformed,
				fmt.Sprintf("message from %s before init", msg.Src))
		}

		if err := m.enqueue(msg); err != nil {
			return err
		}

		select {
		case <-m.shutdownCh:
			return nil
		default:
		}
	}

	return scanner.Err()
}

func (m *MaelstromTransport) handleInit(msg maelstrom.Message) error {
	var body maelstrom.InitMessageBody
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		return common.NewProtocolErr("init", common.Malformed, err.Error())
	}
	if body.NodeID == "" {
		return common.NewProtocolErr("init", common.MissingField, "node_id")
	}

	m.idLock.Lock()
	m.id = body.NodeID
	m.nodeIDs = append([]string{}, body.NodeIDs...)
	m.idLock.Unlock()

	m.node.Init(body.NodeID, body.NodeIDs)

	m.logger.WithFields(logrus.Fields{
		"id":    body.NodeID,
		"nodes": body.NodeIDs,
	}).Debug("Initialised")

	return m.node.Reply(msg, maelstrom.MessageBody{
		Type:  "init_ok",
		MsgID: m.newMsgID(),
	})
}

func (m *MaelstromTransport) enqueue(msg maelstrom.Message) error {
	h, p, err := proto.Unmarshal(msg.Body)
	if err != nil {
		return fmt.Errorf("decoding message from %s: %w", msg.Src, err)
	}

	rpc := RPC{
		From:      msg.Src,
		MsgID:     h.MsgID,
		InReplyTo: h.InReplyTo,
		Command:   p,
	}

	// Only requests that carry a msg_id can be answered.
	if !rpc.IsReply() && h.MsgID != 0 {
		rpc.respond = func(resp proto.Payload) error {
			return m.reply(msg, resp)
		}
	}

	select {
	case m.consumerCh <- rpc:
	case <-m.shutdownCh:
	}
	return nil
}

func (m *MaelstromTransport) reply(req maelstrom.Message, p proto.Payload) error {
	body, err := proto.Marshal(proto.Header{MsgID: m.newMsgID()}, p)
	if err != nil {
		return err
	}

	return m.node.Reply(req, json.RawMessage(body))
}

// Consumer implements the Transport interface.
func (m *MaelstromTransport) Consumer() <-chan RPC {
	return m.consumerCh
}

// LocalAddr implements the Transport interface. It is empty until the init
// message has been processed.
func (m *MaelstromTransport) LocalAddr() string {
	m.idLock.RLock()
	defer m.idLock.RUnlock()
	return m.id
}

// Peers implements the Transport interface.
func (m *MaelstromTransport) Peers() []string {
	m.idLock.RLock()
	defer m.idLock.RUnlock()
	return append([]string{}, m.nodeIDs...)
}

// Send implements the Transport interface. The message carries a fresh msg_id
// and nothing waits for its answer: a gossip_ok that comes back is read from
// the input like any other message.
func (m *MaelstromTransport) Send(target string, p proto.Payload) error {
	select {
	case <-m.shutdownCh:
		return ErrTransportShutdown
	default:
	}

	body, err := proto.Marshal(proto.Header{MsgID: m.newMsgID()}, p)
	if err != nil {
		return err
	}

	return m.node.Send(target, json.RawMessage(body))
}

// Listen implements the Transport interface. It returns nil when the input is
// exhausted or the transport is closed, and an error for lines it cannot
// decode.
func (m *MaelstromTransport) Listen() error {
	readErr := make(chan error, 1)
	go func() {
		readErr <- m.read()
	}()

	select {
	case err := <-readErr:
		return err
	case <-m.shutdownCh:
		return nil
	}
}

// Close implements the Transport interface. Nothing more is delivered or sent.
func (m *MaelstromTransport) Close() error {
	m.shutdownOnce.Do(func() {
		close(m.shutdownCh)
	})
	return nil
}
