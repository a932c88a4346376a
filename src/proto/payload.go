package proto

// Body types.
const (
	TypeBroadcast   = "broadcast"
	TypeBroadcastOk = "broadcast_ok"
	TypeRead        = "read"
	TypeReadOk      = "read_ok"
	TypeGossip      = "gossip"
	TypeGossipOk    = "gossip_ok"
	TypeTopology    = "topology"
	TypeTopologyOk  = "topology_ok"
	TypeGenerate    = "generate"
	TypeGenerateOk  = "generate_ok"
	TypeError       = "error"
)

// Types lists every body type this package can decode.
var Types = []string{
	TypeBroadcast,
	TypeBroadcastOk,
	TypeRead,
	TypeReadOk,
	TypeGossip,
	TypeGossipOk,
	TypeTopology,
	TypeTopologyOk,
	TypeGenerate,
	TypeGenerateOk,
	TypeError,
}

// Header holds the fields common to every body.
type Header struct {
	Type      string `json:"type"`
	MsgID     int    `json:"msg_id,omitempty"`
	InReplyTo int    `json:"in_reply_to,omitempty"`
}

// Payload is implemented by the body types of this package only.
type Payload interface {
	Type() string
	payload()
}

// Broadcast asks a node to store a value and spread it.
type Broadcast struct {
	Message uint32 `json:"message"`
}

// BroadcastOk acknowledges a Broadcast.
type BroadcastOk struct{}

// Read asks a node for every value it holds.
type Read struct{}

// ReadOk answers a Read.
type ReadOk struct {
	Messages []uint32 `json:"messages"`
}

// Gossip offers values to a neighbor.
type Gossip struct {
	Seen []uint32 `json:"seen"`
}

// GossipOk confirms the values both sides of a Gossip exchange now share.
type GossipOk struct {
	Seen []uint32 `json:"seen"`
}

// Topology delivers the neighbor assignment of the whole cluster.
type Topology struct {
	Topology map[string][]string `json:"topology"`
}

// TopologyOk acknowledges a Topology.
type TopologyOk struct{}

// Generate asks a node for a globally unique id.
type Generate struct{}

// GenerateOk answers a Generate.
type GenerateOk struct {
	ID string `json:"id"`
}

// Error reports a failure to process a request.
type Error struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (Broadcast) Type() string   { return TypeBroadcast }
func (BroadcastOk) Type() string { return TypeBroadcastOk }
func (Read) Type() string        { return TypeRead }
func (ReadOk) Type() string      { return TypeReadOk }
func (Gossip) Type() string      { return TypeGossip }
func (GossipOk) Type() string    { return TypeGossipOk }
func (Topology) Type() string    { return TypeTopology }
func (TopologyOk) Type() string  { return TypeTopologyOk }
func (Generate) Type() string    { return TypeGenerate }
func (GenerateOk) Type() string  { return TypeGenerateOk }
func (Error) Type() string       { return TypeError }

func (Broadcast) payload()   {}
func (BroadcastOk) payload() {}
func (Read) payload()        {}
func (ReadOk) payload()      {}
func (Gossip) payload()      {}
func (GossipOk) payload()    {}
func (Topology) payload()    {}
func (TopologyOk) payload()  {}
func (Generate) payload()    {}
func (GenerateOk) payload()  {}
func (Error) payload()       {}
