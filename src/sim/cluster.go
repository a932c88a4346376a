package sim

import (
	"fmt"
	"math/rand"

	"github.com/mosaicnetworks/rumor/src/node"
	"github.com/mosaicnetworks/rumor/src/proto"
	"github.com/mosaicnetworks/rumor/src/store"
	"github.com/mosaicnetworks/rumor/src/topology"
	"github.com/sirupsen/logrus"
)

// Config controls the faults injected by the scheduler.
type Config struct {
	Seed int64 `mapstructure:"seed"`

	// DropRate is the probability that a message is lost. It must be below 1.
	DropRate float64 `mapstructure:"drop-rate"`

	// DuplicateRate is the probability that a delivered message is delivered
	// again later. It must be below 1.
	DuplicateRate float64 `mapstructure:"duplicate-rate"`

	SkipEmptyGossip bool `mapstructure:"skip-empty-gossip"`
}

// Validate checks that the rates are probabilities that let the cluster
// make progress.
func (c Config) Validate() error {
	if c.DropRate < 0 || c.DropRate >= 1 {
		return fmt.Errorf("drop rate %v should be in [0, 1)", c.DropRate)
	}
	if c.DuplicateRate < 0 || c.DuplicateRate >= 1 {
		return fmt.Errorf("duplicate rate %v should be in [0, 1)", c.DuplicateRate)
	}
	return nil
}

// Counters accumulates message statistics.
type Counters struct {
	Sent       int `json:"sent"`
	Delivered  int `json:"delivered"`
	Dropped    int `json:"dropped"`
	Duplicated int `json:"duplicated"`
	Rejected   int `json:"rejected"`

	// GossipValues is the number of values carried by gossip messages.
	GossipValues int `json:"gossip_values"`
}

type envelope struct {
	from string
	to   string
	body []byte
}

// Cluster is a set of node cores wired according to an assignment.
type Cluster struct {
	ids      []string
	cores    map[string]*node.Core
	rng      *rand.Rand
	conf     Config
	inflight []envelope
	expected store.ValueSet
	counters Counters
	logger   *logrus.Entry
}

// NewCluster creates one core per id and applies the assignment to each.
func NewCluster(ids []string, a topology.Assignment, conf Config, logger *logrus.Entry) (*Cluster, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	c := &Cluster{
		ids:      ids,
		cores:    make(map[string]*node.Core, len(ids)),
		rng:      rand.New(rand.NewSource(conf.Seed)),
		conf:     conf,
		expected: store.NewValueSet(),
		logger:   logger,
	}

	for _, id := range ids {
		if _, ok := c.cores[id]; ok {
			return nil, fmt.Errorf("duplicate node id %s", id)
		}
		core := node.NewCore(store.NewInmemStore(),
			&node.AntiEntropy{SkipEmpty: conf.SkipEmptyGossip},
			logger.WithField("this_id", id))
		core.ApplyTopology(id, a)
		c.cores[id] = core
	}

	return c, nil
}

// IDs returns the node ids.
func (c *Cluster) IDs() []string {
	return c.ids
}

// Core returns the core of node id, or nil.
func (c *Cluster) Core(id string) *node.Core {
	return c.cores[id]
}

// Counters returns the statistics accumulated so far.
func (c *Cluster) Counters() Counters {
	return c.counters
}

// InFlight returns the number of messages waiting to be delivered.
func (c *Cluster) InFlight() int {
	return len(c.inflight)
}

// Broadcast submits v to node id.
func (c *Cluster) Broadcast(id string, v uint32) error {
	core, ok := c.cores[id]
	if !ok {
		return fmt.Errorf("unknown node %s", id)
	}
	c.expected.Add(v)
	return c.enqueueGossip(id, core.Broadcast(v))
}

// Read serves a read at node id.
func (c *Cluster) Read(id string) ([]uint32, error) {
	core, ok := c.cores[id]
	if !ok {
		return nil, fmt.Errorf("unknown node %s", id)
	}
	out, values := core.Read()
	if err := c.enqueueGossip(id, out); err != nil {
		return nil, err
	}
	return values, nil
}

func (c *Cluster) enqueueGossip(from string, out []node.Outgoing) error {
	for _, o := range out {
		if err := c.enqueue(from, o.To, proto.Gossip{Seen: o.Seen}); err != nil {
			return err
		}
		c.counters.GossipValues += len(o.Seen)
	}
	return nil
}

func (c *Cluster) enqueue(from, to string, p proto.Payload) error {
	body, err := proto.Marshal(proto.Header{}, p)
	if err != nil {
		return err
	}
	c.inflight = append(c.inflight, envelope{from: from, to: to, body: body})
	c.counters.Sent++
	return nil
}

// Step delivers, drops or duplicates one message chosen at random. It returns
// false when nothing is in flight.
func (c *Cluster) Step() (bool, error) {
	if len(c.inflight) == 0 {
		return false, nil
	}

	i := c.rng.Intn(len(c.inflight))
	env := c.inflight[i]
	c.inflight[i] = c.inflight[len(c.inflight)-1]
	c.inflight = c.inflight[:len(c.inflight)-1]

	if c.rng.Float64() < c.conf.DropRate {
		c.counters.Dropped++
		return true, nil
	}

	if c.rng.Float64() < c.conf.DuplicateRate {
		c.inflight = append(c.inflight, env)
		c.counters.Duplicated++
	}

	return true, c.deliver(env)
}

func (c *Cluster) deliver(env envelope) error {
	core, ok := c.cores[env.to]
	if !ok {
		c.counters.Rejected++
		return nil
	}

	_, p, err := proto.Unmarshal(env.body)
	if err != nil {
		return fmt.Errorf("delivering to %s: %w", env.to, err)
	}

	c.counters.Delivered++

	switch cmd := p.(type) {
	case proto.Gossip:
		confirmed, ok := core.Gossip(env.from, cmd.Seen)
		if !ok {
			c.counters.Rejected++
			return nil
		}
		return c.enqueue(env.to, env.from, proto.GossipOk{Seen: confirmed})
	case proto.GossipOk:
		if !core.GossipOk(env.from, cmd.Seen) {
			c.counters.Rejected++
		}
		return nil
	default:
		return fmt.Errorf("unexpected %s from %s to %s", p.Type(), env.from, env.to)
	}
}

// Drain steps until nothing is in flight.
func (c *Cluster) Drain() error {
	for {
		more, err := c.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Converged reports whether every node holds exactly the values broadcast so
// far.
func (c *Cluster) Converged() bool {
	for _, id := range c.ids {
		core := c.cores[id]
		if core.Len() != c.expected.Len() {
			return false
		}
		for _, v := range core.Values() {
			if !c.expected.Contains(v) {
				return false
			}
		}
	}
	return true
}
