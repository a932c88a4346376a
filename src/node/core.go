package node

import (
	"fmt"

	"github.com/mosaicnetworks/rumor/src/store"
	"github.com/mosaicnetworks/rumor/src/topology"
	"github.com/sirupsen/logrus"
)

// Core is the core Node object. It is not safe for concurrent use.
type Core struct {

	// store holds every value this node has observed.
	store store.Store

	// neighbors records, for each neighbor, the values it is known to hold.
	neighbors *topology.NeighborTable

	antiEntropy *AntiEntropy

	// nextID is the counter behind Generate.
	nextID uint64

	logger *logrus.Entry
}

// NewCore is a factory method that returns a new Core object
func NewCore(s store.Store, antiEntropy *AntiEntropy, logger *logrus.Entry) *Core {
	if antiEntropy == nil {
		antiEntropy = &AntiEntropy{}
	}

	return &Core{
		store:       s,
		neighbors:   topology.NewNeighborTable(),
		antiEntropy: antiEntropy,
		logger:      logger,
	}
}

// ApplyTopology adds the neighbors the assignment gives to self and returns
// the ones that were new. It can be applied more than once.
func (c *Core) ApplyTopology(self string, a topology.Assignment) []string {
	added := c.neighbors.Apply(self, a)

	c.logger.WithFields(logrus.Fields{
		"added":     added,
		"neighbors": c.neighbors.Neighbors(),
	}).Debug("ApplyTopology()")

	return added
}

// Broadcast stores v and returns the gossip that should follow.
func (c *Core) Broadcast(v uint32) []Outgoing {
	if c.store.Add(v) {
		c.logger.WithField("value", v).Debug("New value")
	}
	return c.SyncAll()
}

// Read returns the gossip that should precede the answer, and every value the
// node holds.
func (c *Core) Read() ([]Outgoing, []uint32) {
	out := c.SyncAll()
	return out, c.store.Values()
}

// Gossip processes values offered by neighbor from. It returns the values to
// confirm in the answer, which are all the values both sides are now known to
// hold. If from is not a neighbor, nothing changes and ok is false.
func (c *Core) Gossip(from string, offered []uint32) (confirmed []uint32, ok bool) {
	if !c.neighbors.Has(from) {
		return nil, false
	}

	added := c.store.AddAll(offered)
	c.neighbors.Ack(from, offered...)

	c.logger.WithFields(logrus.Fields{
		"from":    from,
		"offered": len(offered),
		"added":   added,
	}).Debug("Gossip()")

	return c.neighbors.Shared(from, c.store), true
}

// GossipOk processes values confirmed by neighbor from. If from is not a
// neighbor, nothing changes and it returns false.
func (c *Core) GossipOk(from string, confirmed []uint32) bool {
	if !c.neighbors.Has(from) {
		return false
	}

	added := c.store.AddAll(confirmed)
	c.neighbors.Ack(from, confirmed...)

	c.logger.WithFields(logrus.Fields{
		"from":      from,
		"confirmed": len(confirmed),
		"added":     added,
	}).Debug("GossipOk()")

	return true
}

// SyncAll returns, for every neighbor, the values it is not known to hold.
func (c *Core) SyncAll() []Outgoing {
	return c.antiEntropy.Plan(c.neighbors, c.store)
}

// Generate returns an id that no other node generates, provided node ids are
// unique.
func (c *Core) Generate(self string) string {
	id := fmt.Sprintf("%s-%d", self, c.nextID)
	c.nextID++
	return id
}

// Values returns every value the node holds.
func (c *Core) Values() []uint32 {
	return c.store.Values()
}

// Len returns the number of values the node holds.
func (c *Core) Len() int {
	return c.store.Len()
}

// Neighbors returns the neighbor ids in the order they were added.
func (c *Core) Neighbors() []string {
	return c.neighbors.Neighbors()
}

// Acked returns the values neighbor id is known to hold, or nil if id is not a
// neighbor.
func (c *Core) Acked(id string) []uint32 {
	acked := c.neighbors.Acked(id)
	if acked == nil {
		return nil
	}
	return acked.Values()
}
