package node

import (
	"github.com/mosaicnetworks/rumor/src/store"
	"github.com/mosaicnetworks/rumor/src/topology"
)

// Outgoing is a gossip message the node should send.
type Outgoing struct {
	To   string
	Seen []uint32
}

// AntiEntropy decides what to offer each neighbor.
type AntiEntropy struct {
	// SkipEmpty suppresses gossip messages that carry no values.
	SkipEmpty bool
}

// Plan returns one Outgoing per neighbor, in neighbor order, offering the
// values of s that the neighbor is not known to hold. It does not modify the
// neighbor table.
func (a *AntiEntropy) Plan(neighbors *topology.NeighborTable, s store.Store) []Outgoing {
	res := []Outgoing{}
	for _, n := range neighbors.Neighbors() {
		unseen := neighbors.Unseen(n, s)
		if a.SkipEmpty && len(unseen) == 0 {
			continue
		}
		res = append(res, Outgoing{To: n, Seen: unseen})
	}
	return res
}
