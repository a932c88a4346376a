package sim

import (
	"github.com/sirupsen/logrus"
)

// Result summarises a simulation.
type Result struct {
	// Converged is true if every node held every value at the end of a round.
	Converged bool `json:"converged"`

	// Rounds is the number of rounds played; the round of convergence if
	// Converged is true.
	Rounds int `json:"rounds"`

	// GossipValuesPerRound is the number of values offered in gossip during
	// each round.
	GossipValuesPerRound []int `json:"gossip_values_per_round"`

	Counters Counters `json:"counters"`
}

// Round serves a read at every node, then drains the messages in flight. It
// returns the number of values offered in gossip during the round.
func (c *Cluster) Round() (int, error) {
	before := c.counters.GossipValues

	for _, id := range c.ids {
		if _, err := c.Read(id); err != nil {
			return 0, err
		}
	}

	if err := c.Drain(); err != nil {
		return 0, err
	}

	return c.counters.GossipValues - before, nil
}

// Run plays rounds until the cluster converges, or maxRounds have been played.
func (c *Cluster) Run(maxRounds int) (Result, error) {
	res := Result{GossipValuesPerRound: []int{}}

	for res.Rounds < maxRounds && !c.Converged() {
		n, err := c.Round()
		if err != nil {
			return res, err
		}
		res.Rounds++
		res.GossipValuesPerRound = append(res.GossipValuesPerRound, n)

		c.logger.WithFields(logrus.Fields{
			"round":         res.Rounds,
			"gossip_values": n,
		}).Debug("Round")
	}

	res.Converged = c.Converged()
	res.Counters = c.counters

	return res, nil
}
