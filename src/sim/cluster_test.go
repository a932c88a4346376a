package sim

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/mosaicnetworks/rumor/src/topology"
)

func newTestCluster(t *testing.T, ids []string, a topology.Assignment, conf Config) *Cluster {
	c, err := NewCluster(ids, a, conf, common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func nodeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	return ids
}

func TestLineOfThree(t *testing.T) {
	ids := []string{"A", "B", "C"}
	a := topology.Assignment{
		"A": {"B"},
		"B": {"A", "C"},
		"C": {"B"},
	}
	c := newTestCluster(t, ids, a, Config{})

	if err := c.Broadcast("A", 7); err != nil {
		t.Fatal(err)
	}
	if err := c.Drain(); err != nil {
		t.Fatal(err)
	}

	// the push reached B, but B has not swept yet
	if !reflect.DeepEqual(c.Core("B").Values(), []uint32{7}) {
		t.Fatalf("B should hold [7], not %v", c.Core("B").Values())
	}
	early, err := c.Read("C")
	if err != nil {
		t.Fatal(err)
	}
	if early == nil || len(early) != 0 {
		t.Fatalf("a read at C should return an empty collection, not %v", early)
	}

	if _, err := c.Read("B"); err != nil {
		t.Fatal(err)
	}
	if err := c.Drain(); err != nil {
		t.Fatal(err)
	}

	values, err := c.Read("C")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(values, []uint32{7}) {
		t.Fatalf("C should read [7], not %v", values)
	}
	if !c.Converged() {
		t.Fatalf("cluster should have converged")
	}
}

func TestConvergenceUnderFaults(t *testing.T) {
	ids := nodeIDs(8)
	a := topology.Line(ids)

	for seed := int64(0); seed < 10; seed++ {
		c := newTestCluster(t, ids, a, Config{
			Seed:          seed,
			DropRate:      0.3,
			DuplicateRate: 0.2,
		})

		for i, id := range ids {
			if err := c.Broadcast(id, uint32(100+i)); err != nil {
				t.Fatal(err)
			}
		}

		res, err := c.Run(200)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Converged {
			t.Fatalf("seed %d: cluster should converge, result %+v", seed, res)
		}
		if res.Counters.Dropped == 0 {
			t.Fatalf("seed %d: some messages should have been dropped", seed)
		}
	}
}

func TestDeterminism(t *testing.T) {
	ids := nodeIDs(5)
	a := topology.Line(ids)
	conf := Config{Seed: 42, DropRate: 0.2, DuplicateRate: 0.1}

	run := func() Result {
		c := newTestCluster(t, ids, a, conf)
		c.Broadcast("n0", 1)
		c.Broadcast("n4", 2)
		res, err := c.Run(100)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	r1, r2 := run(), run()
	if !reflect.DeepEqual(r1, r2) {
		t.Fatalf("two runs with the same seed should agree:\n%+v\n%+v", r1, r2)
	}
}

func TestBandwidthDecay(t *testing.T) {
	ids := nodeIDs(4)
	c := newTestCluster(t, ids, topology.Line(ids), Config{})

	c.Broadcast("n0", 5)
	c.Broadcast("n3", 6)

	res, err := c.Run(20)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Fatalf("cluster should converge: %+v", res)
	}

	// once every exchange has been acknowledged, sweeps offer nothing
	n, err := c.Round()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("a round after convergence should offer no values, not %d", n)
	}
}

func TestSkipEmptyGossip(t *testing.T) {
	ids := nodeIDs(3)
	c := newTestCluster(t, ids, topology.Line(ids), Config{SkipEmptyGossip: true})

	before := c.Counters().Sent
	if _, err := c.Round(); err != nil {
		t.Fatal(err)
	}
	if sent := c.Counters().Sent - before; sent != 0 {
		t.Fatalf("an empty cluster should send nothing when skipping empty gossip, not %d", sent)
	}

	c2 := newTestCluster(t, ids, topology.Line(ids), Config{})
	if _, err := c2.Round(); err != nil {
		t.Fatal(err)
	}
	// 4 gossip messages along the line, each answered
	if sent := c2.Counters().Sent; sent != 8 {
		t.Fatalf("an empty cluster should still exchange 8 messages per round, not %d", sent)
	}
}

func TestIsolatedNode(t *testing.T) {
	ids := []string{"n0", "n1", "x"}
	a := topology.Line([]string{"n0", "n1"})
	c := newTestCluster(t, ids, a, Config{})

	c.Broadcast("x", 9)
	c.Broadcast("n0", 1)

	res, err := c.Run(10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Converged {
		t.Fatalf("a cluster with an isolated node should not converge")
	}

	values, _ := c.Read("x")
	if !reflect.DeepEqual(values, []uint32{9}) {
		t.Fatalf("x should only hold its own value, not %v", values)
	}
	if c.Core("n1").Len() != 1 {
		t.Fatalf("n1 should only hold 1, not %v", c.Core("n1").Values())
	}
	if c.InFlight() != 0 {
		t.Fatalf("x should never gossip")
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := NewCluster(nil, nil, Config{DropRate: 1}, common.NewTestEntry(t, common.TestLogLevel)); err == nil {
		t.Fatalf("a drop rate of 1 should be rejected")
	}
	if _, err := NewCluster([]string{"a", "a"}, nil, Config{}, common.NewTestEntry(t, common.TestLogLevel)); err == nil {
		t.Fatalf("duplicate ids should be rejected")
	}
}
