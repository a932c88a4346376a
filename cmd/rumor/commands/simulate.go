package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mosaicnetworks/rumor/src/sim"
	"github.com/mosaicnetworks/rumor/src/topology"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSimulateCmd returns the command that runs an in-process cluster
func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a cluster with message loss and duplication",
		Long: `Simulate a cluster with message loss and duplication.

The cluster follows the assignment in [datadir]/topology.json if the file
exists, or a line of --nodes nodes otherwise. Values are broadcast round-robin
across the nodes, then every node serves a read per round until all of them
hold every value. The result is printed as JSON.`,
		PreRunE: loadConfig,
		RunE:    runSimulate,
	}
	AddSimulateFlags(cmd)
	return cmd
}

// AddSimulateFlags adds flags to the Simulate command
func AddSimulateFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)

	cmd.Flags().Int("nodes", _config.Simulate.Nodes, "Number of nodes when no topology file is present")
	cmd.Flags().Int("values", _config.Simulate.Values, "Number of values to broadcast")
	cmd.Flags().Int("rounds", _config.Simulate.Rounds, "Max number of read rounds")
	cmd.Flags().Int64("seed", _config.Simulate.Seed, "Seed of the scheduler")
	cmd.Flags().Float64("drop-rate", _config.Simulate.DropRate, "Probability that a message is lost")
	cmd.Flags().Float64("duplicate-rate", _config.Simulate.DuplicateRate, "Probability that a message is delivered twice")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger := _config.Rumor.LoggerEntry()

	ids, assignment, err := loadAssignment(_config.Rumor.DataDir, _config.Simulate.Nodes)
	if err != nil {
		return err
	}

	if !assignment.Connected(ids) {
		logger.Warn("Topology is not connected, the cluster cannot converge")
	}

	cluster, err := sim.NewCluster(ids, assignment, sim.Config{
		Seed:            _config.Simulate.Seed,
		DropRate:        _config.Simulate.DropRate,
		DuplicateRate:   _config.Simulate.DuplicateRate,
		SkipEmptyGossip: _config.Rumor.SkipEmptyGossip,
	}, logger)
	if err != nil {
		return err
	}

	for i := 0; i < _config.Simulate.Values; i++ {
		if err := cluster.Broadcast(ids[i%len(ids)], uint32(i)); err != nil {
			return err
		}
	}

	res, err := cluster.Run(_config.Simulate.Rounds)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"nodes":     len(ids),
		"converged": res.Converged,
		"rounds":    res.Rounds,
	}).Info("Simulation done")

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	if !res.Converged {
		return fmt.Errorf("no convergence after %d rounds", res.Rounds)
	}

	return nil
}

// loadAssignment reads topology.json from datadir, or builds a line of n nodes
// named n1..nN when the file does not exist.
func loadAssignment(datadir string, n int) ([]string, topology.Assignment, error) {
	jt := topology.NewJSONTopology(datadir)

	a, err := jt.Assignment()
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, err
	}

	if len(a) > 0 {
		keys := make([]string, 0, len(a))
		for k := range a {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return a.NodeIDs(keys), a, nil
	}

	if n < 1 {
		return nil, nil, fmt.Errorf("nodes should be at least 1, not %d", n)
	}

	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i+1)
	}

	return ids, topology.Line(ids), nil
}
