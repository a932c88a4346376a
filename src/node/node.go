package node

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mosaicnetworks/rumor/src/net"
	"github.com/mosaicnetworks/rumor/src/store"
	"github.com/mosaicnetworks/rumor/src/telemetry"
	"github.com/sirupsen/logrus"
)

// Node defines a rumor node
type Node struct {
	state

	conf   *Config
	logger *logrus.Entry

	core     *Core
	coreLock sync.Mutex

	trans net.Transport
	netCh <-chan net.RPC

	metrics *telemetry.Metrics

	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	controlTimer *ControlTimer

	start            time.Time
	messagesReceived int
	gossipSent       int
	dropped          int
}

// NewNode is a factory method that returns a Node instance. If metrics is nil,
// the node creates its own.
func NewNode(conf *Config,
	store store.Store,
	trans net.Transport,
	metrics *telemetry.Metrics,
) *Node {
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}

	logger := conf.Logger.WithField("moniker", conf.Moniker)

	node := Node{
		conf:         conf,
		logger:       logger,
		core:         NewCore(store, &AntiEntropy{SkipEmpty: conf.SkipEmptyGossip}, logger),
		trans:        trans,
		netCh:        trans.Consumer(),
		metrics:      metrics,
		shutdownCh:   make(chan struct{}),
		controlTimer: NewRandomControlTimer(),
	}

	return &node
}

// log returns the node logger with its identity, which the transport may only
// learn after startup.
func (n *Node) log() *logrus.Entry {
	return n.logger.WithField("this_id", n.trans.LocalAddr())
}

// RunAsync calls Run as a separate thread and returns a channel that receives
// its result.
func (n *Node) RunAsync() <-chan error {
	n.logger.Debug("runasync")

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run()
	}()
	return errCh
}

// Run starts the transport and processes its messages until the node is shut
// down, the transport's input ends, or a fatal error occurs. It returns nil in
// the first two cases.
func (n *Node) Run() error {
	n.coreLock.Lock()
	n.start = time.Now()
	n.coreLock.Unlock()

	n.setState(Running)

	// The ControlTimer drives periodic anti-entropy sweeps when SyncInterval
	// is set.
	go n.controlTimer.Run(n.conf.SyncInterval)

	listenCh := make(chan error, 1)
	go func() {
		listenCh <- n.trans.Listen()
	}()

	for {
		select {
		case rpc := <-n.netCh:
			if err := n.processRPC(rpc); err != nil {
				n.log().WithError(err).Error("Processing RPC")
				n.Shutdown()
				return err
			}
		case <-n.controlTimer.tickCh:
			if err := n.sweep(); err != nil {
				n.log().WithError(err).Error("Sweep")
				n.Shutdown()
				return err
			}
		case err := <-listenCh:
			if err != nil {
				n.log().WithError(err).Error("Transport")
				n.Shutdown()
				return err
			}
			// The input has ended, but messages already decoded are still
			// processed.
			err = n.drain()
			n.Shutdown()
			return err
		case <-n.shutdownCh:
			return nil
		}
	}
}

func (n *Node) drain() error {
	for {
		select {
		case rpc := <-n.netCh:
			if err := n.processRPC(rpc); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// sweep performs a timer-driven anti-entropy round.
func (n *Node) sweep() error {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	n.log().Debug("Time to gossip!")

	return n.sendGossip(n.core.SyncAll())
}

// Shutdown shuts down the node
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.log().Debug("Shutdown")
		n.logStats()

		n.setState(Shutdown)

		close(n.shutdownCh)

		n.controlTimer.Shutdown()

		n.trans.Close()
	})
}

// GetStats returns stats
func (n *Node) GetStats() map[string]string {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	var uptime time.Duration
	if !n.start.IsZero() {
		uptime = time.Since(n.start)
	}

	s := map[string]string{
		"id":                n.trans.LocalAddr(),
		"moniker":           n.conf.Moniker,
		"state":             n.getState().String(),
		"values":            strconv.Itoa(n.core.Len()),
		"num_neighbors":     strconv.Itoa(len(n.core.Neighbors())),
		"messages_received": strconv.Itoa(n.messagesReceived),
		"gossip_sent":       strconv.Itoa(n.gossipSent),
		"dropped":           strconv.Itoa(n.dropped),
		"uptime":            fmt.Sprintf("%.2f", uptime.Seconds()),
	}
	return s
}

func (n *Node) logStats() {
	stats := n.GetStats()

	fields := logrus.Fields{}
	for k, v := range stats {
		fields[k] = v
	}

	n.logger.WithFields(fields).Debug("Stats")
}

// Messages returns every value the node holds.
func (n *Node) Messages() []uint32 {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	return n.core.Values()
}

// Neighbors returns, for every neighbor, the values it is known to hold.
func (n *Node) Neighbors() map[string][]uint32 {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	res := make(map[string][]uint32)
	for _, id := range n.core.Neighbors() {
		res[id] = n.core.Acked(id)
	}
	return res
}

// ID returns the node's identity, as assigned by the transport.
func (n *Node) ID() string {
	return n.trans.LocalAddr()
}

// Metrics returns the node's collectors.
func (n *Node) Metrics() *telemetry.Metrics {
	return n.metrics
}

// State returns the node's current state.
func (n *Node) State() State {
	return n.getState()
}
