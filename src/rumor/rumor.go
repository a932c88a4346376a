package rumor

import (
	"fmt"
	"os"

	"github.com/mosaicnetworks/rumor/src/config"
	"github.com/mosaicnetworks/rumor/src/net"
	"github.com/mosaicnetworks/rumor/src/node"
	"github.com/mosaicnetworks/rumor/src/service"
	"github.com/mosaicnetworks/rumor/src/store"
	"github.com/mosaicnetworks/rumor/src/telemetry"
	"github.com/mosaicnetworks/rumor/src/version"
	"github.com/sirupsen/logrus"
)

// Rumor is a fully initialised node and its dependencies.
type Rumor struct {
	Config    *config.Config
	Node      *node.Node
	Transport net.Transport
	Store     store.Store
	Metrics   *telemetry.Metrics
	Service   *service.Service
}

// NewRumor ...
func NewRumor(config *config.Config) *Rumor {
	engine := &Rumor{
		Config: config,
	}

	return engine
}

func (r *Rumor) initTransport() error {
	if r.Transport != nil {
		r.logger().WithField("addr", r.Transport.LocalAddr()).Debug("using preset transport")
		return nil
	}

	r.Transport = net.NewMaelstromTransport(
		os.Stdin,
		os.Stdout,
		r.Config.Logger().WithField("prefix", "maelstrom"),
	)

	return nil
}

func (r *Rumor) initStore() error {
	if r.Store == nil {
		r.Store = store.NewInmemStore()
		r.logger().Debug("created new in-mem store")
	}
	return nil
}

func (r *Rumor) initNode() error {
	r.Metrics = telemetry.NewMetrics()
	r.Metrics.SetBuildInfo(version.Version, version.GitCommit)

	r.Node = node.NewNode(
		r.Config.NodeConfig(),
		r.Store,
		r.Transport,
		r.Metrics,
	)

	return nil
}

func (r *Rumor) initService() error {
	if r.Config.ServiceAddr != "" {
		r.Service = service.NewService(r.Config.ServiceAddr, r.Node, r.Config.LoggerEntry())
	}
	return nil
}

// Init initialises the store, transport, node and service, in that order.
func (r *Rumor) Init() error {
	if r.Config == nil {
		return fmt.Errorf("no config")
	}

	if err := r.initStore(); err != nil {
		return err
	}

	if err := r.initTransport(); err != nil {
		return err
	}

	if err := r.initNode(); err != nil {
		return err
	}

	if err := r.initService(); err != nil {
		return err
	}

	return nil
}

// Run starts the service, if any, and runs the node until its input ends or it
// fails.
func (r *Rumor) Run() error {
	if r.Node == nil {
		return fmt.Errorf("Run called before Init")
	}

	if r.Service != nil {
		go r.Service.Serve()
	}

	return r.Node.Run()
}

func (r *Rumor) logger() *logrus.Entry {
	return r.Config.LoggerEntry()
}
