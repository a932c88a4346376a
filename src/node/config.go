package node

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/sirupsen/logrus"
)

// Config contains the configuration of a Node.
type Config struct {
	// SyncInterval is the period of timer-driven anti-entropy sweeps. Zero
	// disables them.
	SyncInterval time.Duration `mapstructure:"sync-interval"`

	// SkipEmptyGossip suppresses gossip messages that carry no values.
	SkipEmptyGossip bool `mapstructure:"skip-empty-gossip"`

	// Moniker is a friendly name for the node, used in logs and stats.
	Moniker string `mapstructure:"moniker"`

	Logger *logrus.Logger
}

// NewConfig ...
func NewConfig(syncInterval time.Duration,
	skipEmptyGossip bool,
	moniker string,
	logger *logrus.Logger) *Config {

	return &Config{
		SyncInterval:    syncInterval,
		SkipEmptyGossip: skipEmptyGossip,
		Moniker:         moniker,
		Logger:          logger,
	}
}

// DefaultConfig ...
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		SyncInterval:    0,
		SkipEmptyGossip: false,
		Logger:          logger,
	}
}

// TestConfig returns a DefaultConfig that logs through t.
func TestConfig(t testing.TB) *Config {
	config := DefaultConfig()
	config.Logger = common.NewTestLogger(t, common.TestLogLevel)
	return config
}
