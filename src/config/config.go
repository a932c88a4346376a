package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/mosaicnetworks/rumor/src/node"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultConfigName is the name, without extension, of the optional
	// configuration file in the data directory.
	DefaultConfigName = "rumor"

	// DefaultTopologyFile is the name of the file holding a neighbor
	// assignment.
	DefaultTopologyFile = "topology.json"
)

// Default configuration values.
const (
	DefaultLogLevel        = "info"
	DefaultLogFile         = ""
	DefaultServiceAddr     = ""
	DefaultSyncInterval    = 0 * time.Millisecond
	DefaultSkipEmptyGossip = false
	DefaultMoniker         = ""
)

// Config contains all the configuration properties of a rumor node.
type Config struct {
	// DataDir is the top-level directory containing rumor configuration.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, if set, receives a copy of the log output at every level.
	LogFile string `mapstructure:"log-file"`

	// ServiceAddr is the address:port of the optional HTTP service. The
	// service is disabled when it is empty.
	ServiceAddr string `mapstructure:"service-listen"`

	// SyncInterval is the period of timer-driven anti-entropy sweeps. Zero
	// disables them, so the node only gossips after broadcasts and reads.
	SyncInterval time.Duration `mapstructure:"sync-interval"`

	// SkipEmptyGossip suppresses gossip messages that carry no values.
	SkipEmptyGossip bool `mapstructure:"skip-empty-gossip"`

	// Moniker defines the friendly name of this node
	Moniker string `mapstructure:"moniker"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:         DefaultDataDir(),
		LogLevel:        DefaultLogLevel,
		LogFile:         DefaultLogFile,
		ServiceAddr:     DefaultServiceAddr,
		SyncInterval:    DefaultSyncInterval,
		SkipEmptyGossip: DefaultSkipEmptyGossip,
		Moniker:         DefaultMoniker,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// Validate checks the values that flags and config files cannot constrain.
func (c *Config) Validate() error {
	if c.SyncInterval < 0 {
		return fmt.Errorf("sync-interval should not be negative, not %v", c.SyncInterval)
	}
	return nil
}

// NodeConfig returns the subset of the configuration used by the node.
func (c *Config) NodeConfig() *node.Config {
	return node.NewConfig(
		c.SyncInterval,
		c.SkipEmptyGossip,
		c.Moniker,
		c.Logger(),
	)
}

// TopologyFile returns the full path of the file containing a neighbor
// assignment.
func (c *Config) TopologyFile() string {
	return filepath.Join(c.DataDir, DefaultTopologyFile)
}

// Logger returns the root logger, creating it on first use. It writes to
// stderr with a prefixed formatter and, when LogFile is set, copies every entry
// to that file.
func (c *Config) Logger() *logrus.Logger {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Out = os.Stderr
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				c.LogFile,
				&logrus.JSONFormatter{},
			))
		}
	}
	return c.logger
}

// LoggerEntry returns Logger with prefix set to "rumor".
func (c *Config) LoggerEntry() *logrus.Entry {
	return c.Logger().WithField("prefix", "rumor")
}

// DefaultDataDir return the default directory name for top-level rumor config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Rumor")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Rumor")
		} else {
			return filepath.Join(home, ".rumor")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
