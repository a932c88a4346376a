package commands

import (
	"github.com/mosaicnetworks/rumor/src/config"
)

// CLIConfig contains configuration for the run and simulate commands
type CLIConfig struct {
	Rumor    config.Config  `mapstructure:",squash"`
	Simulate SimulateConfig `mapstructure:",squash"`
}

// SimulateConfig contains the options of the simulate command. The gossip
// policy is shared with the run command through Rumor.SkipEmptyGossip.
type SimulateConfig struct {
	Nodes         int     `mapstructure:"nodes"`
	Values        int     `mapstructure:"values"`
	Rounds        int     `mapstructure:"rounds"`
	Seed          int64   `mapstructure:"seed"`
	DropRate      float64 `mapstructure:"drop-rate"`
	DuplicateRate float64 `mapstructure:"duplicate-rate"`
}

// NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Rumor: *config.NewDefaultConfig(),
		Simulate: SimulateConfig{
			Nodes:         5,
			Values:        10,
			Rounds:        100,
			Seed:          1,
			DropRate:      0,
			DuplicateRate: 0,
		},
	}
}
