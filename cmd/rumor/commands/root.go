package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

// RootCmd is the root command for rumor
var RootCmd = &cobra.Command{
	Use:              "rumor",
	Short:            "topology-restricted broadcast node",
	TraverseChildren: true,
}
