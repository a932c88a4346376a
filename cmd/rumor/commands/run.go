package commands

import (
	"github.com/mosaicnetworks/rumor/src/rumor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRunCmd returns the command that starts a rumor node on stdin and stdout
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runRumor,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runRumor(cmd *cobra.Command, args []string) error {
	engine := rumor.NewRumor(&_config.Rumor)

	if err := engine.Init(); err != nil {
		_config.Rumor.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	if err := engine.Run(); err != nil {
		_config.Rumor.Logger().Error("Node stopped:", err)
		return err
	}

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.Rumor.ServiceAddr, "Listen IP:Port for HTTP service")

	// Node configuration
	cmd.Flags().Duration("sync-interval", _config.Rumor.SyncInterval, "Time between anti-entropy sweeps (0 disables them)")
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Rumor.DataDir, "Top-level directory for configuration")
	cmd.Flags().String("log", _config.Rumor.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.Rumor.LogFile, "Also write logs to this file")
	cmd.Flags().String("moniker", _config.Rumor.Moniker, "Optional name")
	cmd.Flags().Bool("skip-empty-gossip", _config.Rumor.SkipEmptyGossip, "Do not send gossip messages without values")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	configFile, err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	if err := _config.Rumor.Validate(); err != nil {
		return err
	}

	logger := _config.Rumor.Logger()

	if configFile != "" {
		logger.Debugf("Using config file: %s", configFile)
	} else {
		logger.Debugf("No config file found in: %s", _config.Rumor.DataDir)
	}

	logger.WithFields(logrus.Fields{
		"rumor.DataDir":         _config.Rumor.DataDir,
		"rumor.LogLevel":        _config.Rumor.LogLevel,
		"rumor.LogFile":         _config.Rumor.LogFile,
		"rumor.ServiceAddr":     _config.Rumor.ServiceAddr,
		"rumor.SyncInterval":    _config.Rumor.SyncInterval,
		"rumor.SkipEmptyGossip": _config.Rumor.SkipEmptyGossip,
		"rumor.Moniker":         _config.Rumor.Moniker,
	}).Debug("Config")

	return nil
}

// Bind all flags and read the config into viper. It returns the config file
// used, if any.
func bindFlagsLoadViper(cmd *cobra.Command) (string, error) {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return "", err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return "", err
	}

	// look for config file in [datadir]/rumor.toml (.json, .yaml also work)
	viper.SetConfigName("rumor")               // name of config file (without extension)
	viper.AddConfigPath(_config.Rumor.DataDir) // search root directory

	var configFile string

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		configFile = viper.ConfigFileUsed()
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return "", err
	}

	// second unmarshal to read from config file
	return configFile, viper.Unmarshal(_config)
}
