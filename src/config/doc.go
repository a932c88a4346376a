// Package config defines the configuration for a rumor node.
//
// Regardless of how rumor is started, directly from Go code or as a standalone
// process from the command line, it uses the Config object defined in this
// package to store and forward configuration options. On top of these options,
// rumor relies on a data directory, defined by Config.DataDir, where it looks
// for a few optional files:
//
//  rumor.toml // (or .yaml, .json) configuration values, overridden by flags.
//  topology.json // a neighbor assignment, used by the simulate command.
//
// Log output always goes to stderr, because stdout carries the protocol.
package config
