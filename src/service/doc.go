// Package service exposes a read-only HTTP view of a running node: its stats,
// the values it holds, what it knows about its neighbors, and its Prometheus
// metrics. The service never sends protocol messages.
package service
