package node

import (
	"sync/atomic"
)

// State captures the state of a node: Initialising, Running or Shutdown.
type State uint32

const (
	// Initialising is the state of a node that has not started its control
	// loop yet.
	Initialising State = iota
	// Running is the state of a node processing messages.
	Running
	// Shutdown is shutdown
	Shutdown
)

// String ...
func (s State) String() string {
	switch s {
	case Initialising:
		return "Initialising"
	case Running:
		return "Running"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

type state struct {
	state State
}

func (b *state) getState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

func (b *state) setState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}
