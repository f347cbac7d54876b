package viewer

import (
	"errors"
	"sync/atomic"

	"github.com/frizinak/liveview/channel"
	"github.com/frizinak/liveview/display"
	"github.com/frizinak/liveview/frame"
)

var (
	ErrInvalidFrame       = frame.ErrInvalidFrame
	ErrChannelClosed      = channel.ErrClosed
	ErrDisplayUnavailable = display.ErrDisplayUnavailable
	ErrShutdownTimeout    = errors.New("Shutdown timeout")
	ErrInvalidConfig      = errors.New("Invalid viewer config")
)

type State int32

const (
	Created State = iota
	Running
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// stateVar only ever moves forward.
type stateVar struct{ v atomic.Int32 }

func (s *stateVar) get() State { return State(s.v.Load()) }

func (s *stateVar) advance(to State) bool {
	for {
		cur := s.v.Load()
		if State(cur) >= to {
			return false
		}
		if s.v.CompareAndSwap(cur, int32(to)) {
			return true
		}
	}
}
