package session

import "github.com/emtee40/retrowars/internal/protocol"

// Local actions are funneled into the delivery loop as events so that every
// state mutation, local or server-driven, happens on the same goroutine.
type event interface {
	isEvent()
}

// statusEvent records the local player's own status transition.
type statusEvent struct {
	status protocol.Status
}

// scoreEvent carries the local player's own score, applied locally the same
// way an inbound score frame would be.
type scoreEvent struct {
	score int64
}

func (statusEvent) isEvent() {}
func (scoreEvent) isEvent()  {}
