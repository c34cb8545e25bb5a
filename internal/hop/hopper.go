// Package hop implements the Receiver-only channel hopper: clamp-and-
// reflect candidate computation, with direction memory committed only
// once the HOP_REPLY carrying the candidate has left the radio.
package hop

import "github.com/nilswitch/rcbridge/internal/protocol"

// State is the Receiver's channel state.
type State struct {
	Current   uint8
	Direction int8
}

// NewState returns the initial state: current = InitChannel,
// direction = +1.
func NewState() State {
	return State{Current: protocol.InitChannel, Direction: 1}
}

// Candidate computes the next channel without committing it:
// clamp(current + direction), reflecting at the bounds rather than
// saturating, so the candidate is always different from the current
// channel.
func (s State) Candidate() uint8 {
	next := int(s.Current) + int(s.Direction)
	switch {
	case next > int(protocol.MaxChannel):
		return protocol.MaxChannel - 1
	case next < int(protocol.MinChannel):
		return protocol.MinChannel + 1
	default:
		return uint8(next)
	}
}

// Commit advances State to candidate, recomputing direction as
// sign(candidate - current). Callers must only call Commit after the
// HOP_REPLY carrying candidate has left the radio (the on_sent success
// callback) — committing earlier would let the Receiver switch
// channels before the Sender could hear the reply.
func (s State) Commit(candidate uint8) State {
	delta := int(candidate) - int(s.Current)
	direction := int8(1)
	if delta < 0 {
		direction = -1
	}
	return State{Current: candidate, Direction: direction}
}
