// Package radio defines the external radio substrate collaborator:
// the narrow primitive Core sends/receives short unicast/broadcast
// datagrams through, on a selectable channel. internal/radio/hostsim,
// internal/radio/nrfradio, and internal/radio/udpradio are its
// implementations.
package radio

// Role matches the "combo" role both endpoints advertise to the
// substrate: capable of both send and receive.
type Role uint8

const (
	RoleCombo Role = iota
)

// Substrate is the contract Core consumes. Init, SetChannel and
// AddPeer are synchronous setup calls; Send is a synchronous
// accept/reject of a single frame for transmission, not an ack.
// SetHandlers registers the two upcalls the substrate later invokes —
// on_sent(addr, status) and on_received(addr, bytes) — and Poll is the
// cooperative point where a substrate that cannot guarantee upcall
// serialization on its own drains a queue and invokes those upcalls
// synchronously on the calling goroutine. A substrate must never
// invoke either upcall from inside another call it received from
// Core (Send, Poll) — both must always run from the top of Poll, so a
// role reacting to one upcall by issuing another frame never re-enters
// its own handler.
type Substrate interface {
	Init(role Role) error
	SetChannel(ch uint8) error
	AddPeer(addr [6]byte, key [16]byte) error
	Send(addr [6]byte, frame []byte) bool
	SetHandlers(onSent func(addr [6]byte, ok bool), onReceived func(addr [6]byte, frame []byte))
	Poll()
}
