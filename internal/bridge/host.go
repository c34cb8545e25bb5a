package bridge

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/nilswitch/rcbridge/internal/metrics"
	"github.com/nilswitch/rcbridge/internal/peer"
	"github.com/nilswitch/rcbridge/internal/protocol"
)

// DataHandler is the payload interface exposed to the application on
// the Receiver side: invoked once per valid DATA frame, carrying the
// frame's application payload verbatim.
type DataHandler func(payload []byte)

// Role is the capability set two types, Sender and Receiver, both
// implement over a shared Core.
type Role interface {
	// Tick runs once per cooperative loop iteration, alongside the
	// config-surface poll. The Sender uses it to drive the 500ms
	// broadcast cadence; the Receiver's Tick is a no-op since it has
	// nothing time-driven to do.
	Tick(now time.Time)

	// HandleReceived processes one well-formed frame from addr. It is
	// the role's half of the receive dispatcher: the role itself
	// branches on Host.State() to decide which tags apply.
	HandleReceived(addr [6]byte, frame *protocol.Frame)

	// HandleSent consumes the on_sent upcall for the last frame this
	// role handed to the radio. The pairing state and hop state alone
	// disambiguate what a given ack refers to, since the cooperative
	// model keeps at most one outstanding unicast per role at a time —
	// no per-frame correlation id is needed.
	HandleSent(addr [6]byte, ok bool)
}

// Host is the narrow surface a Role needs back from Core: the shared
// pairing state and peer record, the radio send/channel primitives,
// and the ambient logger/metrics/clock. Defining it as an interface
// (rather than a *Core field on Sender/Receiver) keeps the roles
// testable against a fake without depending on Core's persistence or
// substrate wiring.
type Host interface {
	// State reports the current PairingState.
	State() PairingState

	// Peer returns the currently committed peer record. Its zero value
	// is meaningless before the first CommitPairing call.
	Peer() peer.Peer

	// CommitPairing transitions to Paired, registers p with the radio
	// substrate for encrypted unicast, and persists it. A registration
	// or persistence failure is reported to the caller but never
	// un-commits the pairing: runtime errors during steady-state never
	// tear down an established pairing.
	CommitPairing(p peer.Peer) error

	// Send hands frame to the radio substrate for addr, returning
	// whether the substrate accepted it for transmission (not whether
	// it was acked — that arrives later via HandleSent).
	Send(addr [6]byte, frame []byte) bool

	// SetChannel asks the radio substrate to retune, reporting success.
	SetChannel(ch uint8) bool

	// Now returns the current time; a seam so tests can drive Tick with
	// synthetic timestamps instead of wall-clock sleeps.
	Now() time.Time

	Logger() *zerolog.Logger
	Metrics() metrics.Recorder
}
