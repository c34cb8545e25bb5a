package bridge

// PairingState is the two-variant lifecycle: a boot starts Unpaired
// and, once a handshake commits, becomes Paired for the rest of that
// boot. Reset (peer.Reset) deletes the persisted blob but does not
// touch a running Core's PairingState — the running session keeps
// talking to its in-memory peer until reboot.
type PairingState uint8

const (
	Unpaired PairingState = iota
	Paired
)

func (s PairingState) String() string {
	if s == Paired {
		return "paired"
	}
	return "unpaired"
}
