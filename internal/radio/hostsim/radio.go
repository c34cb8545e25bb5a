package hostsim

import (
	"sync"

	"github.com/nilswitch/rcbridge/internal/protocol"
	"github.com/nilswitch/rcbridge/internal/radio"
)

// Radio is a radio.Substrate implementation backed by a Medium. It
// owns per-peer encryption keys and its own upcallQueue for
// deferring both upcalls to Poll.
type Radio struct {
	addr   [protocol.AddrSize]byte
	medium *Medium

	channelMu sync.Mutex
	channel   uint8

	peersMu sync.Mutex
	peers   map[[protocol.AddrSize]byte][protocol.KeySize]byte

	onSent     func(addr [protocol.AddrSize]byte, ok bool)
	onReceived func(addr [protocol.AddrSize]byte, data []byte)

	queue upcallQueue
}

var _ radio.Substrate = (*Radio)(nil)

// NewRadio creates a Radio at addr and registers it with medium. The
// radio can send and receive as soon as it is constructed; Init is a
// separate step only to satisfy radio.Substrate and does nothing here.
func NewRadio(addr [protocol.AddrSize]byte, medium *Medium) *Radio {
	r := &Radio{
		addr:    addr,
		medium:  medium,
		channel: protocol.InitChannel,
		peers:   make(map[[protocol.AddrSize]byte][protocol.KeySize]byte),
	}
	medium.register(r)
	return r
}

// Addr reports the radio's own hardware address.
func (r *Radio) Addr() [protocol.AddrSize]byte { return r.addr }

// Init is a no-op for the simulated substrate: the Medium registration
// happens at construction, and there is no real hardware to bring up.
func (r *Radio) Init(role radio.Role) error {
	return nil
}

// Channel returns the radio's current channel.
func (r *Radio) Channel() uint8 {
	r.channelMu.Lock()
	defer r.channelMu.Unlock()
	return r.channel
}

// SetChannel changes the radio's listening/transmitting channel.
func (r *Radio) SetChannel(ch uint8) error {
	if ch < protocol.MinChannel || ch > protocol.MaxChannel {
		return protocol.ErrInvalidChannel
	}
	r.channelMu.Lock()
	r.channel = ch
	r.channelMu.Unlock()
	return nil
}

// AddPeer registers a peer address and its encryption key, so future
// unicast Sends to that address are encrypted and future deliveries
// from it are decrypted.
func (r *Radio) AddPeer(addr [protocol.AddrSize]byte, key [protocol.KeySize]byte) error {
	r.peersMu.Lock()
	defer r.peersMu.Unlock()
	r.peers[addr] = key
	return nil
}

func (r *Radio) peerKey(addr [protocol.AddrSize]byte) ([protocol.KeySize]byte, bool) {
	r.peersMu.Lock()
	defer r.peersMu.Unlock()
	key, ok := r.peers[addr]
	return key, ok
}

// Send transmits frame to addr over the medium. Unicast frames are
// XOR-encrypted when a key is already on file for addr; the pairing
// frames (SEARCH, SEARCH_REPLY) precede AddPeer and so travel in the
// clear. The on_sent upcall is never invoked synchronously here: it is
// always queued for delivery on the next Poll, since Send is routinely
// called from inside a role's own upcall handler and a synchronous
// callback here would re-enter it.
func (r *Radio) Send(addr [protocol.AddrSize]byte, frame []byte) bool {
	out := frame
	if addr != protocol.BroadcastAddr {
		if key, ok := r.peerKey(addr); ok {
			out = xorCipher(key, frame)
		}
	}
	ok := r.medium.transmit(r, addr, out)
	r.queue.push(upcallEvent{kind: upcallSent, addr: addr, ok: ok})
	return ok
}

// deliver is called by Medium.transmit (on the sender's goroutine) to
// hand an inbound frame to this radio. It only queues the event; the
// owning Core observes it via the next Poll call.
func (r *Radio) deliver(from [protocol.AddrSize]byte, frame []byte) {
	in := frame
	if key, ok := r.peerKey(from); ok {
		in = xorCipher(key, frame)
	}
	r.queue.push(upcallEvent{kind: upcallReceived, addr: from, frame: in})
}

// SetHandlers installs the callbacks invoked from Poll.
func (r *Radio) SetHandlers(onSent func(addr [protocol.AddrSize]byte, ok bool), onReceived func(addr [protocol.AddrSize]byte, data []byte)) {
	r.onSent = onSent
	r.onReceived = onReceived
}

// Poll drains every queued upcall and invokes it synchronously on the
// caller's goroutine.
func (r *Radio) Poll() {
	for {
		ev, ok := r.queue.pop()
		if !ok {
			return
		}
		switch ev.kind {
		case upcallSent:
			if r.onSent != nil {
				r.onSent(ev.addr, ev.ok)
			}
		case upcallReceived:
			if r.onReceived != nil {
				r.onReceived(ev.addr, ev.frame)
			}
		}
	}
}

// Close removes the radio from its medium so no further frames are
// routed to it.
func (r *Radio) Close() error {
	r.medium.unregister(r.addr)
	return nil
}
