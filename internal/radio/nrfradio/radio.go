//go:build tinygo || baremetal

// Package nrfradio adapts the nRF52-family register-level radio driver
// down to radio.Substrate, for boards that carry real nRF hardware.
// The peripheral gives us one flat-addressed pipe with no per-peer
// filtering or payload encryption, so both are implemented in
// software here: every on-air frame carries a 6-byte source and
// destination address ahead of the protocol payload, and unicast
// payloads are XOR-masked with the recipient's registered key. The
// original firmware relied on ESP-NOW's hardware AES engine for this,
// which has no analog on raw nRF51/52 radio registers.
package nrfradio

import (
	"time"

	"github.com/nilswitch/rcbridge/internal/protocol"
	"github.com/nilswitch/rcbridge/internal/radio"
)

// pollTimeout bounds how long a single Poll's receive attempt may
// wait for a packet, so the cooperative main loop's Poll call never
// stalls the way a hardware Rx spin-wait otherwise would.
const pollTimeout = 500 * time.Microsecond

// headerSize is the on-air source+destination address prefix ahead of
// the protocol.Frame payload.
const headerSize = 2 * protocol.AddrSize

// radioAddress and radioPrefix are the fixed SHOCKBURST base address
// and prefix byte both endpoints configure: pairing is handled entirely
// at the protocol layer, so the hardware only needs one shared pipe.
const (
	radioAddress uint32 = 0xE7E7E7E7
	radioPrefix  byte   = 0xE7
)

// sentQueueCapacity bounds the number of outstanding on_sent upcalls
// Poll has not yet drained. One outstanding send per role is the norm
// in the cooperative model, so this is generous headroom rather than a
// tight budget.
const sentQueueCapacity = 8

type sentEvent struct {
	addr [protocol.AddrSize]byte
	ok   bool
}

// lowLevelDriver is the register-poking surface a real driver
// implementation exposes; declared here so Radio can be constructed
// against either the real hardware or a test fake without this file
// importing device/nrf directly outside of NewRadio.
type lowLevelDriver interface {
	StartHFCLK()
	Configure(address uint32, prefix byte, channel uint8) error
	SetChannel(channel uint8) error
	Tx(data []byte) error
	Rx(timeout time.Duration) ([]byte, error)
}

// Radio implements radio.Substrate over a lowLevelDriver.
type Radio struct {
	addr   [protocol.AddrSize]byte
	driver lowLevelDriver

	channel uint8
	peers   map[[protocol.AddrSize]byte][protocol.KeySize]byte

	onSent     func(addr [protocol.AddrSize]byte, ok bool)
	onReceived func(addr [protocol.AddrSize]byte, data []byte)

	sentQueue []sentEvent
}

var _ radio.Substrate = (*Radio)(nil)

// NewRadio wraps driver for the given hardware address.
func NewRadio(addr [protocol.AddrSize]byte, driver lowLevelDriver) *Radio {
	return &Radio{
		addr:    addr,
		driver:  driver,
		channel: protocol.InitChannel,
		peers:   make(map[[protocol.AddrSize]byte][protocol.KeySize]byte),
	}
}

// Init brings up the clock and radio peripheral on the shared pipe.
func (r *Radio) Init(role radio.Role) error {
	r.driver.StartHFCLK()
	return r.driver.Configure(radioAddress, radioPrefix, r.channel)
}

// SetChannel retunes the radio.
func (r *Radio) SetChannel(ch uint8) error {
	if ch < protocol.MinChannel || ch > protocol.MaxChannel {
		return protocol.ErrInvalidChannel
	}
	if err := r.driver.SetChannel(ch); err != nil {
		return err
	}
	r.channel = ch
	return nil
}

// AddPeer registers the peer address and key used for software
// address filtering and payload masking.
func (r *Radio) AddPeer(addr [protocol.AddrSize]byte, key [protocol.KeySize]byte) error {
	r.peers[addr] = key
	return nil
}

// Send builds the addressed on-air frame and transmits it. The
// on_sent status the real ESP-NOW substrate reports came from the
// hardware's own ack; the bare nRF52 radio has no such ack at this
// layer, so Send reports success whenever the transmit call itself
// did not fail.
//
// Tx blocks until the hardware reports EVENTS_END, but that only
// means the *completion* isn't asynchronous — the on_sent upcall is
// still queued rather than invoked here. Send is routinely called
// from inside a role's HandleReceived or HandleSent (a role reacting
// to one upcall by issuing another frame), so calling onSent directly
// would re-enter the role's own handler while its caller is still on
// the stack. Queuing and draining the queue from Poll keeps every
// upcall dispatched from one place, in order, with nothing nested.
func (r *Radio) Send(addr [protocol.AddrSize]byte, frame []byte) bool {
	payload := frame
	if addr != protocol.BroadcastAddr {
		if key, ok := r.peers[addr]; ok {
			payload = xorMask(key, frame)
		}
	}
	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, r.addr[:]...)
	out = append(out, addr[:]...)
	out = append(out, payload...)

	ok := r.driver.Tx(out) == nil
	r.pushSent(addr, ok)
	return ok
}

func (r *Radio) pushSent(addr [protocol.AddrSize]byte, ok bool) {
	if len(r.sentQueue) == sentQueueCapacity {
		r.sentQueue = r.sentQueue[1:]
	}
	r.sentQueue = append(r.sentQueue, sentEvent{addr: addr, ok: ok})
}

// SetHandlers installs the upcalls invoked from Poll.
func (r *Radio) SetHandlers(onSent func(addr [protocol.AddrSize]byte, ok bool), onReceived func(addr [protocol.AddrSize]byte, data []byte)) {
	r.onSent = onSent
	r.onReceived = onReceived
}

// Poll drains any queued on_sent events, then makes one bounded
// receive attempt, unwraps the software address header, applies
// filtering and unmasking, and invokes on_received for frames
// addressed to this radio or broadcast. Draining on_sent first mirrors
// hostsim's queue: both upcalls fire from this one call, in order,
// on the caller's goroutine.
func (r *Radio) Poll() {
	for len(r.sentQueue) > 0 {
		ev := r.sentQueue[0]
		r.sentQueue = r.sentQueue[1:]
		if r.onSent != nil {
			r.onSent(ev.addr, ev.ok)
		}
	}

	data, err := r.driver.Rx(pollTimeout)
	if err != nil || len(data) < headerSize {
		return
	}
	var src, dst [protocol.AddrSize]byte
	copy(src[:], data[:protocol.AddrSize])
	copy(dst[:], data[protocol.AddrSize:headerSize])
	if dst != r.addr && dst != protocol.BroadcastAddr {
		return
	}
	payload := data[headerSize:]
	if key, ok := r.peers[src]; ok {
		payload = xorMask(key, payload)
	}
	if r.onReceived != nil {
		r.onReceived(src, payload)
	}
}

// xorMask is a keyed XOR stream, the same documented encryption
// stand-in internal/radio/hostsim uses, applied here because the bare
// nRF52 radio peripheral has no payload-encryption engine of its own.
func xorMask(key [protocol.KeySize]byte, data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
