// Package udpradio implements radio.Substrate over a loopback
// net.UDPConn, standing in for the point-to-point link when
// bridge-sender and bridge-receiver run as two separate host
// processes rather than one --demo process sharing an
// internal/radio/hostsim Medium. Framing and per-peer XOR masking
// mirror internal/radio/nrfradio's software layer, since UDP itself
// has neither addressed pipes nor payload encryption at this level.
package udpradio

import (
	"net"
	"sync"

	"github.com/nilswitch/rcbridge/internal/protocol"
	"github.com/nilswitch/rcbridge/internal/radio"
)

const headerSize = 2 * protocol.AddrSize

type upcallEvent struct {
	sent    bool
	addr    [protocol.AddrSize]byte
	ok      bool
	payload []byte
}

// Radio is a radio.Substrate backed by a single UDP socket bound
// locally and connected to one remote peer address.
type Radio struct {
	addr [protocol.AddrSize]byte
	conn *net.UDPConn

	channelMu sync.Mutex
	channel   uint8

	peersMu sync.Mutex
	peers   map[[protocol.AddrSize]byte][protocol.KeySize]byte

	onSent     func(addr [protocol.AddrSize]byte, ok bool)
	onReceived func(addr [protocol.AddrSize]byte, data []byte)

	queueMu sync.Mutex
	queue   []upcallEvent

	closeOnce sync.Once
	closed    chan struct{}
}

var _ radio.Substrate = (*Radio)(nil)

// NewRadio binds localAddr and connects to remoteAddr (both host:port
// UDP endpoints), tagging outgoing frames with own — the protocol
// address this endpoint claims in pairing.
func NewRadio(own [protocol.AddrSize]byte, localAddr, remoteAddr string) (*Radio, error) {
	laddr, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, err
	}
	raddr, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, err
	}
	return &Radio{
		addr:    own,
		conn:    conn,
		channel: protocol.InitChannel,
		peers:   make(map[[protocol.AddrSize]byte][protocol.KeySize]byte),
		closed:  make(chan struct{}),
	}, nil
}

// Init starts the background read loop that feeds Poll's upcall queue.
func (r *Radio) Init(role radio.Role) error {
	go r.readLoop()
	return nil
}

func (r *Radio) readLoop() {
	buf := make([]byte, headerSize+protocol.MTU)
	for {
		select {
		case <-r.closed:
			return
		default:
		}
		n, err := r.conn.Read(buf)
		if err != nil {
			return
		}
		if n < headerSize {
			continue
		}
		var src [protocol.AddrSize]byte
		copy(src[:], buf[:protocol.AddrSize])
		payload := make([]byte, n-headerSize)
		copy(payload, buf[headerSize:n])
		if key, ok := r.peerKey(src); ok {
			payload = xorMask(key, payload)
		}
		r.pushEvent(upcallEvent{addr: src, payload: payload})
	}
}

func (r *Radio) pushEvent(ev upcallEvent) {
	r.queueMu.Lock()
	r.queue = append(r.queue, ev)
	r.queueMu.Unlock()
}

// SetChannel records the logical channel. UDP loopback has no
// physical channel to retune; this only keeps the substrate's
// reported channel consistent with what BridgeCore believes it set.
func (r *Radio) SetChannel(ch uint8) error {
	if ch < protocol.MinChannel || ch > protocol.MaxChannel {
		return protocol.ErrInvalidChannel
	}
	r.channelMu.Lock()
	r.channel = ch
	r.channelMu.Unlock()
	return nil
}

func (r *Radio) AddPeer(addr [protocol.AddrSize]byte, key [protocol.KeySize]byte) error {
	r.peersMu.Lock()
	r.peers[addr] = key
	r.peersMu.Unlock()
	return nil
}

func (r *Radio) peerKey(addr [protocol.AddrSize]byte) ([protocol.KeySize]byte, bool) {
	r.peersMu.Lock()
	defer r.peersMu.Unlock()
	key, ok := r.peers[addr]
	return key, ok
}

// Send writes one addressed, optionally-masked datagram to the fixed
// remote peer this Radio was dialed to. There is only ever one remote
// endpoint in the loopback topology, so addr only affects masking and
// the header, not routing.
func (r *Radio) Send(addr [protocol.AddrSize]byte, frame []byte) bool {
	payload := frame
	if addr != protocol.BroadcastAddr {
		if key, ok := r.peerKey(addr); ok {
			payload = xorMask(key, frame)
		}
	}
	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, r.addr[:]...)
	out = append(out, addr[:]...)
	out = append(out, payload...)

	_, err := r.conn.Write(out)
	ok := err == nil
	r.pushEvent(upcallEvent{sent: true, addr: addr, ok: ok})
	return ok
}

func (r *Radio) SetHandlers(onSent func(addr [protocol.AddrSize]byte, ok bool), onReceived func(addr [protocol.AddrSize]byte, data []byte)) {
	r.onSent = onSent
	r.onReceived = onReceived
}

// Poll drains every upcall queued since the last call and invokes it
// synchronously, the same contract internal/radio/hostsim gives.
func (r *Radio) Poll() {
	r.queueMu.Lock()
	pending := r.queue
	r.queue = nil
	r.queueMu.Unlock()

	for _, ev := range pending {
		if ev.sent {
			if r.onSent != nil {
				r.onSent(ev.addr, ev.ok)
			}
			continue
		}
		if r.onReceived != nil {
			r.onReceived(ev.addr, ev.payload)
		}
	}
}

// Close stops the read loop and releases the socket.
func (r *Radio) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return r.conn.Close()
}

func xorMask(key [protocol.KeySize]byte, data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
