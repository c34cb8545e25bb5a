// Package hostsim implements radio.Substrate as an in-process
// simulation: a Medium fans broadcasts out to every co-channel Radio
// and unicasts to exactly one, standing in for the real 2.4 GHz air
// interface for tests and the CLI demo mode.
package hostsim

import (
	"math/rand/v2"
	"sync"

	"github.com/nilswitch/rcbridge/internal/protocol"
)

// Medium connects any number of Radio instances. Two Cores running in
// separate goroutines against Radios on the same Medium form a
// complete Sender/Receiver pair.
type Medium struct {
	mu       sync.Mutex
	radios   map[[6]byte]*Radio
	lossRate float64
	rng      *rand.Rand
}

// NewMedium returns a lossless Medium: every unicast to a radio on
// the same channel is delivered.
func NewMedium() *Medium {
	return &Medium{radios: make(map[[6]byte]*Radio)}
}

// NewLossyMedium returns a Medium that randomly drops a fraction of
// unicast frames (lossRate in [0,1]), useful for exercising the link
// quality estimator and channel hopper without a real noisy channel.
// Broadcasts are never dropped: no retry logic is keyed on broadcast
// delivery, so there is nothing for loss to exercise there.
func NewLossyMedium(lossRate float64, seed uint64) *Medium {
	return &Medium{
		radios:   make(map[[6]byte]*Radio),
		lossRate: lossRate,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (m *Medium) register(r *Radio) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.radios[r.addr] = r
}

func (m *Medium) unregister(addr [6]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.radios, addr)
}

// transmit delivers frame from `from` to `to`, returning the on_sent
// status: for broadcast, whether the local radio accepted the frame
// for transmission (informational only, nothing reads it back); for
// unicast, whether the addressed peer actually received it — the
// status the quality estimator and the ack-gated pairing/hop commits
// both consume.
func (m *Medium) transmit(from *Radio, to [6]byte, frame []byte) bool {
	if to == protocol.BroadcastAddr {
		m.mu.Lock()
		targets := make([]*Radio, 0, len(m.radios))
		fromChannel := from.Channel()
		for addr, r := range m.radios {
			if addr == from.addr || r.Channel() != fromChannel {
				continue
			}
			targets = append(targets, r)
		}
		m.mu.Unlock()
		for _, r := range targets {
			r.deliver(from.addr, frame)
		}
		return true
	}

	m.mu.Lock()
	dest, ok := m.radios[to]
	dropped := ok && dest.Channel() == from.Channel() && m.dropUnicastLocked()
	m.mu.Unlock()
	if !ok || dest.Channel() != from.Channel() || dropped {
		return false
	}
	dest.deliver(from.addr, frame)
	return true
}

// dropUnicastLocked must be called with m.mu held; it guards the
// shared rand.Rand from concurrent access by Radios in different
// goroutines.
func (m *Medium) dropUnicastLocked() bool {
	if m.lossRate <= 0 || m.rng == nil {
		return false
	}
	return m.rng.Float64() < m.lossRate
}
