package bridge

import (
	"time"

	"github.com/nilswitch/rcbridge/internal/peer"
	"github.com/nilswitch/rcbridge/internal/protocol"
	"github.com/nilswitch/rcbridge/internal/quality"
)

// searchInterval is the broadcast cadence while Unpaired, timed off a
// monotonic clock rather than a hardware timer (Host.Now, poll-based).
const searchInterval = 500 * time.Millisecond

// Sender is the transmitter-side Role: broadcasts SEARCH until paired,
// feeds the link quality estimator from unicast ack outcomes, and
// triggers hops when quality degrades.
type Sender struct {
	host         Host
	quality      *quality.Estimator
	onLowQuality func()
	lastSearch   time.Time
}

// NewSender constructs a Sender bound to host. onLowQuality is a pure
// notification hook, invoked synchronously before the HOP_REQUEST is
// sent; it may be nil.
func NewSender(host Host, onLowQuality func()) *Sender {
	return &Sender{host: host, quality: quality.New(), onLowQuality: onLowQuality}
}

// Quality exposes the current link quality estimate, mainly for
// tests and the config surface's status page.
func (s *Sender) Quality() float64 { return s.quality.Value() }

func (s *Sender) Tick(now time.Time) {
	if s.host.State() == Paired {
		return
	}
	if !s.lastSearch.IsZero() && now.Sub(s.lastSearch) < searchInterval {
		return
	}
	s.lastSearch = now
	s.host.Logger().Debug().Msg("searching for receiver")
	s.host.Send(protocol.BroadcastAddr, protocol.EncodeSearch())
}

func (s *Sender) HandleReceived(addr [6]byte, frame *protocol.Frame) {
	switch s.host.State() {
	case Unpaired:
		if frame.Tag != protocol.TagSearchReply {
			return
		}
		var key [protocol.KeySize]byte
		copy(key[:], frame.Payload)
		p := peer.Peer{Addr: addr, Key: key}
		if err := s.host.CommitPairing(p); err != nil {
			s.host.Logger().Warn().Err(err).Msg("failed to commit pairing after search reply")
			return
		}
		s.host.Logger().Info().Str("peer", peer.FormatAddr(addr)).Msg("receiver matched")

	case Paired:
		if frame.Tag != protocol.TagHopReply || len(frame.Payload) != 1 {
			return
		}
		channel := frame.Payload[0]
		// On receiving HOP_REPLY the Sender immediately retunes and sends
		// no acknowledgement; the hop is complete from its side.
		if s.host.SetChannel(channel) {
			s.host.Logger().Info().Uint8("channel", channel).Msg("channel hopped")
		} else {
			s.host.Logger().Warn().Uint8("channel", channel).Msg("failed to set channel from hop reply")
		}
	}
}

func (s *Sender) HandleSent(addr [6]byte, ok bool) {
	switch s.host.State() {
	case Unpaired:
		// Broadcast-ack status is informational only; no retry logic is
		// keyed on it.
		if !ok {
			s.host.Logger().Debug().Msg("broadcast beacon not accepted by radio")
		}

	case Paired:
		// Every unicast send that reports a status through on_sent
		// (DATA and HOP_REQUEST) feeds the estimator.
		s.quality.Update(ok)
		s.host.Metrics().SetLinkQuality(s.quality.Value())
		if !s.quality.BelowThreshold() {
			return
		}
		if s.onLowQuality != nil {
			s.onLowQuality()
		}
		accepted := s.host.Send(s.host.Peer().Addr, protocol.EncodeHopRequest())
		if accepted {
			// Reset only on accept, so a hop in flight doesn't trigger a
			// burst of further HOP_REQUEST frames.
			s.quality.Reset()
			s.host.Metrics().SetLinkQuality(s.quality.Value())
		} else {
			s.host.Logger().Debug().Msg("hop request rejected by radio, will retry")
		}
	}
}

// SendData prepends the DATA tag and hands the buffer to the unicast
// primitive. Once the payload length and pairing checks pass it
// returns nil: a rejection by the primitive is not reported to the
// caller, and neither is the peer's ack — the ack outcome arrives
// asynchronously at HandleSent and is consumed by the estimator.
func (s *Sender) SendData(payload []byte) error {
	if len(payload) == 0 || len(payload) > protocol.MaxDataPayload {
		return protocol.ErrPayloadTooLarge
	}
	if s.host.State() != Paired {
		return protocol.ErrNotPaired
	}
	s.host.Send(s.host.Peer().Addr, protocol.EncodeData(payload))
	return nil
}
