package bridge

import (
	"time"

	"github.com/nilswitch/rcbridge/internal/hop"
	"github.com/nilswitch/rcbridge/internal/peer"
	"github.com/nilswitch/rcbridge/internal/protocol"
)

// Receiver is the receiver-side Role: passively answers SEARCH, grants
// hops, and delivers DATA frames to the application.
type Receiver struct {
	host      Host
	keySource peer.KeySource
	onData    DataHandler
	channel   hop.State

	// candidate is the not-yet-committed peer from the most recent
	// SEARCH reply, held here (not in Host) until its ack succeeds.
	// The Receiver's commit point is asymmetric to the Sender's: it
	// commits only on a positive ack for its own reply, so an unacked
	// reply must not touch Host state.
	candidate     peer.Peer
	haveCandidate bool
}

// NewReceiver constructs a Receiver bound to host. keySource generates
// the 16-byte key sent in each SEARCH_REPLY; onData is the application
// payload hook and may be nil.
func NewReceiver(host Host, keySource peer.KeySource, onData DataHandler) *Receiver {
	return &Receiver{host: host, keySource: keySource, onData: onData, channel: hop.NewState()}
}

// Channel exposes the current committed channel, mainly for tests and
// the config surface's status page.
func (r *Receiver) Channel() uint8 { return r.channel.Current }

// Tick is a no-op: the Receiver busy-waits and has nothing time-driven
// to do, unlike the Sender's broadcast timer.
func (r *Receiver) Tick(now time.Time) {}

func (r *Receiver) HandleReceived(addr [6]byte, frame *protocol.Frame) {
	switch r.host.State() {
	case Unpaired:
		if frame.Tag != protocol.TagSearch {
			return
		}
		r.host.Logger().Debug().Str("from", peer.FormatAddr(addr)).Msg("received search beacon")
		key, err := r.keySource()
		if err != nil {
			r.host.Logger().Warn().Err(err).Msg("failed to generate pairing key")
			return
		}
		// Each SEARCH gets a freshly generated key; if the Sender missed
		// a previous reply, this overwrites the unacked candidate rather
		// than accumulating state. The last successfully-acked key wins.
		r.candidate = peer.Peer{Addr: addr, Key: key}
		r.haveCandidate = true
		if !r.host.Send(addr, protocol.EncodeSearchReply(key)) {
			r.host.Logger().Debug().Msg("failed to reply to search beacon")
		}

	case Paired:
		switch frame.Tag {
		case protocol.TagHopRequest:
			candidate := r.channel.Candidate()
			r.host.Logger().Debug().Uint8("candidate", candidate).Msg("received hop request")
			if !r.host.Send(r.host.Peer().Addr, protocol.EncodeHopReply(candidate)) {
				r.host.Logger().Debug().Msg("failed to reply to hop request")
			}
		case protocol.TagData:
			if r.onData != nil {
				r.onData(frame.Payload)
			}
		}
	}
}

func (r *Receiver) HandleSent(addr [6]byte, ok bool) {
	switch r.host.State() {
	case Unpaired:
		// Commit only on a positive ack for the SEARCH_REPLY. A failed
		// ack leaves the Receiver Unpaired, still answering future
		// SEARCH frames with fresh keys.
		if !ok || !r.haveCandidate {
			return
		}
		p := r.candidate
		r.haveCandidate = false
		if err := r.host.CommitPairing(p); err != nil {
			r.host.Logger().Warn().Err(err).Msg("failed to commit pairing after search reply ack")
			return
		}
		r.host.Logger().Info().Str("peer", peer.FormatAddr(p.Addr)).Msg("sender matched")

	case Paired:
		// While Paired the Receiver only ever sends HOP_REPLY, so any
		// successful send-while-paired ack refers to the most recent one.
		// A failed ack leaves current/direction unchanged; the Sender may
		// already have hopped, leaving the two sides briefly on different
		// channels until the next hop resolves it.
		if !ok {
			return
		}
		candidate := r.channel.Candidate()
		if r.host.SetChannel(candidate) {
			r.channel = r.channel.Commit(candidate)
			r.host.Metrics().SetChannel(candidate)
			r.host.Metrics().IncHops()
			r.host.Logger().Info().Uint8("channel", candidate).Msg("channel hopped")
		} else {
			r.host.Logger().Warn().Uint8("candidate", candidate).Msg("failed to set channel after hop reply ack")
		}
	}
}
