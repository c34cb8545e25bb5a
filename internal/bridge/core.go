// Package bridge implements Core: the shared pairing, framing, and
// channel-hopping substrate both the Sender and Receiver roles embed.
// Core itself holds no lock — the cooperative concurrency model pushes
// all synchronization down into whichever radio.Substrate and
// configsurface.Surface are wired in.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nilswitch/rcbridge/internal/blobstore"
	"github.com/nilswitch/rcbridge/internal/configsurface"
	"github.com/nilswitch/rcbridge/internal/metrics"
	"github.com/nilswitch/rcbridge/internal/peer"
	"github.com/nilswitch/rcbridge/internal/protocol"
	"github.com/nilswitch/rcbridge/internal/radio"
)

// Core holds the peer record, PairingState, and the single cooperative
// loop that drains the radio substrate's queued upcalls, runs the
// active Role's Tick, and polls the config surface. Each Core owns
// exactly one radio.Substrate instance: Init binds that substrate's
// upcalls to this Core, so two Cores must never share a substrate.
// Several Cores over separate substrates may run in one process (as
// internal/demo and the tests do). This is a documented constraint,
// not one the type system enforces.
type Core struct {
	substrate radio.Substrate
	store     blobstore.Store
	config    configsurface.Surface
	metrics   metrics.Recorder
	logger    zerolog.Logger
	bootID    uuid.UUID

	state PairingState
	peer  peer.Peer
	role  Role
}

// Option configures a Core at construction time.
type Option func(*Core)

// WithMetrics wires a Prometheus (or other) Recorder; the default is
// metrics.Noop, so Core never requires a metrics server to run.
func WithMetrics(m metrics.Recorder) Option {
	return func(c *Core) { c.metrics = m }
}

// WithConfigSurface wires the cooperative config-server poll; the
// default is no config surface at all (Run simply skips it).
func WithConfigSurface(s configsurface.Surface) Option {
	return func(c *Core) { c.config = s }
}

// WithLogger overrides the default no-op zerolog.Logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Core) { c.logger = l }
}

// New constructs a Core over substrate and store. Call SetRole before
// Init; Init and Run both require it.
func New(substrate radio.Substrate, store blobstore.Store, opts ...Option) *Core {
	c := &Core{
		substrate: substrate,
		store:     store,
		metrics:   metrics.Noop,
		logger:    zerolog.Nop(),
		bootID:    uuid.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	// boot_id has no protocol meaning and never goes on the wire — it
	// only disambiguates interleaved log lines from multiple Core
	// instances sharing a process (e.g. a --demo CLI run or a test
	// binary).
	c.logger = c.logger.With().Str("boot_id", c.bootID.String()).Logger()
	return c
}

// SetRole binds the Sender or Receiver behavior. Must be called
// before Init.
func (c *Core) SetRole(r Role) { c.role = r }

// SetConfigSurface wires a config surface after construction, for
// callers (cmd/bridge-sender, cmd/bridge-receiver) that need a Core
// reference to build the surface's status closure before it exists.
func (c *Core) SetConfigSurface(s configsurface.Surface) { c.config = s }

// Init runs the fatal-at-startup sequence: substrate bring-up on the
// combo role and InitChannel, then either loading a persisted peer
// (warm boot — the state is set to Paired before any radio traffic)
// or leaving discovery to Run's cooperative loop.
func (c *Core) Init() error {
	if err := c.substrate.Init(radio.RoleCombo); err != nil {
		return fmt.Errorf("%w: %v", ErrRadioInitFailed, err)
	}
	if err := c.substrate.SetChannel(protocol.InitChannel); err != nil {
		return fmt.Errorf("%w: %v", ErrChannelSetFailed, err)
	}
	c.metrics.SetChannel(protocol.InitChannel)
	c.substrate.SetHandlers(c.onSent, c.onReceived)

	p, ok, err := peer.Load(c.store)
	if err != nil {
		return err
	}
	if !ok {
		c.metrics.SetPaired(false)
		return nil
	}

	if err := c.substrate.AddPeer(p.Addr, p.Key); err != nil {
		return fmt.Errorf("%w: %v", ErrPeerRegisterFailed, err)
	}
	c.peer = p
	c.state = Paired
	c.metrics.SetPaired(true)
	c.logger.Info().Str("peer", p.String()).Msg("peer loaded from persisted blob")
	return nil
}

// Run drives the single cooperative loop until ctx is cancelled:
// substrate.Poll() delivers any queued upcalls, the active Role's Tick
// runs its time-driven work, and the config surface (if any) services
// at most one request. Unbounded busy-waiting is fine on real
// hardware; the brief sleep here only keeps a host process from
// pegging a CPU core and is not itself a suspension point the
// protocol depends on.
func (c *Core) Run(ctx context.Context) error {
	if c.role == nil {
		return errors.New("bridge: Run called before SetRole")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.substrate.Poll()
		c.role.Tick(c.Now())
		if c.config != nil {
			if err := c.config.Poll(); err != nil {
				c.logger.Debug().Err(err).Msg("config surface poll error")
			}
		}
		time.Sleep(time.Millisecond)
	}
}

// Reset removes the persisted peer blob: it takes effect on the next
// boot and does not interrupt this running session. Idempotent —
// calling it twice is equivalent to calling it once.
func (c *Core) Reset() error {
	return peer.Reset(c.store)
}

func (c *Core) onSent(addr [6]byte, ok bool) {
	c.role.HandleSent(addr, ok)
}

func (c *Core) onReceived(addr [6]byte, frame []byte) {
	f, err := protocol.Decode(frame)
	if err != nil {
		c.logger.Debug().Err(err).Msg("dropped malformed frame")
		return
	}
	c.metrics.IncFramesReceived(tagName(f.Tag))
	c.role.HandleReceived(addr, f)
}

// Host interface implementation.

func (c *Core) State() PairingState { return c.state }
func (c *Core) Peer() peer.Peer     { return c.peer }

func (c *Core) CommitPairing(p peer.Peer) error {
	c.peer = p
	c.state = Paired
	c.metrics.SetPaired(true)
	c.logger.Info().Str("peer", p.String()).Msg("paired")

	var errs []error
	if err := c.substrate.AddPeer(p.Addr, p.Key); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrPeerRegisterFailed, err))
	}
	if err := peer.Save(c.store, p); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Core) Send(addr [6]byte, frame []byte) bool {
	ok := c.substrate.Send(addr, frame)
	if len(frame) > 0 {
		c.metrics.IncFramesSent(tagName(frame[0]))
	}
	return ok
}

func (c *Core) SetChannel(ch uint8) bool {
	if err := c.substrate.SetChannel(ch); err != nil {
		return false
	}
	c.metrics.SetChannel(ch)
	return true
}

func (c *Core) Now() time.Time { return time.Now() }

func (c *Core) Logger() *zerolog.Logger   { return &c.logger }
func (c *Core) Metrics() metrics.Recorder { return c.metrics }

var _ Host = (*Core)(nil)

func tagName(tag byte) string {
	switch tag {
	case protocol.TagSearch:
		return "search"
	case protocol.TagSearchReply:
		return "search_reply"
	case protocol.TagHopRequest:
		return "hop_request"
	case protocol.TagHopReply:
		return "hop_reply"
	case protocol.TagData:
		return "data"
	default:
		return "unknown"
	}
}
