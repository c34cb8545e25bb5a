// Package demo runs a self-contained Sender+Receiver pair over an
// internal/radio/hostsim Medium in a single process, for the
// bridge-sender and bridge-receiver binaries' --demo flag (spec
// §4.13): no radio hardware or second process required.
package demo

import (
	"context"
	"encoding/binary"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/nilswitch/rcbridge/internal/blobstore/fsstore"
	"github.com/nilswitch/rcbridge/internal/bridge"
	"github.com/nilswitch/rcbridge/internal/metrics"
	"github.com/nilswitch/rcbridge/internal/peer"
	"github.com/nilswitch/rcbridge/internal/radio/hostsim"
)

// Run wires a Sender at addrA and a Receiver at addrB onto a shared
// in-process Medium, each backed by its own temp-directory blob
// store, and drives both cooperative loops until ctx is cancelled.
// Received payloads are logged; the Sender emits an incrementing
// counter every tick as its application payload.
func Run(ctx context.Context, logger zerolog.Logger) error {
	medium := hostsim.NewMedium()

	addrA := [6]byte{0xaa, 0x00, 0x00, 0x00, 0x00, 0x01}
	addrB := [6]byte{0xbb, 0x00, 0x00, 0x00, 0x00, 0x02}

	senderStore, err := tempStore("rcbridge-demo-sender")
	if err != nil {
		return err
	}
	receiverStore, err := tempStore("rcbridge-demo-receiver")
	if err != nil {
		return err
	}

	senderRadio := hostsim.NewRadio(addrA, medium)
	receiverRadio := hostsim.NewRadio(addrB, medium)

	senderLog := logger.With().Str("role", "sender").Logger()
	receiverLog := logger.With().Str("role", "receiver").Logger()

	senderCore := bridge.New(senderRadio, senderStore, bridge.WithLogger(senderLog), bridge.WithMetrics(metrics.Noop))
	receiverCore := bridge.New(receiverRadio, receiverStore, bridge.WithLogger(receiverLog), bridge.WithMetrics(metrics.Noop))

	sender := bridge.NewSender(senderCore, func() {
		senderLog.Info().Msg("link quality below threshold, requesting hop")
	})
	receiver := bridge.NewReceiver(receiverCore, peer.CryptoKeySource, func(payload []byte) {
		if len(payload) == 4 {
			receiverLog.Info().Uint32("counter", binary.LittleEndian.Uint32(payload)).Msg("data received")
		}
	})

	senderCore.SetRole(sender)
	receiverCore.SetRole(receiver)

	if err := senderCore.Init(); err != nil {
		return err
	}
	if err := receiverCore.Init(); err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() { errCh <- senderCore.Run(ctx) }()
	go func() { errCh <- receiverCore.Run(ctx) }()

	go sendLoop(ctx, sender, senderLog)

	err = <-errCh
	<-errCh
	if err == context.Canceled {
		return nil
	}
	return err
}

func sendLoop(ctx context.Context, sender *bridge.Sender, log zerolog.Logger) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	var counter uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload := make([]byte, 4)
			binary.LittleEndian.PutUint32(payload, counter)
			if err := sender.SendData(payload); err != nil {
				log.Debug().Err(err).Msg("demo payload not sent")
				continue
			}
			counter++
		}
	}
}

func tempStore(prefix string) (*fsstore.Store, error) {
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return nil, err
	}
	return fsstore.New(dir)
}
