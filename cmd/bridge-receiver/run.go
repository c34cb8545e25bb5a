package main

import (
	"context"
	"encoding/binary"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nilswitch/rcbridge/internal/blobstore/fsstore"
	"github.com/nilswitch/rcbridge/internal/bridge"
	"github.com/nilswitch/rcbridge/internal/cli"
	"github.com/nilswitch/rcbridge/internal/configsurface/httpconfig"
	demopair "github.com/nilswitch/rcbridge/internal/demo"
	"github.com/nilswitch/rcbridge/internal/metrics"
	"github.com/nilswitch/rcbridge/internal/peer"
	"github.com/nilswitch/rcbridge/internal/radio/udpradio"
)

func runReceiver(cmd *cobra.Command, _ []string) error {
	logger, err := cli.NewLogger(logLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if demo {
		return demopair.Run(ctx, logger)
	}

	own, err := cli.ParseAddr(selfAddr)
	if err != nil {
		return err
	}

	store, err := fsstore.New(stateDir)
	if err != nil {
		return err
	}

	rec := metrics.Noop
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec = metrics.NewPrometheus(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go http.ListenAndServe(metricsAddr, mux)
	}

	radioSub, err := udpradio.NewRadio(own, localUDP, remoteUDP)
	if err != nil {
		return err
	}
	defer radioSub.Close()

	core := bridge.New(radioSub, store, bridge.WithLogger(logger), bridge.WithMetrics(rec))
	receiver := bridge.NewReceiver(core, peer.CryptoKeySource, func(payload []byte) {
		if len(payload) == 4 {
			logger.Info().Uint32("counter", binary.LittleEndian.Uint32(payload)).Msg("data received")
		}
	})
	core.SetRole(receiver)

	if configAddr != "" {
		srv, err := httpconfig.New(configAddr, receiverStatus(core, receiver), core.Reset, logger)
		if err != nil {
			return err
		}
		defer srv.Close()
		core.SetConfigSurface(srv)
	}

	if err := core.Init(); err != nil {
		return err
	}

	return ignoreCancel(core.Run(ctx))
}

func receiverStatus(core *bridge.Core, receiver *bridge.Receiver) httpconfig.StatusProvider {
	return func() httpconfig.Status {
		paired := core.State() == bridge.Paired
		addr := ""
		if paired {
			addr = peer.FormatAddr(core.Peer().Addr)
		}
		return httpconfig.Status{
			Paired:   paired,
			PeerAddr: addr,
			Channel:  receiver.Channel(),
		}
	}
}

func ignoreCancel(err error) error {
	if err == context.Canceled {
		return nil
	}
	return err
}
