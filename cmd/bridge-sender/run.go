package main

import (
	"context"
	"encoding/binary"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
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

func runSender(cmd *cobra.Command, _ []string) error {
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
	sender := bridge.NewSender(core, func() {
		logger.Info().Msg("link quality below threshold, requesting hop")
	})
	core.SetRole(sender)

	if configAddr != "" {
		srv, err := httpconfig.New(configAddr, senderStatus(core, sender), core.Reset, logger)
		if err != nil {
			return err
		}
		defer srv.Close()
		core.SetConfigSurface(srv)
	}

	if err := core.Init(); err != nil {
		return err
	}

	go sendCounters(ctx, sender, logger.With().Str("loop", "counter").Logger())

	return ignoreCancel(core.Run(ctx))
}

func senderStatus(core *bridge.Core, sender *bridge.Sender) httpconfig.StatusProvider {
	return func() httpconfig.Status {
		paired := core.State() == bridge.Paired
		addr := ""
		if paired {
			addr = peer.FormatAddr(core.Peer().Addr)
		}
		return httpconfig.Status{
			Paired:      paired,
			PeerAddr:    addr,
			LinkQuality: sender.Quality(),
		}
	}
}

func sendCounters(ctx context.Context, sender *bridge.Sender, logger zerolog.Logger) {
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
				logger.Debug().Err(err).Msg("payload not sent")
				continue
			}
			counter++
		}
	}
}

func ignoreCancel(err error) error {
	if err == context.Canceled {
		return nil
	}
	return err
}
