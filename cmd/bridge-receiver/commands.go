package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "bridge-receiver",
	Short:         "Run the receiver side of an rcbridge point-to-point link.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runReceiver,
}

var (
	stateDir    string
	selfAddr    string
	localUDP    string
	remoteUDP   string
	metricsAddr string
	configAddr  string
	logLevel    string
	demo        bool
)

func init() {
	rootCmd.Flags().StringVar(&stateDir, "state-dir", "rcbridge-receiver-state", "directory for the persisted peer blob")
	rootCmd.Flags().StringVar(&selfAddr, "self-addr", "bb:00:00:00:00:02", "this endpoint's hardware address")
	rootCmd.Flags().StringVar(&localUDP, "local-udp", "127.0.0.1:9402", "local UDP loopback substrate address")
	rootCmd.Flags().StringVar(&remoteUDP, "remote-udp", "127.0.0.1:9401", "remote peer's UDP loopback substrate address")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics", "", "Prometheus metrics listen address (disabled if empty)")
	rootCmd.Flags().StringVar(&configAddr, "config-addr", "", "config-surface HTTP listen address (disabled if empty)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "zerolog level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "run a self-contained sender+receiver pair in this process")
}

func Execute() error {
	return rootCmd.Execute()
}
