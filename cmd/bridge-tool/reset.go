package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nilswitch/rcbridge/internal/blobstore/fsstore"
	"github.com/nilswitch/rcbridge/internal/peer"
)

var cmdReset = &cobra.Command{
	Use:   "reset",
	Short: "Remove a persisted peer blob without starting a bridge Core",
	RunE:  runReset,
}

var resetStateDir string

func init() {
	cmdReset.Flags().StringVar(&resetStateDir, "state-dir", "", "directory holding the persisted peer blob (required)")
	cmdReset.MarkFlagRequired("state-dir")
}

func runReset(_ *cobra.Command, _ []string) error {
	store, err := fsstore.New(resetStateDir)
	if err != nil {
		return fmt.Errorf("open state dir: %w", err)
	}
	if err := peer.Reset(store); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	fmt.Println("pairing info removed")
	return nil
}
