// Package cli holds the small pieces cmd/bridge-sender,
// cmd/bridge-receiver and cmd/bridge-tool all need: log-level parsing
// and hardware address parsing (ParseAddr), kept out of cmd/ so
// none of it is duplicated across the three binaries.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the zerolog.Logger every entry point starts from,
// writing to stderr so stdout stays free for any future scripting use.
// The roles themselves log at debug, info and warn.
func NewLogger(levelName string) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("cli: invalid log level %q: %w", levelName, err)
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger(), nil
}
