package protocol

import "errors"

var (
	// ErrPayloadTooLarge is returned synchronously to the application
	// when SendData is called with a payload outside [1, 249] bytes.
	ErrPayloadTooLarge = errors.New("protocol: payload too large")

	// ErrNotPaired guards the send surface before pairing completes.
	ErrNotPaired = errors.New("protocol: not paired")

	// ErrInvalidChannel guards channel values outside [MinChannel, MaxChannel].
	ErrInvalidChannel = errors.New("protocol: invalid channel")

	// ErrMalformedFrame covers the three silent-drop conditions on
	// decode: zero length, unknown tag, length mismatch for the tag.
	// Callers log and drop; this error never escapes internal/bridge.
	ErrMalformedFrame = errors.New("protocol: malformed frame")

	// ErrTimeout is used by radio.Substrate implementations that model a
	// blocking receive with a deadline (nrfradio's hardware driver). Core itself
	// never times out, so this only surfaces inside substrate
	// implementations and their tests.
	ErrTimeout = errors.New("protocol: timed out")
)
