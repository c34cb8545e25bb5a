package bridge

import "errors"

// Fatal-at-startup errors: a Core.Init failure at any of these steps
// propagates to the caller and halts before any radio traffic, rather
// than limping forward with a half-configured substrate.
var (
	ErrRadioInitFailed    = errors.New("bridge: radio init failed")
	ErrChannelSetFailed   = errors.New("bridge: channel set failed")
	ErrPeerRegisterFailed = errors.New("bridge: peer register failed")
)
