// Package protocol defines the on-air frame encoding shared by the Sender
// and Receiver roles, and the channel/size constants that bound it.
package protocol

// Channel bounds.
const (
	MinChannel  uint8 = 1
	MaxChannel  uint8 = 13
	InitChannel uint8 = 7
)

// Frame tags. Every on-air frame's byte 0.
const (
	TagSearch      byte = 1
	TagSearchReply byte = 2
	TagHopRequest  byte = 3
	TagHopReply    byte = 4
	TagData        byte = 5
)

// Sizes.
const (
	AddrSize = 6
	KeySize  = 16

	// MTU is the maximum single-frame size the radio primitive will carry,
	// tag byte included.
	MTU = 250

	// MaxDataPayload is the largest application payload that fits in a
	// DATA frame once the tag byte is removed.
	MaxDataPayload = MTU - 1

	searchReplyLen = 1 + KeySize
	hopReplyLen    = 1 + 1
)

// BroadcastAddr is the all-ones hardware address used by the Sender
// before pairing.
var BroadcastAddr = [AddrSize]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
