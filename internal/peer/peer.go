// Package peer holds the Peer record and its persistence to a
// blobstore.Store as a fixed 22-byte blob.
package peer

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	mrand "math/rand/v2"
	"strings"

	"github.com/nilswitch/rcbridge/internal/protocol"
)

// BlobSize is the exact on-disk size of a persisted Peer: a 6-byte
// address followed by a 16-byte key.
const BlobSize = protocol.AddrSize + protocol.KeySize

// ErrMalformedBlob is returned by Unmarshal when the input is not
// exactly BlobSize bytes.
var ErrMalformedBlob = errors.New("peer: malformed blob")

// Peer is the in-memory counterpart record: the other endpoint's
// hardware address and the symmetric key the radio substrate uses for
// per-peer payload encryption.
type Peer struct {
	Addr [protocol.AddrSize]byte
	Key  [protocol.KeySize]byte
}

// Marshal serialises a Peer into its 22-byte wire/disk form:
// addr[6] || key[16].
func (p Peer) Marshal() []byte {
	buf := make([]byte, BlobSize)
	copy(buf[:protocol.AddrSize], p.Addr[:])
	copy(buf[protocol.AddrSize:], p.Key[:])
	return buf
}

// Unmarshal parses a Peer from its 22-byte blob form.
func Unmarshal(blob []byte) (Peer, error) {
	var p Peer
	if len(blob) != BlobSize {
		return p, ErrMalformedBlob
	}
	copy(p.Addr[:], blob[:protocol.AddrSize])
	copy(p.Key[:], blob[protocol.AddrSize:])
	return p, nil
}

// FormatAddr renders a hardware address as colon-separated hex, the
// Go equivalent of the original firmware's peer.toString(only_addr)
// debug helper.
func FormatAddr(addr [protocol.AddrSize]byte) string {
	parts := make([]string, len(addr))
	for i, b := range addr {
		parts[i] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(parts, ":")
}

// String renders MAC and key as human-readable hex, matching the
// original firmware's peer.toString() debug helper.
func (p Peer) String() string {
	return "MAC = " + FormatAddr(p.Addr) + ", key = " + hex.EncodeToString(p.Key[:])
}

// KeySource produces fresh 16-byte pairing keys. The default
// (CryptoKeySource) uses crypto/rand; WeakKeySource substitutes a
// weaker, microsecond-counter-seeded source for hardware without a
// TRNG-backed crypto/rand.
type KeySource func() ([protocol.KeySize]byte, error)

// CryptoKeySource draws a key from crypto/rand.
func CryptoKeySource() ([protocol.KeySize]byte, error) {
	var key [protocol.KeySize]byte
	_, err := crand.Read(key[:])
	return key, err
}

// WeakKeySource matches the original firmware's entropy model: a
// microsecond-counter-seeded PRNG, for hardware with no TRNG backing
// crypto/rand. seedMicros should come from a monotonic microsecond
// counter read once, the first time a key is generated.
func WeakKeySource(seedMicros uint64) KeySource {
	r := mrand.New(mrand.NewPCG(seedMicros, seedMicros>>32|1))
	return func() ([protocol.KeySize]byte, error) {
		var key [protocol.KeySize]byte
		for i := range key {
			key[i] = byte(r.Uint32())
		}
		return key, nil
	}
}
