package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nilswitch/rcbridge/internal/protocol"
)

// ParseAddr parses a colon-separated hex hardware address, the input
// form of peer.FormatAddr's output ("aa:bb:cc:dd:ee:ff"), as accepted
// by the --self-addr flag.
func ParseAddr(s string) ([protocol.AddrSize]byte, error) {
	var addr [protocol.AddrSize]byte
	parts := strings.Split(s, ":")
	if len(parts) != protocol.AddrSize {
		return addr, fmt.Errorf("cli: address %q must have %d colon-separated octets", s, protocol.AddrSize)
	}
	for i, part := range parts {
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return addr, fmt.Errorf("cli: address %q has invalid octet %q", s, part)
		}
		addr[i] = b[0]
	}
	return addr, nil
}
