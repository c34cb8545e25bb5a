package protocol

// Frame is the decoded form of an on-air buffer: a tag byte plus the
// payload that belongs to it. It is transient and owns a fresh copy of
// its payload, rather than aliasing the caller's receive buffer, since
// that buffer may be reused by the substrate on the next receive.
type Frame struct {
	Tag     byte
	Payload []byte
}

// EncodeSearch builds the 1-byte SEARCH frame (Sender → broadcast).
func EncodeSearch() []byte {
	return []byte{TagSearch}
}

// EncodeSearchReply builds the SEARCH_REPLY frame carrying a freshly
// generated 16-byte key (Receiver → Sender).
func EncodeSearchReply(key [KeySize]byte) []byte {
	buf := make([]byte, searchReplyLen)
	buf[0] = TagSearchReply
	copy(buf[1:], key[:])
	return buf
}

// EncodeHopRequest builds the 1-byte HOP_REQUEST frame (Sender → Receiver).
func EncodeHopRequest() []byte {
	return []byte{TagHopRequest}
}

// EncodeHopReply builds the HOP_REPLY frame carrying the proposed channel
// (Receiver → Sender).
func EncodeHopReply(channel uint8) []byte {
	return []byte{TagHopReply, channel}
}

// EncodeData builds a DATA frame from an application payload of 1..249
// bytes. The caller is responsible for calling this only after
// validating length; EncodeData itself does not re-validate so that
// internal/bridge can keep ErrPayloadTooLarge as the single source of that
// check.
func EncodeData(payload []byte) []byte {
	buf := make([]byte, 1+len(payload))
	buf[0] = TagData
	copy(buf[1:], payload)
	return buf
}

// Decode parses an on-air buffer into a Frame, or returns
// ErrMalformedFrame for any of three silent-drop conditions: zero
// length, unknown tag, or a length that doesn't match what the tag
// expects. The returned Frame's Payload is a fresh copy, safe to
// retain past the caller's own buffer lifetime.
func Decode(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, ErrMalformedFrame
	}

	tag := data[0]
	switch tag {
	case TagSearch:
		if len(data) != 1 {
			return nil, ErrMalformedFrame
		}
		return &Frame{Tag: tag}, nil

	case TagSearchReply:
		if len(data) != searchReplyLen {
			return nil, ErrMalformedFrame
		}
		return &Frame{Tag: tag, Payload: clone(data[1:])}, nil

	case TagHopRequest:
		if len(data) != 1 {
			return nil, ErrMalformedFrame
		}
		return &Frame{Tag: tag}, nil

	case TagHopReply:
		if len(data) != hopReplyLen {
			return nil, ErrMalformedFrame
		}
		return &Frame{Tag: tag, Payload: clone(data[1:])}, nil

	case TagData:
		if len(data) < 2 || len(data) > MTU {
			return nil, ErrMalformedFrame
		}
		return &Frame{Tag: tag, Payload: clone(data[1:])}, nil

	default:
		return nil, ErrMalformedFrame
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
