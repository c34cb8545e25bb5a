package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}

	tests := []struct {
		name    string
		encoded []byte
		wantTag byte
		wantPay []byte
	}{
		{"search", EncodeSearch(), TagSearch, nil},
		{"search reply", EncodeSearchReply(key), TagSearchReply, key[:]},
		{"hop request", EncodeHopRequest(), TagHopRequest, nil},
		{"hop reply", EncodeHopReply(9), TagHopReply, []byte{9}},
		{"data", EncodeData([]byte("hello")), TagData, []byte("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(tt.encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if f.Tag != tt.wantTag {
				t.Errorf("Tag = %d, want %d", f.Tag, tt.wantTag)
			}
			if !bytes.Equal(f.Payload, tt.wantPay) {
				t.Errorf("Payload = %v, want %v", f.Payload, tt.wantPay)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	var key [KeySize]byte

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{0x99}},
		{"search with trailing bytes", []byte{TagSearch, 0x00}},
		{"search reply too short", append([]byte{TagSearchReply}, key[:len(key)-1]...)},
		{"search reply too long", append([]byte{TagSearchReply}, append(key[:], 0x00)...)},
		{"hop request with payload", []byte{TagHopRequest, 0x01}},
		{"hop reply missing channel", []byte{TagHopReply}},
		{"hop reply extra byte", []byte{TagHopReply, 5, 6}},
		{"data with no payload", []byte{TagData}},
		{"data exceeding MTU", append([]byte{TagData}, make([]byte, MTU)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); err != ErrMalformedFrame {
				t.Errorf("Decode(%v) error = %v, want ErrMalformedFrame", tt.data, err)
			}
		})
	}
}

func TestDecodePayloadIsIndependentCopy(t *testing.T) {
	buf := EncodeData([]byte("mutate me"))
	f, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	buf[1] = 'X'
	if f.Payload[0] == 'X' {
		t.Error("Frame.Payload aliases the input buffer, expected an independent copy")
	}
}
