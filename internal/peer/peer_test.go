package peer

import (
	"testing"

	"github.com/nilswitch/rcbridge/internal/blobstore/fsstore"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	p := Peer{
		Addr: [6]byte{1, 2, 3, 4, 5, 6},
		Key:  [16]byte{9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6},
	}
	got, err := Unmarshal(p.Marshal())
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != p {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
}

func TestUnmarshalRejectsWrongSize(t *testing.T) {
	if _, err := Unmarshal(make([]byte, BlobSize-1)); err != ErrMalformedBlob {
		t.Errorf("error = %v, want ErrMalformedBlob", err)
	}
	if _, err := Unmarshal(make([]byte, BlobSize+1)); err != ErrMalformedBlob {
		t.Errorf("error = %v, want ErrMalformedBlob", err)
	}
}

func TestLoadSaveResetAgainstFsstore(t *testing.T) {
	store, err := fsstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("fsstore.New() error = %v", err)
	}

	if _, ok, err := Load(store); err != nil || ok {
		t.Fatalf("Load() on empty store = (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	want := Peer{Addr: [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}}
	if _, err := CryptoKeySource(); err != nil {
		t.Fatalf("CryptoKeySource() error = %v", err)
	}
	key, err := CryptoKeySource()
	if err != nil {
		t.Fatalf("CryptoKeySource() error = %v", err)
	}
	want.Key = key

	if err := Save(store, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok, err := Load(store)
	if err != nil || !ok {
		t.Fatalf("Load() after Save = (ok=%v, err=%v), want (true, nil)", ok, err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if err := Reset(store); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, ok, err := Load(store); err != nil || ok {
		t.Fatalf("Load() after Reset = (ok=%v, err=%v), want (false, nil)", ok, err)
	}

	// Reset is idempotent: removing an already-absent blob still succeeds.
	if err := Reset(store); err != nil {
		t.Errorf("second Reset() error = %v, want nil", err)
	}
}

func TestFormatAddrAndString(t *testing.T) {
	addr := [6]byte{0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}
	if got, want := FormatAddr(addr), "0a:0b:0c:0d:0e:0f"; got != want {
		t.Errorf("FormatAddr() = %q, want %q", got, want)
	}

	p := Peer{Addr: addr}
	if got := p.String(); got == "" {
		t.Error("String() returned empty string")
	}
}

func TestWeakKeySourceIsDeterministicForSameSeed(t *testing.T) {
	src := WeakKeySource(12345)
	a, err := src()
	if err != nil {
		t.Fatalf("WeakKeySource() error = %v", err)
	}
	b, err := WeakKeySource(12345)()
	if err != nil {
		t.Fatalf("WeakKeySource() error = %v", err)
	}
	if a != b {
		t.Error("WeakKeySource with the same seed produced different keys")
	}
}
