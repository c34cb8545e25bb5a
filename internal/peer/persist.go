package peer

import (
	"errors"

	"github.com/nilswitch/rcbridge/internal/blobstore"
)

var (
	// ErrBlobReadFailed / ErrBlobWriteFailed are fatal during bootstrap
	// but non-fatal once running.
	ErrBlobReadFailed  = errors.New("peer: blob read failed")
	ErrBlobWriteFailed = errors.New("peer: blob write failed")
)

// Load checks for a persisted peer blob and returns it if present and
// well-formed. ok is false if no blob exists yet — this is the normal
// "run discovery" path, not an error.
func Load(store blobstore.Store) (p Peer, ok bool, err error) {
	if !store.Exists(blobstore.PeerBlobName) {
		return Peer{}, false, nil
	}
	raw, err := store.Read(blobstore.PeerBlobName)
	if err != nil {
		return Peer{}, false, ErrBlobReadFailed
	}
	p, err = Unmarshal(raw)
	if err != nil {
		// Ill-formed blob: treated the same as "absent", so the caller
		// re-runs discovery rather than halting.
		return Peer{}, false, nil
	}
	return p, true, nil
}

// Save persists p as the fixed 22-byte blob. A short or failed write
// is reported as ErrBlobWriteFailed; the caller may retry discovery on
// the next boot.
func Save(store blobstore.Store, p Peer) error {
	if err := store.Write(blobstore.PeerBlobName, p.Marshal()); err != nil {
		return ErrBlobWriteFailed
	}
	return nil
}

// Reset removes the persisted peer blob. Idempotent: removing an
// already-absent blob is success, so calling Reset twice is
// equivalent to calling it once.
func Reset(store blobstore.Store) error {
	return store.Remove(blobstore.PeerBlobName)
}
