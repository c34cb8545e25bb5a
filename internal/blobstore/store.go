// Package blobstore defines the external blob-store collaborator: a
// flat key→bytes filesystem the core uses only during pairing
// bootstrap and reset.
package blobstore

// Store is the narrow contract BridgeCore needs from the platform's
// persistent storage. A real board backs it with a flash filesystem;
// internal/blobstore/fsstore backs it with an ordinary directory for
// hosts and tests.
type Store interface {
	Exists(name string) bool
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	Remove(name string) error
}

// PeerBlobName is the fixed blob name the Peer record is persisted
// under.
const PeerBlobName = "peer.info"
