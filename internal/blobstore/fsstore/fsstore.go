// Package fsstore implements blobstore.Store as a flat directory of
// files, one per blob name — the host-side analog of the flash
// filesystem (e.g. LittleFS) the original firmware used.
//
// A third-party embedded KV store (bolt, badger) is deliberately not
// used here: the collaborator is a flat key→bytes filesystem with
// independent Remove-by-name semantics, which a single shared KV
// database file would only reproduce with an extra transaction layer
// this interface doesn't need. See DESIGN.md.
package fsstore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nilswitch/rcbridge/internal/blobstore"
)

type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

var _ blobstore.Store = (*Store)(nil)

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

func (s *Store) Read(name string) ([]byte, error) {
	return os.ReadFile(s.path(name))
}

// Write persists data atomically: it writes to a temp file in the same
// directory and renames over the destination, so a crash mid-write
// never leaves a partially-written blob behind. A short write is
// treated as failure, and the temp file is cleaned up.
func (s *Store) Write(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := tmp.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	return os.Rename(tmpPath, s.path(name))
}

func (s *Store) Remove(name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
