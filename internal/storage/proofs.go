// Package storage persists uploaded payment-proof files.  Proofs are
// written before checkout and referenced from bookings by an opaque ref,
// so the booking transaction itself never touches the filesystem.
package storage

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"

    "github.com/google/uuid"
)

// ProofStore saves proof uploads and returns an opaque reference that is
// later stored on the booking row.
type ProofStore interface {
    Save(filename string, r io.Reader) (ref string, err error)
    Open(ref string) (io.ReadCloser, error)
}

// DiskProofStore keeps proofs as flat files under a root directory.
// Filenames are regenerated from a random UUID; only the original
// extension survives, so user-supplied names never reach the
// filesystem.
type DiskProofStore struct {
    root string
}

// NewDiskProofStore creates the root directory if needed.
func NewDiskProofStore(root string) (*DiskProofStore, error) {
    if err := os.MkdirAll(root, 0o755); err != nil {
        return nil, fmt.Errorf("proof store: %w", err)
    }
    return &DiskProofStore{root: root}, nil
}

// Save writes the upload and returns its reference.
func (s *DiskProofStore) Save(filename string, r io.Reader) (string, error) {
    ext := strings.ToLower(filepath.Ext(filename))
    if len(ext) > 10 {
        ext = ""
    }
    ref := uuid.NewString() + ext
    f, err := os.Create(filepath.Join(s.root, ref))
    if err != nil {
        return "", fmt.Errorf("proof store: %w", err)
    }
    defer f.Close()
    if _, err := io.Copy(f, r); err != nil {
        os.Remove(f.Name())
        return "", fmt.Errorf("proof store: %w", err)
    }
    return ref, nil
}

// Open returns the stored file for a previously issued reference.  The
// ref is reduced to its base name so it cannot escape the root.
func (s *DiskProofStore) Open(ref string) (io.ReadCloser, error) {
    return os.Open(filepath.Join(s.root, filepath.Base(ref)))
}
